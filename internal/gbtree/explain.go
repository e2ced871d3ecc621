package gbtree

import "github.com/caremetrics/stress-screen/internal/explain"

// Attribution is computed path-dependently: walking each tree along the
// record's decision path, the change in the subtree's expected value at
// every split is credited to the split feature. Summed over the ensemble,
// baseline plus contributions equals the model's raw output for the record.

// contributions accumulates one tree's per-feature credits into contrib and
// returns the tree's baseline (the root's expected value).
func (t *Tree) contributions(x []float64, contrib []float64) float64 {
	i := 0
	for !t.Nodes[i].IsLeaf() {
		n := t.Nodes[i]
		next := n.Left
		if x[n.Feature] >= n.Threshold {
			next = n.Right
		}
		contrib[n.Feature] += t.expected[next] - t.expected[i]
		i = next
	}
	return t.expected[0]
}

// Explain returns the per-feature contribution breakdown for one record. The
// output shape follows the model internals: multi-class models produce the
// per-class list form, binary probability models the structured form.
func (e *ProbabilityEnsemble) Explain(x []float64) (explain.Output, error) {
	if err := e.ens.checkInput(x); err != nil {
		return nil, err
	}
	if e.ens.Objective == ObjectiveMultiSoftmax {
		return e.ens.explainPerClass(x), nil
	}
	values, base := e.ens.explainBinary(x)
	return explain.StructuredOutput{Values: values, Base: base}, nil
}

// Explain for margin-only models yields the bare array form; the baseline is
// not part of the decision-score contract.
func (e *MarginEnsemble) Explain(x []float64) (explain.Output, error) {
	if err := e.ens.checkInput(x); err != nil {
		return nil, err
	}
	values, _ := e.ens.explainBinary(x)
	return explain.ArrayOutput{Values: values}, nil
}

func (e *Ensemble) explainBinary(x []float64) (values []float64, base float64) {
	values = make([]float64, e.NumFeatures)
	base = e.BaseScore
	for i := range e.Trees {
		base += e.Trees[i].contributions(x, values)
	}
	return values, base
}

func (e *Ensemble) explainPerClass(x []float64) explain.ListOutput {
	out := explain.ListOutput{
		Classes: make([][]float64, e.NumClass),
		Bases:   make([]float64, e.NumClass),
	}
	for c := range out.Classes {
		out.Classes[c] = make([]float64, e.NumFeatures)
		out.Bases[c] = e.BaseScore
	}
	for i := range e.Trees {
		c := i % e.NumClass
		out.Bases[c] += e.Trees[i].contributions(x, out.Classes[c])
	}
	return out
}
