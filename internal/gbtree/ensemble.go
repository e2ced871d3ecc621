// Package gbtree loads and evaluates the serialized gradient-boosted tree
// classifier. The artifact is a JSON dump of the fitted ensemble: split
// structure, leaf values, node covers, the training objective, and the
// optional sigmoid calibration fitted on top of the raw margin.
package gbtree

import (
	"encoding/json"
	"math"
	"os"

	"github.com/rotisserie/eris"
)

// Objectives accepted in the artifact.
const (
	ObjectiveBinaryLogistic = "binary:logistic"
	ObjectiveMultiSoftmax   = "multi:softmax"
	ObjectiveRaw            = "raw"
)

// Node is one node of a decision tree. Feature < 0 marks a leaf; Value is
// the leaf output. For split nodes, records with x[Feature] < Threshold go
// left. Cover is the training-sample weight that reached the node.
type Node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
	Cover     float64 `json:"cover"`
}

// IsLeaf reports whether the node is a leaf.
func (n Node) IsLeaf() bool { return n.Feature < 0 }

// Tree is a single decision tree. Node 0 is the root.
type Tree struct {
	Nodes []Node `json:"nodes"`

	// expected[i] is the cover-weighted expected output of the subtree
	// rooted at node i, precomputed at load time for attribution.
	expected []float64
}

// Calibration holds fitted sigmoid (Platt) calibration parameters:
// p = 1 / (1 + exp(A*z + B)) for raw margin z.
type Calibration struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
}

// Ensemble is the decoded classifier artifact. For multi-class models
// (NumClass >= 2), tree i belongs to class i % NumClass.
type Ensemble struct {
	Objective   string       `json:"objective"`
	BaseScore   float64      `json:"base_score"`
	NumFeatures int          `json:"num_features"`
	NumClass    int          `json:"num_class"`
	Trees       []Tree       `json:"trees"`
	Calibration *Calibration `json:"calibration,omitempty"`
}

// Open reads an ensemble artifact and returns the classifier handle the
// probability engine dispatches on: a *ProbabilityEnsemble for models whose
// output is a calibrated probability, a *MarginEnsemble for raw-objective
// models that only expose a decision score.
func Open(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "gbtree: read model %s", path)
	}
	var ens Ensemble
	if err := json.Unmarshal(data, &ens); err != nil {
		return nil, eris.Wrapf(err, "gbtree: parse model %s", path)
	}
	if err := ens.validate(); err != nil {
		return nil, err
	}
	ens.precompute()

	switch ens.Objective {
	case ObjectiveBinaryLogistic, ObjectiveMultiSoftmax:
		return &ProbabilityEnsemble{ens: &ens}, nil
	case ObjectiveRaw:
		if ens.Calibration != nil {
			// Calibration turns a raw score into a probability.
			return &ProbabilityEnsemble{ens: &ens}, nil
		}
		return &MarginEnsemble{ens: &ens}, nil
	default:
		return nil, eris.Errorf("gbtree: unsupported objective %q", ens.Objective)
	}
}

func (e *Ensemble) validate() error {
	if e.NumFeatures <= 0 {
		return eris.New("gbtree: model declares no features")
	}
	if len(e.Trees) == 0 {
		return eris.New("gbtree: model has no trees")
	}
	if e.Objective == ObjectiveMultiSoftmax && e.NumClass < 2 {
		return eris.Errorf("gbtree: multi:softmax model declares num_class=%d", e.NumClass)
	}
	for ti, t := range e.Trees {
		if len(t.Nodes) == 0 {
			return eris.Errorf("gbtree: tree %d is empty", ti)
		}
		for ni, n := range t.Nodes {
			if n.IsLeaf() {
				continue
			}
			if n.Feature >= e.NumFeatures {
				return eris.Errorf("gbtree: tree %d node %d splits on feature %d of %d",
					ti, ni, n.Feature, e.NumFeatures)
			}
			if n.Left < 0 || n.Left >= len(t.Nodes) || n.Right < 0 || n.Right >= len(t.Nodes) {
				return eris.Errorf("gbtree: tree %d node %d has child out of range", ti, ni)
			}
		}
	}
	return nil
}

func (e *Ensemble) precompute() {
	for i := range e.Trees {
		e.Trees[i].computeExpected()
	}
}

// computeExpected fills expected[] bottom-up: a leaf's expectation is its
// value, an internal node's is the cover-weighted mean of its children.
func (t *Tree) computeExpected() {
	t.expected = make([]float64, len(t.Nodes))
	var walk func(i int) float64
	walk = func(i int) float64 {
		n := t.Nodes[i]
		if n.IsLeaf() {
			t.expected[i] = n.Value
			return n.Value
		}
		l := walk(n.Left)
		r := walk(n.Right)
		cl, cr := t.Nodes[n.Left].Cover, t.Nodes[n.Right].Cover
		if cl+cr > 0 {
			t.expected[i] = (cl*l + cr*r) / (cl + cr)
		} else {
			t.expected[i] = (l + r) / 2
		}
		return t.expected[i]
	}
	walk(0)
}

// eval returns the leaf value reached by x.
func (t *Tree) eval(x []float64) float64 {
	i := 0
	for !t.Nodes[i].IsLeaf() {
		n := t.Nodes[i]
		if x[n.Feature] < n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
	return t.Nodes[i].Value
}

func (e *Ensemble) checkInput(x []float64) error {
	if len(x) != e.NumFeatures {
		return eris.Errorf("gbtree: got %d features, model expects %d", len(x), e.NumFeatures)
	}
	return nil
}

// margin returns the raw additive score for binary models.
func (e *Ensemble) margin(x []float64) float64 {
	z := e.BaseScore
	for i := range e.Trees {
		z += e.Trees[i].eval(x)
	}
	return z
}

// classMargins returns one raw score per class for multi-class models.
func (e *Ensemble) classMargins(x []float64) []float64 {
	margins := make([]float64, e.NumClass)
	for i := range margins {
		margins[i] = e.BaseScore
	}
	for i := range e.Trees {
		margins[i%e.NumClass] += e.Trees[i].eval(x)
	}
	return margins
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}

// ProbabilityEnsemble is a classifier whose output is a calibrated
// positive-class probability.
type ProbabilityEnsemble struct {
	ens *Ensemble
}

// PredictProba returns the positive-class probability for one record.
func (e *ProbabilityEnsemble) PredictProba(x []float64) (float64, error) {
	if err := e.ens.checkInput(x); err != nil {
		return 0, err
	}
	switch {
	case e.ens.Calibration != nil:
		z := e.ens.margin(x)
		c := e.ens.Calibration
		return 1.0 / (1.0 + math.Exp(c.A*z+c.B)), nil
	case e.ens.Objective == ObjectiveMultiSoftmax:
		margins := e.ens.classMargins(x)
		return softmaxPositive(margins), nil
	default:
		return sigmoid(e.ens.margin(x)), nil
	}
}

// MarginEnsemble is a classifier that only exposes a raw decision score.
type MarginEnsemble struct {
	ens *Ensemble
}

// DecisionFunction returns the raw additive margin for one record.
func (e *MarginEnsemble) DecisionFunction(x []float64) (float64, error) {
	if err := e.ens.checkInput(x); err != nil {
		return 0, err
	}
	return e.ens.margin(x), nil
}

// softmaxPositive returns the softmax probability of class 1.
func softmaxPositive(margins []float64) float64 {
	maxM := margins[0]
	for _, m := range margins[1:] {
		if m > maxM {
			maxM = m
		}
	}
	var sum float64
	exps := make([]float64, len(margins))
	for i, m := range margins {
		exps[i] = math.Exp(m - maxM)
		sum += exps[i]
	}
	return exps[1] / sum
}
