// Package explain normalizes and formats per-feature attribution output for
// one scored record. Explainers can emit their result in one of three shapes
// depending on model internals; Normalize collapses all of them to a single
// contribution vector plus a baseline before anything is rendered.
package explain

import "github.com/rotisserie/eris"

// Output is the closed set of shapes an explainer may produce.
type Output interface {
	isOutput()
}

// ListOutput is the multi-class shape: one contribution slice and one
// baseline per class.
type ListOutput struct {
	Classes [][]float64
	Bases   []float64
}

// StructuredOutput carries a single contribution vector with its baseline.
type StructuredOutput struct {
	Values []float64
	Base   float64
}

// ArrayOutput is a bare contribution vector with no baseline attached.
type ArrayOutput struct {
	Values []float64
}

func (ListOutput) isOutput()       {}
func (StructuredOutput) isOutput() {}
func (ArrayOutput) isOutput()      {}

// Normalize maps any Output shape to one contribution vector of length
// nFeatures plus a baseline. For the multi-class shape the positive-class
// slice is selected when more than one class is present.
func Normalize(out Output, nFeatures int) ([]float64, float64, error) {
	var (
		values []float64
		base   float64
	)

	switch o := out.(type) {
	case ListOutput:
		if len(o.Classes) == 0 {
			return nil, 0, eris.New("explain: list output has no classes")
		}
		idx := 0
		if len(o.Classes) > 1 {
			idx = 1 // positive class
		}
		values = o.Classes[idx]
		if len(o.Bases) > idx {
			base = o.Bases[idx]
		} else if len(o.Bases) == 1 {
			base = o.Bases[0]
		}
	case StructuredOutput:
		values = o.Values
		base = o.Base
	case ArrayOutput:
		values = o.Values
	default:
		return nil, 0, eris.Errorf("explain: unknown output shape %T", out)
	}

	if len(values) != nFeatures {
		return nil, 0, eris.Errorf("explain: got %d contributions for %d features",
			len(values), nFeatures)
	}
	return values, base, nil
}
