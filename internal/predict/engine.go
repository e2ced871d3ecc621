// Package predict turns a validated record into a calibrated probability, a
// binary label, and a risk narrative, orchestrating the full single-case
// scoring pipeline.
package predict

import (
	"math"

	"github.com/rotisserie/eris"
)

// ProbabilityModel is a classifier that exposes a direct calibrated
// positive-class probability.
type ProbabilityModel interface {
	PredictProba(x []float64) (float64, error)
}

// MarginModel is a classifier that only exposes a raw decision/margin score.
type MarginModel interface {
	DecisionFunction(x []float64) (float64, error)
}

// ErrUnsupportedModel is returned when a classifier exposes neither a
// probability output nor a decision score.
var ErrUnsupportedModel = eris.New("predict: model does not support probability outputs")

// Probability extracts the positive-class probability from a classifier, in
// priority order: a direct probability output if the model has one, else a
// decision score mapped through the logistic function, else an error. Pure
// and deterministic given fixed artifacts.
func Probability(clf any, x []float64) (float64, error) {
	switch m := clf.(type) {
	case ProbabilityModel:
		p, err := m.PredictProba(x)
		if err != nil {
			return 0, eris.Wrap(err, "predict: probability output")
		}
		if p < 0 || p > 1 || math.IsNaN(p) {
			return 0, eris.Errorf("predict: model returned probability %v outside [0, 1]", p)
		}
		return p, nil
	case MarginModel:
		z, err := m.DecisionFunction(x)
		if err != nil {
			return 0, eris.Wrap(err, "predict: decision score")
		}
		return Sigmoid(z), nil
	default:
		return 0, ErrUnsupportedModel
	}
}

// Sigmoid maps a raw margin into (0, 1) via 1 / (1 + e^-z).
func Sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}
