package predict

import (
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/caremetrics/stress-screen/internal/artifact"
	"github.com/caremetrics/stress-screen/internal/explain"
	"github.com/caremetrics/stress-screen/internal/model"
	"github.com/caremetrics/stress-screen/internal/schema"
)

// explainable is the optional attribution surface of a classifier.
type explainable interface {
	Explain(x []float64) (explain.Output, error)
}

// Pipeline scores one record at a time against the loaded artifacts. The
// artifacts are read-only after load, so a single Pipeline is safe for
// concurrent use.
type Pipeline struct {
	schema *schema.Schema
	arts   *artifact.Context
}

// NewPipeline builds a Pipeline over the loaded artifact context.
func NewPipeline(s *schema.Schema, arts *artifact.Context) *Pipeline {
	return &Pipeline{schema: s, arts: arts}
}

// Request is one scoring submission.
type Request struct {
	// Features maps each schema feature name to its raw value. All ten
	// must be present.
	Features map[string]float64

	// Threshold overrides the loaded decision threshold when non-nil.
	Threshold *float64

	// WithAttribution requests the per-feature contribution breakdown.
	// Attribution is best-effort: a failure is logged and the result is
	// returned without it.
	WithAttribution bool
}

// Threshold returns the decision threshold the pipeline will use for req.
func (p *Pipeline) Threshold(req Request) float64 {
	if req.Threshold != nil {
		return *req.Threshold
	}
	return p.arts.Threshold
}

// Run scores a single submission to completion: build the ordered record,
// transform it to model space, extract the probability, classify, and
// optionally attach the attribution breakdown.
func (p *Pipeline) Run(req Request) (*model.Result, error) {
	rec, err := p.schema.BuildRecord(req.Features)
	if err != nil {
		return nil, err
	}

	x, err := p.arts.Preprocessor.Apply(rec)
	if err != nil {
		return nil, err
	}

	prob, err := Probability(p.arts.Classifier, x)
	if err != nil {
		return nil, err
	}

	thr := p.Threshold(req)
	riskLabel, narrative := Narrative(prob, thr)

	res := &model.Result{
		ID:          uuid.NewString(),
		Probability: prob,
		Threshold:   thr,
		Predicted:   Classify(prob, thr),
		RiskLabel:   riskLabel,
		Narrative:   narrative,
		Inputs:      p.echoInputs(rec),
		GeneratedAt: time.Now().UTC(),
	}

	if req.WithAttribution {
		attr, err := p.attribution(rec, x)
		if err != nil {
			zap.L().Warn("attribution failed, returning result without it",
				zap.String("prediction_id", res.ID),
				zap.Error(err),
			)
		} else {
			res.Attribution = attr
		}
	}

	return res, nil
}

func (p *Pipeline) echoInputs(rec model.Record) []model.InputEcho {
	echo := make([]model.InputEcho, 0, len(rec.Order))
	for _, name := range rec.Order {
		echo = append(echo, model.InputEcho{
			Feature: p.schema.DisplayLabel(name),
			Value:   p.schema.DisplayValue(name, rec.Value(name)),
		})
	}
	return echo
}

// attribution runs the explainer over the same preprocessed vector used for
// inference and normalizes whichever output shape it produced.
func (p *Pipeline) attribution(rec model.Record, x []float64) (*model.Attribution, error) {
	ex, ok := p.arts.Classifier.(explainable)
	if !ok {
		return nil, eris.New("predict: classifier does not expose attribution")
	}
	out, err := ex.Explain(x)
	if err != nil {
		return nil, eris.Wrap(err, "predict: compute attribution")
	}
	values, base, err := explain.Normalize(out, len(p.schema.Fields))
	if err != nil {
		return nil, err
	}
	return explain.Format(p.schema, rec, values, base)
}
