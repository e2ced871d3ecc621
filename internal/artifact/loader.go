// Package artifact loads the serialized model artifacts once at startup and
// exposes them as a read-only context passed into the scoring pipeline. A
// missing preprocessor or classifier is fatal before any request is served;
// a missing threshold file is recoverable and falls back to the default.
package artifact

import (
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/caremetrics/stress-screen/internal/config"
	"github.com/caremetrics/stress-screen/internal/gbtree"
	"github.com/caremetrics/stress-screen/internal/preprocess"
)

// Context holds the loaded artifacts for the lifetime of the process. It is
// read-only after Load and safe to share without synchronization.
type Context struct {
	Preprocessor *preprocess.Transform

	// Classifier is the handle the probability engine dispatches on:
	// *gbtree.ProbabilityEnsemble or *gbtree.MarginEnsemble.
	Classifier any

	// Threshold is the decision threshold loaded for the configured model
	// key, or DefaultThreshold when the threshold artifact is unusable.
	Threshold float64
}

// Load reads all artifacts from the configured locations. featureOrder is
// the schema's column order; it is asserted against the order metadata
// embedded in the preprocessor artifact before anything is served.
func Load(cfg config.ArtifactsConfig, featureOrder []string) (*Context, error) {
	if _, err := os.Stat(cfg.PreprocessorPath); err != nil {
		return nil, eris.Wrapf(err, "artifact: preprocessor not found: %s", cfg.PreprocessorPath)
	}
	pre, err := preprocess.LoadFile(cfg.PreprocessorPath)
	if err != nil {
		return nil, err
	}
	if err := pre.AssertOrder(featureOrder); err != nil {
		return nil, err
	}

	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, eris.Wrapf(err, "artifact: model not found: %s", cfg.ModelPath)
	}
	clf, err := gbtree.Open(cfg.ModelPath)
	if err != nil {
		return nil, err
	}

	thr := LoadThreshold(cfg.ThresholdPath, cfg.ThresholdKey)

	zap.L().Info("artifacts loaded",
		zap.String("model", cfg.ModelPath),
		zap.String("preprocessor", cfg.PreprocessorPath),
		zap.Float64("threshold", thr),
	)

	return &Context{
		Preprocessor: pre,
		Classifier:   clf,
		Threshold:    thr,
	}, nil
}
