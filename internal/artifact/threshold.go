package artifact

import (
	"encoding/json"
	"os"

	"go.uber.org/zap"
)

// DefaultThreshold is used whenever the threshold artifact is missing,
// malformed, lacks the configured key, or carries an out-of-range value.
const DefaultThreshold = 0.5

// LoadThreshold reads the decision threshold for key from a JSON map of the
// shape {"<model-name>": <float 0..1>}. Threshold absence is recoverable:
// any failure falls back to DefaultThreshold with a warning, never an error.
func LoadThreshold(path, key string) float64 {
	data, err := os.ReadFile(path)
	if err != nil {
		zap.L().Warn("threshold file unreadable, using default",
			zap.String("path", path),
			zap.Float64("default", DefaultThreshold),
			zap.Error(err),
		)
		return DefaultThreshold
	}

	var thresholds map[string]float64
	if err := json.Unmarshal(data, &thresholds); err != nil {
		zap.L().Warn("threshold file malformed, using default",
			zap.String("path", path),
			zap.Float64("default", DefaultThreshold),
			zap.Error(err),
		)
		return DefaultThreshold
	}

	thr, ok := thresholds[key]
	if !ok {
		zap.L().Warn("threshold key absent, using default",
			zap.String("path", path),
			zap.String("key", key),
			zap.Float64("default", DefaultThreshold),
		)
		return DefaultThreshold
	}
	if thr < 0 || thr > 1 {
		zap.L().Warn("threshold out of range, using default",
			zap.String("key", key),
			zap.Float64("value", thr),
			zap.Float64("default", DefaultThreshold),
		)
		return DefaultThreshold
	}
	return thr
}
