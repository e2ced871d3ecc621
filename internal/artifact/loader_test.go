package artifact

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caremetrics/stress-screen/internal/config"
	"github.com/caremetrics/stress-screen/internal/gbtree"
)

const testPreprocessor = `{
	"columns": ["daydurG", "healthR"],
	"standardize": {"daydurG": {"mean": 10, "scale": 4}}
}`

const testModel = `{
	"objective": "binary:logistic",
	"base_score": 0,
	"num_features": 2,
	"trees": [{"nodes": [
		{"feature": 0, "threshold": 0.5, "left": 1, "right": 2},
		{"feature": -1, "value": -0.4, "cover": 10},
		{"feature": -1, "value": 0.4, "cover": 10}
	]}]
}`

func writeArtifacts(t *testing.T) config.ArtifactsConfig {
	t.Helper()
	dir := t.TempDir()

	cfg := config.ArtifactsConfig{
		ModelPath:        filepath.Join(dir, "xgboost.json"),
		PreprocessorPath: filepath.Join(dir, "preprocessor.json"),
		ThresholdPath:    filepath.Join(dir, "best_thresholds.json"),
		ThresholdKey:     "XGBoost",
	}
	require.NoError(t, os.WriteFile(cfg.PreprocessorPath, []byte(testPreprocessor), 0o644))
	require.NoError(t, os.WriteFile(cfg.ModelPath, []byte(testModel), 0o644))
	require.NoError(t, os.WriteFile(cfg.ThresholdPath, []byte(`{"XGBoost": 0.42}`), 0o644))
	return cfg
}

func TestLoad_Success(t *testing.T) {
	cfg := writeArtifacts(t)

	ctx, err := Load(cfg, []string{"daydurG", "healthR"})
	require.NoError(t, err)

	assert.NotNil(t, ctx.Preprocessor)
	assert.IsType(t, &gbtree.ProbabilityEnsemble{}, ctx.Classifier)
	assert.InDelta(t, 0.42, ctx.Threshold, 1e-9)
}

func TestLoad_MissingThresholdIsRecoverable(t *testing.T) {
	cfg := writeArtifacts(t)
	require.NoError(t, os.Remove(cfg.ThresholdPath))

	ctx, err := Load(cfg, []string{"daydurG", "healthR"})
	require.NoError(t, err)
	assert.InDelta(t, DefaultThreshold, ctx.Threshold, 1e-9)
}

func TestLoad_MissingPreprocessorIsFatal(t *testing.T) {
	cfg := writeArtifacts(t)
	require.NoError(t, os.Remove(cfg.PreprocessorPath))

	_, err := Load(cfg, []string{"daydurG", "healthR"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "preprocessor not found")
}

func TestLoad_MissingModelIsFatal(t *testing.T) {
	cfg := writeArtifacts(t)
	require.NoError(t, os.Remove(cfg.ModelPath))

	_, err := Load(cfg, []string{"daydurG", "healthR"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not found")
}

func TestLoad_OrderMismatchIsFatal(t *testing.T) {
	cfg := writeArtifacts(t)

	_, err := Load(cfg, []string{"healthR", "daydurG"})
	require.Error(t, err)
}
