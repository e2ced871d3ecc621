package artifact

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeThresholds(t *testing.T, dir, payload string) string {
	t.Helper()
	path := filepath.Join(dir, "best_thresholds.json")
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))
	return path
}

func TestLoadThreshold(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		payload string
		key     string
		missing bool
		want    float64
	}{
		{
			name:    "configured key present",
			payload: `{"XGBoost": 0.42, "LightGBM": 0.37}`,
			key:     "XGBoost",
			want:    0.42,
		},
		{
			name:    "key absent falls back",
			payload: `{"LightGBM": 0.37}`,
			key:     "XGBoost",
			want:    DefaultThreshold,
		},
		{
			name:    "malformed json falls back",
			payload: `{"XGBoost": 0.42`,
			key:     "XGBoost",
			want:    DefaultThreshold,
		},
		{
			name:    "out of range value falls back",
			payload: `{"XGBoost": 1.7}`,
			key:     "XGBoost",
			want:    DefaultThreshold,
		},
		{
			name:    "missing file falls back",
			key:     "XGBoost",
			missing: true,
			want:    DefaultThreshold,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "does-not-exist.json")
			if !tt.missing {
				path = writeThresholds(t, t.TempDir(), tt.payload)
			}
			assert.InDelta(t, tt.want, LoadThreshold(path, tt.key), 1e-9)
		})
	}
}
