// Package preprocess applies the fitted column transform that maps a raw
// record into the numeric vector the classifier was trained on.
package preprocess

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"

	"github.com/caremetrics/stress-screen/internal/model"
)

// Scaler holds the fitted standardization parameters for one numeric column.
type Scaler struct {
	Mean  float64 `json:"mean"`
	Scale float64 `json:"scale"`
}

// Transform is the serialized fitted preprocessor. Columns carries the exact
// order the transform was fitted on; categorical columns without a Scaler
// entry pass through unchanged.
type Transform struct {
	Columns     []string          `json:"columns"`
	Standardize map[string]Scaler `json:"standardize"`
}

// LoadFile reads a serialized Transform from disk.
func LoadFile(path string) (*Transform, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "preprocess: read transform %s", path)
	}
	var t Transform
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, eris.Wrapf(err, "preprocess: parse transform %s", path)
	}
	if len(t.Columns) == 0 {
		return nil, eris.Errorf("preprocess: transform %s declares no columns", path)
	}
	return &t, nil
}

// AssertOrder compares the transform's embedded column order against the
// schema's feature order. The two were fitted together; a mismatch would
// silently corrupt every prediction, so it is a startup failure.
func (t *Transform) AssertOrder(order []string) error {
	if len(t.Columns) != len(order) {
		return eris.Errorf("preprocess: transform has %d columns, schema has %d features",
			len(t.Columns), len(order))
	}
	for i, col := range t.Columns {
		if col != order[i] {
			return eris.Errorf("preprocess: column %d is %q in transform but %q in schema",
				i, col, order[i])
		}
	}
	return nil
}

// Apply transforms one record into the model-space vector: numeric columns
// are standardized with their fitted mean/scale, categoricals pass through.
func (t *Transform) Apply(rec model.Record) ([]float64, error) {
	out := make([]float64, len(t.Columns))
	for i, col := range t.Columns {
		v, ok := rec.Features[col]
		if !ok {
			return nil, eris.Errorf("preprocess: record is missing column %q", col)
		}
		if sc, fitted := t.Standardize[col]; fitted {
			scale := sc.Scale
			if scale == 0 {
				scale = 1
			}
			v = (v - sc.Mean) / scale
		}
		out[i] = v
	}
	return out, nil
}
