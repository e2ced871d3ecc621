// Package model holds the shared domain types passed between the schema,
// scoring, and server layers.
package model

// Record is a single screening submission with its values arranged in the
// column order the preprocessor was fitted on. Records are built fresh per
// submission and never persisted.
type Record struct {
	// Features maps feature name to raw value as captured by the form/API.
	Features map[string]float64 `json:"features"`

	// Order is the schema column order the record was built against.
	Order []string `json:"-"`

	// Ordered holds the raw values in Order. This is what feeds the
	// preprocessor; reordering it silently corrupts predictions.
	Ordered []float64 `json:"-"`
}

// Value returns the raw value for a feature name.
func (r Record) Value(name string) float64 {
	return r.Features[name]
}
