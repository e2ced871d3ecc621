package model

import "time"

// RiskLabel is the qualitative risk classification shown to the user.
type RiskLabel string

const (
	RiskHigh RiskLabel = "High stress risk"
	RiskLow  RiskLabel = "Low stress risk"
)

// Result is the outcome of scoring one record. It is recomputed on every
// submission and never cached across requests.
type Result struct {
	ID          string       `json:"id"`
	Probability float64      `json:"probability"`
	Threshold   float64      `json:"threshold"`
	Predicted   int          `json:"predicted"` // 1 = high risk, 0 = low risk
	RiskLabel   RiskLabel    `json:"risk_label"`
	Narrative   string       `json:"narrative"`
	Inputs      []InputEcho  `json:"inputs"`
	Attribution *Attribution `json:"attribution,omitempty"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// InputEcho is one row of the submitted-inputs table in display form.
type InputEcho struct {
	Feature string `json:"feature"`
	Value   string `json:"value"`
}

// Attribution is the per-feature contribution breakdown for one record,
// suitable for a waterfall-style rendering.
type Attribution struct {
	// BaseValue is the explainer's expected value before any feature
	// contributions are applied.
	BaseValue float64          `json:"base_value"`
	Rows      []AttributionRow `json:"rows"`
}

// AttributionRow pairs one feature's contribution with its display form.
type AttributionRow struct {
	Feature      string  `json:"feature"`
	Label        string  `json:"label"`
	Display      string  `json:"display"`
	Contribution float64 `json:"contribution"`
}
