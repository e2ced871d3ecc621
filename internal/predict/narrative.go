package predict

import (
	"fmt"

	"github.com/caremetrics/stress-screen/internal/model"
)

// Classify converts a probability and threshold into the binary label:
// 1 (high risk) when prob >= threshold, else 0. The comparison is inclusive
// on the high side, so a probability exactly at the threshold classifies as
// high.
func Classify(prob, threshold float64) int {
	if prob >= threshold {
		return 1
	}
	return 0
}

// Narrative returns the qualitative risk label and a paragraph explaining
// the classification. The paragraph reports the probability to one decimal
// place and restates the threshold used, so the result is reproducible and
// auditable independent of the UI.
func Narrative(prob, threshold float64) (model.RiskLabel, string) {
	pct := fmt.Sprintf("%.1f%%", prob*100)
	if Classify(prob, threshold) == 1 {
		text := fmt.Sprintf(
			"Predicted probability of caregiver stress is %s (>= threshold %.2f). "+
				"This screening suggests a high risk of stress.",
			pct, threshold)
		return model.RiskHigh, text
	}
	text := fmt.Sprintf(
		"Predicted probability of caregiver stress is %s (< threshold %.2f). "+
			"No immediate concern indicated by this model.",
		pct, threshold)
	return model.RiskLow, text
}
