package explain

import (
	"github.com/rotisserie/eris"

	"github.com/caremetrics/stress-screen/internal/model"
	"github.com/caremetrics/stress-screen/internal/schema"
)

// Format pairs a normalized contribution vector with display labels and
// display values from the schema, producing the breakdown a waterfall
// rendering consumes. Rows come back in schema order.
func Format(s *schema.Schema, rec model.Record, values []float64, base float64) (*model.Attribution, error) {
	order := s.FeatureOrder()
	if len(values) != len(order) {
		return nil, eris.Errorf("explain: %d contributions for %d schema features",
			len(values), len(order))
	}

	rows := make([]model.AttributionRow, len(order))
	for i, name := range order {
		rows[i] = model.AttributionRow{
			Feature:      name,
			Label:        s.DisplayLabel(name),
			Display:      s.DisplayValue(name, rec.Value(name)),
			Contribution: values[i],
		}
	}
	return &model.Attribution{BaseValue: base, Rows: rows}, nil
}
