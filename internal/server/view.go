package server

import (
	"fmt"
	"math"

	"github.com/caremetrics/stress-screen/internal/model"
	"github.com/caremetrics/stress-screen/internal/schema"
)

// pageData is the template payload for the calculator page.
type pageData struct {
	NumericFields     []fieldView
	CategoricalFields []fieldView
	Threshold         string
	ShowAttribution   bool
	Result            *resultView
	Error             string
}

type fieldView struct {
	Name    string
	Label   string
	Min     float64
	Max     float64
	Default float64
	Step    string
	Options []optionView
}

type optionView struct {
	Value int
	Label string
}

type resultView struct {
	ProbabilityPct string
	Threshold      string
	Predicted      int
	High           bool
	RiskLabel      string
	Narrative      string
	Inputs         []model.InputEcho
	BaseValue      string
	Waterfall      []waterfallRow
}

type waterfallRow struct {
	Label        string
	Display      string
	Contribution string
	WidthPct     float64
	Positive     bool
}

func buildFieldViews(s *schema.Schema) (numeric, categorical []fieldView) {
	for _, f := range s.Fields {
		switch f.Kind {
		case schema.Numerical:
			label := f.Label
			if f.Unit != "" {
				label = fmt.Sprintf("%s (%s)", label, f.Unit)
			}
			step := "0.1"
			if isInteger(f.Min) && isInteger(f.Max) && isInteger(f.Default) {
				step = "1"
			}
			numeric = append(numeric, fieldView{
				Name:    f.Name,
				Label:   label,
				Min:     f.Min,
				Max:     f.Max,
				Default: f.Default,
				Step:    step,
			})
		case schema.Categorical:
			fv := fieldView{Name: f.Name, Label: f.Label}
			for _, v := range f.OptionValues() {
				label := fmt.Sprintf("%d", v)
				if name, ok := f.Values[v]; ok {
					label = fmt.Sprintf("%d - %s", v, name)
				}
				fv.Options = append(fv.Options, optionView{Value: v, Label: label})
			}
			categorical = append(categorical, fv)
		}
	}
	return numeric, categorical
}

func buildResultView(res *model.Result) *resultView {
	rv := &resultView{
		ProbabilityPct: fmt.Sprintf("%.2f%%", res.Probability*100),
		Threshold:      fmt.Sprintf("%.2f", res.Threshold),
		Predicted:      res.Predicted,
		High:           res.Predicted == 1,
		RiskLabel:      string(res.RiskLabel),
		Narrative:      res.Narrative,
		Inputs:         res.Inputs,
	}
	if res.Attribution != nil {
		rv.BaseValue = fmt.Sprintf("%.4f", res.Attribution.BaseValue)
		rv.Waterfall = buildWaterfall(res.Attribution)
	}
	return rv
}

// buildWaterfall scales each contribution bar against the largest absolute
// contribution so the chart renders with plain CSS widths.
func buildWaterfall(attr *model.Attribution) []waterfallRow {
	var maxAbs float64
	for _, row := range attr.Rows {
		if a := math.Abs(row.Contribution); a > maxAbs {
			maxAbs = a
		}
	}
	if maxAbs == 0 {
		maxAbs = 1
	}

	rows := make([]waterfallRow, 0, len(attr.Rows))
	for _, row := range attr.Rows {
		rows = append(rows, waterfallRow{
			Label:        row.Label,
			Display:      row.Display,
			Contribution: fmt.Sprintf("%+.4f", row.Contribution),
			WidthPct:     math.Abs(row.Contribution) / maxAbs * 100,
			Positive:     row.Contribution >= 0,
		})
	}
	return rows
}

func isInteger(v float64) bool {
	return v == math.Trunc(v)
}
