// Package schema defines the fixed ten-field feature schema that drives both
// the input form and the column order fed to the preprocessor. The order of
// the embedded feature list is the single source of truth for that column
// order; the artifact loader asserts it against the order metadata carried by
// the preprocessor artifact at startup.
package schema

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/caremetrics/stress-screen/internal/model"
)

//go:embed schema.yaml
var schemaYAML []byte

// Kind tags a field as numerical or categorical.
type Kind string

const (
	Numerical   Kind = "numerical"
	Categorical Kind = "categorical"
)

// Field describes one feature: its kind, display label, and either numeric
// bounds or a categorical option set with value labels.
type Field struct {
	Name  string `yaml:"name"`
	Kind  Kind   `yaml:"kind"`
	Label string `yaml:"label"`
	Unit  string `yaml:"unit"`

	// Numerical fields.
	Min     float64 `yaml:"min"`
	Max     float64 `yaml:"max"`
	Default float64 `yaml:"default"`

	// Categorical fields: either an explicit enumeration or a closed
	// integer range [lo, hi].
	Options []int          `yaml:"options"`
	Range   []int          `yaml:"range"`
	Values  map[int]string `yaml:"values"`
}

// OptionValues expands the field's option set into concrete values.
func (f Field) OptionValues() []int {
	if len(f.Options) > 0 {
		return f.Options
	}
	if len(f.Range) == 2 {
		vals := make([]int, 0, f.Range[1]-f.Range[0]+1)
		for v := f.Range[0]; v <= f.Range[1]; v++ {
			vals = append(vals, v)
		}
		return vals
	}
	return []int{0, 1}
}

// Schema is the ordered, immutable feature list.
type Schema struct {
	Fields []Field
	index  map[string]int
}

type schemaFile struct {
	Features []Field `yaml:"features"`
}

// Load parses the embedded schema definition.
func Load() (*Schema, error) {
	var f schemaFile
	if err := yaml.Unmarshal(schemaYAML, &f); err != nil {
		return nil, eris.Wrap(err, "schema: parse embedded schema")
	}
	if len(f.Features) == 0 {
		return nil, eris.New("schema: embedded schema has no features")
	}

	s := &Schema{
		Fields: f.Features,
		index:  make(map[string]int, len(f.Features)),
	}
	for i, fld := range f.Features {
		if fld.Name == "" {
			return nil, eris.Errorf("schema: feature %d has no name", i)
		}
		if fld.Kind != Numerical && fld.Kind != Categorical {
			return nil, eris.Errorf("schema: feature %q has unknown kind %q", fld.Name, fld.Kind)
		}
		if _, dup := s.index[fld.Name]; dup {
			return nil, eris.Errorf("schema: duplicate feature %q", fld.Name)
		}
		s.index[fld.Name] = i
	}
	return s, nil
}

// MustLoad is Load for callers that treat a broken embedded schema as a
// programming error (tests, package wiring).
func MustLoad() *Schema {
	s, err := Load()
	if err != nil {
		panic(err)
	}
	return s
}

// FeatureOrder returns the feature names in schema order.
func (s *Schema) FeatureOrder() []string {
	order := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		order[i] = f.Name
	}
	return order
}

// Field looks up a field by name.
func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.Fields[i], true
}

// BuildRecord assembles a single record from the supplied values, arranging
// them in schema order regardless of the map's insertion order. Every field
// must be present: partial records are rejected with an error naming each
// missing feature, never silently defaulted.
func (s *Schema) BuildRecord(in map[string]float64) (model.Record, error) {
	var missing []string
	for _, f := range s.Fields {
		if _, ok := in[f.Name]; !ok {
			missing = append(missing, f.Name)
		}
	}
	if len(missing) > 0 {
		return model.Record{}, eris.Errorf("schema: missing required features: [%s]", strings.Join(missing, " "))
	}

	rec := model.Record{
		Features: make(map[string]float64, len(s.Fields)),
		Order:    s.FeatureOrder(),
		Ordered:  make([]float64, len(s.Fields)),
	}
	for i, f := range s.Fields {
		rec.Features[f.Name] = in[f.Name]
		rec.Ordered[i] = in[f.Name]
	}
	return rec, nil
}

// Validate checks one value against the field's declared bounds or option
// set. The form enforces these at capture time; the JSON API goes through
// here.
func (s *Schema) Validate(name string, v float64) error {
	f, ok := s.Field(name)
	if !ok {
		return eris.Errorf("schema: unknown feature %q", name)
	}
	switch f.Kind {
	case Numerical:
		if v < f.Min || v > f.Max {
			return eris.Errorf("schema: %s=%v out of range [%v, %v]", name, v, f.Min, f.Max)
		}
	case Categorical:
		iv := int(v)
		if float64(iv) != v {
			return eris.Errorf("schema: %s=%v is not an integer option", name, v)
		}
		for _, opt := range f.OptionValues() {
			if opt == iv {
				return nil
			}
		}
		return eris.Errorf("schema: %s=%d is not a declared option", name, iv)
	}
	return nil
}

// DisplayLabel returns the human label for a feature, falling back to the
// raw name for unknown features.
func (s *Schema) DisplayLabel(name string) string {
	if f, ok := s.Field(name); ok {
		return f.Label
	}
	return name
}

// DisplayValue renders a raw value for display: mapped through the value
// label table where one applies ("1 - Urban"), unit-suffixed where a unit is
// declared ("12 hours"), plain otherwise.
func (s *Schema) DisplayValue(name string, v float64) string {
	f, ok := s.Field(name)
	if !ok {
		return formatNumber(v)
	}
	if len(f.Values) > 0 {
		iv := int(v)
		if float64(iv) == v {
			if label, ok := f.Values[iv]; ok {
				return fmt.Sprintf("%d - %s", iv, label)
			}
		}
	}
	if f.Unit != "" {
		return formatNumber(v) + " " + f.Unit
	}
	return formatNumber(v)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
