package pipeline

import (
	"fmt"

	"github.com/Harshitk-cp/mentora/internal/domain"
)

type Kind int

const (
	Float Kind = iota
	Int
	Bool
	Categorical
)

func (k Kind) String() string {
	switch k {
	case Float:
		return "float"
	case Int:
		return "int"
	case Bool:
		return "bool"
	case Categorical:
		return "categorical"
	}
	return "unknown"
}

type Range struct {
	Min float64
	Max float64
}

func (r *Range) contains(v float64) bool {
	return r == nil || (v >= r.Min && v <= r.Max)
}

func (r *Range) clamp(v float64) float64 {
	if r == nil {
		return v
	}
	return min(max(v, r.Min), r.Max)
}

// Field describes how one questionnaire answer resolves to a value.
//
// Resolution order is input, then profile, then Default, then Estimate.
// Required fields stop after input. A field with an empty Column is resolved
// for estimators but not emitted into the feature vector; such a field may be
// Optional, in which case it is simply left unresolved.
type Field struct {
	Name     string
	Column   string
	Kind     Kind
	Required bool
	Optional bool
	Profile  domain.ProfileKey
	Default  any
	Estimate Estimator
	Range    *Range
	Fallback string
	Prompt   string
}

func (f Field) key() string {
	if f.Column != "" {
		return f.Column
	}
	return f.Name
}

func (f Field) Emitted() bool {
	return f.Column != ""
}

// Schema is an immutable, ordered set of fields plus the column order the
// model was trained on.
type Schema struct {
	name     string
	fields   []Field
	index    map[string]int
	byColumn map[string]int
	columns  []string
}

func NewSchema(name string, fields ...Field) (*Schema, error) {
	s := &Schema{
		name:     name,
		fields:   make([]Field, len(fields)),
		index:    make(map[string]int, len(fields)),
		byColumn: make(map[string]int, len(fields)),
	}
	copy(s.fields, fields)
	for i, f := range s.fields {
		if f.Name == "" {
			return nil, fmt.Errorf("schema %s: field %d has no name", name, i)
		}
		if _, dup := s.index[f.Name]; dup {
			return nil, fmt.Errorf("schema %s: duplicate field %q", name, f.Name)
		}
		s.index[f.Name] = i
		if f.Kind == Categorical {
			if f.Fallback == "" {
				return nil, fmt.Errorf("schema %s: categorical field %q needs a fallback label", name, f.Name)
			}
			if f.Column == "" {
				return nil, fmt.Errorf("schema %s: categorical field %q must be emitted", name, f.Name)
			}
		}
		if !f.Emitted() {
			continue
		}
		if f.Optional {
			return nil, fmt.Errorf("schema %s: emitted field %q cannot be optional", name, f.Name)
		}
		if _, dup := s.byColumn[f.Column]; dup {
			return nil, fmt.Errorf("schema %s: duplicate column %q", name, f.Column)
		}
		s.byColumn[f.Column] = i
		s.columns = append(s.columns, f.Column)
	}
	if len(s.columns) == 0 {
		return nil, fmt.Errorf("schema %s: no emitted columns", name)
	}
	return s, nil
}

// MustSchema is NewSchema for package-level definitions.
func MustSchema(name string, fields ...Field) *Schema {
	s, err := NewSchema(name, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Schema) Name() string { return s.name }

func (s *Schema) Width() int { return len(s.columns) }

func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

func (s *Schema) Columns() []string {
	out := make([]string, len(s.columns))
	copy(out, s.columns)
	return out
}

func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// WithColumns returns a copy of s emitting columns in the given order. The
// order must be a permutation of the schema's own columns.
func (s *Schema) WithColumns(columns []string) (*Schema, error) {
	if len(columns) != len(s.columns) {
		return nil, fmt.Errorf("schema %s: trained on %d columns, schema declares %d", s.name, len(columns), len(s.columns))
	}
	seen := make(map[string]bool, len(columns))
	for _, c := range columns {
		if _, ok := s.byColumn[c]; !ok {
			return nil, fmt.Errorf("schema %s: trained column %q is not declared", s.name, c)
		}
		if seen[c] {
			return nil, fmt.Errorf("schema %s: trained column %q repeated", s.name, c)
		}
		seen[c] = true
	}
	cp := *s
	cp.columns = make([]string, len(columns))
	copy(cp.columns, columns)
	return &cp, nil
}
