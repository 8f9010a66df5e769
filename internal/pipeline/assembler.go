package pipeline

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Harshitk-cp/mentora/internal/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type Source string

const (
	SourceInput    Source = "input"
	SourceProfile  Source = "profile"
	SourceDefault  Source = "default"
	SourceEstimate Source = "estimate"
)

type UnknownCategory struct {
	Field    string
	Label    string
	Fallback string
}

// Assembly is the outcome of assembling one questionnaire.
type Assembly struct {
	Vector  []float64
	Columns []string
	// Values holds the resolved value of every field by name: float64 for
	// numbers, bool for flags and the submitted label for categoricals.
	Values  map[string]any
	Sources map[string]Source
	Unknown []UnknownCategory
}

// Estimated lists, sorted, the fields whose value came from an estimator.
func (a *Assembly) Estimated() []string {
	var out []string
	for name, src := range a.Sources {
		if src == SourceEstimate {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func (a *Assembly) Snapshot() map[string]any {
	out := make(map[string]any, len(a.Values))
	for k, v := range a.Values {
		out[k] = v
	}
	return out
}

// Assembler turns questionnaires into feature vectors for one schema. It is
// immutable and safe for concurrent use.
type Assembler struct {
	schema   *Schema
	encoders Encoders
}

func NewAssembler(schema *Schema, encoders Encoders) (*Assembler, error) {
	for _, f := range schema.fields {
		if f.Kind != Categorical {
			continue
		}
		if _, ok := encoders[f.key()]; !ok {
			return nil, fmt.Errorf("schema %s: no encoder for column %q", schema.name, f.key())
		}
	}
	return &Assembler{schema: schema, encoders: encoders}, nil
}

func (a *Assembler) Schema() *Schema {
	return a.schema
}

func (a *Assembler) Encoders() Encoders {
	return a.encoders
}

type resolution struct {
	raw    domain.Questionnaire
	nums   map[string]float64
	labels map[string]string
}

func (r *resolution) Number(name string) (float64, bool) {
	v, ok := r.nums[name]
	return v, ok
}

func (r *resolution) Label(name string) (string, bool) {
	v, ok := r.labels[name]
	return v, ok
}

func (r *resolution) Raw(name string) (any, bool) {
	return r.raw.Lookup(name)
}

// Assemble resolves every schema field in declaration order and emits the
// vector in trained column order. All field problems are reported together
// as a *domain.ValidationError. Unknown categorical labels are not errors;
// they are encoded as the fallback and listed in Assembly.Unknown.
func (a *Assembler) Assemble(raw domain.Questionnaire, profile *domain.Profile) (*Assembly, error) {
	res := &resolution{
		raw:    raw,
		nums:   make(map[string]float64, len(a.schema.fields)),
		labels: make(map[string]string),
	}
	asm := &Assembly{
		Values:  make(map[string]any, len(a.schema.fields)),
		Sources: make(map[string]Source, len(a.schema.fields)),
	}
	verr := &domain.ValidationError{}

	for _, f := range a.schema.fields {
		v, src, ferr := a.resolve(f, res, profile, verr.Empty())
		if ferr != nil {
			verr.Add(*ferr)
			continue
		}
		if v == nil {
			continue
		}
		switch f.Kind {
		case Categorical:
			label := v.(string)
			code, known, err := a.encoders.Encode(f.key(), label)
			if err != nil {
				return nil, err
			}
			effective := label
			if !known {
				effective = a.encoders[f.key()].Fallback()
				asm.Unknown = append(asm.Unknown, UnknownCategory{Field: f.Name, Label: label, Fallback: effective})
			}
			res.labels[f.Name] = effective
			res.nums[f.Name] = float64(code)
			asm.Values[f.Name] = label
		case Bool:
			n := v.(float64)
			res.nums[f.Name] = n
			asm.Values[f.Name] = n != 0
		default:
			n := v.(float64)
			res.nums[f.Name] = n
			asm.Values[f.Name] = n
		}
		asm.Sources[f.Name] = src
	}
	if !verr.Empty() {
		return nil, verr
	}

	asm.Columns = a.schema.Columns()
	asm.Vector = make([]float64, len(asm.Columns))
	for i, col := range asm.Columns {
		asm.Vector[i] = res.nums[a.schema.fields[a.schema.byColumn[col]].Name]
	}
	return asm, nil
}

// resolve returns a float64 or a label, or nil for an optional field left
// unresolved.
func (a *Assembler) resolve(f Field, res *resolution, profile *domain.Profile, clean bool) (any, Source, *domain.FieldError) {
	if v, ok := res.raw.Lookup(f.Name); ok {
		val, ferr := coerceField(f, v, true)
		return val, SourceInput, ferr
	}
	if f.Required {
		return nil, "", missingField(f)
	}
	if f.Profile != "" {
		if v, ok := profile.Lookup(f.Profile); ok {
			val, ferr := coerceField(f, v, true)
			return val, SourceProfile, ferr
		}
	}
	if f.Default != nil {
		val, ferr := coerceField(f, f.Default, false)
		return val, SourceDefault, ferr
	}
	if f.Estimate != nil {
		v, err := f.Estimate(res)
		if err == nil {
			val, ferr := coerceField(f, v, false)
			return val, SourceEstimate, ferr
		}
		if errors.Is(err, ErrMissingDependency) {
			if !clean {
				// An upstream field already failed; its error explains this one.
				return nil, "", nil
			}
			return nil, "", missingField(f)
		}
		var fe *domain.FieldError
		if errors.As(err, &fe) {
			return nil, "", fe
		}
		return nil, "", &domain.FieldError{Field: f.Name, Kind: domain.FieldInvalidType, Message: err.Error()}
	}
	if f.Optional {
		return nil, "", nil
	}
	return nil, "", missingField(f)
}

func coerceField(f Field, v any, checkRange bool) (any, *domain.FieldError) {
	var (
		n  float64
		ok bool
	)
	switch f.Kind {
	case Categorical:
		return toLabel(v), nil
	case Bool:
		if toBool(v) {
			return 1.0, nil
		}
		return 0.0, nil
	case Int:
		n, ok = toInt(v)
	default:
		n, ok = toFloat(v)
	}
	if !ok {
		return nil, &domain.FieldError{
			Field:   f.Name,
			Kind:    domain.FieldInvalidType,
			Message: fmt.Sprintf("%s must be a valid number", f.Name),
		}
	}
	if checkRange && !f.Range.contains(n) {
		return nil, &domain.FieldError{
			Field:   f.Name,
			Kind:    domain.FieldOutOfRange,
			Message: fmt.Sprintf("%s must be between %s and %s", f.Name, formatBound(f.Range.Min), formatBound(f.Range.Max)),
		}
	}
	return n, nil
}

func missingField(f Field) *domain.FieldError {
	return &domain.FieldError{
		Field:   f.Name,
		Kind:    domain.FieldMissing,
		Message: DisplayName(f.Name) + " is required",
	}
}

// DisplayName turns snake_case field names into title case.
func DisplayName(name string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(name, "_", " "))
}
