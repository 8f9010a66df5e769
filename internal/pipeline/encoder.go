package pipeline

import (
	"fmt"
	"sort"
)

// Encoder maps the trained vocabulary of one categorical column to integer
// codes. Labels outside the vocabulary resolve to the fallback label's code.
type Encoder struct {
	column   string
	codes    map[string]int
	fallback string
}

func NewEncoder(column string, codes map[string]int, fallback string) (*Encoder, error) {
	if len(codes) == 0 {
		return nil, fmt.Errorf("encoder %q: empty vocabulary", column)
	}
	if _, ok := codes[fallback]; !ok {
		return nil, fmt.Errorf("encoder %q: fallback %q is not in the vocabulary", column, fallback)
	}
	cp := make(map[string]int, len(codes))
	for k, v := range codes {
		cp[k] = v
	}
	return &Encoder{column: column, codes: cp, fallback: fallback}, nil
}

// NewLabelEncoder builds an encoder whose codes are the positions of classes,
// the convention used by label encoders at training time.
func NewLabelEncoder(column string, classes []string, fallback string) (*Encoder, error) {
	codes := make(map[string]int, len(classes))
	for i, c := range classes {
		if _, dup := codes[c]; dup {
			return nil, fmt.Errorf("encoder %q: duplicate class %q", column, c)
		}
		codes[c] = i
	}
	return NewEncoder(column, codes, fallback)
}

// Encode returns the code for label and whether label was known. Matching is
// exact and case-sensitive.
func (e *Encoder) Encode(label string) (int, bool) {
	if code, ok := e.codes[label]; ok {
		return code, true
	}
	return e.codes[e.fallback], false
}

func (e *Encoder) Fallback() string {
	return e.fallback
}

// Classes lists the vocabulary ordered by code, then label.
func (e *Encoder) Classes() []string {
	out := make([]string, 0, len(e.codes))
	for k := range e.codes {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		ci, cj := e.codes[out[i]], e.codes[out[j]]
		if ci != cj {
			return ci < cj
		}
		return out[i] < out[j]
	})
	return out
}

// Encoders is keyed by column name.
type Encoders map[string]*Encoder

func (es Encoders) Encode(column, label string) (int, bool, error) {
	e, ok := es[column]
	if !ok {
		return 0, false, fmt.Errorf("no encoder for column %q", column)
	}
	code, known := e.Encode(label)
	return code, known, nil
}

// BuildEncoders creates one encoder per categorical field of schema from the
// supplied vocabularies, using each field's fallback label.
func BuildEncoders(schema *Schema, vocab map[string]map[string]int) (Encoders, error) {
	out := make(Encoders)
	for _, f := range schema.fields {
		if f.Kind != Categorical {
			continue
		}
		key := f.key()
		codes, ok := vocab[key]
		if !ok {
			return nil, fmt.Errorf("schema %s: no vocabulary for categorical column %q", schema.name, key)
		}
		enc, err := NewEncoder(key, codes, f.Fallback)
		if err != nil {
			return nil, fmt.Errorf("schema %s: %w", schema.name, err)
		}
		out[key] = enc
	}
	return out, nil
}
