package domain

import "strings"

type FieldErrorKind string

const (
	FieldMissing     FieldErrorKind = "missing_field"
	FieldInvalidType FieldErrorKind = "invalid_type"
	FieldOutOfRange  FieldErrorKind = "out_of_range"
)

type FieldError struct {
	Field   string         `json:"field"`
	Kind    FieldErrorKind `json:"kind"`
	Message string         `json:"message"`
}

func (e *FieldError) Error() string {
	return e.Message
}

// ValidationError collects every field problem found in one request so the
// caller can fix them in a single round trip.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return strings.Join(msgs, "; ")
}

func (e *ValidationError) Add(f FieldError) {
	e.Fields = append(e.Fields, f)
}

func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}
