package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSchema_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		fields []Field
	}{
		{"unnamed field", []Field{{Column: "A"}}},
		{"duplicate name", []Field{{Name: "a", Column: "A"}, {Name: "a", Column: "B"}}},
		{"duplicate column", []Field{{Name: "a", Column: "A"}, {Name: "b", Column: "A"}}},
		{"categorical without fallback", []Field{{Name: "g", Column: "G", Kind: Categorical}}},
		{"categorical not emitted", []Field{{Name: "x", Column: "X"}, {Name: "g", Kind: Categorical, Fallback: "Other"}}},
		{"optional emitted field", []Field{{Name: "a", Column: "A", Optional: true}}},
		{"nothing emitted", []Field{{Name: "a", Optional: true}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSchema("bad", tt.fields...)
			assert.Error(t, err)
		})
	}
}

func TestSchema_Accessors(t *testing.T) {
	s := testSchema(t)

	assert.Equal(t, "test", s.Name())
	assert.Equal(t, 8, s.Width())
	assert.Len(t, s.Fields(), 10)

	f, ok := s.Field("height_cm")
	require.True(t, ok)
	assert.False(t, f.Emitted())

	_, ok = s.Field("nope")
	assert.False(t, ok)

	cols := s.Columns()
	cols[0] = "mutated"
	assert.Equal(t, "Age", s.Columns()[0])
}

func TestSchema_WithColumns(t *testing.T) {
	s := testSchema(t)

	tests := []struct {
		name    string
		columns []string
	}{
		{"too few", []string{"Age"}},
		{"unknown column", []string{"Age", "Gender", "Sleep", "Activity", "HR", "BMI", "Disorder", "Nope"}},
		{"repeated column", []string{"Age", "Age", "Sleep", "Activity", "HR", "BMI", "Disorder", "Mental"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.WithColumns(tt.columns)
			assert.Error(t, err)
		})
	}
}

func TestMustSchema_Panics(t *testing.T) {
	assert.Panics(t, func() { MustSchema("bad") })
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "float", Float.String())
	assert.Equal(t, "int", Int.String())
	assert.Equal(t, "bool", Bool.String())
	assert.Equal(t, "categorical", Categorical.String())
}
