package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQuestionnaireLookup(t *testing.T) {
	q := Questionnaire{"age": 30, "gender": "  ", "country": nil, "sleep": 0.0}

	v, ok := q.Lookup("age")
	assert.True(t, ok)
	assert.Equal(t, 30, v)

	_, ok = q.Lookup("sleep")
	assert.True(t, ok, "zero is an answer")

	for _, name := range []string{"gender", "country", "missing"} {
		_, ok := q.Lookup(name)
		assert.False(t, ok, name)
	}
}

func TestProfileLookup(t *testing.T) {
	var nilProfile *Profile
	_, ok := nilProfile.Lookup(ProfileAge)
	assert.False(t, ok)

	p := &Profile{UserID: "u1", Age: 33, Occupation: "Nurse"}
	v, ok := p.Lookup(ProfileAge)
	assert.True(t, ok)
	assert.Equal(t, 33, v)

	_, ok = p.Lookup(ProfileGender)
	assert.False(t, ok)

	v, ok = p.Lookup(ProfileOccupation)
	assert.True(t, ok)
	assert.Equal(t, "Nurse", v)
}

func TestRemainingStreakResets(t *testing.T) {
	now := time.Date(2025, 6, 30, 23, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		month  string
		resets int
		want   int
	}{
		{"never reset", "", 0, MonthlyStreakResets},
		{"earlier month", "2025-05", 3, MonthlyStreakResets},
		{"one used", "2025-06", 1, 2},
		{"exhausted", "2025-06", 3, 0},
		{"overused", "2025-06", 5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &User{StreakResetMonth: tt.month, StreakResetsThisMonth: tt.resets}
			assert.Equal(t, tt.want, u.RemainingStreakResets(now))
		})
	}
}

func TestValidationError(t *testing.T) {
	verr := &ValidationError{}
	assert.True(t, verr.Empty())
	assert.Equal(t, "validation failed", verr.Error())

	verr.Add(FieldError{Field: "age", Kind: FieldMissing, Message: "Age is required"})
	verr.Add(FieldError{Field: "sleep", Kind: FieldOutOfRange, Message: "sleep must be between 0 and 24"})
	assert.False(t, verr.Empty())
	assert.Equal(t, "Age is required; sleep must be between 0 and 24", verr.Error())
}

func TestServiceNameValid(t *testing.T) {
	assert.True(t, ServiceStress.Valid())
	assert.True(t, ServiceName("mobile_addiction").Valid())
	assert.False(t, ServiceName("weather").Valid())
}
