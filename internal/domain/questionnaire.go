package domain

import "strings"

type ServiceName string

const (
	ServiceAcademic ServiceName = "academic"
	ServiceMental   ServiceName = "mental_health"
	ServiceMobile   ServiceName = "mobile_addiction"
	ServiceStress   ServiceName = "stress"
)

func (s ServiceName) Valid() bool {
	switch s {
	case ServiceAcademic, ServiceMental, ServiceMobile, ServiceStress:
		return true
	}
	return false
}

// Questionnaire is the raw answer set submitted for one prediction, keyed by
// field name. Values are whatever the transport decoded: strings, numbers,
// booleans or nested lists.
type Questionnaire map[string]any

// Lookup returns the answer for name. Nil values and blank strings count as
// not supplied.
func (q Questionnaire) Lookup(name string) (any, bool) {
	v, ok := q[name]
	if !ok || v == nil {
		return nil, false
	}
	if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
		return nil, false
	}
	return v, true
}

type ProfileKey string

const (
	ProfileAge        ProfileKey = "age"
	ProfileGender     ProfileKey = "gender"
	ProfileOccupation ProfileKey = "occupation"
)

// Profile is the subset of a stored user record that prediction schemas may
// cross-reference.
type Profile struct {
	UserID     string `json:"user_id"`
	Age        int    `json:"age,omitempty"`
	Gender     string `json:"gender,omitempty"`
	Occupation string `json:"occupation,omitempty"`
}

func (p *Profile) Lookup(key ProfileKey) (any, bool) {
	if p == nil {
		return nil, false
	}
	switch key {
	case ProfileAge:
		if p.Age > 0 {
			return p.Age, true
		}
	case ProfileGender:
		if p.Gender != "" {
			return p.Gender, true
		}
	case ProfileOccupation:
		if p.Occupation != "" {
			return p.Occupation, true
		}
	}
	return nil, false
}
