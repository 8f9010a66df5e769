package pipeline

import (
	"errors"
	"fmt"
	"math"

	"github.com/Harshitk-cp/mentora/internal/domain"
)

const (
	BMIUnderweight = "Underweight"
	BMINormal      = "Normal"
	BMIOverweight  = "Overweight"
	BMIObese       = "Obese"
)

// ErrMissingDependency is returned by an estimator when a field it reads has
// not been resolved.
var ErrMissingDependency = errors.New("estimator input unresolved")

// Resolved exposes the values settled so far during assembly. Raw reads the
// untouched questionnaire for inputs that are not schema fields.
type Resolved interface {
	Number(name string) (float64, bool)
	Label(name string) (string, bool)
	Raw(name string) (any, bool)
}

// Estimator derives a field value from already resolved fields. It returns a
// number for numeric fields or a label for categorical ones.
type Estimator func(r Resolved) (any, error)

func BMI(heightCM, weightKG float64) (float64, error) {
	if heightCM <= 0 || weightKG <= 0 {
		return 0, fmt.Errorf("height and weight must be positive")
	}
	m := heightCM / 100
	return weightKG / (m * m), nil
}

// ClassifyBMI bands use inclusive lower bounds: 18.5 is Normal, 25 is
// Overweight, 30 is Obese.
func ClassifyBMI(bmi float64) string {
	switch {
	case bmi < 18.5:
		return BMIUnderweight
	case bmi < 25:
		return BMINormal
	case bmi < 30:
		return BMIOverweight
	default:
		return BMIObese
	}
}

// BMICategory falls back to Normal when the measurements are unusable.
func BMICategory(heightCM, weightKG float64) string {
	bmi, err := BMI(heightCM, weightKG)
	if err != nil {
		return BMINormal
	}
	return ClassifyBMI(bmi)
}

// RestingHeartRate estimates beats per minute from age in years and a 0-100
// activity level.
func RestingHeartRate(age, activity float64) float64 {
	return roundHalfEven(72 + math.Max(0, (age-30)*0.1) + (100-activity)*0.15)
}

func bmiAdjustment(category string) float64 {
	switch category {
	case BMIOverweight:
		return 5
	case BMIObese:
		return 10
	}
	return 0
}

// BloodPressure estimates systolic and diastolic pressure in mmHg.
func BloodPressure(age float64, bmiCategory string) (systolic, diastolic float64) {
	ageAdj := math.Max(0, (age-30)*0.5)
	bmiAdj := bmiAdjustment(bmiCategory)
	systolic = roundHalfEven(110 + ageAdj + bmiAdj)
	diastolic = roundHalfEven(70 + ageAdj*0.6 + bmiAdj*0.6)
	return systolic, diastolic
}

// DailyStepsForActivity maps a 0-100 activity level to a typical step count.
func DailyStepsForActivity(activity float64) float64 {
	switch {
	case activity >= 80:
		return 12000
	case activity >= 60:
		return 9000
	case activity >= 40:
		return 6500
	case activity >= 20:
		return 4000
	default:
		return 2500
	}
}

func SleepEfficiency(quality, duration float64) float64 {
	if duration == 0 {
		return 0
	}
	return quality / duration
}

func ActivityStepsRatio(activity, steps float64) float64 {
	if steps == 0 {
		return 0
	}
	return activity / (steps / 1000)
}

func BPProduct(systolic, diastolic float64) float64 {
	return systolic * diastolic / 1000
}

// CaffeineTable is milligrams of caffeine per serving by drink type.
type CaffeineTable map[string]float64

var (
	ServiceCaffeine = CaffeineTable{
		"Coffee":       95,
		"Tea":          47,
		"Soda":         34,
		"Energy Drink": 80,
		"Green Tea":    25,
		"Black Tea":    47,
		"Espresso":     64,
	}
	CLICaffeine = CaffeineTable{
		"Coffee":       95,
		"Tea":          47,
		"Soda":         40,
		"Energy Drink": 80,
	}
)

type Drink struct {
	Type     string  `json:"type" yaml:"type"`
	Quantity float64 `json:"quantity" yaml:"quantity"`
}

// Intake sums quantity times per-serving caffeine. Unknown drink types add
// nothing.
func (t CaffeineTable) Intake(drinks []Drink) float64 {
	var total float64
	for _, d := range drinks {
		total += d.Quantity * t[d.Type]
	}
	return total
}

// ParseDrinks reads a decoded list of {type, quantity} objects. Entries that
// are not objects are skipped; a non-numeric or negative quantity is a field
// error on field.
func ParseDrinks(field string, raw any) ([]Drink, error) {
	items, ok := raw.([]any)
	if !ok {
		return nil, &domain.FieldError{Field: field, Kind: domain.FieldInvalidType, Message: field + " must be a list of drinks"}
	}
	drinks := make([]Drink, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		d := Drink{Type: toLabel(m["type"])}
		if q, present := m["quantity"]; present && q != nil {
			f, ok := toFloat(q)
			if !ok {
				return nil, &domain.FieldError{Field: field, Kind: domain.FieldInvalidType, Message: field + " quantity must be a valid number"}
			}
			if f < 0 {
				return nil, &domain.FieldError{Field: field, Kind: domain.FieldOutOfRange, Message: field + " quantity cannot be negative"}
			}
			d.Quantity = f
		}
		drinks = append(drinks, d)
	}
	return drinks, nil
}

func numbers(r Resolved, names ...string) ([]float64, error) {
	out := make([]float64, len(names))
	for i, n := range names {
		v, ok := r.Number(n)
		if !ok {
			return nil, ErrMissingDependency
		}
		out[i] = v
	}
	return out, nil
}

// EstimateBMICategory classifies optional height and weight fields, or yields
// Normal when either is absent.
func EstimateBMICategory(heightField, weightField string) Estimator {
	return func(r Resolved) (any, error) {
		h, hok := r.Number(heightField)
		w, wok := r.Number(weightField)
		if !hok || !wok {
			return BMINormal, nil
		}
		return BMICategory(h, w), nil
	}
}

func EstimateHeartRate(ageField, activityField string, bounds *Range) Estimator {
	return func(r Resolved) (any, error) {
		v, err := numbers(r, ageField, activityField)
		if err != nil {
			return nil, err
		}
		return bounds.clamp(RestingHeartRate(v[0], v[1])), nil
	}
}

func bmiLabel(r Resolved, bmiField string) string {
	if l, ok := r.Label(bmiField); ok {
		return l
	}
	return BMINormal
}

func EstimateSystolic(ageField, bmiField string, bounds *Range) Estimator {
	return func(r Resolved) (any, error) {
		v, err := numbers(r, ageField)
		if err != nil {
			return nil, err
		}
		sys, _ := BloodPressure(v[0], bmiLabel(r, bmiField))
		return bounds.clamp(sys), nil
	}
}

func EstimateDiastolic(ageField, bmiField string, bounds *Range) Estimator {
	return func(r Resolved) (any, error) {
		v, err := numbers(r, ageField)
		if err != nil {
			return nil, err
		}
		_, dia := BloodPressure(v[0], bmiLabel(r, bmiField))
		return bounds.clamp(dia), nil
	}
}

func EstimateDailySteps(activityField string) Estimator {
	return func(r Resolved) (any, error) {
		v, err := numbers(r, activityField)
		if err != nil {
			return nil, err
		}
		return DailyStepsForActivity(v[0]), nil
	}
}

// EstimateCaffeine totals the drinks list found in the raw questionnaire. No
// list means no caffeine.
func EstimateCaffeine(drinksField string, table CaffeineTable) Estimator {
	return func(r Resolved) (any, error) {
		raw, ok := r.Raw(drinksField)
		if !ok {
			return 0.0, nil
		}
		drinks, err := ParseDrinks(drinksField, raw)
		if err != nil {
			return nil, err
		}
		return table.Intake(drinks), nil
	}
}

func DeriveSleepEfficiency(qualityField, durationField string) Estimator {
	return func(r Resolved) (any, error) {
		v, err := numbers(r, qualityField, durationField)
		if err != nil {
			return nil, err
		}
		return SleepEfficiency(v[0], v[1]), nil
	}
}

func DeriveActivityStepsRatio(activityField, stepsField string) Estimator {
	return func(r Resolved) (any, error) {
		v, err := numbers(r, activityField, stepsField)
		if err != nil {
			return nil, err
		}
		return ActivityStepsRatio(v[0], v[1]), nil
	}
}

func DeriveBPProduct(systolicField, diastolicField string) Estimator {
	return func(r Resolved) (any, error) {
		v, err := numbers(r, systolicField, diastolicField)
		if err != nil {
			return nil, err
		}
		return BPProduct(v[0], v[1]), nil
	}
}
