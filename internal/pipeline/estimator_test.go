package pipeline

import (
	"errors"
	"testing"

	"github.com/Harshitk-cp/mentora/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyBMI(t *testing.T) {
	tests := []struct {
		name string
		bmi  float64
		want string
	}{
		{"underweight - 17", 17, BMIUnderweight},
		{"normal boundary - 18.5", 18.5, BMINormal},
		{"normal - 22", 22, BMINormal},
		{"overweight boundary - 25", 25, BMIOverweight},
		{"overweight - 29.99", 29.99, BMIOverweight},
		{"obese boundary - 30", 30, BMIObese},
		{"obese - 41", 41, BMIObese},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyBMI(tt.bmi); got != tt.want {
				t.Errorf("ClassifyBMI(%v) = %v, want %v", tt.bmi, got, tt.want)
			}
		})
	}
}

func TestClassifyBMI_Monotonic(t *testing.T) {
	rank := map[string]int{BMIUnderweight: 0, BMINormal: 1, BMIOverweight: 2, BMIObese: 3}
	prev := -1
	for bmi := 10.0; bmi <= 50; bmi += 0.25 {
		r := rank[ClassifyBMI(bmi)]
		if r < prev {
			t.Fatalf("category rank dropped at bmi %v", bmi)
		}
		prev = r
	}
}

func TestBMICategory(t *testing.T) {
	assert.Equal(t, BMINormal, BMICategory(175, 70))
	assert.Equal(t, BMIObese, BMICategory(180, 100))
	assert.Equal(t, BMIUnderweight, BMICategory(180, 55))
	assert.Equal(t, BMINormal, BMICategory(0, 70), "unusable height falls back to Normal")
}

func TestRestingHeartRate(t *testing.T) {
	tests := []struct {
		name     string
		age      float64
		activity float64
		want     float64
	}{
		{"baseline", 30, 100, 72},
		{"young ages add nothing", 18, 100, 72},
		{"inactive", 30, 0, 87},
		{"half rounds to even down", 40, 50, 80},
		{"half rounds to even up", 50, 50, 82},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RestingHeartRate(tt.age, tt.activity))
		})
	}
}

func TestRestingHeartRate_Monotonic(t *testing.T) {
	for activity := 0.0; activity <= 100; activity += 10 {
		prev := 0.0
		for age := 1.0; age <= 120; age++ {
			hr := RestingHeartRate(age, activity)
			if hr < prev {
				t.Fatalf("heart rate decreased with age at age=%v activity=%v", age, activity)
			}
			prev = hr
		}
	}
	for age := 1.0; age <= 120; age += 7 {
		prev := RestingHeartRate(age, 0)
		for activity := 1.0; activity <= 100; activity++ {
			hr := RestingHeartRate(age, activity)
			if hr > prev {
				t.Fatalf("heart rate increased with activity at age=%v activity=%v", age, activity)
			}
			prev = hr
		}
	}
}

func TestEstimateHeartRate_Clamped(t *testing.T) {
	bounds := &Range{Min: 50, Max: 100}
	est := EstimateHeartRate("age", "activity", bounds)

	for _, age := range []float64{1, 30, 60, 120} {
		for _, activity := range []float64{0, 50, 100} {
			r := &resolution{nums: map[string]float64{"age": age, "activity": activity}}
			v, err := est(r)
			require.NoError(t, err)
			hr := v.(float64)
			assert.GreaterOrEqual(t, hr, 50.0)
			assert.LessOrEqual(t, hr, 100.0)
		}
	}

	r := &resolution{nums: map[string]float64{"age": 120, "activity": 0}}
	v, err := est(r)
	require.NoError(t, err)
	assert.Equal(t, 96.0, v, "72 + 9 + 15")

	_, err = est(&resolution{nums: map[string]float64{"age": 30}})
	assert.True(t, errors.Is(err, ErrMissingDependency))
}

func TestBloodPressure(t *testing.T) {
	tests := []struct {
		name    string
		age     float64
		bmi     string
		wantSys float64
		wantDia float64
	}{
		{"normal at 30", 30, BMINormal, 110, 70},
		{"young normal", 20, BMINormal, 110, 70},
		{"overweight at 30", 30, BMIOverweight, 115, 73},
		{"obese at 50", 50, BMIObese, 130, 82},
		{"underweight has no adjustment", 40, BMIUnderweight, 115, 73},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys, dia := BloodPressure(tt.age, tt.bmi)
			assert.Equal(t, tt.wantSys, sys)
			assert.Equal(t, tt.wantDia, dia)
		})
	}
}

func TestEstimateBloodPressure_Clamped(t *testing.T) {
	r := &resolution{
		nums:   map[string]float64{"age": 120},
		labels: map[string]string{"bmi": BMIObese},
	}
	sys, err := EstimateSystolic("age", "bmi", &Range{Min: 90, Max: 180})(r)
	require.NoError(t, err)
	dia, err := EstimateDiastolic("age", "bmi", &Range{Min: 60, Max: 110})(r)
	require.NoError(t, err)
	assert.Equal(t, 165.0, sys)
	assert.Equal(t, 103.0, dia)

	// Without a resolved BMI label the estimate assumes Normal.
	r = &resolution{nums: map[string]float64{"age": 30}}
	sys, err = EstimateSystolic("age", "bmi", nil)(r)
	require.NoError(t, err)
	assert.Equal(t, 110.0, sys)
}

func TestDailyStepsForActivity(t *testing.T) {
	tests := []struct {
		activity float64
		want     float64
	}{
		{100, 12000}, {80, 12000}, {79, 9000}, {60, 9000},
		{45, 6500}, {40, 6500}, {20, 4000}, {19.9, 2500}, {0, 2500},
	}
	for _, tt := range tests {
		if got := DailyStepsForActivity(tt.activity); got != tt.want {
			t.Errorf("DailyStepsForActivity(%v) = %v, want %v", tt.activity, got, tt.want)
		}
	}
}

func TestDerivedRatios(t *testing.T) {
	assert.Equal(t, 1.125, SleepEfficiency(9, 8))
	assert.Equal(t, 0.0, SleepEfficiency(9, 0))
	assert.Equal(t, 7.0, ActivityStepsRatio(70, 10000))
	assert.Equal(t, 0.0, ActivityStepsRatio(70, 0))
	assert.Equal(t, 8.625, BPProduct(115, 75))
}

func TestCaffeineIntake(t *testing.T) {
	drinks := []Drink{{Type: "Coffee", Quantity: 2}, {Type: "Tea", Quantity: 1}}
	assert.Equal(t, 237.0, ServiceCaffeine.Intake(drinks))
	assert.Equal(t, 237.0, CLICaffeine.Intake(drinks))

	soda := []Drink{{Type: "Soda", Quantity: 1}}
	assert.Equal(t, 34.0, ServiceCaffeine.Intake(soda))
	assert.Equal(t, 40.0, CLICaffeine.Intake(soda))

	assert.Equal(t, 0.0, ServiceCaffeine.Intake([]Drink{{Type: "Kombucha", Quantity: 3}}))
	assert.Equal(t, 0.0, CLICaffeine.Intake([]Drink{{Type: "Espresso", Quantity: 1}}))
}

func TestParseDrinks(t *testing.T) {
	t.Run("decoded json list", func(t *testing.T) {
		raw := []any{
			map[string]any{"type": "Coffee", "quantity": 2.0},
			"not a drink",
			map[string]any{"type": "Tea", "quantity": "1"},
			map[string]any{"type": "Soda"},
		}
		drinks, err := ParseDrinks("drinks", raw)
		require.NoError(t, err)
		assert.Equal(t, []Drink{{"Coffee", 2}, {"Tea", 1}, {"Soda", 0}}, drinks)
	})

	t.Run("bad quantity", func(t *testing.T) {
		_, err := ParseDrinks("drinks", []any{map[string]any{"type": "Coffee", "quantity": "lots"}})
		var fe *domain.FieldError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, domain.FieldInvalidType, fe.Kind)
	})

	t.Run("negative quantity", func(t *testing.T) {
		_, err := ParseDrinks("drinks", []any{map[string]any{"type": "Coffee", "quantity": -1}})
		var fe *domain.FieldError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, domain.FieldOutOfRange, fe.Kind)
	})

	t.Run("not a list", func(t *testing.T) {
		_, err := ParseDrinks("drinks", "coffee")
		var fe *domain.FieldError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, "drinks", fe.Field)
	})
}

func TestEstimateCaffeine(t *testing.T) {
	est := EstimateCaffeine("drinks", ServiceCaffeine)

	r := &resolution{raw: domain.Questionnaire{"drinks": []any{
		map[string]any{"type": "Coffee", "quantity": 2},
		map[string]any{"type": "Tea", "quantity": 1},
	}}}
	v, err := est(r)
	require.NoError(t, err)
	assert.Equal(t, 237.0, v)

	v, err = est(&resolution{raw: domain.Questionnaire{}})
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)
}
