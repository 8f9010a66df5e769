package service

import (
	"github.com/Harshitk-cp/mentora/internal/domain"
	"github.com/Harshitk-cp/mentora/internal/pipeline"
)

var bmiCodes = map[string]int{
	"Normal":        0,
	"Normal Weight": 0,
	"Overweight":    1,
	"Obese":         2,
}

var genderCodes = map[string]int{"Female": 0, "Male": 1}

var occupationStress = map[string]int{
	"Doctor":               2,
	"Nurse":                2,
	"Lawyer":               2,
	"Software Engineer":    2,
	"Teacher":              1,
	"Accountant":           1,
	"Engineer":             1,
	"Salesperson":          1,
	"Sales Representative": 1,
	"Student":              0,
}

// StressHealthTips help people who do not know their vitals. They double as
// filler recommendations.
var StressHealthTips = []string{
	"Many pharmacies offer free BP checks",
	"Home BP monitors cost $20-50",
	"Normal: around 120/80, High: 140/90+",
	"Check pulse at wrist for 15 seconds, multiply by 4",
	"Best measured when you wake up, before getting up",
	"Fitness trackers/smartwatches can track this",
	"Smartphone apps can track steps automatically",
	"Aim for 8,000-10,000 steps per day",
	"Even a 10-minute walk adds ~1,000 steps",
	"Regular checkups help track these metrics",
	"Many health apps can estimate based on lifestyle",
	"Don't worry if you don't know exact numbers!",
}

var stressRules = []pipeline.Rule{
	pipeline.If("sleep", pipeline.Under("sleep_duration", 7),
		"Improve sleep: Try to get 7-9 hours of sleep per night"),
	pipeline.If("sleep quality", pipeline.Under("quality_of_sleep", 6),
		"Sleep quality: Create a better sleep environment and bedtime routine"),
	pipeline.If("exercise", pipeline.Under("physical_activity_level", 30),
		"Exercise more: Aim for at least 30 minutes of physical activity daily"),
	pipeline.If("steps", pipeline.Under("daily_steps", 8000),
		"Walk more: Try to reach 8,000-10,000 steps per day"),
	pipeline.If("stress", pipeline.Above("stress_level", 5),
		"Stress management: Try meditation, deep breathing, or yoga",
		"Social support: Connect with friends, family, or consider counseling"),
}

var stressAPI = &Definition{
	Service: domain.ServiceStress,
	Variant: VariantAPI,
	Bundle:  "stress",
	Schema: pipeline.MustSchema("stress",
		pipeline.Field{Name: "age", Column: "Age", Kind: pipeline.Float, Profile: domain.ProfileAge, Default: 30.0, Range: between(1, 120)},
		pipeline.Field{Name: "sleep_duration", Column: "Sleep Duration", Kind: pipeline.Float, Default: 7.0, Range: between(0, 24)},
		pipeline.Field{Name: "quality_of_sleep", Column: "Quality of Sleep", Kind: pipeline.Float, Default: 7.0, Range: between(1, 10)},
		pipeline.Field{Name: "physical_activity_level", Column: "Physical Activity Level", Kind: pipeline.Float, Default: 50.0, Range: between(0, 100)},
		pipeline.Field{Name: "height_cm", Kind: pipeline.Float, Optional: true, Range: between(50, 272)},
		pipeline.Field{Name: "weight_kg", Kind: pipeline.Float, Optional: true, Range: between(2, 635)},
		pipeline.Field{Name: "bmi_category", Column: "BMI_Numeric", Kind: pipeline.Categorical, Fallback: pipeline.BMINormal,
			Estimate: pipeline.EstimateBMICategory("height_cm", "weight_kg")},
		pipeline.Field{Name: "heart_rate", Column: "Heart Rate", Kind: pipeline.Float, Range: between(30, 220),
			Estimate: pipeline.EstimateHeartRate("age", "physical_activity_level", nil)},
		pipeline.Field{Name: "daily_steps", Column: "Daily Steps", Kind: pipeline.Float, Default: 5000.0, Range: between(0, 100000)},
		pipeline.Field{Name: "systolic_bp", Column: "Systolic_BP", Kind: pipeline.Float, Range: between(60, 250),
			Estimate: pipeline.EstimateSystolic("age", "bmi_category", nil)},
		pipeline.Field{Name: "diastolic_bp", Column: "Diastolic_BP", Kind: pipeline.Float, Range: between(30, 150),
			Estimate: pipeline.EstimateDiastolic("age", "bmi_category", nil)},
		pipeline.Field{Name: "gender", Column: "Gender_Numeric", Kind: pipeline.Categorical, Profile: domain.ProfileGender,
			Default: "Female", Fallback: "Female"},
		pipeline.Field{Name: "occupation", Column: "Occupation_Stress_Level", Kind: pipeline.Categorical, Profile: domain.ProfileOccupation,
			Default: "Student", Fallback: "Student"},
		pipeline.Field{Name: "has_sleep_disorder", Column: "Has_Sleep_Disorder", Kind: pipeline.Bool, Default: false},
		pipeline.Field{Name: "sleep_efficiency", Column: "Sleep_Efficiency", Kind: pipeline.Float,
			Estimate: pipeline.DeriveSleepEfficiency("quality_of_sleep", "sleep_duration")},
		pipeline.Field{Name: "activity_to_steps_ratio", Column: "Activity_to_Steps_Ratio", Kind: pipeline.Float,
			Estimate: pipeline.DeriveActivityStepsRatio("physical_activity_level", "daily_steps")},
		pipeline.Field{Name: "bp_product", Column: "BP_Product", Kind: pipeline.Float,
			Estimate: pipeline.DeriveBPProduct("systolic_bp", "diastolic_bp")},
	),
	Vocabulary: map[string]map[string]int{
		"BMI_Numeric":             bmiCodes,
		"Gender_Numeric":          genderCodes,
		"Occupation_Stress_Level": occupationStress,
	},
	Targets: []pipeline.Target{{
		Name:       "stress_level",
		Model:      "stress_level",
		Rounding:   pipeline.RoundPlaces,
		Places:     2,
		Confidence: pipeline.ConfidenceOmitted,
		Buckets: pipeline.MustBuckets("High Stress",
			pipeline.AtMost(3, "Low Stress"),
			pipeline.AtMost(6, "Medium Stress"),
		),
	}},
	Primary: "stress_level",
	Rules:   stressRules,
	Policy:  pipeline.Policy{Min: 3, Filler: StressHealthTips},
	Interpret: byCategory("stress_level", map[string]string{
		"Low Stress":    "You're managing stress very well! Keep up the good work.",
		"Medium Stress": "Your stress level is manageable but consider some relaxation techniques.",
		"High Stress":   "Your stress level is elevated. Consider stress management strategies.",
	}),
	Insights:       stressInterval,
	RequireUser:    true,
	RequireProfile: true,
	Tips:           StressHealthTips,
	Banner:         "Welcome to the Stress Prediction API",
}

var stressCLI = &Definition{
	Service: domain.ServiceStress,
	Variant: VariantCLI,
	Bundle:  "stress_cli",
	Schema: pipeline.MustSchema("stress_cli",
		pipeline.Field{Name: "age", Kind: pipeline.Float, Default: 30.0, Range: between(15, 100),
			Prompt: "Age"},
		pipeline.Field{Name: "sleep_duration", Column: "sleep_duration", Kind: pipeline.Float, Required: true, Range: between(3, 12),
			Prompt: "Sleep duration (hours per night)"},
		pipeline.Field{Name: "quality_of_sleep", Column: "quality_of_sleep", Kind: pipeline.Float, Required: true, Range: between(1, 10),
			Prompt: "Quality of sleep (1-10)"},
		pipeline.Field{Name: "physical_activity_level", Column: "physical_activity_level", Kind: pipeline.Float, Required: true, Range: between(0, 100),
			Prompt: "Physical activity (minutes per day)"},
		pipeline.Field{Name: "height_cm", Kind: pipeline.Float, Optional: true, Range: between(50, 272),
			Prompt: "Height in cm (blank if unknown)"},
		pipeline.Field{Name: "weight_kg", Kind: pipeline.Float, Optional: true, Range: between(2, 635),
			Prompt: "Weight in kg (blank if unknown)"},
		pipeline.Field{Name: "bmi_category", Column: "bmi", Kind: pipeline.Categorical, Fallback: pipeline.BMINormal,
			Estimate: pipeline.EstimateBMICategory("height_cm", "weight_kg"),
			Prompt:   "BMI category (Normal, Overweight, Obese; blank to estimate)"},
		pipeline.Field{Name: "heart_rate", Column: "heart_rate", Kind: pipeline.Float, Range: between(40, 120),
			Estimate: pipeline.EstimateHeartRate("age", "physical_activity_level", between(50, 100)),
			Prompt:   "Resting heart rate (bpm, blank to estimate)"},
		pipeline.Field{Name: "daily_steps", Column: "daily_steps", Kind: pipeline.Float, Range: between(0, 50000),
			Estimate: pipeline.EstimateDailySteps("physical_activity_level"),
			Prompt:   "Daily steps (blank to estimate)"},
		pipeline.Field{Name: "systolic_bp", Column: "systolic_bp", Kind: pipeline.Float, Range: between(80, 200),
			Estimate: pipeline.EstimateSystolic("age", "bmi_category", between(90, 180)),
			Prompt:   "Systolic blood pressure (blank to estimate)"},
		pipeline.Field{Name: "diastolic_bp", Column: "diastolic_bp", Kind: pipeline.Float, Range: between(50, 120),
			Estimate: pipeline.EstimateDiastolic("age", "bmi_category", between(60, 110)),
			Prompt:   "Diastolic blood pressure (blank to estimate)"},
		pipeline.Field{Name: "gender", Column: "gender", Kind: pipeline.Categorical, Required: true, Fallback: "Female",
			Prompt: "Gender (Male/Female)"},
		pipeline.Field{Name: "has_sleep_disorder", Column: "has_sleep_disorder", Kind: pipeline.Bool, Default: false,
			Prompt: "Diagnosed sleep disorder? (y/n)"},
	),
	Vocabulary: map[string]map[string]int{
		"bmi":    bmiCodes,
		"gender": genderCodes,
	},
	Targets: []pipeline.Target{{
		Name:       "stress_level",
		Model:      "stress_level",
		Rounding:   pipeline.RoundPlaces,
		Places:     2,
		Confidence: pipeline.ConfidenceOmitted,
		Buckets: pipeline.MustBuckets("Very High Stress",
			pipeline.AtMost(3, "Low Stress"),
			pipeline.AtMost(5, "Moderate Stress"),
			pipeline.AtMost(7, "High Stress"),
		),
	}},
	Primary: "stress_level",
	Rules:   stressRules,
	Interpret: byCategory("stress_level", map[string]string{
		"Low Stress":       "You're managing stress very well! Keep up the good work.",
		"Moderate Stress":  "Your stress level is manageable but consider some relaxation techniques.",
		"High Stress":      "Your stress level is elevated. Consider stress management strategies.",
		"Very High Stress": "Your stress level is quite high. Consider consulting a healthcare professional.",
	}),
	Tips: StressHealthTips,
}

// stressInterval reports a one-point band around the predicted level,
// clipped to the 1-10 scale.
func stressInterval(f pipeline.Facts, _ []string) map[string]any {
	p, ok := f.Number("stress_level")
	if !ok {
		return nil
	}
	return map[string]any{
		"confidence_interval": map[string]float64{
			"lower": pipeline.RoundTo(max(1, p-0.5), 2),
			"upper": pipeline.RoundTo(min(10, p+0.5), 2),
		},
	}
}
