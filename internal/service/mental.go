package service

import (
	"fmt"
	"strings"

	"github.com/Harshitk-cp/mentora/internal/domain"
	"github.com/Harshitk-cp/mentora/internal/pipeline"
)

var caffeineLevels = pipeline.MustBuckets("High",
	pipeline.AtMost(200, "Low"),
	pipeline.AtMost(400, "Moderate"),
)

type mentalVariant struct {
	name     string
	profile  bool
	caffeine pipeline.CaffeineTable
}

// mentalSchema declares the lifestyle questionnaire. The API variant takes
// age and gender from the stored profile; the CLI asks for them.
func mentalSchema(v mentalVariant) *pipeline.Schema {
	age := pipeline.Field{Name: "age", Column: "Age", Kind: pipeline.Int, Range: between(1, 120), Prompt: "Age"}
	gender := pipeline.Field{Name: "gender", Column: "Gender", Kind: pipeline.Categorical, Fallback: "Other", Prompt: "Gender (Male/Female/Other)"}
	if v.profile {
		age.Profile = domain.ProfileAge
		gender.Profile = domain.ProfileGender
	} else {
		age.Required = true
		gender.Required = true
	}

	return pipeline.MustSchema(v.name,
		age,
		gender,
		pipeline.Field{Name: "sleep_hours", Column: "Sleep_Duration_hours_per_night", Kind: pipeline.Float, Required: true, Range: between(0, 24),
			Prompt: "Sleep per night (hours)"},
		pipeline.Field{Name: "sleep_quality", Column: "Sleep_Quality_1_to_10", Kind: pipeline.Float, Default: 5.0, Range: between(1, 10),
			Prompt: "Sleep quality (1-10)"},
		pipeline.Field{Name: "mood_rating", Column: "Mood_Rating_1_to_10", Kind: pipeline.Float, Required: true, Range: between(1, 10),
			Prompt: "Mood rating (1-10)"},
		pipeline.Field{Name: "stress_level", Column: "Stress_Level", Kind: pipeline.Categorical, Default: "Medium", Fallback: "Medium",
			Prompt: "Stress level (Low/Medium/High)"},
		pipeline.Field{Name: "smoking_habits", Column: "Smoking_Habits", Kind: pipeline.Categorical, Default: "Never", Fallback: "Never",
			Prompt: "Smoking habits"},
		pipeline.Field{Name: "drinking_habits", Column: "Drinking_Habits", Kind: pipeline.Categorical, Default: "Never", Fallback: "Never",
			Prompt: "Drinking habits"},
		pipeline.Field{Name: "social_interaction_level", Column: "Social_Interaction_Level", Kind: pipeline.Categorical, Default: "Medium", Fallback: "Medium",
			Prompt: "Social interaction (Low/Medium/High)"},
		pipeline.Field{Name: "screen_time", Column: "Screen_Time_hours_per_day", Kind: pipeline.Float, Default: 4.0, Range: between(0, 24),
			Prompt: "Screen time (hours per day)"},
		pipeline.Field{Name: "physical_activity", Column: "Physical_Activity_hours_per_week", Kind: pipeline.Float, Default: 3.0, Range: between(0, 168),
			Prompt: "Physical activity (hours per week)"},
		pipeline.Field{Name: "diet_quality", Column: "Diet_Quality_1_to_10", Kind: pipeline.Float, Default: 5.0, Range: between(1, 10),
			Prompt: "Diet quality (1-10)"},
		pipeline.Field{Name: "work_study_hours", Column: "Work_Study_Hours_per_day", Kind: pipeline.Float, Default: 8.0, Range: between(0, 24),
			Prompt: "Work or study (hours per day)"},
		pipeline.Field{Name: "employment_status", Column: "Employment_Status", Kind: pipeline.Categorical, Default: "Employed", Fallback: "Employed",
			Prompt: "Employment status"},
		pipeline.Field{Name: "chronic_health_issues", Column: "Chronic_Health_Issues", Kind: pipeline.Categorical, Default: "No", Fallback: "No",
			Prompt: "Chronic health issues (Yes/No)"},
		pipeline.Field{Name: "caffeine_intake_mg", Column: "Caffeine_Intake_mg_per_day", Kind: pipeline.Float, Range: between(0, 5000),
			Estimate: pipeline.EstimateCaffeine("drinks", v.caffeine),
			Prompt:   "Caffeine per day in mg (blank to skip)"},
	)
}

func mentalTargets() []pipeline.Target {
	return []pipeline.Target{
		{Name: "mental_health_status", Model: "mental_health_status", Confidence: pipeline.ConfidenceFromModel},
		{Name: "depression_level", Model: "depression_level", Confidence: pipeline.ConfidenceFromModel},
		{Name: "anxiety_presence", Model: "anxiety_presence", Confidence: pipeline.ConfidenceFromModel},
	}
}

var mentalWellness = []string{
	"Stay hydrated and drink plenty of water throughout the day.",
	"Take breaks during work or study to rest your mind and body.",
	"Maintain regular social interactions to support your emotional health.",
	"If you notice persistent changes in your mood or behavior, consider seeking professional help.",
	"Balance work, rest, and recreation to support your mental health.",
}

var mentalAPI = &Definition{
	Service: domain.ServiceMental,
	Variant: VariantAPI,
	Bundle:  "mental_health",
	Schema:  mentalSchema(mentalVariant{name: "mental_health", profile: true, caffeine: pipeline.ServiceCaffeine}),
	Targets: mentalTargets(),
	Primary: "mental_health_status",
	Rules: []pipeline.Rule{
		pipeline.If("depression", pipeline.Is("depression_level", "High", "Severe"),
			"Consider speaking to a mental health professional.",
			"Reach out to supportive friends or family members for help.",
			"Practice self-care and try to stick to a routine."),
		pipeline.If("status", pipeline.Is("mental_health_status", "At Risk", "Poor"),
			"Try reducing screen time and improving sleep quality.",
			"Set a regular sleep schedule and limit electronics before bed.",
			"Increase your daily physical activity, even a short walk helps.",
			"Eat a balanced diet rich in fruits, vegetables, and whole grains.",
			"Regularly track your mood to identify patterns and triggers."),
		pipeline.Chain("caffeine",
			pipeline.Then(pipeline.Above("caffeine_intake_mg", 400),
				"High caffeine consumption detected. Consider reducing intake."),
			pipeline.Then(pipeline.Above("caffeine_intake_mg", 300),
				"Moderate caffeine consumption. Monitor your intake."),
			pipeline.Then(pipeline.Above("caffeine_intake_mg", 200),
				"Your caffeine intake is within a moderate range. Keep it in check to avoid potential negative effects."),
		),
		pipeline.If("anxiety", pipeline.Is("anxiety_presence", "Yes"),
			"Consider stress-reduction techniques like meditation or exercise.",
			"Try deep breathing or mindfulness exercises to manage anxiety.",
			"Avoid excessive news or social media consumption if it increases your stress.",
			"Connect with others or share your feelings with someone you trust."),
		pipeline.If("wellness", pipeline.Always, mentalWellness...),
	},
	Policy:         pipeline.Policy{Min: 3, Filler: mentalWellness},
	Interpret:      mentalInterpretation,
	Insights:       caffeineInsights,
	RequireUser:    true,
	RequireProfile: true,
	Tips:           mentalWellness,
	Banner:         "Mental Health Prediction API",
}

var mentalCLI = &Definition{
	Service: domain.ServiceMental,
	Variant: VariantCLI,
	Bundle:  "mental_health",
	Schema:  mentalSchema(mentalVariant{name: "mental_health_cli", caffeine: pipeline.CLICaffeine}),
	Targets: mentalTargets(),
	Primary: "mental_health_status",
	Rules: []pipeline.Rule{
		pipeline.Chain("status",
			pipeline.Then(pipeline.Is("mental_health_status", "Poor"),
				"Prioritize self-care: Consider speaking with a mental health professional",
				"Establish routine: Consistent daily schedules can improve mental wellbeing"),
			pipeline.Then(pipeline.Is("mental_health_status", "Fair"),
				"Practice mindfulness: Try meditation or journaling for 10 minutes daily",
				"Morning sunlight: Get 15 minutes of morning sun to regulate your circadian rhythm"),
			pipeline.Otherwise(
				"Maintain healthy habits: Continue your current positive routines",
				"Community connection: Consider volunteering to strengthen social bonds"),
		),
		pipeline.Chain("depression",
			pipeline.Then(pipeline.Is("depression_level", "Moderate", "Severe"),
				"Seek professional support: Consider talking to a therapist or counselor",
				"Reach out: Contact a support line if you need immediate help"),
			pipeline.Then(pipeline.Is("depression_level", "Mild"),
				"Increase social connection: Schedule regular calls with friends or family",
				"Nature therapy: Spend 30 minutes daily in green spaces"),
		),
		pipeline.If("anxiety", pipeline.Is("anxiety_presence", "Yes"),
			"Practice 4-7-8 breathing: Inhale 4s, hold 7s, exhale 8s",
			"Worry journaling: Write down anxious thoughts each evening"),
		pipeline.If("sleep", pipeline.Under("sleep_hours", 7),
			"Sleep extension: Aim for 7-9 hours of sleep nightly"),
		pipeline.If("sleep quality", pipeline.Under("sleep_quality", 6),
			"Sleep hygiene: Keep bedroom cool/dark and avoid screens 1 hour before bed"),
		pipeline.If("activity", pipeline.Under("physical_activity", 2.5),
			"Movement matters: Aim for 30 minutes of moderate exercise 5 days/week"),
		pipeline.If("screen", pipeline.Above("screen_time", 6),
			"Digital detox: Implement screen-free periods during meals and before bed"),
		pipeline.If("caffeine", pipeline.Above("caffeine_intake_mg", 400),
			"Caffeine moderation: Limit to 2-3 cups of coffee daily, avoid after 2PM"),
		pipeline.Chain("stress",
			pipeline.Then(pipeline.Is("stress_level", "High"),
				"Stress reduction: Try progressive muscle relaxation or yoga"),
			pipeline.Then(pipeline.Is("stress_level", "Medium"),
				"Adaptogens: Consider stress-reducing herbs like ashwagandha or rhodiola"),
		),
		pipeline.If("social", pipeline.Is("social_interaction_level", "Low"),
			"Social scheduling: Plan at least two social activities per week"),
		pipeline.If("diet", pipeline.Under("diet_quality", 6),
			"Nutrient focus: Increase omega-3s (fish, walnuts) and magnesium (leafy greens)"),
	},
	Policy: pipeline.Policy{
		Min:    1,
		Filler: []string{"Great news! Your current lifestyle patterns appear well-balanced."},
	},
	Interpret: mentalInterpretation,
	Insights:  caffeineInsights,
	Tips:      mentalWellness,
}

func mentalInterpretation(f pipeline.Facts) string {
	status, _ := f.Label("mental_health_status")
	depression, _ := f.Label("depression_level")
	anxiety := "not detected"
	if a, _ := f.Label("anxiety_presence"); a == "Yes" {
		anxiety = "detected"
	}
	return fmt.Sprintf("Mental health status: %s. Depression level: %s. Anxiety %s.", status, depression, anxiety)
}

func caffeineInsights(f pipeline.Facts, recommendations []string) map[string]any {
	mg, _ := f.Number("caffeine_intake_mg")
	risks := 0
	for _, r := range recommendations {
		if strings.Contains(r, "Consider") || strings.Contains(r, "Try") {
			risks++
		}
	}
	return map[string]any{
		"caffeine_intake_mg":      mg,
		"high_caffeine_detected":  mg > 400,
		"caffeine_level":          caffeineLevels.Classify(mg),
		"risk_factors_identified": risks,
	}
}
