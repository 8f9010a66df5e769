package service

import (
	"fmt"
	"strconv"

	"github.com/Harshitk-cp/mentora/internal/domain"
	"github.com/Harshitk-cp/mentora/internal/pipeline"
)

// addictionBands classify the integer part of an addiction score.
var addictionBands = pipeline.MustBuckets("Critical",
	pipeline.AtMost(1, "Very Low"),
	pipeline.AtMost(2, "Low"),
	pipeline.AtMost(3, "Below Moderate"),
	pipeline.AtMost(4, "Moderate"),
	pipeline.AtMost(5, "Above Moderate"),
	pipeline.AtMost(6, "High"),
	pipeline.AtMost(7, "Very High"),
).Floored()

type academicRanges struct {
	age, sleep, conflicts *pipeline.Range
}

func academicSchema(name string, r academicRanges) *pipeline.Schema {
	return pipeline.MustSchema(name,
		pipeline.Field{Name: "age", Column: "age", Kind: pipeline.Float, Required: true, Range: r.age,
			Prompt: "Age"},
		pipeline.Field{Name: "gender", Column: "Gender", Kind: pipeline.Categorical, Required: true, Fallback: "Other",
			Prompt: "Gender (Male/Female/Other)"},
		pipeline.Field{Name: "academic_level", Column: "Academic_Level", Kind: pipeline.Categorical, Required: true, Fallback: "Undergraduate",
			Prompt: "Academic level (High School/Undergraduate/Graduate)"},
		pipeline.Field{Name: "country", Column: "Country", Kind: pipeline.Categorical, Required: true, Fallback: "Other",
			Prompt: "Country"},
		pipeline.Field{Name: "avg_daily_usage_hours", Column: "avg_daily_usage_hours", Kind: pipeline.Float, Required: true, Range: between(0, 24),
			Prompt: "Average daily social media use (hours)"},
		pipeline.Field{Name: "most_used_platform", Column: "Most_Used_Platform", Kind: pipeline.Categorical, Required: true, Fallback: "Other",
			Prompt: "Most used platform"},
		pipeline.Field{Name: "sleep_hours_per_night", Column: "sleep_hours_per_night", Kind: pipeline.Float, Required: true, Range: r.sleep,
			Prompt: "Sleep per night (hours)"},
		pipeline.Field{Name: "mental_health_score", Column: "mental_health_score", Kind: pipeline.Int, Required: true, Range: between(1, 10),
			Prompt: "Mental health score (1-10)"},
		pipeline.Field{Name: "relationship_status", Column: "Relationship_Status", Kind: pipeline.Categorical, Required: true, Fallback: "Single",
			Prompt: "Relationship status (Single/In Relationship/Complicated)"},
		pipeline.Field{Name: "conflicts_over_social_media", Column: "conflicts_over_social_media", Kind: pipeline.Int, Required: true, Range: r.conflicts,
			Prompt: "Conflicts over social media"},
	)
}

var academicRelabel = map[string]string{"1": "Yes", "0": "No"}

// AcademicGeneralTips is the standing advice list of the academic service.
var AcademicGeneralTips = []string{
	"Turn off non-essential notifications",
	"Keep your phone out of the bedroom",
	"Designate specific hours for social media",
	"Practice mindful scrolling - be intentional",
	"Prioritize face-to-face interactions",
	"Replace some social media time with reading",
	"Use social media breaks for physical activity",
	"Curate your feed to include positive content",
	"Journal about your social media feelings",
	"Seek support if you feel addicted",
}

var academicAPI = &Definition{
	Service: domain.ServiceAcademic,
	Variant: VariantAPI,
	Bundle:  "academic",
	Schema: academicSchema("academic", academicRanges{
		age: between(1, 120), sleep: between(0, 24), conflicts: between(0, 10),
	}),
	Targets: []pipeline.Target{
		{
			Name:       "affects_academic_performance",
			Model:      "affects_academic_performance",
			Relabel:    academicRelabel,
			Confidence: pipeline.ConfidenceOmitted,
		},
		{
			Name:       "addiction_score",
			Model:      "addiction_score",
			Rounding:   pipeline.RoundInteger,
			Confidence: pipeline.ConfidenceOmitted,
			Buckets:    addictionBands,
		},
	},
	Primary: "addiction_score",
	Rules: []pipeline.Rule{
		pipeline.Chain("academic impact",
			pipeline.Then(pipeline.Is("affects_academic_performance", "Yes"),
				"Create a dedicated study schedule and stick to it",
				"Use apps like Forest or Focus@Will to minimize distractions during study time",
				"Turn off social media notifications during study sessions"),
			pipeline.Otherwise(
				"Great job managing your social media and academics! Maintain this balance",
				"Periodically review your social media usage to ensure it stays productive"),
		),
		pipeline.Chain("addiction",
			pipeline.Then(pipeline.AtLeast("addiction_score", 7),
				"Consider a digital detox - start with one screen-free day per week",
				"Set strict daily time limits for social media using app timers",
				"Practice mindfulness when you feel the urge to check social media",
				"Seek professional help if you feel social media is controlling your life"),
			pipeline.Then(pipeline.AtLeast("addiction_score", 4),
				"Track your social media usage with built-in phone features or apps like Moment",
				"Establish a 'no screens' policy 1 hour before bedtime",
				"Replace some social media time with physical activities or hobbies"),
			pipeline.Otherwise(
				"You're maintaining healthy social media habits - keep it up!",
				"Occasionally audit your following list to ensure quality content"),
		),
		pipeline.If("sleep", pipeline.Under("sleep_hours_per_night", 7),
			"Improve sleep quality by avoiding screens 1 hour before bed",
			"Create a consistent bedtime routine to ensure 7-9 hours of sleep"),
		pipeline.If("mental health", pipeline.NoMoreThan("mental_health_score", 4),
			"Take regular breaks from social media for mental wellness",
			"Talk to a counselor if social media negatively affects your mood",
			"Follow accounts that promote positivity and unfollow toxic ones"),
		pipeline.If("usage", pipeline.Above("avg_daily_usage_hours", 4),
			"Reduce usage gradually - try decreasing by 30 minutes each day",
			"Designate tech-free zones in your home (e.g., bedroom, dining table)"),
		pipeline.If("conflicts", pipeline.AtLeast("conflicts_over_social_media", 5),
			"Have open conversations with loved ones about social media boundaries",
			"Practice digital empathy - consider how your posts might affect others"),
	},
	Policy: pipeline.Policy{
		Min: 3,
		Max: 5,
		Filler: []string{
			"Schedule regular digital breaks throughout your day",
			"Set specific times for checking social media instead of constant scrolling",
			"Turn off non-essential notifications",
		},
	},
	Interpret:             academicInterpretation,
	Insights:              academicBreakdown,
	RequireLocalTimestamp: true,
	Tips:                  AcademicGeneralTips,
	Banner:                "Academic Performance Prediction API",
}

var academicCLI = &Definition{
	Service: domain.ServiceAcademic,
	Variant: VariantCLI,
	Bundle:  "academic",
	Schema: academicSchema("academic_cli", academicRanges{
		age: between(13, 100), sleep: between(3, 12), conflicts: between(1, 10),
	}),
	Targets: []pipeline.Target{
		{
			Name:       "affects_academic_performance",
			Model:      "affects_academic_performance",
			Relabel:    academicRelabel,
			Confidence: pipeline.ConfidenceFromModel,
		},
		{
			Name:       "addiction_score",
			Model:      "addiction_score",
			Rounding:   pipeline.RoundPlaces,
			Places:     2,
			Confidence: pipeline.ConfidenceOmitted,
			Buckets:    addictionBands,
		},
	},
	Primary: "addiction_score",
	Rules: []pipeline.Rule{
		pipeline.If("usage", pipeline.Above("avg_daily_usage_hours", 6),
			"Reduce daily social media usage to under 4 hours",
			"Set specific times for social media check-ins",
			"Use app timers to limit usage"),
		pipeline.If("sleep", pipeline.Under("sleep_hours_per_night", 7),
			"Aim for 7-9 hours of sleep per night",
			"Avoid screens 1 hour before bedtime"),
		pipeline.If("mental health", pipeline.NoMoreThan("mental_health_score", 5),
			"Practice mindfulness and meditation",
			"Consider talking to a counselor or therapist",
			"Engage in regular physical exercise"),
		pipeline.If("conflicts", pipeline.AtLeast("conflicts_over_social_media", 6),
			"Communicate openly about social media boundaries",
			"Implement device-free time with family/friends"),
		pipeline.If("academic impact", pipeline.Is("affects_academic_performance", "Yes"),
			"Create a dedicated study environment free from distractions",
			"Use the Pomodoro technique for focused study sessions",
			"Turn off social media notifications during study time"),
		pipeline.If("addiction", pipeline.AtLeast("addiction_score", 5),
			"Set clear goals for reducing social media use",
			"Find alternative activities to replace social media time",
			"Join support groups for digital wellness"),
	},
	Policy: pipeline.Policy{
		Min:    1,
		Filler: []string{"Great job! Your social media usage appears to be well-balanced."},
	},
	Interpret: academicInterpretation,
	Insights:  academicBreakdown,
	Tips:      AcademicGeneralTips,
}

func addictionRisk(score float64) string {
	switch {
	case score >= 7:
		return "High"
	case score >= 4:
		return "Moderate"
	}
	return "Low"
}

func academicImpact(f pipeline.Facts) string {
	verb := "does not"
	if label, _ := f.Label("affects_academic_performance"); label == "Yes" {
		verb = "does"
	}
	return fmt.Sprintf("Social media %s significantly affect academic performance", verb)
}

func addictionLevel(f pipeline.Facts) string {
	score, _ := f.Number("addiction_score")
	return fmt.Sprintf("Addiction score: %s/10 - %s risk", strconv.FormatFloat(score, 'f', -1, 64), addictionRisk(score))
}

func academicInterpretation(f pipeline.Facts) string {
	return academicImpact(f) + ". " + addictionLevel(f)
}

func academicBreakdown(f pipeline.Facts, _ []string) map[string]any {
	return map[string]any{
		"academic_impact": academicImpact(f),
		"addiction_level": addictionLevel(f),
	}
}
