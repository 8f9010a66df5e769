package service

import (
	"fmt"

	"github.com/Harshitk-cp/mentora/internal/domain"
	"github.com/Harshitk-cp/mentora/internal/pipeline"
)

const addicted = "addicted"

func mobileSchema(name string) *pipeline.Schema {
	return pipeline.MustSchema(name,
		pipeline.Field{Name: "daily_screen_time", Column: "daily_screen_time", Kind: pipeline.Float, Required: true, Range: between(0, 24),
			Prompt: "Daily screen time (hours)"},
		pipeline.Field{Name: "app_sessions", Column: "app_sessions", Kind: pipeline.Int, Required: true, Range: between(0, 500),
			Prompt: "App sessions per day"},
		pipeline.Field{Name: "social_media_usage", Column: "social_media_usage", Kind: pipeline.Float, Required: true, Range: between(0, 24),
			Prompt: "Social media use (hours per day)"},
		pipeline.Field{Name: "gaming_time", Column: "gaming_time", Kind: pipeline.Float, Required: true, Range: between(0, 24),
			Prompt: "Gaming (hours per day)"},
		pipeline.Field{Name: "notifications", Column: "notifications", Kind: pipeline.Int, Required: true, Range: between(0, 1000),
			Prompt: "Notifications per day"},
		pipeline.Field{Name: "night_usage", Column: "night_usage", Kind: pipeline.Float, Required: true, Range: between(0, 8),
			Prompt: "Use between 10 PM and 6 AM (hours)"},
		pipeline.Field{Name: "age", Column: "age", Kind: pipeline.Int, Required: true, Range: between(10, 100),
			Prompt: "Age"},
		pipeline.Field{Name: "work_study_hours", Column: "work_study_hours", Kind: pipeline.Float, Required: true, Range: between(0, 24),
			Prompt: "Work or study (hours per day)"},
		pipeline.Field{Name: "stress_level", Column: "stress_level", Kind: pipeline.Int, Required: true, Range: between(1, 10),
			Prompt: "Stress level (1-10)"},
		pipeline.Field{Name: "apps_installed", Column: "apps_installed", Kind: pipeline.Int, Required: true, Range: between(1, 500),
			Prompt: "Apps installed"},
	)
}

var mobileFiller = []string{
	"Practice the 20-20-20 rule: every 20 minutes, look at something 20 feet away for 20 seconds",
	"Create phone-free zones in your home like the bedroom or dining area",
	"Use physical alarm clocks instead of your phone to reduce morning usage",
}

var mobileAPI = &Definition{
	Service: domain.ServiceMobile,
	Variant: VariantAPI,
	Bundle:  "mobile_addiction",
	Schema:  mobileSchema("mobile_addiction"),
	Targets: []pipeline.Target{
		{Name: "addiction_status", Model: "addiction_status", Confidence: pipeline.ConfidenceFromModel},
	},
	Primary: "addiction_status",
	Rules: []pipeline.Rule{
		pipeline.Chain("screen time",
			pipeline.Then(pipeline.Above("daily_screen_time", 8),
				"Consider reducing your daily screen time by setting app usage limits"),
			pipeline.Then(pipeline.Above("daily_screen_time", 6),
				"Try to take regular breaks from your phone throughout the day"),
		),
		pipeline.Chain("social media",
			pipeline.Then(pipeline.Above("social_media_usage", 3),
				"Limit social media usage by using app timers or scheduled breaks"),
			pipeline.Then(pipeline.Above("social_media_usage", 2),
				"Consider designating specific times for social media use"),
		),
		pipeline.If("gaming", pipeline.Above("gaming_time", 2),
			"Balance gaming with other activities like exercise or reading"),
		pipeline.Chain("notifications",
			pipeline.Then(pipeline.Above("notifications", 100),
				"Reduce notifications by turning off non-essential app alerts"),
			pipeline.Then(pipeline.Above("notifications", 50),
				"Consider grouping notifications or using 'Do Not Disturb' mode"),
		),
		pipeline.Chain("night use",
			pipeline.Then(pipeline.Above("night_usage", 2),
				"Avoid phone usage 1-2 hours before bedtime for better sleep quality"),
			pipeline.Then(pipeline.Above("night_usage", 1),
				"Try using night mode or blue light filters in the evening"),
		),
		pipeline.If("stress", pipeline.Above("stress_level", 7),
			"Consider using mindfulness apps instead of social media when stressed",
			"Take phone-free breaks during high-stress periods"),
		pipeline.If("sessions", pipeline.Above("app_sessions", 100),
			"Try batching your app usage instead of checking them frequently"),
		pipeline.Chain("status",
			pipeline.Then(pipeline.Is("addiction_status", addicted),
				"Set specific times for phone-free activities like meals or exercise",
				"Use grayscale mode to make your phone less visually appealing",
				"Keep your phone in another room while sleeping or working"),
			pipeline.Otherwise(
				"Maintain your healthy phone habits to prevent addiction",
				"Continue monitoring your usage patterns regularly"),
		),
	},
	Policy:      pipeline.Policy{Min: 3, Max: 8, Filler: mobileFiller},
	Interpret:   mobileInterpretation,
	Insights:    mobileConfidence,
	RequireUser: true,
	OncePerDay:  true,
	Tips:        mobileFiller,
	Banner:      "Mobile Usage Analysis API",
}

var mobileCLI = &Definition{
	Service: domain.ServiceMobile,
	Variant: VariantCLI,
	Bundle:  "mobile_addiction",
	Schema:  mobileSchema("mobile_addiction_cli"),
	Targets: []pipeline.Target{
		{Name: "addiction_status", Model: "addiction_status", Confidence: pipeline.ConfidenceCertain},
	},
	Primary: "addiction_status",
	Rules: []pipeline.Rule{
		pipeline.If("status", pipeline.Is("addiction_status", addicted),
			"Consider using app time limits and focus modes",
			"Set specific times for phone-free activities",
			"Avoid phone usage 1 hour before bedtime",
			"Reduce non-essential notifications",
			"Engage in more physical activities and hobbies"),
		pipeline.If("social media", pipeline.Above("social_media_usage", 3),
			"Consider reducing social media time gradually"),
		pipeline.If("night use", pipeline.Above("night_usage", 1),
			"Try using 'Do Not Disturb' mode after 9 PM"),
		pipeline.If("stress", pipeline.Above("stress_level", 6),
			"Practice stress management techniques like meditation"),
		pipeline.If("gaming", pipeline.Above("gaming_time", 2),
			"Set daily gaming time limits"),
	},
	Interpret: mobileInterpretation,
	Insights:  mobileRiskFactors,
	Tips:      mobileFiller,
}

func mobileInterpretation(f pipeline.Facts) string {
	if pipeline.Is("addiction_status", addicted)(f) {
		return "Your usage pattern shows signs of mobile phone addiction."
	}
	return "Your usage pattern does not show signs of mobile phone addiction."
}

// mobileConfidence renders the classifier confidence as a percentage, or
// N/A for label-only models.
func mobileConfidence(f pipeline.Facts, _ []string) map[string]any {
	conf := "N/A"
	if c, ok := f.Confidence("addiction_status"); ok {
		conf = fmt.Sprintf("%.1f%%", c*100)
	}
	return map[string]any{"confidence": conf}
}

type riskFactor struct {
	field     string
	threshold float64
	format    string
}

var mobileRisks = []riskFactor{
	{"daily_screen_time", 8, "High daily screen time (%.1f hours)"},
	{"social_media_usage", 4, "Excessive social media usage (%.1f hours/day)"},
	{"night_usage", 2, "High night usage (%.1f hours between 10 PM-6 AM)"},
	{"app_sessions", 100, "Very frequent app usage (%.0f sessions/day)"},
	{"notifications", 200, "High notification volume (%.0f/day)"},
	{"stress_level", 7, "High stress level (%.0f/10)"},
	{"gaming_time", 4, "Excessive gaming time (%.1f hours/day)"},
}

func mobileRiskFactors(f pipeline.Facts, _ []string) map[string]any {
	factors := make([]string, 0, len(mobileRisks))
	for _, r := range mobileRisks {
		if v, ok := f.Number(r.field); ok && v > r.threshold {
			factors = append(factors, fmt.Sprintf(r.format, v))
		}
	}
	return map[string]any{"risk_factors": factors}
}
