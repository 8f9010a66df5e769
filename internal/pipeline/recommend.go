package pipeline

import (
	"fmt"

	"github.com/Harshitk-cp/mentora/internal/domain"
)

// Facts is what recommendation rules can see: the resolved questionnaire
// values plus every model result of the prediction.
type Facts struct {
	values  map[string]any
	results map[string]domain.PredictionResult
}

func NewFacts(values map[string]any, results []domain.PredictionResult) Facts {
	f := Facts{
		values:  values,
		results: make(map[string]domain.PredictionResult, len(results)),
	}
	for _, r := range results {
		f.results[r.Target] = r
	}
	return f
}

// Number reads a numeric input, or the score of a result with that target
// name.
func (f Facts) Number(name string) (float64, bool) {
	if v, ok := f.values[name]; ok {
		switch t := v.(type) {
		case float64:
			return t, true
		case bool:
			if t {
				return 1, true
			}
			return 0, true
		}
	}
	if r, ok := f.results[name]; ok && r.Score != nil {
		return *r.Score, true
	}
	return 0, false
}

// Label reads a categorical input, or the label (category for regressors) of
// a result with that target name.
func (f Facts) Label(name string) (string, bool) {
	if v, ok := f.values[name]; ok {
		if s, isString := v.(string); isString {
			return s, true
		}
	}
	if r, ok := f.results[name]; ok {
		if r.Label != "" {
			return r.Label, true
		}
		if r.Category != "" {
			return r.Category, true
		}
	}
	return "", false
}

func (f Facts) Confidence(target string) (float64, bool) {
	r, ok := f.results[target]
	if !ok || r.Confidence == nil {
		return 0, false
	}
	return *r.Confidence, true
}

type Condition func(Facts) bool

func compare(field string, test func(float64) bool) Condition {
	return func(f Facts) bool {
		v, ok := f.Number(field)
		return ok && test(v)
	}
}

func Above(field string, threshold float64) Condition {
	return compare(field, func(v float64) bool { return v > threshold })
}

func AtLeast(field string, threshold float64) Condition {
	return compare(field, func(v float64) bool { return v >= threshold })
}

func Under(field string, threshold float64) Condition {
	return compare(field, func(v float64) bool { return v < threshold })
}

func NoMoreThan(field string, threshold float64) Condition {
	return compare(field, func(v float64) bool { return v <= threshold })
}

// Is matches when the field's label equals any of labels.
func Is(field string, labels ...string) Condition {
	return func(f Facts) bool {
		v, ok := f.Label(field)
		if !ok {
			return false
		}
		for _, l := range labels {
			if v == l {
				return true
			}
		}
		return false
	}
}

func Always(Facts) bool { return true }

type Branch struct {
	When Condition
	Tips []string
}

// Rule contributes the tips of its first matching branch, if any.
type Rule struct {
	Name     string
	Branches []Branch
}

func If(name string, when Condition, tips ...string) Rule {
	return Rule{Name: name, Branches: []Branch{{When: when, Tips: tips}}}
}

func Chain(name string, branches ...Branch) Rule {
	return Rule{Name: name, Branches: branches}
}

func Then(when Condition, tips ...string) Branch {
	return Branch{When: when, Tips: tips}
}

func Otherwise(tips ...string) Branch {
	return Branch{When: Always, Tips: tips}
}

func (r Rule) apply(f Facts) []string {
	for _, b := range r.Branches {
		if b.When(f) {
			return b.Tips
		}
	}
	return nil
}

// Policy bounds the size of a recommendation list. Max zero means no cap.
type Policy struct {
	Min    int
	Max    int
	Filler []string
}

type Generator struct {
	rules  []Rule
	policy Policy
}

func NewGenerator(rules []Rule, policy Policy) (*Generator, error) {
	if policy.Min < 0 || policy.Max < 0 {
		return nil, fmt.Errorf("recommendations: negative bounds")
	}
	if policy.Max != 0 && policy.Max < policy.Min {
		return nil, fmt.Errorf("recommendations: max %d below min %d", policy.Max, policy.Min)
	}
	distinct := make(map[string]bool, len(policy.Filler))
	for _, tip := range policy.Filler {
		distinct[tip] = true
	}
	if len(distinct) < policy.Min {
		return nil, fmt.Errorf("recommendations: %d filler tips cannot satisfy min %d", len(distinct), policy.Min)
	}
	for _, r := range rules {
		for _, b := range r.Branches {
			if b.When == nil {
				return nil, fmt.Errorf("recommendations: rule %q has a branch without a condition", r.Name)
			}
		}
	}
	cp := make([]Rule, len(rules))
	copy(cp, rules)
	return &Generator{rules: cp, policy: policy}, nil
}

func (g *Generator) Rules() []Rule {
	out := make([]Rule, len(g.rules))
	copy(out, g.rules)
	return out
}

func (g *Generator) Policy() Policy {
	return g.policy
}

// Generate evaluates every rule in order, drops repeated tips keeping the
// first occurrence, tops up from the filler list until Min and truncates to
// Max.
func (g *Generator) Generate(f Facts) []string {
	out := make([]string, 0, 8)
	seen := make(map[string]bool)
	add := func(tip string) {
		if !seen[tip] {
			seen[tip] = true
			out = append(out, tip)
		}
	}
	for _, r := range g.rules {
		for _, tip := range r.apply(f) {
			add(tip)
		}
	}
	for _, tip := range g.policy.Filler {
		if len(out) >= g.policy.Min {
			break
		}
		add(tip)
	}
	if g.policy.Max > 0 && len(out) > g.policy.Max {
		out = out[:g.policy.Max]
	}
	return out
}
