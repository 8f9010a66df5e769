package service

import (
	"github.com/Harshitk-cp/mentora/internal/domain"
	"github.com/Harshitk-cp/mentora/internal/pipeline"
)

func between(lo, hi float64) *pipeline.Range {
	return &pipeline.Range{Min: lo, Max: hi}
}

// byCategory interprets a prediction by looking up the category of target.
func byCategory(target string, messages map[string]string) func(pipeline.Facts) string {
	return func(f pipeline.Facts) string {
		label, _ := f.Label(target)
		return messages[label]
	}
}

var definitions = []*Definition{
	stressAPI,
	stressCLI,
	academicAPI,
	academicCLI,
	mentalAPI,
	mentalCLI,
	mobileAPI,
	mobileCLI,
}

// Definitions returns every known service definition.
func Definitions() []*Definition {
	out := make([]*Definition, len(definitions))
	copy(out, definitions)
	return out
}

func Lookup(service domain.ServiceName, variant Variant) (*Definition, bool) {
	for _, d := range definitions {
		if d.Service == service && d.Variant == variant {
			return d, true
		}
	}
	return nil, false
}

// Bundles lists the distinct artifact names the given definitions need.
func Bundles(defs []*Definition) []string {
	seen := make(map[string]bool, len(defs))
	var out []string
	for _, d := range defs {
		if !seen[d.Bundle] {
			seen[d.Bundle] = true
			out = append(out, d.Bundle)
		}
	}
	return out
}
