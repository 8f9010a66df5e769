package service

import (
	"fmt"
	"maps"

	"github.com/Harshitk-cp/mentora/internal/domain"
	"github.com/Harshitk-cp/mentora/internal/model"
	"github.com/Harshitk-cp/mentora/internal/pipeline"
)

type Variant string

const (
	VariantAPI Variant = "api"
	VariantCLI Variant = "cli"
)

// Definition is everything that distinguishes one prediction service from
// another. The pipeline code is shared; only definitions differ.
type Definition struct {
	Service domain.ServiceName
	Variant Variant
	// Bundle is the artifact name under the artifacts directory.
	Bundle string
	Schema *pipeline.Schema
	// Vocabulary holds fixed category codes. Trained encoders in the bundle
	// take precedence column by column.
	Vocabulary map[string]map[string]int
	Targets    []pipeline.Target
	// Primary names the target whose score and category are stored for
	// history filtering and stats.
	Primary string
	Rules   []pipeline.Rule
	Policy  pipeline.Policy

	Interpret func(f pipeline.Facts) string
	Insights  func(f pipeline.Facts, recommendations []string) map[string]any

	RequireUser           bool
	RequireProfile        bool
	RequireLocalTimestamp bool
	OncePerDay            bool

	// Tips is the general advice list shown by the CLI tips command.
	Tips []string
	// Banner is returned by the service root route.
	Banner string
}

func (d *Definition) primaryTarget() (pipeline.Target, bool) {
	for _, t := range d.Targets {
		if t.Name == d.Primary {
			return t, true
		}
	}
	return pipeline.Target{}, false
}

// Categories lists the primary target's bucket labels, lowest first, or nil
// when the primary target is a classifier.
func (d *Definition) Categories() []string {
	t, ok := d.primaryTarget()
	if !ok || t.Buckets == nil {
		return nil
	}
	return t.Buckets.Labels()
}

// Pipeline is a Definition bound to a loaded artifact bundle. It is immutable
// and shared by every request of its service.
type Pipeline struct {
	def       *Definition
	version   string
	assembler *pipeline.Assembler
	invoker   *pipeline.Invoker
	generator *pipeline.Generator
}

func NewPipeline(def *Definition, b *model.Bundle) (*Pipeline, error) {
	if _, ok := def.primaryTarget(); !ok {
		return nil, fmt.Errorf("service %s: primary target %q not declared", def.Service, def.Primary)
	}

	schema := def.Schema
	if len(b.FeatureNames) > 0 {
		ordered, err := schema.WithColumns(b.FeatureNames)
		if err != nil {
			return nil, fmt.Errorf("service %s: bind bundle %s: %w", def.Service, b.Name, err)
		}
		schema = ordered
	}

	vocab := make(map[string]map[string]int, len(def.Vocabulary)+len(b.Vocabulary))
	maps.Copy(vocab, def.Vocabulary)
	maps.Copy(vocab, b.Vocabulary)
	encoders, err := pipeline.BuildEncoders(schema, vocab)
	if err != nil {
		return nil, fmt.Errorf("service %s: %w", def.Service, err)
	}
	asm, err := pipeline.NewAssembler(schema, encoders)
	if err != nil {
		return nil, fmt.Errorf("service %s: %w", def.Service, err)
	}
	inv, err := pipeline.NewInvoker(b.Scaler, b.Models, def.Targets)
	if err != nil {
		return nil, fmt.Errorf("service %s: bind bundle %s: %w", def.Service, b.Name, err)
	}
	gen, err := pipeline.NewGenerator(def.Rules, def.Policy)
	if err != nil {
		return nil, fmt.Errorf("service %s: %w", def.Service, err)
	}
	return &Pipeline{def: def, version: b.Version, assembler: asm, invoker: inv, generator: gen}, nil
}

func (p *Pipeline) Definition() *Definition { return p.def }

func (p *Pipeline) Version() string { return p.version }

func (p *Pipeline) Schema() *pipeline.Schema { return p.assembler.Schema() }

// Outcome is one evaluated questionnaire.
type Outcome struct {
	Assembly   *pipeline.Assembly
	Assessment domain.Assessment
}

// Run assembles the questionnaire, runs every target and derives the
// interpretation, recommendations and insights. Field problems come back as
// a *domain.ValidationError.
func (p *Pipeline) Run(q domain.Questionnaire, profile *domain.Profile) (*Outcome, error) {
	asm, err := p.assembler.Assemble(q, profile)
	if err != nil {
		return nil, err
	}
	results, err := p.invoker.Invoke(asm.Vector)
	if err != nil {
		return nil, err
	}

	facts := pipeline.NewFacts(asm.Values, results)
	out := &Outcome{
		Assembly: asm,
		Assessment: domain.Assessment{
			Service:         p.def.Service,
			Results:         results,
			Recommendations: p.generator.Generate(facts),
		},
	}
	if p.def.Interpret != nil {
		out.Assessment.Interpretation = p.def.Interpret(facts)
	}
	if p.def.Insights != nil {
		out.Assessment.Insights = p.def.Insights(facts, out.Assessment.Recommendations)
	}
	return out, nil
}

// Primary returns the stored score and category for an assessment.
func (p *Pipeline) Primary(a *domain.Assessment) (*float64, string) {
	r, ok := a.Result(p.def.Primary)
	if !ok {
		return nil, ""
	}
	return r.Score, r.Category
}
