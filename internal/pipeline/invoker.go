package pipeline

import (
	"fmt"

	"github.com/Harshitk-cp/mentora/internal/domain"
)

// ConfidenceRule decides what confidence a target reports.
type ConfidenceRule int

const (
	// ConfidenceFromModel reports the highest class probability, or nothing
	// when the model has no probability capability.
	ConfidenceFromModel ConfidenceRule = iota
	// ConfidenceCertain is ConfidenceFromModel, except label-only models
	// report 1.0 with one-hot probabilities.
	ConfidenceCertain
	ConfidenceOmitted
)

// Target binds one model of an artifact bundle to its output conventions.
type Target struct {
	Name       string
	Model      string
	Relabel    map[string]string
	Rounding   RoundMode
	Places     int32
	Confidence ConfidenceRule
	Buckets    *Buckets
}

func (t Target) relabel(label string) string {
	if v, ok := t.Relabel[label]; ok {
		return v
	}
	return label
}

// Invoker scales a feature vector once and runs every target model on it.
type Invoker struct {
	scaler  domain.Scaler
	models  map[string]domain.Model
	targets []Target
}

func NewInvoker(scaler domain.Scaler, models map[string]domain.Model, targets []Target) (*Invoker, error) {
	if len(targets) == 0 {
		return nil, fmt.Errorf("invoker: no targets")
	}
	bound := make(map[string]domain.Model, len(targets))
	for _, t := range targets {
		m, ok := models[t.Model]
		if !ok || m == nil {
			return nil, fmt.Errorf("invoker: model %q for target %q not found", t.Model, t.Name)
		}
		bound[t.Model] = m
	}
	cp := make([]Target, len(targets))
	copy(cp, targets)
	return &Invoker{scaler: scaler, models: bound, targets: cp}, nil
}

func (inv *Invoker) Targets() []Target {
	out := make([]Target, len(inv.targets))
	copy(out, inv.targets)
	return out
}

func (inv *Invoker) Invoke(vector []float64) ([]domain.PredictionResult, error) {
	x, err := scale(inv.scaler, vector)
	if err != nil {
		return nil, err
	}
	results := make([]domain.PredictionResult, 0, len(inv.targets))
	for _, t := range inv.targets {
		r, err := predict(x, inv.models[t.Model], t)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}

// Invoke runs a single model, applying scaler first when it is non-nil.
func Invoke(vector []float64, m domain.Model, scaler domain.Scaler, t Target) (domain.PredictionResult, error) {
	x, err := scale(scaler, vector)
	if err != nil {
		return domain.PredictionResult{}, err
	}
	return predict(x, m, t)
}

func scale(s domain.Scaler, vector []float64) ([]float64, error) {
	if s == nil {
		return vector, nil
	}
	x, err := s.Transform(vector)
	if err != nil {
		return nil, fmt.Errorf("scale features: %w", err)
	}
	return x, nil
}

func predict(x []float64, m domain.Model, t Target) (domain.PredictionResult, error) {
	out, err := m.Predict(x)
	if err != nil {
		return domain.PredictionResult{}, fmt.Errorf("predict %s: %w", t.Name, err)
	}

	res := domain.PredictionResult{Target: t.Name}
	if out.Label != "" {
		res.Label = t.relabel(out.Label)
		res.Category = res.Label
	} else {
		score := applyRounding(out.Score, t.Rounding, t.Places)
		res.Score = &score
		if t.Buckets != nil {
			res.Category = t.Buckets.Classify(score)
		}
	}

	if t.Confidence == ConfidenceOmitted {
		return res, nil
	}
	if out.Probabilities != nil {
		res.Probabilities = make(map[string]float64, len(out.Probabilities))
		best := 0.0
		for class, p := range out.Probabilities {
			res.Probabilities[t.relabel(class)] = p
			best = max(best, p)
		}
		res.Confidence = &best
		return res, nil
	}
	if t.Confidence == ConfidenceCertain && res.Label != "" {
		one := 1.0
		res.Confidence = &one
		res.Probabilities = make(map[string]float64, len(out.Classes))
		for _, class := range out.Classes {
			label := t.relabel(class)
			if label == res.Label {
				res.Probabilities[label] = 1
			} else {
				res.Probabilities[label] = 0
			}
		}
	}
	return res, nil
}
