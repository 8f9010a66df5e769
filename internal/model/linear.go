package model

import (
	"fmt"
	"math"

	"github.com/Harshitk-cp/mentora/internal/domain"
)

// Kind names the estimator family a trained model was exported from.
type Kind string

const (
	KindLinearRegression   Kind = "linear_regression"
	KindLogisticRegression Kind = "logistic_regression"
	KindLinearSVC          Kind = "linear_svc"
)

// linear holds one decision row per output: weights·x + intercept.
type linear struct {
	weights    [][]float64
	intercepts []float64
}

func newLinear(weights [][]float64, intercepts []float64) (linear, error) {
	if len(weights) == 0 {
		return linear{}, fmt.Errorf("no weight rows")
	}
	if len(intercepts) != len(weights) {
		return linear{}, fmt.Errorf("%d weight rows but %d intercepts", len(weights), len(intercepts))
	}
	width := len(weights[0])
	if width == 0 {
		return linear{}, fmt.Errorf("empty weight row")
	}
	for i, row := range weights {
		if len(row) != width {
			return linear{}, fmt.Errorf("weight row %d has %d coefficients, want %d", i, len(row), width)
		}
	}
	return linear{weights: weights, intercepts: intercepts}, nil
}

func (l linear) width() int {
	return len(l.weights[0])
}

func (l linear) decision(x []float64) ([]float64, error) {
	if len(x) != l.width() {
		return nil, fmt.Errorf("got %d features, model expects %d", len(x), l.width())
	}
	out := make([]float64, len(l.weights))
	for i, row := range l.weights {
		s := l.intercepts[i]
		for j, w := range row {
			s += w * x[j]
		}
		out[i] = s
	}
	return out, nil
}

// Regressor predicts a continuous score.
type Regressor struct {
	linear
}

func NewRegressor(weights []float64, intercept float64) (*Regressor, error) {
	l, err := newLinear([][]float64{weights}, []float64{intercept})
	if err != nil {
		return nil, err
	}
	return &Regressor{linear: l}, nil
}

func (r *Regressor) Predict(x []float64) (domain.ModelOutput, error) {
	d, err := r.decision(x)
	if err != nil {
		return domain.ModelOutput{}, err
	}
	return domain.ModelOutput{Score: d[0]}, nil
}

// ProbabilisticClassifier is a logistic model. A single decision row over two
// classes is the binary form and uses the sigmoid; otherwise each class has
// its own row and probabilities come from the softmax.
type ProbabilisticClassifier struct {
	linear
	classes []string
}

func NewProbabilisticClassifier(classes []string, weights [][]float64, intercepts []float64) (*ProbabilisticClassifier, error) {
	l, err := newLinear(weights, intercepts)
	if err != nil {
		return nil, err
	}
	if err := checkClasses(classes, len(weights)); err != nil {
		return nil, err
	}
	return &ProbabilisticClassifier{linear: l, classes: classes}, nil
}

func (c *ProbabilisticClassifier) Predict(x []float64) (domain.ModelOutput, error) {
	d, err := c.decision(x)
	if err != nil {
		return domain.ModelOutput{}, err
	}

	probs := make([]float64, len(c.classes))
	if len(d) == 1 {
		p := sigmoid(d[0])
		probs[0], probs[1] = 1-p, p
	} else {
		softmax(d, probs)
	}

	best := 0
	out := make(map[string]float64, len(c.classes))
	for i, class := range c.classes {
		out[class] = probs[i]
		if probs[i] > probs[best] {
			best = i
		}
	}
	return domain.ModelOutput{Label: c.classes[best], Classes: c.classes, Probabilities: out}, nil
}

// LabelClassifier is a linear support vector classifier. It has no
// probability capability.
type LabelClassifier struct {
	linear
	classes []string
}

func NewLabelClassifier(classes []string, weights [][]float64, intercepts []float64) (*LabelClassifier, error) {
	l, err := newLinear(weights, intercepts)
	if err != nil {
		return nil, err
	}
	if err := checkClasses(classes, len(weights)); err != nil {
		return nil, err
	}
	return &LabelClassifier{linear: l, classes: classes}, nil
}

func (c *LabelClassifier) Predict(x []float64) (domain.ModelOutput, error) {
	d, err := c.decision(x)
	if err != nil {
		return domain.ModelOutput{}, err
	}
	if len(d) == 1 {
		label := c.classes[0]
		if d[0] > 0 {
			label = c.classes[1]
		}
		return domain.ModelOutput{Label: label, Classes: c.classes}, nil
	}
	return domain.ModelOutput{Label: c.classes[argmax(d)], Classes: c.classes}, nil
}

// checkClasses accepts either one row for two classes or one row per class.
func checkClasses(classes []string, rows int) error {
	if len(classes) < 2 {
		return fmt.Errorf("classifier needs at least two classes")
	}
	seen := make(map[string]bool, len(classes))
	for _, c := range classes {
		if seen[c] {
			return fmt.Errorf("duplicate class %q", c)
		}
		seen[c] = true
	}
	if rows == 1 && len(classes) == 2 {
		return nil
	}
	if rows != len(classes) {
		return fmt.Errorf("%d weight rows for %d classes", rows, len(classes))
	}
	return nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func softmax(z, out []float64) {
	m := z[argmax(z)]
	var sum float64
	for i, v := range z {
		out[i] = math.Exp(v - m)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
}

func argmax(v []float64) int {
	best := 0
	for i := range v {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}
