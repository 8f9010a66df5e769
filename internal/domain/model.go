package domain

// ModelOutput is what every trained model variant returns for one feature
// vector. Probabilities is nil for variants without a probability capability.
// Classes is the classifier's label set, empty for regressors.
type ModelOutput struct {
	Label         string
	Score         float64
	Classes       []string
	Probabilities map[string]float64
}

type Model interface {
	Predict(x []float64) (ModelOutput, error)
}

type Scaler interface {
	Transform(x []float64) ([]float64, error)
}
