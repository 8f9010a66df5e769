package domain

import (
	"time"

	"github.com/google/uuid"
)

// PredictionResult is the normalized output of one model target.
// Classifiers fill Label, regressors fill Score.
type PredictionResult struct {
	Target        string             `json:"target"`
	Label         string             `json:"label,omitempty"`
	Score         *float64           `json:"score,omitempty"`
	Confidence    *float64           `json:"confidence,omitempty"`
	Probabilities map[string]float64 `json:"probabilities,omitempty"`
	Category      string             `json:"category,omitempty"`
}

type Assessment struct {
	Service         ServiceName        `json:"service"`
	Results         []PredictionResult `json:"results"`
	Interpretation  string             `json:"interpretation"`
	Recommendations []string           `json:"recommendations"`
	Insights        map[string]any     `json:"insights,omitempty"`
}

func (a *Assessment) Result(target string) (PredictionResult, bool) {
	for _, r := range a.Results {
		if r.Target == target {
			return r, true
		}
	}
	return PredictionResult{}, false
}

// StoredPrediction is the append-only record written after every successful
// prediction. Score and Category mirror the service's primary target so
// history can be filtered without unpacking Results.
type StoredPrediction struct {
	ID              uuid.UUID          `json:"prediction_id"`
	Service         ServiceName        `json:"service"`
	UserID          string             `json:"user_id,omitempty"`
	InputData       map[string]any     `json:"input_data"`
	Results         []PredictionResult `json:"results"`
	Score           *float64           `json:"score,omitempty"`
	Category        string             `json:"category,omitempty"`
	Interpretation  string             `json:"interpretation"`
	Recommendations []string           `json:"recommendations"`
	Insights        map[string]any     `json:"insights,omitempty"`
	LocalTimestamp  string             `json:"local_timestamp,omitempty"`
	CreatedAt       time.Time          `json:"timestamp"`
}

type HistoryFilter struct {
	Service  ServiceName
	UserID   string
	From     *time.Time
	To       *time.Time
	MinScore *float64
	MaxScore *float64
	Category string
	Oldest   bool
	Limit    int
	Offset   int
}

type PredictionStats struct {
	Total        int64            `json:"total_predictions"`
	Average      *float64         `json:"average_score"`
	Min          *float64         `json:"min_score"`
	Max          *float64         `json:"max_score"`
	Distribution map[string]int64 `json:"category_distribution"`
}
