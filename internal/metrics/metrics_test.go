package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("stress", "POST", "/predict", "200"))
	RecordHTTPRequest("stress", "POST", "/predict", 200, 5*time.Millisecond)
	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("stress", "POST", "/predict", "200"))

	if after-before != 1 {
		t.Errorf("request counter moved by %v, want 1", after-before)
	}
}

func TestRecordPrediction(t *testing.T) {
	tests := []struct {
		name    string
		outcome string
	}{
		{"ok", OutcomeOK},
		{"invalid", OutcomeInvalid},
		{"unavailable", OutcomeUnavailable},
		{"duplicate", OutcomeDuplicate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := PredictionsTotal.WithLabelValues("academic", tt.outcome)
			before := testutil.ToFloat64(c)
			RecordPrediction("academic", tt.outcome, time.Millisecond)
			if got := testutil.ToFloat64(c) - before; got != 1 {
				t.Errorf("prediction counter moved by %v, want 1", got)
			}
		})
	}
}

func TestSetModelLoaded(t *testing.T) {
	SetModelLoaded("mobile_addiction", true)
	if v := testutil.ToFloat64(ModelLoaded.WithLabelValues("mobile_addiction")); v != 1 {
		t.Errorf("model_loaded = %v, want 1", v)
	}
	SetModelLoaded("mobile_addiction", false)
	if v := testutil.ToFloat64(ModelLoaded.WithLabelValues("mobile_addiction")); v != 0 {
		t.Errorf("model_loaded = %v, want 0", v)
	}
}

func TestMetricGathering(t *testing.T) {
	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer)
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, p := range problems {
		t.Errorf("lint %s: %s", p.Metric, p.Text)
	}
}
