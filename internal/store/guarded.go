package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Harshitk-cp/mentora/internal/domain"
	"github.com/Harshitk-cp/mentora/internal/metrics"
	"github.com/google/uuid"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

type BreakerConfig struct {
	Name string
	// Failures is how many consecutive failures open the breaker.
	Failures uint32
	// Timeout is how long the breaker stays open before a trial call.
	Timeout time.Duration
}

// Guarded puts a circuit breaker in front of a PredictionStore. While the
// breaker is open every call fails fast with ErrUnavailable, so a dead
// database costs predictions nothing but the missing record.
type Guarded struct {
	next   domain.PredictionStore
	cb     *gobreaker.CircuitBreaker[any]
	name   string
	logger *zap.Logger
}

func NewGuarded(next domain.PredictionStore, cfg BreakerConfig, logger *zap.Logger) *Guarded {
	if cfg.Failures == 0 {
		cfg.Failures = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Name == "" {
		cfg.Name = "prediction-store"
	}

	metrics.CircuitBreakerState.WithLabelValues(cfg.Name).Set(0)

	g := &Guarded{next: next, name: cfg.Name, logger: logger}
	g.cb = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.Failures
		},
		// Lookups that find nothing are answers, not outages.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("store circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})
	return g
}

func (g *Guarded) State() gobreaker.State {
	return g.cb.State()
}

func (g *Guarded) execute(fn func() (any, error)) (any, error) {
	res, err := g.cb.Execute(fn)
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(g.name, "rejected").Inc()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	case err != nil:
		metrics.CircuitBreakerRequests.WithLabelValues(g.name, "failure").Inc()
		return nil, err
	}
	metrics.CircuitBreakerRequests.WithLabelValues(g.name, "success").Inc()
	return res, nil
}

func cast[T any](res any, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	typed, ok := res.(T)
	if !ok {
		return zero, fmt.Errorf("circuit breaker: unexpected result type %T", res)
	}
	return typed, nil
}

func (g *Guarded) Create(ctx context.Context, p *domain.StoredPrediction) error {
	_, err := g.execute(func() (any, error) {
		return nil, g.next.Create(ctx, p)
	})
	return err
}

func (g *Guarded) GetByID(ctx context.Context, service domain.ServiceName, id uuid.UUID) (*domain.StoredPrediction, error) {
	return cast[*domain.StoredPrediction](g.execute(func() (any, error) {
		return g.next.GetByID(ctx, service, id)
	}))
}

type page struct {
	items []domain.StoredPrediction
	total int64
}

func (g *Guarded) List(ctx context.Context, f domain.HistoryFilter) ([]domain.StoredPrediction, int64, error) {
	p, err := cast[page](g.execute(func() (any, error) {
		items, total, err := g.next.List(ctx, f)
		return page{items: items, total: total}, err
	}))
	return p.items, p.total, err
}

func (g *Guarded) Stats(ctx context.Context, service domain.ServiceName, userID string) (*domain.PredictionStats, error) {
	return cast[*domain.PredictionStats](g.execute(func() (any, error) {
		return g.next.Stats(ctx, service, userID)
	}))
}

func (g *Guarded) LatestSince(ctx context.Context, service domain.ServiceName, userID string, since time.Time) (*domain.StoredPrediction, error) {
	return cast[*domain.StoredPrediction](g.execute(func() (any, error) {
		return g.next.LatestSince(ctx, service, userID, since)
	}))
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	}
	return -1
}
