package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Harshitk-cp/mentora/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) *SQLiteHistory {
	t.Helper()
	h, err := NewSQLite(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })
	require.NoError(t, h.Migrate(context.Background()))
	return h
}

func saved(service domain.ServiceName, score float64, category string, at time.Time) *domain.StoredPrediction {
	return &domain.StoredPrediction{
		ID:              uuid.New(),
		Service:         service,
		InputData:       map[string]any{"sleep_duration": 7.0},
		Results:         []domain.PredictionResult{{Target: "stress_level", Score: &score, Category: category}},
		Score:           &score,
		Category:        category,
		Interpretation:  category,
		Recommendations: []string{"Take short breaks"},
		CreatedAt:       at,
	}
}

func TestSQLiteHistory_RoundTrip(t *testing.T) {
	h := newTestSQLite(t)
	ctx := context.Background()
	at := time.Date(2025, 4, 2, 8, 30, 0, 0, time.UTC)

	p := saved(domain.ServiceStress, 6.4, "High Stress", at)
	require.NoError(t, h.Create(ctx, p))

	got, err := h.GetByID(ctx, domain.ServiceStress, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, 6.4, *got.Score)
	assert.Equal(t, "High Stress", got.Category)
	assert.Equal(t, []string{"Take short breaks"}, got.Recommendations)
	assert.True(t, at.Equal(got.CreatedAt))

	_, err = h.GetByID(ctx, domain.ServiceAcademic, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, h.Create(ctx, p), ErrConflict)
}

func TestSQLiteHistory_ListFilters(t *testing.T) {
	h := newTestSQLite(t)
	ctx := context.Background()
	base := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	for i, score := range []float64{2, 5, 8, 9} {
		category := "Low Stress"
		if score >= 7 {
			category = "High Stress"
		}
		require.NoError(t, h.Create(ctx, saved(domain.ServiceStress, score, category, base.AddDate(0, 0, i))))
	}
	require.NoError(t, h.Create(ctx, saved(domain.ServiceMental, 1, "Low", base)))

	items, total, err := h.List(ctx, domain.HistoryFilter{Service: domain.ServiceStress})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	require.Len(t, items, 4)
	assert.Equal(t, 9.0, *items[0].Score, "newest first")

	floor := 5.0
	items, total, err = h.List(ctx, domain.HistoryFilter{Service: domain.ServiceStress, MinScore: &floor, Oldest: true, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, items, 2)
	assert.Equal(t, 5.0, *items[0].Score)
	assert.Equal(t, 8.0, *items[1].Score)

	from := base.AddDate(0, 0, 2)
	items, _, err = h.List(ctx, domain.HistoryFilter{Service: domain.ServiceStress, From: &from, Category: "High Stress"})
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestSQLiteHistory_Stats(t *testing.T) {
	h := newTestSQLite(t)
	ctx := context.Background()

	st, err := h.Stats(ctx, domain.ServiceStress, "")
	require.NoError(t, err)
	assert.Equal(t, int64(0), st.Total)
	assert.Nil(t, st.Average)

	now := time.Now().UTC()
	require.NoError(t, h.Create(ctx, saved(domain.ServiceStress, 2, "Low Stress", now)))
	require.NoError(t, h.Create(ctx, saved(domain.ServiceStress, 4, "Medium Stress", now)))
	require.NoError(t, h.Create(ctx, saved(domain.ServiceStress, 6, "Medium Stress", now)))

	st, err = h.Stats(ctx, domain.ServiceStress, "")
	require.NoError(t, err)
	assert.Equal(t, int64(3), st.Total)
	assert.InDelta(t, 4.0, *st.Average, 1e-9)
	assert.Equal(t, 2.0, *st.Min)
	assert.Equal(t, 6.0, *st.Max)
	assert.Equal(t, map[string]int64{"Low Stress": 1, "Medium Stress": 2}, st.Distribution)
}

func TestSQLiteHistory_LatestSince(t *testing.T) {
	h := newTestSQLite(t)
	ctx := context.Background()
	day := time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC)

	_, err := h.LatestSince(ctx, domain.ServiceMobile, "", day)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, h.Create(ctx, saved(domain.ServiceMobile, 3, "Low", day.Add(-time.Hour))))
	_, err = h.LatestSince(ctx, domain.ServiceMobile, "", day)
	assert.ErrorIs(t, err, ErrNotFound)

	later := saved(domain.ServiceMobile, 4, "Moderate", day.Add(2*time.Hour))
	require.NoError(t, h.Create(ctx, later))
	got, err := h.LatestSince(ctx, domain.ServiceMobile, "", day)
	require.NoError(t, err)
	assert.Equal(t, later.ID, got.ID)
}
