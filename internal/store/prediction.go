package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Harshitk-cp/mentora/internal/domain"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

const predictionColumns = `id, service, user_id, input_data, results, score, category, interpretation, recommendations, insights, local_timestamp, created_at`

// PredictionStore keeps every prediction service's records in one table,
// partitioned by the service column.
type PredictionStore struct {
	db DB
}

func NewPredictionStore(db DB) *PredictionStore {
	return &PredictionStore{db: db}
}

func (s *PredictionStore) Create(ctx context.Context, p *domain.StoredPrediction) error {
	input, err := json.Marshal(p.InputData)
	if err != nil {
		return eris.Wrap(err, "store: marshal input data")
	}
	results, err := json.Marshal(p.Results)
	if err != nil {
		return eris.Wrap(err, "store: marshal results")
	}
	recs, err := json.Marshal(p.Recommendations)
	if err != nil {
		return eris.Wrap(err, "store: marshal recommendations")
	}
	var insights []byte
	if p.Insights != nil {
		if insights, err = json.Marshal(p.Insights); err != nil {
			return eris.Wrap(err, "store: marshal insights")
		}
	}

	err = s.db.QueryRow(ctx,
		`INSERT INTO predictions (id, service, user_id, input_data, results, score, category, interpretation, recommendations, insights, local_timestamp)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING created_at`,
		p.ID, string(p.Service), p.UserID, input, results, p.Score, p.Category, p.Interpretation, recs, insights, p.LocalTimestamp,
	).Scan(&p.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return eris.Wrap(err, "store: insert prediction")
	}
	return nil
}

func (s *PredictionStore) GetByID(ctx context.Context, service domain.ServiceName, id uuid.UUID) (*domain.StoredPrediction, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+predictionColumns+` FROM predictions WHERE id = $1 AND service = $2`,
		id, string(service),
	)
	p, err := scanPrediction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, eris.Wrap(err, "store: get prediction")
	}
	return p, nil
}

// List returns one page of matching records plus the total match count.
func (s *PredictionStore) List(ctx context.Context, f domain.HistoryFilter) ([]domain.StoredPrediction, int64, error) {
	where, args := predictionWhere(f)

	var total int64
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM predictions WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, eris.Wrap(err, "store: count predictions")
	}

	order := "DESC"
	if f.Oldest {
		order = "ASC"
	}
	query := `SELECT ` + predictionColumns + ` FROM predictions WHERE ` + where + ` ORDER BY created_at ` + order
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, eris.Wrap(err, "store: list predictions")
	}
	defer rows.Close()

	out := make([]domain.StoredPrediction, 0)
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, 0, eris.Wrap(err, "store: scan prediction")
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, eris.Wrap(err, "store: list predictions iterate")
	}
	return out, total, nil
}

// Stats aggregates the primary score over a service, optionally narrowed to
// one user. The distribution only holds categories that occur.
func (s *PredictionStore) Stats(ctx context.Context, service domain.ServiceName, userID string) (*domain.PredictionStats, error) {
	where, args := predictionWhere(domain.HistoryFilter{Service: service, UserID: userID})

	st := &domain.PredictionStats{Distribution: make(map[string]int64)}
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*), AVG(score), MIN(score), MAX(score) FROM predictions WHERE `+where,
		args...,
	).Scan(&st.Total, &st.Average, &st.Min, &st.Max)
	if err != nil {
		return nil, eris.Wrap(err, "store: prediction stats")
	}

	rows, err := s.db.Query(ctx,
		`SELECT category, COUNT(*) FROM predictions WHERE `+where+` GROUP BY category`,
		args...,
	)
	if err != nil {
		return nil, eris.Wrap(err, "store: category distribution")
	}
	defer rows.Close()
	for rows.Next() {
		var (
			category string
			n        int64
		)
		if err := rows.Scan(&category, &n); err != nil {
			return nil, eris.Wrap(err, "store: scan category count")
		}
		if category != "" {
			st.Distribution[category] = n
		}
	}
	return st, eris.Wrap(rows.Err(), "store: category distribution iterate")
}

func (s *PredictionStore) LatestSince(ctx context.Context, service domain.ServiceName, userID string, since time.Time) (*domain.StoredPrediction, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+predictionColumns+` FROM predictions
		 WHERE service = $1 AND user_id = $2 AND created_at >= $3
		 ORDER BY created_at DESC LIMIT 1`,
		string(service), userID, since,
	)
	p, err := scanPrediction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, eris.Wrap(err, "store: latest prediction")
	}
	return p, nil
}

func predictionWhere(f domain.HistoryFilter) (string, []any) {
	conds := []string{"service = $1"}
	args := []any{string(f.Service)}
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.UserID != "" {
		add("user_id = $%d", f.UserID)
	}
	if f.From != nil {
		add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("created_at < $%d", *f.To)
	}
	if f.MinScore != nil {
		add("score >= $%d", *f.MinScore)
	}
	if f.MaxScore != nil {
		add("score <= $%d", *f.MaxScore)
	}
	if f.Category != "" {
		add("category = $%d", f.Category)
	}
	return strings.Join(conds, " AND "), args
}

func scanPrediction(row pgx.Row) (*domain.StoredPrediction, error) {
	var (
		p                                 domain.StoredPrediction
		service                           string
		input, results, recs, insightsRaw []byte
	)
	err := row.Scan(&p.ID, &service, &p.UserID, &input, &results, &p.Score, &p.Category,
		&p.Interpretation, &recs, &insightsRaw, &p.LocalTimestamp, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.Service = domain.ServiceName(service)
	if err := json.Unmarshal(input, &p.InputData); err != nil {
		return nil, eris.Wrap(err, "store: decode input data")
	}
	if err := json.Unmarshal(results, &p.Results); err != nil {
		return nil, eris.Wrap(err, "store: decode results")
	}
	if err := json.Unmarshal(recs, &p.Recommendations); err != nil {
		return nil, eris.Wrap(err, "store: decode recommendations")
	}
	if len(insightsRaw) > 0 {
		if err := json.Unmarshal(insightsRaw, &p.Insights); err != nil {
			return nil, eris.Wrap(err, "store: decode insights")
		}
	}
	return &p, nil
}
