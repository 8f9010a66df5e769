package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/Harshitk-cp/mentora/internal/domain"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteHistory is the local prediction history kept by the CLI. It
// implements domain.PredictionStore so the CLI runs the same
// PredictionService as the servers.
type SQLiteHistory struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at dsn and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteHistory, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteHistory{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS predictions (
	id              TEXT PRIMARY KEY,
	service         TEXT NOT NULL,
	user_id         TEXT NOT NULL DEFAULT '',
	record          TEXT NOT NULL,
	score           REAL,
	category        TEXT NOT NULL DEFAULT '',
	created_at      DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_predictions_service_created ON predictions(service, created_at);
`

func (s *SQLiteHistory) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteHistory) Close() error {
	return s.db.Close()
}

func (s *SQLiteHistory) Create(ctx context.Context, p *domain.StoredPrediction) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	record, err := json.Marshal(p)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal prediction")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO predictions (id, service, user_id, record, score, category, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID.String(), string(p.Service), p.UserID, string(record), p.Score, p.Category, p.CreatedAt.UTC(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrConflict
		}
		return eris.Wrap(err, "sqlite: insert prediction")
	}
	return nil
}

func (s *SQLiteHistory) GetByID(ctx context.Context, service domain.ServiceName, id uuid.UUID) (*domain.StoredPrediction, error) {
	var record string
	err := s.db.QueryRowContext(ctx,
		`SELECT record FROM predictions WHERE id = ? AND service = ?`,
		id.String(), string(service),
	).Scan(&record)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, eris.Wrap(err, "sqlite: get prediction")
	}
	return decodeRecord(record)
}

func (s *SQLiteHistory) List(ctx context.Context, f domain.HistoryFilter) ([]domain.StoredPrediction, int64, error) {
	where, args := sqliteWhere(f)

	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM predictions WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, eris.Wrap(err, "sqlite: count predictions")
	}

	query := `SELECT record FROM predictions WHERE ` + where
	if f.Oldest {
		query += ` ORDER BY created_at ASC`
	} else {
		query += ` ORDER BY created_at DESC`
	}
	limit := f.Limit
	if limit <= 0 {
		limit = -1
	}
	query += ` LIMIT ? OFFSET ?`
	args = append(args, limit, max(f.Offset, 0))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, eris.Wrap(err, "sqlite: list predictions")
	}
	defer rows.Close()

	out := make([]domain.StoredPrediction, 0)
	for rows.Next() {
		var record string
		if err := rows.Scan(&record); err != nil {
			return nil, 0, eris.Wrap(err, "sqlite: scan prediction")
		}
		p, err := decodeRecord(record)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *p)
	}
	return out, total, eris.Wrap(rows.Err(), "sqlite: list predictions iterate")
}

func (s *SQLiteHistory) Stats(ctx context.Context, service domain.ServiceName, userID string) (*domain.PredictionStats, error) {
	where, args := sqliteWhere(domain.HistoryFilter{Service: service, UserID: userID})

	st := &domain.PredictionStats{Distribution: make(map[string]int64)}
	var avg, lo, hi sql.NullFloat64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), AVG(score), MIN(score), MAX(score) FROM predictions WHERE `+where, args...,
	).Scan(&st.Total, &avg, &lo, &hi)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: prediction stats")
	}
	st.Average, st.Min, st.Max = nullable(avg), nullable(lo), nullable(hi)

	rows, err := s.db.QueryContext(ctx,
		`SELECT category, COUNT(*) FROM predictions WHERE `+where+` GROUP BY category`, args...,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: category distribution")
	}
	defer rows.Close()
	for rows.Next() {
		var (
			category string
			n        int64
		)
		if err := rows.Scan(&category, &n); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan category count")
		}
		if category != "" {
			st.Distribution[category] = n
		}
	}
	return st, eris.Wrap(rows.Err(), "sqlite: category distribution iterate")
}

func (s *SQLiteHistory) LatestSince(ctx context.Context, service domain.ServiceName, userID string, since time.Time) (*domain.StoredPrediction, error) {
	var record string
	err := s.db.QueryRowContext(ctx,
		`SELECT record FROM predictions WHERE service = ? AND user_id = ? AND created_at >= ?
		 ORDER BY created_at DESC LIMIT 1`,
		string(service), userID, since.UTC(),
	).Scan(&record)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, eris.Wrap(err, "sqlite: latest prediction")
	}
	return decodeRecord(record)
}

func sqliteWhere(f domain.HistoryFilter) (string, []any) {
	conds := []string{"service = ?"}
	args := []any{string(f.Service)}
	if f.UserID != "" {
		conds = append(conds, "user_id = ?")
		args = append(args, f.UserID)
	}
	if f.From != nil {
		conds = append(conds, "created_at >= ?")
		args = append(args, f.From.UTC())
	}
	if f.To != nil {
		conds = append(conds, "created_at < ?")
		args = append(args, f.To.UTC())
	}
	if f.MinScore != nil {
		conds = append(conds, "score >= ?")
		args = append(args, *f.MinScore)
	}
	if f.MaxScore != nil {
		conds = append(conds, "score <= ?")
		args = append(args, *f.MaxScore)
	}
	if f.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, f.Category)
	}
	return strings.Join(conds, " AND "), args
}

func decodeRecord(record string) (*domain.StoredPrediction, error) {
	var p domain.StoredPrediction
	if err := json.Unmarshal([]byte(record), &p); err != nil {
		return nil, eris.Wrap(err, "sqlite: decode prediction")
	}
	return &p, nil
}

func nullable(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
