package store

import (
	"context"
	"errors"

	"github.com/Harshitk-cp/mentora/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

const userColumns = `id, full_name, email, password_hash, age, gender, occupation, country,
	current_streak, max_streak, last_login_at, streak_reset_month, streak_resets_this_month,
	created_at, updated_at`

type UserStore struct {
	db DB
}

func NewUserStore(db DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Create(ctx context.Context, u *domain.User) error {
	err := s.db.QueryRow(ctx,
		`INSERT INTO users (full_name, email, password_hash, age, gender, occupation, country, current_streak, max_streak)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at, updated_at`,
		u.FullName, u.Email, u.PasswordHash, u.Age, u.Gender, u.Occupation, u.Country, u.CurrentStreak, u.MaxStreak,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return eris.Wrap(err, "store: insert user")
	}
	return nil
}

func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByEmail matches case-insensitively, like the unique index.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
}

func (s *UserStore) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	u := &domain.User{}
	err := s.db.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &u.Age, &u.Gender, &u.Occupation, &u.Country,
		&u.CurrentStreak, &u.MaxStreak, &u.LastLoginAt, &u.StreakResetMonth, &u.StreakResetsThisMonth,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, eris.Wrap(err, "store: get user")
	}
	return u, nil
}

// Update writes every mutable column of u.
func (s *UserStore) Update(ctx context.Context, u *domain.User) error {
	err := s.db.QueryRow(ctx,
		`UPDATE users SET full_name = $2, password_hash = $3, age = $4, gender = $5, occupation = $6,
		        country = $7, current_streak = $8, max_streak = $9, last_login_at = $10,
		        streak_reset_month = $11, streak_resets_this_month = $12, updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at`,
		u.ID, u.FullName, u.PasswordHash, u.Age, u.Gender, u.Occupation,
		u.Country, u.CurrentStreak, u.MaxStreak, u.LastLoginAt,
		u.StreakResetMonth, u.StreakResetsThisMonth,
	).Scan(&u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return eris.Wrap(err, "store: update user")
	}
	return nil
}

// GetProfile resolves a user id string to the profile fields predictions
// may cross-reference. A malformed id is reported as not found.
func (s *UserStore) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, ErrNotFound
	}
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return u.Profile(), nil
}
