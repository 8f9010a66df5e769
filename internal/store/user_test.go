package store

import (
	"context"
	"testing"
	"time"

	"github.com/Harshitk-cp/mentora/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userCols = []string{
	"id", "full_name", "email", "password_hash", "age", "gender", "occupation", "country",
	"current_streak", "max_streak", "last_login_at", "streak_reset_month", "streak_resets_this_month",
	"created_at", "updated_at",
}

func newMockUserStore(t *testing.T) (*UserStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })
	return NewUserStore(mock), mock
}

func userRow(id uuid.UUID, last *time.Time) *pgxmock.Rows {
	now := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)
	return pgxmock.NewRows(userCols).AddRow(
		id, "Ada Lovelace", "ada@example.com", "hash", 28, "Female", "Engineer", "UK",
		3, 5, last, "2025-02", 1, now, now,
	)
}

func TestUserStore_Create(t *testing.T) {
	s, mock := newMockUserStore(t)
	id := uuid.New()
	now := time.Now().UTC()

	u := &domain.User{FullName: "Ada", Email: "ada@example.com", PasswordHash: "hash", Age: 28, CurrentStreak: 1, MaxStreak: 1}
	mock.ExpectQuery("INSERT INTO users").
		WithArgs("Ada", "ada@example.com", "hash", 28, "", "", "", 1, 1).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(id, now, now))

	require.NoError(t, s.Create(context.Background(), u))
	assert.Equal(t, id, u.ID)
	assert.Equal(t, now, u.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserStore_Create_DuplicateEmail(t *testing.T) {
	s, mock := newMockUserStore(t)

	mock.ExpectQuery("INSERT INTO users").WillReturnError(&pgconn.PgError{Code: "23505"})

	err := s.Create(context.Background(), &domain.User{Email: "ada@example.com"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestUserStore_GetByEmail(t *testing.T) {
	s, mock := newMockUserStore(t)
	id := uuid.New()
	last := time.Date(2025, 2, 3, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`WHERE lower\(email\) = lower\(\$1\)`).
		WithArgs("ADA@example.com").
		WillReturnRows(userRow(id, &last))

	u, err := s.GetByEmail(context.Background(), "ADA@example.com")
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
	assert.Equal(t, "Female", u.Gender)
	require.NotNil(t, u.LastLoginAt)
	assert.Equal(t, last, *u.LastLoginAt)
	assert.Equal(t, 1, u.StreakResetsThisMonth)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserStore_GetByID_NotFound(t *testing.T) {
	s, mock := newMockUserStore(t)
	id := uuid.New()

	mock.ExpectQuery(`FROM users WHERE id = \$1`).WithArgs(id).WillReturnError(pgx.ErrNoRows)

	_, err := s.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserStore_Update(t *testing.T) {
	s, mock := newMockUserStore(t)
	updated := time.Date(2025, 2, 4, 0, 0, 0, 0, time.UTC)
	u := &domain.User{ID: uuid.New(), FullName: "Ada", CurrentStreak: 4, MaxStreak: 5}

	mock.ExpectQuery("UPDATE users SET").
		WithArgs(u.ID, "Ada", "", 0, "", "", "", 4, 5, u.LastLoginAt, "", 0).
		WillReturnRows(pgxmock.NewRows([]string{"updated_at"}).AddRow(updated))

	require.NoError(t, s.Update(context.Background(), u))
	assert.Equal(t, updated, u.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserStore_Update_Missing(t *testing.T) {
	s, mock := newMockUserStore(t)

	mock.ExpectQuery("UPDATE users SET").WillReturnError(pgx.ErrNoRows)

	err := s.Update(context.Background(), &domain.User{ID: uuid.New()})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserStore_GetProfile(t *testing.T) {
	s, mock := newMockUserStore(t)
	id := uuid.New()

	mock.ExpectQuery(`FROM users WHERE id = \$1`).WithArgs(id).WillReturnRows(userRow(id, nil))

	p, err := s.GetProfile(context.Background(), id.String())
	require.NoError(t, err)
	assert.Equal(t, &domain.Profile{UserID: id.String(), Age: 28, Gender: "Female", Occupation: "Engineer"}, p)

	_, err = s.GetProfile(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
