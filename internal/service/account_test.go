package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Harshitk-cp/mentora/internal/domain"
	"github.com/Harshitk-cp/mentora/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// mockUserStore implements domain.UserStore for testing.
type mockUserStore struct {
	users map[uuid.UUID]*domain.User
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{users: make(map[uuid.UUID]*domain.User)}
}

func (m *mockUserStore) Create(ctx context.Context, u *domain.User) error {
	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return store.ErrConflict
		}
	}
	u.ID = uuid.New()
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *mockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *mockUserStore) Update(ctx context.Context, u *domain.User) error {
	if _, ok := m.users[u.ID]; !ok {
		return store.ErrNotFound
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func newTestAccounts(now time.Time) (*AccountService, *mockUserStore) {
	users := newMockUserStore()
	s := NewAccountService(users, zap.NewNop())
	s.cost = bcrypt.MinCost
	s.now = func() time.Time { return now }
	return s, users
}

func validSignup() SignupInput {
	return SignupInput{
		FullName:   "Asha Rao",
		Email:      "asha@example.com",
		Password:   "secret1",
		Age:        float64(21),
		Gender:     "Female",
		Occupation: "Undergraduate",
		Country:    "India",
	}
}

func TestSignup(t *testing.T) {
	s, users := newTestAccounts(fixedNow)
	ctx := context.Background()

	u, err := s.Signup(ctx, validSignup())
	require.NoError(t, err)
	assert.Equal(t, 21, u.Age)
	assert.NotEqual(t, "secret1", u.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(users.users[u.ID].PasswordHash), []byte("secret1")))

	_, err = s.Signup(ctx, validSignup())
	var ferr FieldErrors
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, "Email already exists. Please use a different email.", ferr["email"])
}

func TestSignup_Validation(t *testing.T) {
	s, users := newTestAccounts(fixedNow)

	in := validSignup()
	in.FullName = "  "
	in.Email = "not-an-email"
	in.Password = "abc"
	in.Age = "130"

	_, err := s.Signup(context.Background(), in)
	var ferr FieldErrors
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, FieldErrors{
		"full_name": "Full Name is required",
		"email":     "Please enter a valid email address",
		"password":  "Password must be at least 6 characters long",
		"age":       "Please enter a valid age between 1 and 120",
	}, ferr)
	assert.Empty(t, users.users)
}

func TestNextStreak(t *testing.T) {
	now := time.Date(2025, 3, 14, 8, 0, 0, 0, time.UTC)
	at := func(d time.Duration) *time.Time {
		v := now.Add(d)
		return &v
	}

	tests := []struct {
		name    string
		current int
		last    *time.Time
		want    int
	}{
		{"first login", 0, nil, 1},
		{"same day", 4, at(-2 * time.Hour), 4},
		{"next day", 4, at(-20 * time.Hour), 5},
		{"late yesterday", 2, at(-9 * time.Hour), 3},
		{"gap", 9, at(-50 * time.Hour), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextStreak(tt.current, tt.last, now))
		})
	}
}

func TestLogin(t *testing.T) {
	s, users := newTestAccounts(fixedNow)
	ctx := context.Background()

	u, err := s.Signup(ctx, validSignup())
	require.NoError(t, err)
	yesterday := fixedNow.AddDate(0, 0, -1)
	stored := users.users[u.ID]
	stored.CurrentStreak, stored.MaxStreak, stored.LastLoginAt = 4, 4, &yesterday

	got, err := s.Login(ctx, " asha@example.com ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, 5, got.CurrentStreak)
	assert.Equal(t, 5, got.MaxStreak)
	assert.Equal(t, fixedNow, *users.users[u.ID].LastLoginAt)

	tests := []struct {
		name     string
		email    string
		password string
		want     error
	}{
		{"blank password", "asha@example.com", "", ErrCredentialsRequired},
		{"blank email", "", "secret1", ErrCredentialsRequired},
		{"wrong password", "asha@example.com", "secret2", ErrInvalidCredentials},
		{"unknown email", "nobody@example.com", "secret1", ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Login(ctx, tt.email, tt.password)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUpdateProfile(t *testing.T) {
	s, users := newTestAccounts(fixedNow)
	ctx := context.Background()
	u, err := s.Signup(ctx, validSignup())
	require.NoError(t, err)

	got, remaining, err := s.UpdateProfile(ctx, u.ID, ProfileUpdate{"country": "Nepal", "age": "22", "password": "better1"})
	require.NoError(t, err)
	assert.Equal(t, "Nepal", got.Country)
	assert.Equal(t, 22, got.Age)
	assert.Equal(t, domain.MonthlyStreakResets, remaining)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(users.users[u.ID].PasswordHash), []byte("better1")))

	_, _, err = s.UpdateProfile(ctx, u.ID, ProfileUpdate{})
	assert.ErrorIs(t, err, ErrNoUpdate)

	_, _, err = s.UpdateProfile(ctx, uuid.New(), ProfileUpdate{"country": "Chile"})
	assert.ErrorIs(t, err, ErrUserNotFound)

	tests := []struct {
		name  string
		upd   ProfileUpdate
		field string
		msg   string
	}{
		{"age text", ProfileUpdate{"age": "old"}, "age", "Invalid age format"},
		{"age range", ProfileUpdate{"age": 0.0}, "age", "Age must be between 1-120"},
		{"short password", ProfileUpdate{"password": "abc"}, "password", "Password must be at least 6 characters"},
		{"negative streak", ProfileUpdate{"current_streak": -1.0}, "current_streak", "Streak cannot be negative"},
		{"fractional streak", ProfileUpdate{"current_streak": 2.5}, "current_streak", "Streak must be a positive integer"},
		{"blank name", ProfileUpdate{"full_name": " "}, "full_name", "Full Name cannot be empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := s.UpdateProfile(ctx, u.ID, tt.upd)
			var ferr FieldErrors
			require.ErrorAs(t, err, &ferr)
			assert.Equal(t, tt.msg, ferr[tt.field])
		})
	}
}

func TestUpdateProfile_StreakResetLimit(t *testing.T) {
	s, _ := newTestAccounts(fixedNow)
	ctx := context.Background()
	u, err := s.Signup(ctx, validSignup())
	require.NoError(t, err)

	for i, want := range []int{2, 1, 0} {
		got, remaining, err := s.UpdateProfile(ctx, u.ID, ProfileUpdate{"current_streak": float64(10 + i)})
		require.NoError(t, err)
		assert.Equal(t, want, remaining)
		assert.Equal(t, 10+i, got.MaxStreak)
	}

	// Setting the current value again is not a change.
	_, remaining, err := s.UpdateProfile(ctx, u.ID, ProfileUpdate{"current_streak": 12.0})
	require.NoError(t, err)
	assert.Zero(t, remaining)

	_, _, err = s.UpdateProfile(ctx, u.ID, ProfileUpdate{"current_streak": 1.0})
	var ferr FieldErrors
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, "Monthly streak reset limit (3) reached", ferr["current_streak"])

	s.now = func() time.Time { return fixedNow.AddDate(0, 1, 0) }
	got, remaining, err := s.UpdateProfile(ctx, u.ID, ProfileUpdate{"current_streak": 1.0})
	require.NoError(t, err)
	assert.Equal(t, 2, remaining)
	assert.Equal(t, 1, got.CurrentStreak)
	assert.Equal(t, 12, got.MaxStreak)

	_, left, err := s.Profile(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, left)
}
