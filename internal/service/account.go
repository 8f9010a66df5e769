package service

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Harshitk-cp/mentora/internal/domain"
	"github.com/Harshitk-cp/mentora/internal/metrics"
	"github.com/Harshitk-cp/mentora/internal/store"
	"github.com/Harshitk-cp/mentora/internal/validation"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrCredentialsRequired = errors.New("email and password are required")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrNoUpdate            = errors.New("no update data provided")
)

// FieldErrors maps request fields to a message for each rejected field.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, len(keys))
	for i, k := range keys {
		msgs[i] = e[k]
	}
	return strings.Join(msgs, "; ")
}

type SignupInput struct {
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Age        any    `json:"age"`
	Gender     string `json:"gender"`
	Occupation string `json:"occupation_or_academic_level"`
	Country    string `json:"country"`
}

type signupForm struct {
	FullName   string `json:"full_name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=6"`
	Age        string `json:"age" validate:"required,integer,intmin=1,intmax=120"`
	Gender     string `json:"gender" validate:"required"`
	Occupation string `json:"occupation_or_academic_level" validate:"required"`
	Country    string `json:"country" validate:"required"`
}

var signupMessages = validation.Messages{
	"password.min": "Password must be at least 6 characters long",
	"age.integer":  "Please enter a valid age between 1 and 120",
	"age.intmin":   "Please enter a valid age between 1 and 120",
	"age.intmax":   "Please enter a valid age between 1 and 120",
}

// ProfileUpdate is a partial update keyed by request field name. Only the
// keys present are changed.
type ProfileUpdate map[string]any

type profileForm struct {
	FullName      *string `json:"full_name" validate:"omitnil,nonblank"`
	Password      *string `json:"password" validate:"omitnil,min=6"`
	Age           *string `json:"age" validate:"omitnil,integer,intmin=1,intmax=120"`
	Gender        *string `json:"gender" validate:"omitnil,nonblank"`
	Occupation    *string `json:"occupation_or_academic_level" validate:"omitnil,nonblank"`
	Country       *string `json:"country" validate:"omitnil,nonblank"`
	CurrentStreak *string `json:"current_streak" validate:"omitnil,integer,intmin=0"`
}

var profileMessages = validation.Messages{
	"password.min":           "Password must be at least 6 characters",
	"age.integer":            "Invalid age format",
	"age":                    "Age must be between 1-120",
	"current_streak.integer": "Streak must be a positive integer",
	"current_streak.intmin":  "Streak cannot be negative",
}

// AccountService manages user accounts, login streaks and profiles.
type AccountService struct {
	users  domain.UserStore
	logger *zap.Logger
	cost   int
	now    func() time.Time
}

func NewAccountService(users domain.UserStore, logger *zap.Logger) *AccountService {
	return &AccountService{
		users:  users,
		logger: logger,
		cost:   bcrypt.DefaultCost,
		now:    time.Now,
	}
}

func (s *AccountService) Signup(ctx context.Context, in SignupInput) (*domain.User, error) {
	form := signupForm{
		FullName:   strings.TrimSpace(in.FullName),
		Email:      strings.TrimSpace(in.Email),
		Password:   in.Password,
		Age:        text(in.Age),
		Gender:     strings.TrimSpace(in.Gender),
		Occupation: strings.TrimSpace(in.Occupation),
		Country:    strings.TrimSpace(in.Country),
	}
	if errs := validation.Struct(&form, signupMessages); errs != nil {
		metrics.AccountEvents.WithLabelValues("signup", "invalid").Inc()
		return nil, FieldErrors(errs)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), s.cost)
	if err != nil {
		return nil, eris.Wrap(err, "hash password")
	}
	age, _ := validation.ParseInt(form.Age)

	u := &domain.User{
		FullName:     form.FullName,
		Email:        form.Email,
		PasswordHash: string(hash),
		Age:          age,
		Gender:       form.Gender,
		Occupation:   form.Occupation,
		Country:      form.Country,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, store.ErrConflict) {
			metrics.AccountEvents.WithLabelValues("signup", "duplicate").Inc()
			return nil, FieldErrors{"email": "Email already exists. Please use a different email."}
		}
		return nil, err
	}
	metrics.AccountEvents.WithLabelValues("signup", "ok").Inc()
	s.logger.Info("account created", zap.String("user_id", u.ID.String()))
	return u, nil
}

// Login checks credentials and advances the daily login streak.
func (s *AccountService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrCredentialsRequired
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			metrics.AccountEvents.WithLabelValues("login", "rejected").Inc()
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		metrics.AccountEvents.WithLabelValues("login", "rejected").Inc()
		return nil, ErrInvalidCredentials
	}

	now := s.now().UTC()
	u.CurrentStreak = NextStreak(u.CurrentStreak, u.LastLoginAt, now)
	u.MaxStreak = max(u.MaxStreak, u.CurrentStreak)
	u.LastLoginAt = &now
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	metrics.AccountEvents.WithLabelValues("login", "ok").Inc()
	return u, nil
}

// NextStreak advances a login streak by UTC calendar day: a login the day
// after the previous one extends it, the same day keeps it, and any gap
// restarts it at 1.
func NextStreak(current int, last *time.Time, now time.Time) int {
	if last == nil {
		return 1
	}
	days := int(startOfDay(now).Sub(startOfDay(*last)).Hours() / 24)
	switch days {
	case 0:
		return current
	case 1:
		return current + 1
	}
	return 1
}

func (s *AccountService) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// Profile returns the user and how many streak resets remain this month.
func (s *AccountService) Profile(ctx context.Context, id uuid.UUID) (*domain.User, int, error) {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	return u, u.RemainingStreakResets(s.now()), nil
}

// UpdateProfile applies a partial update. Changing the current streak
// consumes one of the monthly resets.
func (s *AccountService) UpdateProfile(ctx context.Context, id uuid.UUID, upd ProfileUpdate) (*domain.User, int, error) {
	form, n := newProfileForm(upd)
	if n == 0 {
		return nil, 0, ErrNoUpdate
	}
	if errs := validation.Struct(&form, profileMessages); errs != nil {
		return nil, 0, FieldErrors(errs)
	}

	u, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	now := s.now().UTC()

	if form.FullName != nil {
		u.FullName = *form.FullName
	}
	if form.Gender != nil {
		u.Gender = *form.Gender
	}
	if form.Occupation != nil {
		u.Occupation = *form.Occupation
	}
	if form.Country != nil {
		u.Country = *form.Country
	}
	if form.Age != nil {
		u.Age, _ = validation.ParseInt(*form.Age)
	}
	if form.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*form.Password), s.cost)
		if err != nil {
			return nil, 0, eris.Wrap(err, "hash password")
		}
		u.PasswordHash = string(hash)
	}
	if form.CurrentStreak != nil {
		streak, _ := validation.ParseInt(*form.CurrentStreak)
		if streak != u.CurrentStreak {
			if u.RemainingStreakResets(now) == 0 {
				return nil, 0, FieldErrors{"current_streak": "Monthly streak reset limit (3) reached"}
			}
			month := now.Format("2006-01")
			if u.StreakResetMonth != month {
				u.StreakResetMonth = month
				u.StreakResetsThisMonth = 0
			}
			u.StreakResetsThisMonth++
			u.CurrentStreak = streak
			u.MaxStreak = max(u.MaxStreak, streak)
		}
	}

	if err := s.users.Update(ctx, u); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, 0, ErrUserNotFound
		}
		return nil, 0, err
	}
	metrics.AccountEvents.WithLabelValues("profile_update", "ok").Inc()
	return u, u.RemainingStreakResets(now), nil
}

func newProfileForm(upd ProfileUpdate) (profileForm, int) {
	var (
		form profileForm
		n    int
	)
	set := func(key string, dst **string) {
		v, ok := upd[key]
		if !ok || v == nil {
			return
		}
		t := text(v)
		*dst = &t
		n++
	}
	set("full_name", &form.FullName)
	set("password", &form.Password)
	set("age", &form.Age)
	set("gender", &form.Gender)
	set("occupation_or_academic_level", &form.Occupation)
	set("country", &form.Country)
	set("current_streak", &form.CurrentStreak)
	return form, n
}

// text renders a decoded JSON value as trimmed form text.
func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}
