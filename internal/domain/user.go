package domain

import (
	"time"

	"github.com/google/uuid"
)

// MonthlyStreakResets is how many manual streak changes a user gets per
// calendar month.
const MonthlyStreakResets = 3

type User struct {
	ID                    uuid.UUID  `json:"user_id"`
	FullName              string     `json:"full_name"`
	Email                 string     `json:"email"`
	PasswordHash          string     `json:"-"`
	Age                   int        `json:"age"`
	Gender                string     `json:"gender"`
	Occupation            string     `json:"occupation_or_academic_level"`
	Country               string     `json:"country"`
	CurrentStreak         int        `json:"current_streak"`
	MaxStreak             int        `json:"max_streak"`
	LastLoginAt           *time.Time `json:"last_login_date"`
	StreakResetMonth      string     `json:"-"`
	StreakResetsThisMonth int        `json:"-"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

func (u *User) Profile() *Profile {
	return &Profile{
		UserID:     u.ID.String(),
		Age:        u.Age,
		Gender:     u.Gender,
		Occupation: u.Occupation,
	}
}

// RemainingStreakResets reports how many manual streak changes are left in
// the month containing now.
func (u *User) RemainingStreakResets(now time.Time) int {
	if u.StreakResetMonth != now.UTC().Format("2006-01") {
		return MonthlyStreakResets
	}
	return max(0, MonthlyStreakResets-u.StreakResetsThisMonth)
}
