package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type PredictionStore interface {
	Create(ctx context.Context, p *StoredPrediction) error
	GetByID(ctx context.Context, service ServiceName, id uuid.UUID) (*StoredPrediction, error)
	List(ctx context.Context, f HistoryFilter) ([]StoredPrediction, int64, error)
	Stats(ctx context.Context, service ServiceName, userID string) (*PredictionStats, error)
	LatestSince(ctx context.Context, service ServiceName, userID string, since time.Time) (*StoredPrediction, error)
}

type UserStore interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u *User) error
}

// ProfileSource resolves the stored profile a prediction schema may
// cross-reference for age, gender or occupation.
type ProfileSource interface {
	GetProfile(ctx context.Context, userID string) (*Profile, error)
}
