package port

import (
	"context"
	"time"

	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/domain"
)

// UserFilter narrows user counts. Zero values disable a predicate.
type UserFilter struct {
	ActiveOnly   bool
	CreatedSince *time.Time
}

// UserRepository exposes persistence behavior for members.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// ConsumeOTP activates the user and clears the OTP in one statement, scoped
	// by the matching code and an unexpired deadline. It returns false when no
	// row matched, which means the code was already consumed or replaced.
	ConsumeOTP(ctx context.Context, email, code string, now time.Time) (bool, error)
	// ReplaceOTP stores a fresh code for a user that is still inactive.
	ReplaceOTP(ctx context.Context, email, code string, validUntil time.Time) (bool, error)
	Count(ctx context.Context, filter UserFilter) (int, error)
}
