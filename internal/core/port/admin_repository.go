package port

import (
	"context"

	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/domain"
)

// AdminRepository exposes persistence behavior for administrators and their login audit trail.
type AdminRepository interface {
	Create(ctx context.Context, admin domain.Admin) (domain.Admin, error)
	GetByID(ctx context.Context, id int64) (*domain.Admin, error)
	GetByEmail(ctx context.Context, email string) (*domain.Admin, error)
	RecordLogin(ctx context.Context, entry domain.AdminLoginHistory) (domain.AdminLoginHistory, error)
	ListLoginHistory(ctx context.Context, adminID int64, limit int) ([]domain.AdminLoginHistory, error)
}
