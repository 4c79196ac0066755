package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/domain"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/port"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/repository"
)

// PrincipalResolver turns a bearer token into the member or admin it names.
// Every failure is one of the auth error kinds; resolution never writes.
type PrincipalResolver struct {
	tokens port.TokenService
	users  port.UserRepository
	admins port.AdminRepository
}

// NewPrincipalResolver constructs a PrincipalResolver.
func NewPrincipalResolver(tokens port.TokenService, users port.UserRepository, admins port.AdminRepository) *PrincipalResolver {
	return &PrincipalResolver{tokens: tokens, users: users, admins: admins}
}

// Authenticate verifies the token and returns its claims.
func (r *PrincipalResolver) Authenticate(token string) (domain.Claims, error) {
	return r.tokens.Verify(token)
}

// ResolveUser loads the member named by user claims.
func (r *PrincipalResolver) ResolveUser(ctx context.Context, claims domain.Claims) (domain.User, error) {
	uc, ok := claims.(domain.UserClaims)
	if !ok {
		return domain.User{}, fmt.Errorf("expected user claims: %w", domain.ErrMalformedClaims)
	}

	user, err := r.users.GetByEmail(ctx, uc.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, fmt.Errorf("user %q: %w", uc.Email, domain.ErrPrincipalNotFound)
		}
		return domain.User{}, fmt.Errorf("lookup user: %w", err)
	}
	return user.Sanitized(), nil
}

// ResolveAdmin loads the admin named by admin claims. The row must still
// carry the email the token was issued for.
func (r *PrincipalResolver) ResolveAdmin(ctx context.Context, claims domain.Claims) (domain.Admin, error) {
	ac, ok := claims.(domain.AdminClaims)
	if !ok {
		return domain.Admin{}, fmt.Errorf("expected admin claims: %w", domain.ErrMalformedClaims)
	}

	admin, err := r.admins.GetByID(ctx, ac.AdminID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Admin{}, fmt.Errorf("admin %d: %w", ac.AdminID, domain.ErrPrincipalNotFound)
		}
		return domain.Admin{}, fmt.Errorf("lookup admin: %w", err)
	}
	if !strings.EqualFold(admin.Email, ac.Email) {
		return domain.Admin{}, fmt.Errorf("admin %d email changed: %w", ac.AdminID, domain.ErrPrincipalNotFound)
	}
	return admin.Sanitized(), nil
}
