package port

import (
	"time"

	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/domain"
)

// PasswordHasher hashes and verifies secrets. Verify never fails: a malformed
// or unknown hash simply does not match.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) bool
}

// TokenService issues and verifies signed bearer tokens.
type TokenService interface {
	Issue(claims domain.Claims, ttl time.Duration) (domain.IssuedToken, error)
	Verify(token string) (domain.Claims, error)
}

// OTPGenerator produces one-time numeric codes.
type OTPGenerator interface {
	Generate() (string, error)
}
