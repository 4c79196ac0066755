package domain

import "errors"

// Error kinds surfaced to callers. Each maps to a stable HTTP response; anything
// that does not wrap one of these is reported as an internal error.
var (
	ErrValidation         = errors.New("validation failed")
	ErrDuplicateEntity    = errors.New("entity already exists")
	ErrNotFound           = errors.New("entity not found")
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrOTPNotFound = errors.New("no pending otp")
	ErrInvalidCode = errors.New("invalid otp code")
	ErrCodeExpired = errors.New("otp code expired")

	ErrInvalidSignature  = errors.New("token signature invalid")
	ErrTokenExpired      = errors.New("token expired")
	ErrMalformedClaims   = errors.New("token claims malformed")
	ErrPrincipalNotFound = errors.New("principal not found")

	ErrInternal = errors.New("internal error")
)

// IsAuthFailure reports whether err means the bearer token cannot identify a principal.
func IsAuthFailure(err error) bool {
	return errors.Is(err, ErrInvalidSignature) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrMalformedClaims) ||
		errors.Is(err, ErrPrincipalNotFound)
}
