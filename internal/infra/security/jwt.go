package security

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/domain"
)

// TokenConfig is the immutable signing configuration, loaded once at startup.
type TokenConfig struct {
	Secret     string
	Algorithm  string
	DefaultTTL time.Duration
}

// tokenClaims is the wire payload: sub, exp, iat and an optional admin_id.
type tokenClaims struct {
	AdminID any `json:"admin_id,omitempty"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies HMAC JWTs.
type TokenService struct {
	secret     []byte
	method     jwt.SigningMethod
	defaultTTL time.Duration
	now        func() time.Time
	parser     *jwt.Parser
}

// TokenOption customises a TokenService.
type TokenOption func(*TokenService)

// WithClock overrides the time source used for iat, exp and expiry checks.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewTokenService validates cfg and builds a service bound to it.
func NewTokenService(cfg TokenConfig, opts ...TokenOption) (*TokenService, error) {
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, errors.New("jwt: secret is required")
	}

	alg := strings.ToUpper(strings.TrimSpace(cfg.Algorithm))
	if alg == "" {
		alg = jwt.SigningMethodHS256.Alg()
	}
	method, ok := jwt.GetSigningMethod(alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("jwt: unsupported algorithm %q", cfg.Algorithm)
	}

	ttl := cfg.DefaultTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	s := &TokenService{
		secret:     []byte(cfg.Secret),
		method:     method,
		defaultTTL: ttl,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithJSONNumber(),
		jwt.WithTimeFunc(s.now),
	)

	return s, nil
}

// Issue signs claims with a lifetime of ttl, or the default lifetime when ttl <= 0.
// Any IssuedAt or Expiry already on claims is replaced.
func (s *TokenService) Issue(claims domain.Claims, ttl time.Duration) (domain.IssuedToken, error) {
	if claims == nil || strings.TrimSpace(claims.Subject()) == "" {
		return domain.IssuedToken{}, fmt.Errorf("jwt: subject is required: %w", domain.ErrValidation)
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	now := s.now().UTC().Truncate(time.Second)
	expiresAt := now.Add(ttl)

	payload := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.Subject(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	if admin, ok := claims.(domain.AdminClaims); ok {
		if admin.AdminID <= 0 {
			return domain.IssuedToken{}, fmt.Errorf("jwt: admin id must be positive: %w", domain.ErrValidation)
		}
		payload.AdminID = admin.AdminID
	}

	signed, err := jwt.NewWithClaims(s.method, payload).SignedString(s.secret)
	if err != nil {
		return domain.IssuedToken{}, fmt.Errorf("jwt: sign token: %w", err)
	}

	return domain.IssuedToken{Value: signed, ExpiresAt: expiresAt}, nil
}

// Verify authenticates token and decodes its claims. The claim shape is
// decided here: admin_id present yields AdminClaims, otherwise UserClaims.
func (s *TokenService) Verify(token string) (domain.Claims, error) {
	var payload tokenClaims
	_, err := s.parser.ParseWithClaims(token, &payload, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, s.classifyParseError(token, err)
	}

	subject := strings.TrimSpace(payload.Subject)
	if subject == "" || payload.ExpiresAt == nil {
		return nil, fmt.Errorf("jwt: sub and exp are required: %w", domain.ErrMalformedClaims)
	}

	var issuedAt time.Time
	if payload.IssuedAt != nil {
		issuedAt = payload.IssuedAt.Time
	}
	expiry := payload.ExpiresAt.Time

	if payload.AdminID == nil {
		return domain.UserClaims{Email: subject, IssuedAt: issuedAt, Expiry: expiry}, nil
	}

	adminID, err := parseAdminID(payload.AdminID)
	if err != nil {
		return nil, err
	}
	return domain.AdminClaims{Email: subject, AdminID: adminID, IssuedAt: issuedAt, Expiry: expiry}, nil
}

func parseAdminID(raw any) (int64, error) {
	num, ok := raw.(json.Number)
	if !ok {
		return 0, fmt.Errorf("jwt: admin_id is not a number: %w", domain.ErrMalformedClaims)
	}
	id, err := num.Int64()
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("jwt: admin_id %q is not a positive integer: %w", num.String(), domain.ErrMalformedClaims)
	}
	return id, nil
}

// classifyParseError keeps decoding failures of a token we signed apart from
// forged or mangled tokens. The library reports both as ErrTokenMalformed.
func (s *TokenService) classifyParseError(token string, err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed) && s.signedHere(token):
		return fmt.Errorf("jwt: %v: %w", err, domain.ErrMalformedClaims)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("jwt: %w", domain.ErrTokenExpired)
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing),
		errors.Is(err, jwt.ErrTokenInvalidClaims):
		return fmt.Errorf("jwt: %v: %w", err, domain.ErrMalformedClaims)
	default:
		return fmt.Errorf("jwt: %v: %w", err, domain.ErrInvalidSignature)
	}
}

// signedHere reports whether token carries a valid signature under this service's key.
func (s *TokenService) signedHere(token string) bool {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return false
	}
	sig, err := s.parser.DecodeSegment(parts[2])
	if err != nil {
		return false
	}
	return s.method.Verify(parts[0]+"."+parts[1], sig, s.secret) == nil
}
