package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/domain"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/port"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/infra/logger"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/infra/telemetry"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/repository"
)

const (
	// LoginHistoryLimit is the number of audit rows returned to an admin.
	LoginHistoryLimit    = 10
	defaultAdminTokenTTL = 30 * time.Minute
	// Column widths of admin_login_history, in characters.
	maxUserAgentLength = 255
	maxIPAddressLength = 50
)

// AdminAuthService logs administrators in and exposes their audit trail.
type AdminAuthService struct {
	admins   port.AdminRepository
	hasher   port.PasswordHasher
	tokens   port.TokenService
	events   port.EventPublisher
	metrics  *telemetry.AuthMetrics
	logger   *zap.Logger
	tokenTTL time.Duration
	now      func() time.Time
}

// NewAdminAuthService constructs an AdminAuthService. events and metrics may be nil.
func NewAdminAuthService(
	admins port.AdminRepository,
	hasher port.PasswordHasher,
	tokens port.TokenService,
	events port.EventPublisher,
	metrics *telemetry.AuthMetrics,
	tokenTTL time.Duration,
	log *zap.Logger,
) *AdminAuthService {
	if tokenTTL <= 0 {
		tokenTTL = defaultAdminTokenTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AdminAuthService{
		admins:   admins,
		hasher:   hasher,
		tokens:   tokens,
		events:   events,
		metrics:  metrics,
		logger:   log,
		tokenTTL: tokenTTL,
		now:      time.Now,
	}
}

// Login verifies the admin password, appends one login history row and
// issues an admin token. Nothing is written when the credentials are wrong.
func (s *AdminAuthService) Login(ctx context.Context, email, password string, client domain.ClientMetadata) (domain.IssuedToken, domain.Admin, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		s.metrics.ObserveAdminLogin(telemetry.OutcomeInvalid)
		return domain.IssuedToken{}, domain.Admin{}, fmt.Errorf("email and password are required: %w", domain.ErrValidation)
	}

	admin, err := s.admins.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.metrics.ObserveAdminLogin(telemetry.OutcomeInvalid)
			return domain.IssuedToken{}, domain.Admin{}, domain.ErrInvalidCredentials
		}
		s.metrics.ObserveAdminLogin(telemetry.OutcomeError)
		return domain.IssuedToken{}, domain.Admin{}, fmt.Errorf("lookup admin: %w", err)
	}

	if !s.hasher.Verify(password, admin.PasswordHash) {
		s.metrics.ObserveAdminLogin(telemetry.OutcomeInvalid)
		s.logger.Info("admin login rejected", zap.String("email", logger.MaskEmail(email)), zap.String("ip", logger.MaskIP(client.IP)))
		return domain.IssuedToken{}, domain.Admin{}, domain.ErrInvalidCredentials
	}

	now := s.now().UTC()
	entry := domain.AdminLoginHistory{
		AdminID:   admin.ID,
		LoginTime: now,
		IPAddress: optionalString(client.IP, maxIPAddressLength),
		UserAgent: optionalString(client.UserAgent, maxUserAgentLength),
	}
	if _, err := s.admins.RecordLogin(ctx, entry); err != nil {
		s.metrics.ObserveAdminLogin(telemetry.OutcomeError)
		return domain.IssuedToken{}, domain.Admin{}, fmt.Errorf("record admin login: %w", err)
	}

	token, err := s.tokens.Issue(domain.AdminClaims{Email: admin.Email, AdminID: admin.ID}, s.tokenTTL)
	if err != nil {
		s.metrics.ObserveAdminLogin(telemetry.OutcomeError)
		return domain.IssuedToken{}, domain.Admin{}, fmt.Errorf("issue admin token: %w", err)
	}
	s.metrics.ObserveAdminLogin(telemetry.OutcomeSuccess)

	if s.events != nil {
		err := s.events.PublishAdminLoggedIn(ctx, domain.AdminLoggedInEvent{
			EventID:   uuid.NewString(),
			AdminID:   admin.ID,
			Email:     admin.Email,
			LoginTime: now,
			IPAddress: client.IP,
			UserAgent: client.UserAgent,
		})
		if err != nil {
			s.logger.Warn("publish admin login failed", zap.Int64("admin_id", admin.ID), zap.Error(err))
		}
	}

	return token, admin.Sanitized(), nil
}

// LoginHistory returns the latest login rows of the admin, newest first.
func (s *AdminAuthService) LoginHistory(ctx context.Context, adminID int64) ([]domain.AdminLoginHistory, error) {
	history, err := s.admins.ListLoginHistory(ctx, adminID, LoginHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("list login history: %w", err)
	}
	return history, nil
}

func optionalString(value string, limit int) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if utf8.RuneCountInString(value) > limit {
		value = string([]rune(value)[:limit])
	}
	return &value
}
