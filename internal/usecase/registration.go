package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/domain"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/port"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/infra/logger"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/infra/notification"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/infra/security"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/infra/telemetry"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/repository"
)

const (
	defaultOTPTTL       = 10 * time.Minute
	defaultUserTokenTTL = 30 * time.Minute
)

// RegistrationInput is the profile submitted by a new member.
type RegistrationInput struct {
	RegistrationNumber string
	RegistrationYear   string
	FullName           string
	Email              string
	Password           string
	WilayaCode         string
	CommuneName        string
	FacultyID          int64
	DepartmentID       int64
	Level              string
}

// RegistrationDeps wires the collaborators of RegistrationService.
type RegistrationDeps struct {
	Users         port.UserRepository
	Hasher        port.PasswordHasher
	OTPs          port.OTPGenerator
	Tokens        port.TokenService
	Policy        *security.PasswordPolicy
	Notifications port.NotificationQueue
	Events        port.EventPublisher
	Metrics       *telemetry.AuthMetrics
	Logger        *zap.Logger
	OTPTTL        time.Duration
	UserTokenTTL  time.Duration
	Now           func() time.Time
}

// RegistrationService registers members and activates them through an emailed OTP.
type RegistrationService struct {
	users         port.UserRepository
	hasher        port.PasswordHasher
	otps          port.OTPGenerator
	tokens        port.TokenService
	policy        *security.PasswordPolicy
	notifications port.NotificationQueue
	events        port.EventPublisher
	metrics       *telemetry.AuthMetrics
	logger        *zap.Logger
	otpTTL        time.Duration
	userTokenTTL  time.Duration
	now           func() time.Time
}

// NewRegistrationService constructs a registration service.
func NewRegistrationService(deps RegistrationDeps) *RegistrationService {
	s := &RegistrationService{
		users:         deps.Users,
		hasher:        deps.Hasher,
		otps:          deps.OTPs,
		tokens:        deps.Tokens,
		policy:        deps.Policy,
		notifications: deps.Notifications,
		events:        deps.Events,
		metrics:       deps.Metrics,
		logger:        deps.Logger,
		otpTTL:        deps.OTPTTL,
		userTokenTTL:  deps.UserTokenTTL,
		now:           deps.Now,
	}
	if s.policy == nil {
		s.policy = security.NewPasswordPolicy(0, 0)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.otpTTL <= 0 {
		s.otpTTL = defaultOTPTTL
	}
	if s.userTokenTTL <= 0 {
		s.userTokenTTL = defaultUserTokenTTL
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Register stores an inactive member with a fresh OTP and queues the
// verification email. Email delivery problems never fail the registration.
func (s *RegistrationService) Register(ctx context.Context, input RegistrationInput) (domain.User, error) {
	email := normalizeEmail(input.Email)
	if err := validateRegistration(input, email); err != nil {
		return domain.User{}, err
	}

	localPart, _, _ := strings.Cut(email, "@")
	if err := s.policy.Validate(input.Password, localPart, input.FullName, input.RegistrationNumber); err != nil {
		return domain.User{}, err
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return domain.User{}, fmt.Errorf("email already registered: %w", domain.ErrDuplicateEntity)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return domain.User{}, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	code, err := s.otps.Generate()
	if err != nil {
		return domain.User{}, fmt.Errorf("generate otp: %w", err)
	}

	now := s.now().UTC()
	validUntil := now.Add(s.otpTTL)

	user, err := s.users.Create(ctx, domain.User{
		RegistrationNumber: strings.TrimSpace(input.RegistrationNumber),
		RegistrationYear:   strings.TrimSpace(input.RegistrationYear),
		FullName:           strings.TrimSpace(input.FullName),
		Email:              email,
		PasswordHash:       hash,
		WilayaCode:         strings.TrimSpace(input.WilayaCode),
		CommuneName:        strings.TrimSpace(input.CommuneName),
		FacultyID:          input.FacultyID,
		DepartmentID:       input.DepartmentID,
		Level:              strings.TrimSpace(input.Level),
		IsActive:           false,
		OTPCode:            &code,
		OTPValidUntil:      &validUntil,
		CreatedAt:          now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEntity) {
			return domain.User{}, fmt.Errorf("email or registration number already registered: %w", domain.ErrDuplicateEntity)
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}

	s.sendOTP(user, code)

	if s.events != nil {
		err := s.events.PublishUserRegistered(ctx, domain.UserRegisteredEvent{
			EventID:      uuid.NewString(),
			UserID:       user.ID,
			Email:        user.Email,
			FullName:     user.FullName,
			FacultyID:    user.FacultyID,
			DepartmentID: user.DepartmentID,
			RegisteredAt: now,
		})
		if err != nil {
			s.logger.Warn("publish user registered failed", zap.Int64("user_id", user.ID), zap.Error(err))
		}
	}

	return user.Sanitized(), nil
}

// VerifyOTP activates the member owning email when code matches the pending
// OTP, then issues a user token. A code activates at most one account once.
func (s *RegistrationService) VerifyOTP(ctx context.Context, email, code string) (domain.IssuedToken, error) {
	email = normalizeEmail(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return domain.IssuedToken{}, fmt.Errorf("email and otp code are required: %w", domain.ErrValidation)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.metrics.ObserveOTPVerification(telemetry.OutcomeNotFound)
			return domain.IssuedToken{}, fmt.Errorf("user not found: %w", domain.ErrPrincipalNotFound)
		}
		s.metrics.ObserveOTPVerification(telemetry.OutcomeError)
		return domain.IssuedToken{}, fmt.Errorf("lookup user: %w", err)
	}

	now := s.now().UTC()
	if err := security.ValidateOTP(code, user.OTPCode, user.OTPValidUntil, now); err != nil {
		s.metrics.ObserveOTPVerification(otpOutcome(err))
		return domain.IssuedToken{}, err
	}

	consumed, err := s.users.ConsumeOTP(ctx, email, code, now)
	if err != nil {
		s.metrics.ObserveOTPVerification(telemetry.OutcomeError)
		return domain.IssuedToken{}, fmt.Errorf("consume otp: %w", err)
	}
	if !consumed {
		s.metrics.ObserveOTPVerification(telemetry.OutcomeNotFound)
		return domain.IssuedToken{}, fmt.Errorf("otp already consumed: %w", domain.ErrOTPNotFound)
	}
	s.metrics.ObserveOTPVerification(telemetry.OutcomeSuccess)

	if s.events != nil {
		err := s.events.PublishUserActivated(ctx, domain.UserActivatedEvent{
			EventID:     uuid.NewString(),
			UserID:      user.ID,
			Email:       user.Email,
			ActivatedAt: now,
		})
		if err != nil {
			s.logger.Warn("publish user activated failed", zap.Int64("user_id", user.ID), zap.Error(err))
		}
	}

	token, err := s.tokens.Issue(domain.UserClaims{Email: user.Email}, s.userTokenTTL)
	if err != nil {
		return domain.IssuedToken{}, fmt.Errorf("issue user token: %w", err)
	}
	return token, nil
}

// ResendOTP replaces the pending code of an inactive member and emails it again.
func (s *RegistrationService) ResendOTP(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return fmt.Errorf("email is required: %w", domain.ErrValidation)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("user not found: %w", domain.ErrPrincipalNotFound)
		}
		return fmt.Errorf("lookup user: %w", err)
	}
	if user.IsActive {
		return fmt.Errorf("account already verified: %w", domain.ErrValidation)
	}

	code, err := s.otps.Generate()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}

	replaced, err := s.users.ReplaceOTP(ctx, email, code, s.now().UTC().Add(s.otpTTL))
	if err != nil {
		return fmt.Errorf("replace otp: %w", err)
	}
	if !replaced {
		return fmt.Errorf("account already verified: %w", domain.ErrValidation)
	}

	s.sendOTP(*user, code)
	return nil
}

func (s *RegistrationService) sendOTP(user domain.User, code string) {
	if s.notifications == nil {
		return
	}

	message, err := notification.RenderOTPEmail(notification.OTPEmail{
		Recipient: user.Email,
		FullName:  user.FullName,
		Code:      code,
		TTL:       s.otpTTL,
	})
	if err != nil {
		s.logger.Warn("render otp email failed", zap.String("email", logger.MaskEmail(user.Email)), zap.Error(err))
		return
	}

	if !s.notifications.Enqueue(message) {
		s.logger.Warn("otp email not queued", zap.String("email", logger.MaskEmail(user.Email)))
	}
}

func validateRegistration(input RegistrationInput, email string) error {
	var missing []string
	for name, value := range map[string]string{
		"registration_number": input.RegistrationNumber,
		"registration_year":   input.RegistrationYear,
		"full_name":           input.FullName,
		"password":            input.Password,
		"wilaya_code":         input.WilayaCode,
		"commune_name":        input.CommuneName,
		"level":               input.Level,
	} {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return fmt.Errorf("missing required fields %s: %w", strings.Join(missing, ", "), domain.ErrValidation)
	}

	if local, host, ok := strings.Cut(email, "@"); !ok || local == "" || !strings.Contains(host, ".") {
		return fmt.Errorf("invalid email address: %w", domain.ErrValidation)
	}
	if input.FacultyID <= 0 || input.DepartmentID <= 0 {
		return fmt.Errorf("faculty_id and department_id must be positive: %w", domain.ErrValidation)
	}
	return nil
}

func otpOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidCode):
		return telemetry.OutcomeInvalid
	case errors.Is(err, domain.ErrCodeExpired):
		return telemetry.OutcomeExpired
	case errors.Is(err, domain.ErrOTPNotFound):
		return telemetry.OutcomeNotFound
	default:
		return telemetry.OutcomeError
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
