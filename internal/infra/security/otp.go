package security

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"time"

	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/domain"
)

const otpDigits = 6

var otpSpace = big.NewInt(1_000_000)

// OTPGenerator draws six digit codes uniformly from 000000-999999.
type OTPGenerator struct{}

// NewOTPGenerator returns a crypto/rand backed generator.
func NewOTPGenerator() *OTPGenerator {
	return &OTPGenerator{}
}

// Generate returns a zero padded six digit code.
func (OTPGenerator) Generate() (string, error) {
	n, err := rand.Int(rand.Reader, otpSpace)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%0*d", otpDigits, n.Int64()), nil
}

// ValidateOTP checks a submitted code against the pending one. The expiry
// instant itself is still valid.
func ValidateOTP(submitted string, stored *string, expiry *time.Time, now time.Time) error {
	if stored == nil || expiry == nil {
		return domain.ErrOTPNotFound
	}
	if subtle.ConstantTimeCompare([]byte(submitted), []byte(*stored)) != 1 {
		return domain.ErrInvalidCode
	}
	if now.After(*expiry) {
		return domain.ErrCodeExpired
	}
	return nil
}
