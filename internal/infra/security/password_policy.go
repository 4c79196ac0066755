package security

import (
	"fmt"
	"strings"
	"unicode/utf8"

	zxcvbn "github.com/nbutton23/zxcvbn-go"

	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/domain"
)

const (
	defaultMinPasswordLength = 8
	// MaxPasswordBytes is the longest input bcrypt accepts.
	MaxPasswordBytes = 72
)

// PasswordPolicy rejects short or easily guessed passwords at registration.
type PasswordPolicy struct {
	minLength int
	minScore  int
}

// NewPasswordPolicy builds a policy enforcing minScore on the zxcvbn 0-4
// scale. A minScore of zero disables the strength check.
func NewPasswordPolicy(minLength, minScore int) *PasswordPolicy {
	if minLength <= 0 {
		minLength = defaultMinPasswordLength
	}
	if minScore > 4 {
		minScore = 4
	}
	return &PasswordPolicy{minLength: minLength, minScore: minScore}
}

// Validate checks password, penalising reuse of userInputs such as the
// email or full name.
func (p *PasswordPolicy) Validate(password string, userInputs ...string) error {
	if utf8.RuneCountInString(password) < p.minLength {
		return fmt.Errorf("password must be at least %d characters long: %w", p.minLength, domain.ErrValidation)
	}
	if len(password) > MaxPasswordBytes {
		return fmt.Errorf("password must be at most %d bytes long: %w", MaxPasswordBytes, domain.ErrValidation)
	}
	if p.minScore <= 0 {
		return nil
	}

	inputs := make([]string, 0, len(userInputs)*2)
	for _, in := range userInputs {
		in = strings.TrimSpace(in)
		if in == "" {
			continue
		}
		inputs = append(inputs, in)
		if local, _, ok := strings.Cut(in, "@"); ok && local != "" {
			inputs = append(inputs, local)
		}
	}

	if result := zxcvbn.PasswordStrength(password, inputs); result.Score < p.minScore {
		return fmt.Errorf("password is too weak: %w", domain.ErrValidation)
	}
	return nil
}
