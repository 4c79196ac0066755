package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"

	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/domain"
)

const (
	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2id = "argon2id"

	argon2Version = "v=19"
)

var errInvalidConfig = errors.New("hasher: invalid configuration")

// HasherConfig selects the algorithm used for new hashes and its cost parameters.
type HasherConfig struct {
	Algorithm         string
	BcryptCost        int
	Argon2Memory      uint32
	Argon2Iterations  uint32
	Argon2Parallelism uint8
	SaltLength        uint32
	KeyLength         uint32
}

// DefaultHasherConfig mirrors the configuration defaults.
func DefaultHasherConfig() HasherConfig {
	return HasherConfig{
		Algorithm:         AlgorithmBcrypt,
		BcryptCost:        bcrypt.DefaultCost,
		Argon2Memory:      64 * 1024,
		Argon2Iterations:  3,
		Argon2Parallelism: 4,
		SaltLength:        16,
		KeyLength:         32,
	}
}

// PasswordHasher produces salted adaptive hashes. Verification detects the
// algorithm from the encoded value, so bcrypt hashes written by earlier
// deployments keep working after switching to argon2id and vice versa.
type PasswordHasher struct {
	cfg HasherConfig
}

// NewPasswordHasher validates cfg and returns a hasher.
func NewPasswordHasher(cfg HasherConfig) (*PasswordHasher, error) {
	defaults := DefaultHasherConfig()
	if cfg.Algorithm == "" {
		cfg.Algorithm = defaults.Algorithm
	}
	cfg.Algorithm = strings.ToLower(cfg.Algorithm)
	if cfg.SaltLength == 0 {
		cfg.SaltLength = defaults.SaltLength
	}
	if cfg.KeyLength == 0 {
		cfg.KeyLength = defaults.KeyLength
	}

	switch cfg.Algorithm {
	case AlgorithmBcrypt:
		if cfg.BcryptCost == 0 {
			cfg.BcryptCost = defaults.BcryptCost
		}
		if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
			return nil, fmt.Errorf("%w: bcrypt cost %d out of range", errInvalidConfig, cfg.BcryptCost)
		}
	case AlgorithmArgon2id:
		if cfg.Argon2Memory < 8*1024 {
			return nil, fmt.Errorf("%w: argon2 memory must be at least 8192", errInvalidConfig)
		}
		if cfg.Argon2Iterations == 0 || cfg.Argon2Parallelism == 0 {
			return nil, fmt.Errorf("%w: argon2 iterations and parallelism must be positive", errInvalidConfig)
		}
	default:
		return nil, fmt.Errorf("%w: unknown algorithm %q", errInvalidConfig, cfg.Algorithm)
	}

	return &PasswordHasher{cfg: cfg}, nil
}

// Algorithm reports the algorithm used for new hashes.
func (h *PasswordHasher) Algorithm() string {
	return h.cfg.Algorithm
}

// Hash returns a salted hash of password in the configured algorithm.
func (h *PasswordHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", errors.New("hasher: password is empty")
	}

	if h.cfg.Algorithm == AlgorithmArgon2id {
		return h.hashArgon2(password)
	}

	sum, err := bcrypt.GenerateFromPassword([]byte(password), h.cfg.BcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", fmt.Errorf("password must be at most %d bytes long: %w", MaxPasswordBytes, domain.ErrValidation)
	}
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(sum), nil
}

// Verify reports whether password matches encoded. Malformed hashes never match.
func (h *PasswordHasher) Verify(password, encoded string) bool {
	if password == "" || encoded == "" {
		return false
	}

	switch {
	case isBcryptHash(encoded):
		return bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password)) == nil
	case strings.HasPrefix(encoded, AlgorithmArgon2id+"$"):
		return verifyArgon2(password, encoded)
	default:
		return false
	}
}

func isBcryptHash(encoded string) bool {
	return strings.HasPrefix(encoded, "$2a$") ||
		strings.HasPrefix(encoded, "$2b$") ||
		strings.HasPrefix(encoded, "$2y$")
}

// Format: argon2id$v=19$m=<memory>,t=<iterations>,p=<parallelism>$<salt>$<hash>
func (h *PasswordHasher) hashArgon2(password string) (string, error) {
	salt := make([]byte, h.cfg.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("argon2: generate salt: %w", err)
	}

	sum := argon2.IDKey([]byte(password), salt, h.cfg.Argon2Iterations, h.cfg.Argon2Memory, h.cfg.Argon2Parallelism, h.cfg.KeyLength)

	return strings.Join([]string{
		AlgorithmArgon2id,
		argon2Version,
		fmt.Sprintf("m=%d,t=%d,p=%d", h.cfg.Argon2Memory, h.cfg.Argon2Iterations, h.cfg.Argon2Parallelism),
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(sum),
	}, "$"), nil
}

func verifyArgon2(password, encoded string) bool {
	parts := strings.Split(encoded, "$")
	if len(parts) != 5 || parts[1] != argon2Version {
		return false
	}

	memory, iterations, parallelism, ok := parseArgon2Params(parts[2])
	if !ok {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[3])
	if err != nil || len(salt) == 0 {
		return false
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(expected) == 0 {
		return false
	}

	computed := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, uint32(len(expected)))
	return subtle.ConstantTimeCompare(computed, expected) == 1
}

func parseArgon2Params(segment string) (memory, iterations uint32, parallelism uint8, ok bool) {
	for _, entry := range strings.Split(segment, ",") {
		key, value, found := strings.Cut(entry, "=")
		if !found {
			return 0, 0, 0, false
		}
		switch key {
		case "m":
			v, err := strconv.ParseUint(value, 10, 32)
			if err != nil {
				return 0, 0, 0, false
			}
			memory = uint32(v)
		case "t":
			v, err := strconv.ParseUint(value, 10, 32)
			if err != nil {
				return 0, 0, 0, false
			}
			iterations = uint32(v)
		case "p":
			v, err := strconv.ParseUint(value, 10, 8)
			if err != nil {
				return 0, 0, 0, false
			}
			parallelism = uint8(v)
		default:
			return 0, 0, 0, false
		}
	}
	// Guard against hostile parameters before running the KDF.
	if memory < 8*1024 || memory > 1024*1024 || iterations == 0 || iterations > 16 || parallelism == 0 {
		return 0, 0, 0, false
	}
	return memory, iterations, parallelism, true
}
