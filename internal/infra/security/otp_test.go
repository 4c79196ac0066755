package security

import (
	"errors"
	"testing"
	"time"

	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/domain"
)

func TestGenerateOTPFormat(t *testing.T) {
	gen := NewOTPGenerator()
	seen := make(map[string]struct{})

	for i := 0; i < 200; i++ {
		code, err := gen.Generate()
		if err != nil {
			t.Fatalf("Generate returned error: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("expected 6 digits, got %q", code)
		}
		for _, r := range code {
			if r < '0' || r > '9' {
				t.Fatalf("non digit in code %q", code)
			}
		}
		seen[code] = struct{}{}
	}

	if len(seen) < 150 {
		t.Fatalf("codes look predictable: only %d distinct out of 200", len(seen))
	}
}

func TestValidateOTP(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	code := "042917"
	expiry := now.Add(10 * time.Minute)

	cases := []struct {
		name      string
		submitted string
		stored    *string
		expiry    *time.Time
		now       time.Time
		want      error
	}{
		{name: "no pending code", submitted: code, stored: nil, expiry: &expiry, now: now, want: domain.ErrOTPNotFound},
		{name: "no pending expiry", submitted: code, stored: &code, expiry: nil, now: now, want: domain.ErrOTPNotFound},
		{name: "wrong code", submitted: "042918", stored: &code, expiry: &expiry, now: now, want: domain.ErrInvalidCode},
		{name: "wrong length", submitted: "42917", stored: &code, expiry: &expiry, now: now, want: domain.ErrInvalidCode},
		{name: "expired", submitted: code, stored: &code, expiry: &expiry, now: expiry.Add(time.Second), want: domain.ErrCodeExpired},
		{name: "at expiry", submitted: code, stored: &code, expiry: &expiry, now: expiry},
		{name: "valid", submitted: code, stored: &code, expiry: &expiry, now: now},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateOTP(tc.submitted, tc.stored, tc.expiry, tc.now)
			if tc.want == nil {
				if err != nil {
					t.Fatalf("expected success, got %v", err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}
