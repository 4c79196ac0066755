package telemetry

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "devclub"

// Outcome labels shared by the authentication counters.
const (
	OutcomeSuccess  = "success"
	OutcomeInvalid  = "invalid"
	OutcomeExpired  = "expired"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// AuthMetrics counts authentication flows and notification delivery.
type AuthMetrics struct {
	OTPVerifications     *prometheus.CounterVec
	AdminLogins          *prometheus.CounterVec
	NotificationFailures prometheus.Counter
}

// NewAuthMetrics registers the authentication collectors with reg, reusing
// collectors that are already registered. A nil reg uses the default registerer.
func NewAuthMetrics(reg prometheus.Registerer) (*AuthMetrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	otp, err := Register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "otp_verifications_total",
		Help:      "OTP verification attempts partitioned by outcome.",
	}, []string{"outcome"}))
	if err != nil {
		return nil, err
	}

	logins, err := Register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "admin_logins_total",
		Help:      "Admin login attempts partitioned by outcome.",
	}, []string{"outcome"}))
	if err != nil {
		return nil, err
	}

	failures, err := Register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "notification",
		Name:      "failures_total",
		Help:      "Notifications dropped because the queue was full or delivery failed.",
	}))
	if err != nil {
		return nil, err
	}

	return &AuthMetrics{
		OTPVerifications:     otp,
		AdminLogins:          logins,
		NotificationFailures: failures,
	}, nil
}

// ObserveOTPVerification increments the OTP counter. Safe on a nil receiver.
func (m *AuthMetrics) ObserveOTPVerification(outcome string) {
	if m == nil {
		return
	}
	m.OTPVerifications.WithLabelValues(outcome).Inc()
}

// ObserveAdminLogin increments the admin login counter. Safe on a nil receiver.
func (m *AuthMetrics) ObserveAdminLogin(outcome string) {
	if m == nil {
		return
	}
	m.AdminLogins.WithLabelValues(outcome).Inc()
}

// Register adds c to reg. When an identical collector is already registered
// the existing one is returned so constructors can run more than once per process.
func Register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}

	var already prometheus.AlreadyRegisteredError
	if !errors.As(err, &already) {
		return c, fmt.Errorf("register collector: %w", err)
	}
	existing, ok := already.ExistingCollector.(C)
	if !ok {
		return c, fmt.Errorf("existing collector has unexpected type %T", already.ExistingCollector)
	}
	return existing, nil
}
