package telemetry

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"

	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/infra/config"
)

func TestNewAuthMetricsReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()

	first, err := NewAuthMetrics(reg)
	if err != nil {
		t.Fatalf("NewAuthMetrics returned error: %v", err)
	}
	second, err := NewAuthMetrics(reg)
	if err != nil {
		t.Fatalf("second NewAuthMetrics returned error: %v", err)
	}

	first.ObserveOTPVerification(OutcomeSuccess)
	second.ObserveOTPVerification(OutcomeSuccess)
	second.ObserveAdminLogin(OutcomeInvalid)
	second.NotificationFailures.Inc()

	if got := testutil.ToFloat64(first.OTPVerifications.WithLabelValues(OutcomeSuccess)); got != 2 {
		t.Fatalf("expected shared otp counter at 2, got %v", got)
	}
	if got := testutil.ToFloat64(first.AdminLogins.WithLabelValues(OutcomeInvalid)); got != 1 {
		t.Fatalf("expected admin login counter at 1, got %v", got)
	}
	if got := testutil.ToFloat64(first.NotificationFailures); got != 1 {
		t.Fatalf("expected notification failures at 1, got %v", got)
	}
}

func TestAuthMetricsNilReceiver(t *testing.T) {
	var m *AuthMetrics
	m.ObserveAdminLogin(OutcomeSuccess)
	m.ObserveOTPVerification(OutcomeExpired)
}

func TestRegisterRejectsConflictingType(t *testing.T) {
	reg := prometheus.NewRegistry()
	opts := prometheus.CounterOpts{Name: "devclub_conflict", Help: "conflict"}

	if _, err := Register(reg, prometheus.NewCounterVec(opts, []string{"outcome"})); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if _, err := Register(reg, prometheus.NewCounter(opts)); err == nil {
		t.Fatal("expected conflicting registration to fail")
	}
}

func TestTracerProviderRecordsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp, err := newTracerProvider(context.Background(),
		config.TelemetrySettings{ServiceName: "devclub-api", SamplingRate: 1},
		"test", sdktrace.WithSpanProcessor(recorder), zap.NewNop())
	if err != nil {
		t.Fatalf("newTracerProvider returned error: %v", err)
	}

	_, span := tp.Tracer("test").Start(context.Background(), "register")
	span.End()

	if spans := recorder.Ended(); len(spans) != 1 || spans[0].Name() != "register" {
		t.Fatalf("unexpected spans: %v", spans)
	}
	if err := tp.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown returned error: %v", err)
	}
}
