package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	appLogger "github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/infra/logger"
)

func TestRecoveryReturnsGenericError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.ErrorLevel)

	r := gin.New()
	r.Use(EnrichContext(), Recovery(zap.New(core)))
	r.GET("/boom", func(*gin.Context) { panic("secret database password leaked") })

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "internal server error")
	assert.NotContains(t, rr.Body.String(), "secret")
	assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:5173"}))
	r.GET("/api/data/faculties", func(c *gin.Context) { c.Status(http.StatusOK) })

	preflight := httptest.NewRequest(http.MethodOptions, "/api/data/faculties", nil)
	preflight.Header.Set("Origin", "http://localhost:5173")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, preflight)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "http://localhost:5173", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Headers"), "Authorization")

	foreign := httptest.NewRequest(http.MethodGet, "/api/data/faculties", nil)
	foreign.Header.Set("Origin", "https://evil.example")
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, foreign)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestIDAndTraceHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), EnrichContext())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, GetTraceID(c)) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, "req-123", rr.Header().Get("X-Request-ID"))
	assert.NotEmpty(t, rr.Header().Get(TraceIDHeader))
	assert.Equal(t, rr.Header().Get(TraceIDHeader), rr.Body.String())
}

func TestRequestIDReplacesUnsafeValues(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, appLogger.RequestIDFromContext(c.Request.Context()))
	})

	for name, incoming := range map[string]string{
		"missing":   "",
		"too long":  strings.Repeat("a", 129),
		"log break": "abc\tdef",
		"spaces":    "hello world",
		"non ascii": "req-é",
	} {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		if incoming != "" {
			req.Header.Set("X-Request-ID", incoming)
		}
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		got := rr.Header().Get("X-Request-ID")
		assert.NotEqual(t, incoming, got, name)
		_, err := uuid.Parse(got)
		assert.NoError(t, err, name)
		assert.Equal(t, got, rr.Body.String(), name)
	}

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "edge:lb-01_7f.3")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, "edge:lb-01_7f.3", rr.Header().Get("X-Request-ID"))
}

func TestTracingContinuesIncomingTrace(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	r := gin.New()
	r.Use(Tracing(TracingOptions{TracerProvider: provider, Propagators: propagation.TraceContext{}}), EnrichContext())
	r.GET("/api/admin/events/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/api/admin/events/4", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	spans := recorder.Ended()
	if assert.Len(t, spans, 1) {
		assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", spans[0].SpanContext().TraceID().String())
	}
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", rr.Header().Get(TraceIDHeader))
}
