package routes_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/domain"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/infra/config"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/transport/http/middleware"
	httproutes "github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/transport/http/routes"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/usecase"
)

var pathParam = regexp.MustCompile(`:(\w+)`)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error        { return f(ctx) }
func (f pingFunc) HealthCheck(ctx context.Context) error { return f(ctx) }

type rejectingResolver struct{}

func (rejectingResolver) Authenticate(string) (domain.Claims, error) {
	return nil, domain.ErrInvalidSignature
}

func (rejectingResolver) ResolveUser(context.Context, domain.Claims) (domain.User, error) {
	return domain.User{}, domain.ErrPrincipalNotFound
}

func (rejectingResolver) ResolveAdmin(context.Context, domain.Claims) (domain.Admin, error) {
	return domain.Admin{}, domain.ErrPrincipalNotFound
}

func newEngine(t *testing.T, deps httproutes.Dependencies) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if deps.Config == nil {
		deps.Config = &config.AppConfig{App: config.AppSettings{Name: "devclub-api", Env: "test"}}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return httproutes.Register(deps)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	r := newEngine(t, httproutes.Dependencies{})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestReadinessReportsDependencies(t *testing.T) {
	r := newEngine(t, httproutes.Dependencies{
		Database: pingFunc(func(context.Context) error { return nil }),
		Cache:    pingFunc(func(context.Context) error { return errors.New("redis down") }),
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"redis":"unavailable"`)
	assert.Contains(t, w.Body.String(), `"database":"ok"`)
}

func TestMetricsEndpointServesRequestCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{Registerer: reg})
	require.NoError(t, err)

	r := newEngine(t, httproutes.Dependencies{Metrics: metrics, Gatherer: reg})

	serve(r, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	w := serve(r, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "devclub_http_requests_total")
	assert.Contains(t, w.Body.String(), `route="/healthz"`)
}

func TestAdminRoutesRequireBearerToken(t *testing.T) {
	r := newEngine(t, httproutes.Dependencies{
		Services: httproutes.ServiceSet{
			AdminAuth:  &usecase.AdminAuthService{},
			Events:     &usecase.EventService{},
			Principals: rejectingResolver{},
		},
	})

	for _, path := range []string{"/api/admin/profile", "/api/admin/events"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer forged.token.value")
		w := serve(r, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
		assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"), path)
		assert.True(t, strings.Contains(w.Body.String(), "could not validate credentials"), path)
	}
}

func TestCORSPreflightForConfiguredOrigin(t *testing.T) {
	cfg := &config.AppConfig{
		App:  config.AppSettings{Name: "devclub-api", Env: "test"},
		CORS: config.CORSSettings{AllowedOrigins: []string{"https://devclub.example"}},
	}
	r := newEngine(t, httproutes.Dependencies{Config: cfg})

	req := httptest.NewRequest(http.MethodOptions, "/api/register", nil)
	req.Header.Set("Origin", "https://devclub.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := serve(r, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://devclub.example", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSwaggerDocumentsEveryAPIRoute(t *testing.T) {
	r := newEngine(t, httproutes.Dependencies{
		Services: httproutes.ServiceSet{
			Registration:  &usecase.RegistrationService{},
			AdminAuth:     &usecase.AdminAuthService{},
			Analytics:     &usecase.AnalyticsService{},
			Events:        &usecase.EventService{},
			Announcements: &usecase.AnnouncementService{},
			Students:      &usecase.StudentService{},
			Reference:     &usecase.ReferenceService{},
			Principals:    rejectingResolver{},
		},
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/docs/doc.json", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var doc struct {
		Info  struct{ Title string }                `json:"info"`
		Paths map[string]map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "DevClub API", doc.Info.Title)

	documented := 0
	for _, route := range r.Routes() {
		if route.Path == "/metrics" || strings.HasPrefix(route.Path, "/docs/") {
			continue
		}
		path := pathParam.ReplaceAllString(route.Path, "{$1}")
		ops, ok := doc.Paths[path]
		if assert.True(t, ok, "undocumented path %s", path) {
			assert.Contains(t, ops, strings.ToLower(route.Method), path)
			documented++
		}
	}
	assert.Equal(t, 34, documented)

	w = serve(r, httptest.NewRequest(http.MethodGet, "/docs/index.html", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "swagger-ui")
}
