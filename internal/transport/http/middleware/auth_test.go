package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/domain"
)

type stubResolver struct {
	claims     map[string]domain.Claims
	resolveErr error
}

func (r stubResolver) Authenticate(token string) (domain.Claims, error) {
	claims, ok := r.claims[token]
	if !ok {
		return nil, fmt.Errorf("parse: %w", domain.ErrInvalidSignature)
	}
	return claims, nil
}

func (r stubResolver) ResolveUser(_ context.Context, claims domain.Claims) (domain.User, error) {
	if r.resolveErr != nil {
		return domain.User{}, r.resolveErr
	}
	uc, ok := claims.(domain.UserClaims)
	if !ok {
		return domain.User{}, domain.ErrMalformedClaims
	}
	return domain.User{ID: 1, Email: uc.Email}, nil
}

func (r stubResolver) ResolveAdmin(_ context.Context, claims domain.Claims) (domain.Admin, error) {
	if r.resolveErr != nil {
		return domain.Admin{}, r.resolveErr
	}
	ac, ok := claims.(domain.AdminClaims)
	if !ok {
		return domain.Admin{}, domain.ErrMalformedClaims
	}
	return domain.Admin{ID: ac.AdminID, Email: ac.Email}, nil
}

func newAuthRouter(resolver PrincipalResolver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(EnrichContext())
	r.GET("/me", RequireUser(resolver), func(c *gin.Context) {
		user, _ := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"email": user.Email})
	})
	r.GET("/admin", RequireAdmin(resolver), func(c *gin.Context) {
		admin, _ := CurrentAdmin(c)
		c.JSON(http.StatusOK, gin.H{"id": admin.ID})
	})
	return r
}

func TestRequireUserAndAdmin(t *testing.T) {
	resolver := stubResolver{claims: map[string]domain.Claims{
		"user-token":  domain.UserClaims{Email: "a@x.com"},
		"admin-token": domain.AdminClaims{Email: "admin@devclub.dz", AdminID: 7},
	}}
	router := newAuthRouter(resolver)

	tests := []struct {
		name       string
		path       string
		header     string
		wantStatus int
	}{
		{name: "user ok", path: "/me", header: "Bearer user-token", wantStatus: http.StatusOK},
		{name: "lowercase scheme", path: "/me", header: "bearer user-token", wantStatus: http.StatusOK},
		{name: "admin ok", path: "/admin", header: "Bearer admin-token", wantStatus: http.StatusOK},
		{name: "missing header", path: "/me", wantStatus: http.StatusUnauthorized},
		{name: "basic scheme", path: "/me", header: "Basic dXNlcjpwYXNz", wantStatus: http.StatusUnauthorized},
		{name: "empty token", path: "/me", header: "Bearer ", wantStatus: http.StatusUnauthorized},
		{name: "bad token", path: "/me", header: "Bearer forged", wantStatus: http.StatusUnauthorized},
		{name: "user token on admin route", path: "/admin", header: "Bearer user-token", wantStatus: http.StatusUnauthorized},
		{name: "admin token on user route", path: "/me", header: "Bearer admin-token", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Equal(t, "Bearer", rr.Header().Get("WWW-Authenticate"))
				var body ErrorResponse
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
				assert.Equal(t, CredentialsErrorMessage, body.Error)
				assert.NotEmpty(t, body.TraceID)
			}
		})
	}
}

func TestRequireAdminMissingPrincipal(t *testing.T) {
	resolver := stubResolver{
		claims:     map[string]domain.Claims{"admin-token": domain.AdminClaims{Email: "admin@devclub.dz", AdminID: 7}},
		resolveErr: fmt.Errorf("admin 7: %w", domain.ErrPrincipalNotFound),
	}
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	newAuthRouter(resolver).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRequireAdminStoreFailure(t *testing.T) {
	resolver := stubResolver{
		claims:     map[string]domain.Claims{"admin-token": domain.AdminClaims{Email: "admin@devclub.dz", AdminID: 7}},
		resolveErr: errors.New("dial tcp: connection refused"),
	}
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	newAuthRouter(resolver).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "connection refused")
}
