package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/domain"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/infra/logger"
)

const (
	userKey   = "principal_user"
	adminKey  = "principal_admin"
	claimsKey = "principal_claims"

	// CredentialsErrorMessage is the only body sent for bearer authentication failures.
	CredentialsErrorMessage = "could not validate credentials"
)

// ErrorResponse is the JSON body of every error answer.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

func newErrorResponse(c *gin.Context, msg string) ErrorResponse {
	return ErrorResponse{Error: msg, TraceID: GetTraceID(c)}
}

// PrincipalResolver authenticates bearer tokens and loads their principal.
type PrincipalResolver interface {
	Authenticate(token string) (domain.Claims, error)
	ResolveUser(ctx context.Context, claims domain.Claims) (domain.User, error)
	ResolveAdmin(ctx context.Context, claims domain.Claims) (domain.Admin, error)
}

// RequireUser admits requests carrying a valid user token whose member still exists.
func RequireUser(resolver PrincipalResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := authenticate(c, resolver)
		if !ok {
			return
		}
		user, err := resolver.ResolveUser(c.Request.Context(), claims)
		if err != nil {
			rejectPrincipal(c, err)
			return
		}
		c.Set(claimsKey, claims)
		c.Set(userKey, user)
		c.Next()
	}
}

// RequireAdmin admits requests carrying a valid admin token whose admin still exists.
func RequireAdmin(resolver PrincipalResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := authenticate(c, resolver)
		if !ok {
			return
		}
		admin, err := resolver.ResolveAdmin(c.Request.Context(), claims)
		if err != nil {
			rejectPrincipal(c, err)
			return
		}
		c.Set(claimsKey, claims)
		c.Set(adminKey, admin)
		c.Next()
	}
}

// CurrentUser returns the member attached by RequireUser.
func CurrentUser(c *gin.Context) (domain.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return domain.User{}, false
	}
	user, ok := v.(domain.User)
	return user, ok
}

// CurrentAdmin returns the admin attached by RequireAdmin.
func CurrentAdmin(c *gin.Context) (domain.Admin, bool) {
	v, ok := c.Get(adminKey)
	if !ok {
		return domain.Admin{}, false
	}
	admin, ok := v.(domain.Admin)
	return admin, ok
}

func authenticate(c *gin.Context, resolver PrincipalResolver) (domain.Claims, bool) {
	token, ok := bearerToken(c.GetHeader("Authorization"))
	if !ok {
		unauthorized(c)
		return nil, false
	}
	claims, err := resolver.Authenticate(token)
	if err != nil {
		rejectPrincipal(c, err)
		return nil, false
	}
	return claims, true
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func rejectPrincipal(c *gin.Context, err error) {
	if domain.IsAuthFailure(err) {
		logger.WithContext(c.Request.Context()).Debug("bearer authentication failed", zap.Error(err))
		unauthorized(c)
		return
	}
	logger.WithContext(c.Request.Context()).Error("principal resolution failed", zap.Error(err))
	c.AbortWithStatusJSON(http.StatusInternalServerError, newErrorResponse(c, "internal server error"))
}

func unauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, newErrorResponse(c, CredentialsErrorMessage))
}
