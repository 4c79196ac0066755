package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/domain"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/transport/http/middleware"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/usecase"
)

var loginCases = []ErrorCase{
	{Err: domain.ErrInvalidCredentials, Status: http.StatusUnauthorized, Message: "incorrect email or password"},
}

// AdminHandler exposes admin login, profile and dashboard endpoints.
type AdminHandler struct {
	auth      *usecase.AdminAuthService
	analytics *usecase.AnalyticsService
	logger    *zap.Logger
	now       func() time.Time
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(auth *usecase.AdminAuthService, analytics *usecase.AnalyticsService, logger *zap.Logger) *AdminHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminHandler{auth: auth, analytics: analytics, logger: logger, now: time.Now}
}

// RegisterPublicRoutes binds routes reachable without a token.
func (h *AdminHandler) RegisterPublicRoutes(r *gin.RouterGroup) {
	r.POST("/login", h.login)
}

// RegisterRoutes binds routes on a group already guarded by RequireAdmin.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/profile", h.profile)
	r.GET("/login-history", h.loginHistory)
	r.GET("/analytics", h.report)
}

// login accepts JSON {email,password} or the password grant form {username,password}.
//
// @Summary Admin login
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body AdminLoginRequest true "Request body"
// @Success 200 {object} AdminLoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/admin/login [post]
func (h *AdminHandler) login(c *gin.Context) {
	var req AdminLoginRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "invalid login payload")
		return
	}
	email := strings.TrimSpace(req.Email)
	if email == "" {
		email = strings.TrimSpace(req.Username)
	}

	reqCtx := middleware.GetRequestContext(c)
	token, admin, err := h.auth.Login(c.Request.Context(), email, req.Password, domain.ClientMetadata{
		IP:        reqCtx.IP,
		UserAgent: reqCtx.UserAgent,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			c.Header("WWW-Authenticate", "Bearer")
		}
		respondError(c, h.logger, err, loginCases...)
		return
	}

	c.JSON(http.StatusOK, AdminLoginResponse{
		TokenResponse: newTokenResponse(token, h.now()),
		Admin:         newAdminResponse(admin),
	})
}

// profile godoc
// @Summary Calling admin's profile
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} AdminResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/admin/profile [get]
func (h *AdminHandler) profile(c *gin.Context) {
	admin, ok := currentAdmin(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newAdminResponse(admin))
}

// loginHistory returns the latest logins of the calling admin.
//
// @Summary Latest logins of the calling admin
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} LoginHistoryResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/admin/login-history [get]
func (h *AdminHandler) loginHistory(c *gin.Context) {
	admin, ok := currentAdmin(c)
	if !ok {
		return
	}

	history, err := h.auth.LoginHistory(c.Request.Context(), admin.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, mapSlice(history, func(row domain.AdminLoginHistory) LoginHistoryResponse {
		return LoginHistoryResponse{
			ID:        row.ID,
			AdminID:   row.AdminID,
			LoginTime: row.LoginTime,
			IPAddress: row.IPAddress,
			UserAgent: row.UserAgent,
		}
	}))
}

// report godoc
// @Summary Dashboard counts
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} AnalyticsResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/admin/analytics [get]
func (h *AdminHandler) report(c *gin.Context) {
	report, err := h.analytics.Report(c.Request.Context(), h.now())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, newAnalyticsResponse(report))
}

func currentAdmin(c *gin.Context) (domain.Admin, bool) {
	admin, ok := middleware.CurrentAdmin(c)
	if !ok {
		c.Header("WWW-Authenticate", "Bearer")
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, middleware.CredentialsErrorMessage))
	}
	return admin, ok
}
