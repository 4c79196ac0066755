package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/domain"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/transport/http/middleware"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/usecase"
)

// verifyCases map OTP verification failures.
var verifyCases = []ErrorCase{
	{Err: domain.ErrOTPNotFound, Status: http.StatusNotFound, Message: "no pending verification"},
	{Err: domain.ErrPrincipalNotFound, Status: http.StatusNotFound, Message: "user not found"},
	{Err: domain.ErrInvalidCode, Status: http.StatusBadRequest, Message: "invalid otp code"},
	{Err: domain.ErrCodeExpired, Status: http.StatusBadRequest, Message: "otp code has expired"},
}

// AuthHandler exposes member registration and verification endpoints.
type AuthHandler struct {
	registration *usecase.RegistrationService
	resolver     middleware.PrincipalResolver
	logger       *zap.Logger
	now          func() time.Time
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(registration *usecase.RegistrationService, resolver middleware.PrincipalResolver, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{
		registration: registration,
		resolver:     resolver,
		logger:       logger,
		now:          time.Now,
	}
}

// RegisterRoutes binds member routes.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/register", h.register)
	r.POST("/verify-otp", h.verifyOTP)
	r.POST("/resend-otp", h.resendOTP)
	r.GET("/me", middleware.RequireUser(h.resolver), h.me)
}

// register creates an inactive account and emails a verification code.
//
// @Summary Register a student account
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Request body"
// @Success 201 {object} UserResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/register [post]
func (h *AuthHandler) register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid registration payload")
		return
	}

	user, err := h.registration.Register(c.Request.Context(), usecase.RegistrationInput{
		RegistrationNumber: req.RegistrationNumber,
		RegistrationYear:   req.RegistrationYear,
		FullName:           req.FullName,
		Email:              req.Email,
		Password:           req.Password,
		WilayaCode:         req.WilayaCode,
		CommuneName:        req.CommuneName,
		FacultyID:          req.FacultyID,
		DepartmentID:       req.DepartmentID,
		Level:              req.Level,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, newUserResponse(user))
}

// verifyOTP activates the account and returns a user token.
//
// @Summary Activate an account with its emailed code
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body VerifyOTPRequest true "Request body"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /api/verify-otp [post]
func (h *AuthHandler) verifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid verification payload")
		return
	}

	token, err := h.registration.VerifyOTP(c.Request.Context(), req.Email, req.OTPCode)
	if err != nil {
		respondError(c, h.logger, err, verifyCases...)
		return
	}

	c.JSON(http.StatusOK, newTokenResponse(token, h.now()))
}

// resendOTP issues a fresh code for an inactive account.
//
// @Summary Send a fresh verification code
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body ResendOTPRequest true "Request body"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /api/resend-otp [post]
func (h *AuthHandler) resendOTP(c *gin.Context) {
	var req ResendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid resend payload")
		return
	}

	if err := h.registration.ResendOTP(c.Request.Context(), req.Email); err != nil {
		respondError(c, h.logger, err, verifyCases...)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "verification code sent"})
}

// me godoc
// @Summary Current user
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /api/me [get]
func (h *AuthHandler) me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, middleware.CredentialsErrorMessage))
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user))
}
