package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/core/domain"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/repository"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/transport/http/middleware"
)

const internalErrorMessage = "internal server error"

// ErrorCase maps a sentinel error to an HTTP status code and response message.
// An empty Message answers with the error text minus the sentinel suffix.
type ErrorCase struct {
	Err     error
	Status  int
	Message string
}

// commonCases apply to every handler after its own cases.
var commonCases = []ErrorCase{
	{Err: repository.ErrInvalidReference, Status: http.StatusBadRequest, Message: "referenced entity does not exist"},
	{Err: repository.ErrValueTooLong, Status: http.StatusBadRequest, Message: "value too long"},
	{Err: domain.ErrValidation, Status: http.StatusBadRequest},
	{Err: domain.ErrDuplicateEntity, Status: http.StatusConflict},
}

// RespondWithMappedError resolves the provided error against known cases or falls back to a generic response.
func RespondWithMappedError(c *gin.Context, err error, cases []ErrorCase, fallbackStatus int, fallbackMessage string) {
	if err == nil {
		c.Status(http.StatusOK)
		return
	}

	for _, cs := range cases {
		if cs.Err == nil {
			continue
		}
		if errors.Is(err, cs.Err) {
			msg := cs.Message
			if msg == "" {
				msg = describeError(err, cs.Err)
			}
			c.JSON(cs.Status, NewErrorResponse(c, msg))
			return
		}
	}

	c.JSON(fallbackStatus, NewErrorResponse(c, fallbackMessage))
}

// respondError maps err with the handler cases first, then the common ones.
// Unmatched errors are logged and answered with a generic 500.
func respondError(c *gin.Context, log *zap.Logger, err error, cases ...ErrorCase) {
	all := make([]ErrorCase, 0, len(cases)+len(commonCases))
	all = append(all, cases...)
	all = append(all, commonCases...)

	for _, cs := range all {
		if errors.Is(err, cs.Err) {
			RespondWithMappedError(c, err, all, http.StatusInternalServerError, internalErrorMessage)
			return
		}
	}

	log.Error("request failed",
		zap.String("trace_id", middleware.GetTraceID(c)),
		zap.String("method", c.Request.Method),
		zap.String("route", c.FullPath()),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, NewErrorResponse(c, internalErrorMessage))
}

// describeError strips the sentinel text so callers see only the specific reason.
func describeError(err, sentinel error) string {
	msg := err.Error()
	if trimmed := strings.TrimSuffix(msg, ": "+sentinel.Error()); trimmed != "" {
		return trimmed
	}
	return msg
}

// badRequest answers binding failures.
func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, NewErrorResponse(c, msg))
}
