// Package httputil provides HTTP utility functions for request and response handling.
package httputil

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/sealed/internal/errors"
)

// ErrorResponse represents a structured error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// errorMapping binds a sentinel error to its HTTP status and public code.
type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// errorMappings is evaluated in order; more specific sentinels come before
// the broader ones they wrap.
var errorMappings = []errorMapping{
	{apperrors.ErrTokenInvalid, http.StatusUnauthorized, "token_invalid", "The bearer token is missing or invalid"},
	{apperrors.ErrUnauthorized, http.StatusUnauthorized, "unauthorized", "Authentication is required"},
	{
		apperrors.ErrCrossTenantDenied, http.StatusForbidden, "cross_tenant_denied",
		"Access to another tenant's data is not allowed",
	},
	{
		apperrors.ErrInsufficientScope, http.StatusForbidden, "insufficient_scope",
		"The token does not grant the required scope",
	},
	{
		apperrors.ErrForbidden, http.StatusForbidden, "forbidden",
		"You don't have permission to access this resource",
	},
	{apperrors.ErrNotFound, http.StatusNotFound, "not_found", "The requested resource was not found"},
	{apperrors.ErrConflict, http.StatusConflict, "conflict", "A conflict occurred with existing data"},
	{
		apperrors.ErrAuthenticationFailure, http.StatusUnprocessableEntity, "authentication_failure",
		"The stored secret failed integrity verification",
	},
	{apperrors.ErrInvalidInput, http.StatusUnprocessableEntity, "invalid_input", ""},
	{
		apperrors.ErrKeyServiceUnavailable, http.StatusServiceUnavailable, "key_service_unavailable",
		"The key management service is unavailable",
	},
	{
		apperrors.ErrUnavailable, http.StatusServiceUnavailable, "service_unavailable",
		"A dependency is temporarily unavailable",
	},
}

// HandleErrorGin maps domain errors to HTTP status codes and returns a JSON response using Gin.
//
// Messages are fixed per error class; only invalid input echoes the error text.
// The full error chain is logged.
func HandleErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if err == nil {
		return
	}

	statusCode := http.StatusInternalServerError
	errorResponse := ErrorResponse{Error: "internal_error", Message: "An internal error occurred"}
	for _, m := range errorMappings {
		if !apperrors.Is(err, m.target) {
			continue
		}
		statusCode = m.status
		errorResponse = ErrorResponse{Error: m.code, Message: m.message}
		if errorResponse.Message == "" {
			errorResponse.Message = err.Error()
		}
		break
	}

	if logger != nil {
		level := slog.LevelWarn
		if statusCode >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, "request failed",
			slog.Int("status_code", statusCode),
			slog.String("error_code", errorResponse.Error),
			slog.Any("error", err),
		)
	}

	c.JSON(statusCode, errorResponse)
}

// HandleBadRequestGin writes a 400 Bad Request response for malformed JSON or parameters using Gin.
func HandleBadRequestGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("bad request", slog.Any("error", err))
	}

	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "bad_request",
		Message: "The request body or parameters are malformed",
	})
}

// HandleValidationErrorGin writes a 422 Unprocessable Entity response for validation errors using Gin.
func HandleValidationErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("validation failed", slog.Any("error", err))
	}

	c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
		Error:   "invalid_input",
		Message: err.Error(),
	})
}
