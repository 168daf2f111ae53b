// Package http provides HTTP handlers for storing and revealing secrets.
// Authentication happens in middleware; authorization happens in the use case.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/sealed/internal/crypto/domain"
	"github.com/allisson/sealed/internal/httputil"
	"github.com/allisson/sealed/internal/secrets/http/dto"
	secretsUseCase "github.com/allisson/sealed/internal/secrets/usecase"
	customValidation "github.com/allisson/sealed/internal/validation"
)

// SecretHandler handles HTTP requests for secret operations.
type SecretHandler struct {
	secretUseCase secretsUseCase.SecretUseCase
	logger        *slog.Logger
}

// NewSecretHandler creates a new secret handler with required dependencies.
func NewSecretHandler(secretUseCase secretsUseCase.SecretUseCase, logger *slog.Logger) *SecretHandler {
	return &SecretHandler{
		secretUseCase: secretUseCase,
		logger:        logger,
	}
}

// StoreHandler encrypts and stores a new secret.
// POST /v1/secrets - Requires secret:write.
// Returns 201 Created with secret metadata.
func (h *SecretHandler) StoreHandler(c *gin.Context) {
	var req dto.StoreSecretRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	plaintext := []byte(*req.Plaintext)
	defer cryptoDomain.Zero(plaintext)

	meta, err := h.secretUseCase.StoreSecret(c.Request.Context(), req.TenantID, req.OwnerID, plaintext)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapSecretMetaToResponse(meta))
}

// GetMetaHandler returns secret metadata.
// GET /v1/secrets/:id - Requires an identity in the record's tenant.
func (h *SecretHandler) GetMetaHandler(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	meta, err := h.secretUseCase.GetSecretMeta(c.Request.Context(), id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSecretMetaToResponse(meta))
}

// RevealHandler decrypts a secret.
// POST /v1/secrets/:id/reveal - Requires secret:read.
// SECURITY: The plaintext buffer is zeroed once the response is built.
func (h *SecretHandler) RevealHandler(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	plaintext, err := h.secretUseCase.RevealSecret(c.Request.Context(), id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	defer cryptoDomain.Zero(plaintext)

	c.JSON(http.StatusOK, dto.RevealSecretResponse{Plaintext: string(plaintext)})
}

func (h *SecretHandler) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("invalid secret id"), h.logger)
		return uuid.Nil, false
	}
	return id, true
}
