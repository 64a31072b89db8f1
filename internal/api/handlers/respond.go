package handlers

import (
	"errors"
	"net/http"

	"github.com/certcast/core/internal/generate"
	"github.com/certcast/core/internal/mailbox"
	"github.com/certcast/core/internal/oauth"
	"github.com/certcast/core/internal/provider"
	"github.com/certcast/core/internal/publish"
	"github.com/certcast/core/internal/services"
	"github.com/gin-gonic/gin"
)

// respondOK writes the standard success envelope.
func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

// respondError maps a pipeline error onto the HTTP error envelope. Upstream
// provider status and message are preserved verbatim for diagnosis.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	code := "INTERNAL_ERROR"

	var provErr *provider.Error
	switch {
	case errors.As(err, &provErr):
		status = http.StatusBadGateway
		code = "PROVIDER_ERROR"
	case errors.Is(err, mailbox.ErrAuthExpired) || errors.Is(err, publish.ErrAuthExpired):
		status = http.StatusUnauthorized
		code = "AUTH_EXPIRED"
	case errors.Is(err, generate.ErrNotConfigured) || errors.Is(err, oauth.ErrNotConfigured):
		status = http.StatusBadRequest
		code = "CONFIG_ERROR"
	case errors.Is(err, generate.ErrEmptyResponse):
		status = http.StatusBadGateway
		code = "EMPTY_RESPONSE"
	case errors.Is(err, publish.ErrPostTooLong):
		status = http.StatusBadRequest
		code = "VALIDATION_ERROR"
	case errors.Is(err, publish.ErrUnsupportedPlatform):
		status = http.StatusBadRequest
		code = "UNSUPPORTED_PLATFORM"
	case errors.Is(err, publish.ErrNotConnected) || errors.Is(err, services.ErrMailNotConnected):
		status = http.StatusConflict
		code = "NOT_CONNECTED"
	case errors.Is(err, oauth.ErrStateMismatch):
		status = http.StatusBadRequest
		code = "STATE_MISMATCH"
	case errors.Is(err, services.ErrPostNotFound) ||
		errors.Is(err, services.ErrCertificateNotFound):
		status = http.StatusNotFound
		code = "NOT_FOUND"
	case errors.Is(err, services.ErrAlreadyPublished):
		status = http.StatusConflict
		code = "ALREADY_PUBLISHED"
	case errors.Is(err, services.ErrInvalidSettings):
		status = http.StatusBadRequest
		code = "VALIDATION_ERROR"
	}

	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": err.Error(),
		},
	})
}

// respondBadRequest writes a local validation failure.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "VALIDATION_ERROR",
			"message": message,
		},
	})
}
