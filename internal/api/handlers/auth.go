package handlers

import (
	"net/http"

	"github.com/certcast/core/internal/api/middleware"
	"github.com/gin-gonic/gin"
)

// AuthHandler exchanges the local API key for a short-lived session token.
type AuthHandler struct {
	authManager *middleware.AuthManager
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authManager *middleware.AuthManager) *AuthHandler {
	return &AuthHandler{authManager: authManager}
}

// CreateSession handles session token creation
// POST /api/auth/session
func (h *AuthHandler) CreateSession(c *gin.Context) {
	var req struct {
		APIKey string `json:"api_key" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "api_key is required")
		return
	}

	if !h.authManager.APIKeyManager.ValidateKey(req.APIKey) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "AUTH_FAILED",
				"message": "Invalid API key",
			},
		})
		return
	}

	token, expiresAt, err := h.authManager.JWTManager.GenerateToken()
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{
		"token":      token,
		"expires_at": expiresAt,
	})
}
