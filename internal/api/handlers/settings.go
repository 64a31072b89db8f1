package handlers

import (
	"github.com/certcast/core/internal/database/models"
	"github.com/certcast/core/internal/services"
	"github.com/gin-gonic/gin"
)

// SettingsHandler handles application settings
type SettingsHandler struct {
	settingsService *services.SettingsService
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(settingsService *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// GetSettings returns the current settings with secrets masked
// GET /api/settings
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	settings, err := h.settingsService.Get()
	if err != nil {
		respondError(c, err)
		return
	}

	masked := *settings
	masked.AIAPIKey = maskSecret(masked.AIAPIKey)
	masked.GoogleClientSecret = maskSecret(masked.GoogleClientSecret)
	masked.NetworkClientSecret = maskSecret(masked.NetworkClientSecret)

	respondOK(c, masked)
}

// UpdateSettings replaces the stored settings
// PUT /api/settings
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var req models.Settings
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid settings payload")
		return
	}

	current, err := h.settingsService.Get()
	if err != nil {
		respondError(c, err)
		return
	}

	// Masked values round-tripped by the UI keep the stored secret.
	if isMasked(req.AIAPIKey) {
		req.AIAPIKey = current.AIAPIKey
	}
	if isMasked(req.GoogleClientSecret) {
		req.GoogleClientSecret = current.GoogleClientSecret
	}
	if isMasked(req.NetworkClientSecret) {
		req.NetworkClientSecret = current.NetworkClientSecret
	}

	if err := h.settingsService.Update(&req); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{"updated": true})
}

// maskSecret shows only the first 4 and last 4 characters
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "****" + s[len(s)-4:]
}

func isMasked(s string) bool {
	return s == "****" || (len(s) == 12 && s[4:8] == "****")
}
