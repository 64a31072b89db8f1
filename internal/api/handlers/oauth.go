package handlers

import (
	"net/http"

	"github.com/certcast/core/internal/database/models"
	"github.com/certcast/core/internal/oauth"
	"github.com/certcast/core/internal/services"
	"github.com/gin-gonic/gin"
)

// OAuthHandler handles authorization flows for the connected providers
type OAuthHandler struct {
	google     *oauth.GoogleManager
	microblog  *oauth.MicroblogManager
	network    *oauth.NetworkManager
	logService *services.LogService
}

// NewOAuthHandler creates a new OAuthHandler
func NewOAuthHandler(google *oauth.GoogleManager, microblog *oauth.MicroblogManager, network *oauth.NetworkManager, logService *services.LogService) *OAuthHandler {
	return &OAuthHandler{
		google:     google,
		microblog:  microblog,
		network:    network,
		logService: logService,
	}
}

// BeginAuth starts an authorization flow and returns the provider URL
// GET /api/oauth/:provider/auth
func (h *OAuthHandler) BeginAuth(c *gin.Context) {
	provider := c.Param("provider")

	var authURL string
	var err error
	switch provider {
	case oauth.ProviderGoogle:
		authURL, err = h.google.BeginAuth()
	case oauth.ProviderMicroblog:
		authURL, err = h.microblog.BeginAuth()
	case oauth.ProviderNetwork:
		authURL, err = h.network.BeginAuth()
	default:
		respondBadRequest(c, "Unknown provider: "+provider)
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{"auth_url": authURL})
}

// Callback completes an authorization flow with the provider redirect params
// GET /api/oauth/:provider/callback
func (h *OAuthHandler) Callback(c *gin.Context) {
	provider := c.Param("provider")

	if errParam := c.Query("error"); errParam != "" {
		h.logService.LogWarn(models.LogModuleOAuth, "callback", "Provider returned error: "+errParam, gin.H{"provider": provider})
		respondBadRequest(c, "Authorization denied: "+errParam)
		return
	}

	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		respondBadRequest(c, "Missing code or state parameter")
		return
	}

	ctx := c.Request.Context()
	var err error
	switch provider {
	case oauth.ProviderGoogle:
		err = h.google.CompleteAuth(ctx, code, state)
	case oauth.ProviderMicroblog:
		err = h.microblog.CompleteAuth(ctx, code, state)
	case oauth.ProviderNetwork:
		err = h.network.CompleteAuth(ctx, code, state)
	default:
		respondBadRequest(c, "Unknown provider: "+provider)
		return
	}
	if err != nil {
		h.logService.LogError(models.LogModuleOAuth, "callback", "Authorization failed", gin.H{
			"provider": provider,
			"error":    err.Error(),
		})
		respondError(c, err)
		return
	}

	h.logService.LogInfo(models.LogModuleOAuth, "callback", "Provider connected", gin.H{"provider": provider})
	respondOK(c, gin.H{
		"provider": provider,
		"status":   string(oauth.StateAuthenticated),
	})
}

// Disconnect clears stored credentials for a provider
// DELETE /api/oauth/:provider
func (h *OAuthHandler) Disconnect(c *gin.Context) {
	provider := c.Param("provider")

	switch provider {
	case oauth.ProviderGoogle:
		h.google.Logout()
	case oauth.ProviderMicroblog:
		h.microblog.Logout()
	case oauth.ProviderNetwork:
		h.network.Logout()
	default:
		respondBadRequest(c, "Unknown provider: "+provider)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"provider": provider,
			"status":   string(oauth.StateUnauthenticated),
		},
	})
}

// Status returns the connection state of all providers
// GET /api/oauth/status
func (h *OAuthHandler) Status(c *gin.Context) {
	respondOK(c, gin.H{
		oauth.ProviderGoogle:    string(h.google.State()),
		oauth.ProviderMicroblog: string(h.microblog.State()),
		oauth.ProviderNetwork:   string(h.network.State()),
	})
}
