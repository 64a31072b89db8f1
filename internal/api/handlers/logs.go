package handlers

import (
	"strconv"

	"github.com/certcast/core/internal/services"
	"github.com/gin-gonic/gin"
)

// LogHandler exposes the activity log
type LogHandler struct {
	logService *services.LogService
}

// NewLogHandler creates a new LogHandler
func NewLogHandler(logService *services.LogService) *LogHandler {
	return &LogHandler{logService: logService}
}

// GetLogs returns recent log entries, newest first
// GET /api/logs?limit=50&offset=0
func (h *LogHandler) GetLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	logs, total, err := h.logService.GetLogs(limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{
		"logs":  logs,
		"total": total,
	})
}
