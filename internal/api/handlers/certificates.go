package handlers

import (
	"errors"
	"net/http"

	"github.com/certcast/core/internal/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CertificateHandler handles scanning and certificate management
type CertificateHandler struct {
	scanService *services.ScanService
}

// NewCertificateHandler creates a new CertificateHandler
func NewCertificateHandler(scanService *services.ScanService) *CertificateHandler {
	return &CertificateHandler{scanService: scanService}
}

// Scan triggers a mailbox scan for certificate emails
// POST /api/scan
func (h *CertificateHandler) Scan(c *gin.Context) {
	result, err := h.scanService.Scan(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, result)
}

// ListCertificates returns all extracted certificates, newest first
// GET /api/certificates
func (h *CertificateHandler) ListCertificates(c *gin.Context) {
	certs, err := h.scanService.ListCertificates()
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{
		"certificates": certs,
		"total":        len(certs),
	})
}

// DeleteCertificate removes a certificate by ID
// DELETE /api/certificates/:id
func (h *CertificateHandler) DeleteCertificate(c *gin.Context) {
	id := c.Param("id")
	if err := h.scanService.DeleteCertificate(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "NOT_FOUND",
					"message": "Certificate not found",
				},
			})
			return
		}
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"deleted": id})
}
