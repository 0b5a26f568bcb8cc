package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// handleInfo reports service metadata.
func (s *Server) handleInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":        s.name,
		"version":     s.version,
		"buildTime":   s.buildTime.UTC().Format(time.RFC3339),
		"description": "Microsoft Graph Mail Service - Replaces EWS email sending with Graph API",
		"mode":        s.mode,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	})
}
