package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// parseDateRange reads the from/to query parameters (YYYY-MM-DD). Missing or
// unparsable values fall back to the last 30 days.
func parseDateRange(c *gin.Context) (time.Time, time.Time) {
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -30)

	if raw := c.Query("from"); raw != "" {
		if parsed, err := time.Parse("2006-01-02", raw); err == nil {
			from = parsed
		}
	}
	if raw := c.Query("to"); raw != "" {
		if parsed, err := time.Parse("2006-01-02", raw); err == nil {
			to = parsed
		}
	}
	return from, to
}

func (s *Server) handleDeliveryRates(c *gin.Context) {
	from, to := parseDateRange(c)
	c.JSON(http.StatusOK, s.reports.DeliveryRates(from, to))
}

func (s *Server) handleEngagement(c *gin.Context) {
	from, to := parseDateRange(c)
	c.JSON(http.StatusOK, s.reports.Engagement(from, to))
}

func (s *Server) handleUsage(c *gin.Context) {
	from, to := parseDateRange(c)
	c.JSON(http.StatusOK, s.reports.Usage(from, to))
}

func (s *Server) handleTopSenders(c *gin.Context) {
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	c.JSON(http.StatusOK, s.reports.TopSenders(limit))
}

func (s *Server) handleErrorTrends(c *gin.Context) {
	from, to := parseDateRange(c)
	c.JSON(http.StatusOK, s.reports.ErrorTrends(from, to))
}

func (s *Server) handleEmailVolumes(c *gin.Context) {
	from, to := parseDateRange(c)
	groupBy := c.DefaultQuery("groupBy", "domain")
	c.JSON(http.StatusOK, s.reports.EmailVolumes(from, to, groupBy))
}

func (s *Server) handleSummary(c *gin.Context) {
	days := 30
	if raw := c.Query("days"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			days = parsed
		}
	}
	c.JSON(http.StatusOK, s.reports.Summary(days))
}
