package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shineum/graph-mailer/internal/mail"
)

// handleSend is POST /api/v1/mail/send. Responses: 200 with a SUCCESS
// result, 400 with a FAILED result on validation failure, 429 when the rate
// bucket is exhausted, 500 with a FAILED result when delivery failed after
// retries.
func (s *Server) handleSend(c *gin.Context) {
	correlationID := correlationIDFrom(c)

	if !allowRequest(c, s.limiter) {
		c.JSON(http.StatusTooManyRequests, mail.FailedResult("Rate limit exceeded", correlationID))
		return
	}

	var req mail.SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		zap.L().Warn("malformed send request",
			zap.Error(err),
			zap.String("correlation_id", correlationID),
		)
		c.JSON(http.StatusBadRequest, mail.FailedResult("Validation error: "+err.Error(), correlationID))
		return
	}

	result, err := s.svc.Send(c.Request.Context(), correlationID, &req)
	switch {
	case err != nil:
		c.JSON(http.StatusBadRequest, result)
	case result.Status == mail.StatusSuccess:
		c.JSON(http.StatusOK, result)
	default:
		c.JSON(http.StatusInternalServerError, result)
	}
}

// handleRead is GET /api/v1/mail/read. The mailbox parameter is required;
// top defaults to 10 and must be between 1 and 100; format is json or csv
// with "," as the default separator ("comma" is accepted as an alias).
func (s *Server) handleRead(c *gin.Context) {
	correlationID := correlationIDFrom(c)

	if !allowRequest(c, s.limiter) {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":         "Rate limit exceeded",
			"correlationId": correlationID,
		})
		return
	}

	mailbox := strings.TrimSpace(c.Query("mailbox"))
	if mailbox == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":         "Mailbox parameter is required",
			"correlationId": correlationID,
		})
		return
	}

	top := 10
	if raw := c.Query("top"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":         "Top parameter must be between 1 and 100",
				"correlationId": correlationID,
			})
			return
		}
		top = parsed
	}

	format := c.DefaultQuery("format", "json")
	includeHeaders := true
	if raw := c.Query("includeHeaders"); raw != "" {
		includeHeaders = strings.EqualFold(raw, "true")
	}

	body := s.svc.Read(c.Request.Context(), mail.ReadQuery{
		Mailbox:        mailbox,
		Sender:         c.Query("sender"),
		Subject:        c.Query("subject"),
		Top:            top,
		Format:         format,
		Separator:      c.DefaultQuery("separator", ","),
		IncludeHeaders: includeHeaders,
	})

	contentType := "application/json"
	if strings.EqualFold(format, "csv") {
		contentType = "text/csv; charset=utf-8"
	}
	c.Data(http.StatusOK, contentType, []byte(body))
}
