package httpapi

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shineum/graph-mailer/internal/ratelimit"
)

// correlationIDKey is the gin context key holding the request correlation id.
const correlationIDKey = "correlationId"

// correlationHeader is the inbound/outbound correlation id header.
const correlationHeader = "X-Correlation-ID"

// CorrelationID attaches a correlation id to every request: the inbound
// header value when present, a fresh UUID otherwise. The id is echoed in the
// response header and passed explicitly to every layer that needs it; there
// is no ambient per-request state.
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(correlationHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(correlationIDKey, id)
		c.Header(correlationHeader, id)
		c.Next()
	}
}

// correlationIDFrom returns the request's correlation id.
func correlationIDFrom(c *gin.Context) string {
	return c.GetString(correlationIDKey)
}

// RequestLogger logs one structured line per request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		zap.L().Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", clientIP(c.Request)),
			zap.String("correlation_id", correlationIDFrom(c)),
		)
	}
}

// allowRequest consults the rate limiter for this request's client and sets
// the X-RateLimit-* response headers. The caller decides the rejection body,
// since the modern send and read endpoints use different error shapes.
func allowRequest(c *gin.Context, limiter *ratelimit.Limiter) bool {
	d := limiter.Allow(clientIP(c.Request))

	c.Header("X-RateLimit-Limit", strconv.Itoa(d.Limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
	c.Header("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))

	if !d.Allowed {
		zap.L().Warn("rate limit exceeded",
			zap.String("client_ip", clientIP(c.Request)),
			zap.String("path", c.Request.URL.Path),
		)
	}
	return d.Allowed
}
