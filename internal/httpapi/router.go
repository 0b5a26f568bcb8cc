// Package httpapi exposes the REST surface: the modern /api/v1 endpoints,
// the legacy /sendemail and /reademail adapters, and the synthetic
// analytics/reporting endpoints.
package httpapi

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shineum/graph-mailer/internal/mail"
	"github.com/shineum/graph-mailer/internal/ratelimit"
	"github.com/shineum/graph-mailer/internal/report"
)

// Server holds the handler dependencies.
type Server struct {
	svc     *mail.Service
	limiter *ratelimit.Limiter
	reports *report.Generator

	name      string
	version   string
	buildTime time.Time
	mode      string
}

// Config carries the metadata reported by the info endpoint.
type Config struct {
	Name      string
	Version   string
	BuildTime time.Time
	Mode      string
}

// NewServer wires handlers to their dependencies.
func NewServer(svc *mail.Service, limiter *ratelimit.Limiter, reports *report.Generator, cfg Config) *Server {
	return &Server{
		svc:       svc,
		limiter:   limiter,
		reports:   reports,
		name:      cfg.Name,
		version:   cfg.Version,
		buildTime: cfg.BuildTime,
		mode:      cfg.Mode,
	}
}

// Router builds the gin engine with all routes and middleware registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(CorrelationID())
	r.Use(RequestLogger())

	// Modern API. Send and read are rate limited; metadata and reporting
	// endpoints are not.
	v1 := r.Group("/api/v1")
	{
		v1.POST("/mail/send", s.handleSend)
		v1.GET("/mail/read", s.handleRead)
		v1.GET("/info", s.handleInfo)

		analytics := v1.Group("/analytics")
		{
			analytics.GET("/delivery-rates", s.handleDeliveryRates)
			analytics.GET("/engagement", s.handleEngagement)
			analytics.GET("/usage", s.handleUsage)
			analytics.GET("/top-senders", s.handleTopSenders)
			analytics.GET("/error-trends", s.handleErrorTrends)
		}

		reports := v1.Group("/reports")
		{
			reports.GET("/email-volumes", s.handleEmailVolumes)
			reports.GET("/summary", s.handleSummary)
		}
	}

	// Legacy adapters live at the root, matching the paths old clients call.
	r.POST("/sendemail", s.handleLegacySend)
	r.GET("/reademail", s.handleLegacyRead)
	r.POST("/reademail", s.handleLegacyRead)

	return r
}
