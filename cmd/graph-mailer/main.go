// Package main is the entry point for the mail gateway.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/shineum/graph-mailer/internal/config"
	"github.com/shineum/graph-mailer/internal/httpapi"
	"github.com/shineum/graph-mailer/internal/logger"
	"github.com/shineum/graph-mailer/internal/mail"
	"github.com/shineum/graph-mailer/internal/provider"
	"github.com/shineum/graph-mailer/internal/provider/graph"
	"github.com/shineum/graph-mailer/internal/provider/mock"
	"github.com/shineum/graph-mailer/internal/provider/sendgrid"
	"github.com/shineum/graph-mailer/internal/provider/ses"
	"github.com/shineum/graph-mailer/internal/ratelimit"
	"github.com/shineum/graph-mailer/internal/report"
	"github.com/shineum/graph-mailer/internal/tlsutil"
)

// Set via -ldflags at build time.
var (
	version   = "dev"
	buildTime = ""
)

func main() {
	// A missing .env file is not an error; env vars may come from anywhere.
	_ = godotenv.Load()

	configPath := flag.String("config", "", "path to YAML configuration file (optional)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Init("info")
		zap.L().Fatal("failed to load configuration", zap.Error(err))
	}

	logger.Init(cfg.Logging.Level)
	defer func() { _ = zap.L().Sync() }()

	prov := selectProvider(cfg)
	reader := selectReader(cfg)

	defaults := mail.Defaults{
		FromUPN:         cfg.Mail.DefaultFromUPN,
		SaveToSentItems: cfg.Mail.SaveToSentItems,
	}
	svc := mail.NewService(prov, reader, cfg.Policy(), defaults, mail.NewAuditLogger(zap.L()))
	limiter := ratelimit.New(cfg.RateLimit.Capacity, cfg.RateLimit.Interval)

	srv := httpapi.NewServer(svc, limiter, report.NewGenerator(), httpapi.Config{
		Name:      "graph-mailer",
		Version:   version,
		BuildTime: parseBuildTime(buildTime),
		Mode:      prov.Name(),
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Listen,
		Handler:      srv.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	if cfg.TLS.Enabled {
		tlsConfig, err := tlsutil.ServerConfig(cfg.TLS.CertFile, cfg.TLS.KeyFile)
		if err != nil {
			zap.L().Fatal("failed to set up TLS", zap.Error(err))
		}
		httpServer.TLSConfig = tlsConfig
	}

	zap.L().Info("starting graph-mailer",
		zap.String("listen", cfg.Server.Listen),
		zap.String("provider", prov.Name()),
		zap.Bool("tls", cfg.TLS.Enabled),
		zap.String("version", version),
	)

	errCh := make(chan error, 1)
	go func() {
		if cfg.TLS.Enabled {
			// Certificates come from TLSConfig, so the file arguments stay empty.
			errCh <- httpServer.ListenAndServeTLS("", "")
			return
		}
		errCh <- httpServer.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigCh:
		zap.L().Info("received signal, initiating shutdown", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("server error", zap.Error(err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		zap.L().Error("graceful shutdown failed", zap.Error(err))
	}

	zap.L().Info("graph-mailer stopped")
}

// loadConfig loads configuration from the specified path (YAML + env
// override) or from environment variables only if no path is given.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

// selectProvider chooses the delivery backend. An explicit PROVIDER value
// takes precedence; otherwise the first fully configured backend wins, with
// the mock provider as the final fallback.
func selectProvider(cfg *config.Config) provider.Provider {
	switch cfg.Provider {
	case "graph":
		if !cfg.GraphConfigured() {
			zap.L().Fatal("graph provider selected but GRAPH_TENANT_ID, GRAPH_CLIENT_ID and GRAPH_CLIENT_SECRET are required")
		}
		zap.L().Info("using Microsoft Graph provider", zap.String("tenant", cfg.Graph.TenantID))
		return newGraphProvider(cfg)

	case "ses":
		if !cfg.SESConfigured() {
			zap.L().Fatal("ses provider selected but SES_REGION is required")
		}
		zap.L().Info("using AWS SES provider", zap.String("region", cfg.SES.Region))
		return newSESProvider(cfg)

	case "sendgrid":
		if !cfg.SendGridConfigured() {
			zap.L().Fatal("sendgrid provider selected but SENDGRID_API_KEY is required")
		}
		zap.L().Info("using SendGrid provider")
		return sendgrid.New(cfg.SendGrid.APIKey)

	case "mock":
		zap.L().Warn("using mock provider, no real emails will be sent")
		return mock.New()

	case "":
		if cfg.GraphConfigured() {
			zap.L().Info("using Microsoft Graph provider (auto-detected)", zap.String("tenant", cfg.Graph.TenantID))
			return newGraphProvider(cfg)
		}
		if cfg.SESConfigured() {
			zap.L().Info("using AWS SES provider (auto-detected)", zap.String("region", cfg.SES.Region))
			return newSESProvider(cfg)
		}
		if cfg.SendGridConfigured() {
			zap.L().Info("using SendGrid provider (auto-detected)")
			return sendgrid.New(cfg.SendGrid.APIKey)
		}
		zap.L().Warn("no provider configured, using mock provider, no real emails will be sent")
		return mock.New()

	default:
		zap.L().Fatal("unknown provider", zap.String("provider", cfg.Provider))
		return nil
	}
}

// selectReader chooses the mailbox reading backend. Only Graph supports
// reading; without Graph credentials the deterministic mock reader serves
// the read endpoints.
func selectReader(cfg *config.Config) provider.Reader {
	if cfg.GraphConfigured() {
		return newGraphProvider(cfg)
	}
	zap.L().Warn("graph not configured, mailbox reads return mock data")
	return mock.NewReader()
}

func newGraphProvider(cfg *config.Config) *graph.Provider {
	return graph.New(graph.Config{
		TenantID:     cfg.Graph.TenantID,
		ClientID:     cfg.Graph.ClientID,
		ClientSecret: cfg.Graph.ClientSecret,
	})
}

func newSESProvider(cfg *config.Config) *ses.Provider {
	p, err := ses.New(context.Background(), ses.Config{
		Region:          cfg.SES.Region,
		AccessKeyID:     cfg.SES.AccessKeyID,
		SecretAccessKey: cfg.SES.SecretAccessKey,
	})
	if err != nil {
		zap.L().Fatal("failed to create SES provider", zap.Error(err))
	}
	return p
}

// parseBuildTime converts the ldflags build timestamp, falling back to the
// process start time when unset or malformed.
func parseBuildTime(v string) time.Time {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t
	}
	return time.Now().UTC()
}
