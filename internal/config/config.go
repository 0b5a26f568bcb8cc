// Package config provides environment-variable-first configuration loading
// with optional YAML file fallback for the mail gateway.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/shineum/graph-mailer/internal/mail"
)

// defaultMaxAttachmentBytes is 5 MB, the total decoded size allowed across
// all attachments in one request.
const defaultMaxAttachmentBytes = 5242880

// Config holds the complete application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Provider  string          `yaml:"provider"`
	Graph     GraphConfig     `yaml:"graph"`
	SES       SESConfig       `yaml:"ses"`
	SendGrid  SendGridConfig  `yaml:"sendgrid"`
	Mail      MailConfig      `yaml:"mail"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	TLS       TLSConfig       `yaml:"tls"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Listen          string        `yaml:"listen"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// GraphConfig holds Microsoft Graph API configuration.
type GraphConfig struct {
	TenantID     string `yaml:"tenant_id"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
}

// SESConfig holds AWS SES configuration.
type SESConfig struct {
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

// SendGridConfig holds SendGrid API configuration.
type SendGridConfig struct {
	APIKey string `yaml:"api_key"`
}

// MailConfig holds mail policy settings: allow-lists and size limits.
type MailConfig struct {
	DefaultFromUPN          string   `yaml:"default_from_upn"`
	SaveToSentItems         bool     `yaml:"save_to_sent_items"`
	MaxAttachmentBytes      int64    `yaml:"max_attachment_bytes"`
	AllowedSenderUPNs       []string `yaml:"allowed_sender_upns"`
	AllowedRecipientDomains []string `yaml:"allowed_recipient_domains"`
}

// RateLimitConfig holds token bucket settings for inbound rate limiting.
type RateLimitConfig struct {
	Capacity int           `yaml:"capacity"`
	Interval time.Duration `yaml:"interval"`
}

// TLSConfig holds TLS settings for HTTPS serving.
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load loads configuration from environment variables with sensible defaults.
// Environment variables always take precedence.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.applyEnvVars()
	return cfg, nil
}

// LoadFromFile loads configuration from a YAML file as the base layer,
// then overrides with environment variables. Returns an error if the
// specified file path does not exist.
func LoadFromFile(path string) (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Environment variables always override YAML values
	cfg.applyEnvVars()

	return cfg, nil
}

// GraphConfigured returns true if all three Graph API credentials are set.
func (c *Config) GraphConfigured() bool {
	return c.Graph.TenantID != "" &&
		c.Graph.ClientID != "" &&
		c.Graph.ClientSecret != ""
}

// SESConfigured returns true if the SES region is set.
func (c *Config) SESConfigured() bool {
	return c.SES.Region != ""
}

// SendGridConfigured returns true if a SendGrid API key is set.
func (c *Config) SendGridConfigured() bool {
	return c.SendGrid.APIKey != ""
}

// Policy builds the mail validation policy from the configured allow-lists
// and size limits.
func (c *Config) Policy() *mail.Policy {
	return mail.NewPolicy(c.Mail.AllowedSenderUPNs, c.Mail.AllowedRecipientDomains, c.Mail.MaxAttachmentBytes)
}

// applyDefaults sets sensible default values for all configuration fields.
func (c *Config) applyDefaults() {
	c.Server.Listen = ":8080"
	c.Server.ReadTimeout = 15 * time.Second
	c.Server.WriteTimeout = 15 * time.Second
	c.Server.IdleTimeout = 60 * time.Second
	c.Server.ShutdownTimeout = 10 * time.Second
	c.Mail.SaveToSentItems = true
	c.Mail.MaxAttachmentBytes = defaultMaxAttachmentBytes
	c.RateLimit.Capacity = 30
	c.RateLimit.Interval = time.Minute
	c.Logging.Level = "info"
}

// applyEnvVars overrides configuration with environment variable values.
// Only non-empty environment variables override existing values.
func (c *Config) applyEnvVars() {
	if v := os.Getenv("SERVER_LISTEN"); v != "" {
		c.Server.Listen = v
	}
	if v := os.Getenv("SERVER_SHUTDOWN_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Server.ShutdownTimeout = d
		}
	}

	if v := os.Getenv("PROVIDER"); v != "" {
		c.Provider = strings.ToLower(v)
	}

	if v := os.Getenv("GRAPH_TENANT_ID"); v != "" {
		c.Graph.TenantID = v
	}
	if v := os.Getenv("GRAPH_CLIENT_ID"); v != "" {
		c.Graph.ClientID = v
	}
	if v := os.Getenv("GRAPH_CLIENT_SECRET"); v != "" {
		c.Graph.ClientSecret = v
	}

	if v := os.Getenv("SES_REGION"); v != "" {
		c.SES.Region = v
	}
	if v := os.Getenv("SES_ACCESS_KEY_ID"); v != "" {
		c.SES.AccessKeyID = v
	}
	if v := os.Getenv("SES_SECRET_ACCESS_KEY"); v != "" {
		c.SES.SecretAccessKey = v
	}

	if v := os.Getenv("SENDGRID_API_KEY"); v != "" {
		c.SendGrid.APIKey = v
	}

	if v := os.Getenv("MAIL_DEFAULT_FROM_UPN"); v != "" {
		c.Mail.DefaultFromUPN = v
	}
	if v := os.Getenv("MAIL_SAVE_TO_SENT_ITEMS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Mail.SaveToSentItems = b
		}
	}
	if v := os.Getenv("MAIL_MAX_ATTACHMENT_BYTES"); v != "" {
		if size, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Mail.MaxAttachmentBytes = size
		}
	}
	if v := os.Getenv("MAIL_ALLOWED_SENDER_UPNS"); v != "" {
		c.Mail.AllowedSenderUPNs = splitList(v)
	}
	if v := os.Getenv("MAIL_ALLOWED_RECIPIENT_DOMAINS"); v != "" {
		c.Mail.AllowedRecipientDomains = splitList(v)
	}

	if v := os.Getenv("RATE_LIMIT_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RateLimit.Capacity = n
		}
	}
	if v := os.Getenv("RATE_LIMIT_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.RateLimit.Interval = d
		}
	}

	if v := os.Getenv("TLS_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.TLS.Enabled = b
		}
	}
	if v := os.Getenv("TLS_CERT_FILE"); v != "" {
		c.TLS.CertFile = v
	}
	if v := os.Getenv("TLS_KEY_FILE"); v != "" {
		c.TLS.KeyFile = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
}

// splitList splits a comma-separated list, trimming whitespace and dropping
// empty entries.
func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
