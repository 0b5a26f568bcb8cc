// Package provider defines the interfaces for mail delivery and mailbox
// reading backends.
package provider

import (
	"context"

	"github.com/shineum/graph-mailer/internal/mail"
)

// Provider is the interface that mail delivery backends must implement.
// Each provider handles the actual sending of outbound messages to the
// target service (Microsoft Graph, SES, SendGrid, or a mock).
type Provider interface {
	// Send delivers a message through this provider.
	// It returns an error if the delivery fails.
	Send(ctx context.Context, msg *mail.Message) error

	// Name returns the human-readable name of this provider.
	Name() string
}

// Reader is the interface for mailbox listing backends.
type Reader interface {
	// Read returns message summaries for the queried mailbox, newest first.
	Read(ctx context.Context, q mail.ReadQuery) ([]mail.MessageSummary, error)
}
