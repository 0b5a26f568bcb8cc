// Package sendgrid implements a Provider that sends mail via the SendGrid
// v3 API, for deployments that route through SendGrid instead of Graph.
package sendgrid

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/shineum/graph-mailer/internal/mail"
)

// sendClient is the subset of the SendGrid client used by the provider.
// Used for testing with mock implementations.
type sendClient interface {
	SendWithContext(ctx context.Context, email *sgmail.SGMailV3) (*rest.Response, error)
}

// Provider sends mail via the SendGrid v3 mail send API.
type Provider struct {
	client sendClient
}

// New creates a Provider using the given API key.
func New(apiKey string) *Provider {
	return &Provider{client: sendgrid.NewSendClient(apiKey)}
}

// newWithClient creates a Provider with a custom client, used for testing.
func newWithClient(client sendClient) *Provider {
	return &Provider{client: client}
}

// Send delivers a message via SendGrid. Any response with a status code of
// 300 or above is treated as a delivery failure.
func (p *Provider) Send(ctx context.Context, msg *mail.Message) error {
	resp, err := p.client.SendWithContext(ctx, buildSGMail(msg))
	if err != nil {
		return fmt.Errorf("SendGrid request failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("SendGrid API error (HTTP %d): %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "sendgrid"
}

// buildSGMail converts an outbound message into the SendGrid v3 mail shape.
func buildSGMail(msg *mail.Message) *sgmail.SGMailV3 {
	m := sgmail.NewV3Mail()
	m.SetFrom(sgmail.NewEmail("", msg.From))
	m.Subject = msg.Subject

	personalization := sgmail.NewPersonalization()
	for _, addr := range msg.To {
		personalization.AddTos(sgmail.NewEmail("", addr))
	}
	for _, addr := range msg.Cc {
		personalization.AddCCs(sgmail.NewEmail("", addr))
	}
	for _, addr := range msg.Bcc {
		personalization.AddBCCs(sgmail.NewEmail("", addr))
	}
	m.AddPersonalizations(personalization)

	if msg.TextBody != "" {
		m.AddContent(sgmail.NewContent("text/plain", msg.TextBody))
	}
	if msg.HTMLBody != "" {
		m.AddContent(sgmail.NewContent("text/html", msg.HTMLBody))
	}

	for _, att := range msg.Attachments {
		attachment := sgmail.NewAttachment()
		attachment.SetFilename(att.Filename)
		attachment.SetType(att.ContentType)
		attachment.SetContent(base64.StdEncoding.EncodeToString(att.Content))
		attachment.SetDisposition("attachment")
		m.AddAttachment(attachment)
	}

	return m
}
