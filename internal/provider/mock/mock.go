// Package mock implements a Provider and Reader that perform no real I/O.
// The provider prints messages in a human-readable form and the reader
// fabricates deterministic summaries, so the full API surface can be
// exercised without a mail tenant.
package mock

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shineum/graph-mailer/internal/mail"
)

// Provider prints outbound messages to a writer instead of sending them.
type Provider struct {
	writer io.Writer
}

// New creates a mock Provider writing to stdout.
func New() *Provider {
	return &Provider{writer: os.Stdout}
}

// NewWithWriter creates a mock Provider writing to the given writer.
// This is useful for testing.
func NewWithWriter(w io.Writer) *Provider {
	return &Provider{writer: w}
}

// Send prints the message in a readable block. It always succeeds.
func (p *Provider) Send(_ context.Context, msg *mail.Message) error {
	var b strings.Builder

	b.WriteString("========== MOCK EMAIL ==========\n")
	b.WriteString(fmt.Sprintf("From: %s\n", msg.From))
	b.WriteString(fmt.Sprintf("To: %s\n", strings.Join(msg.To, ", ")))

	if len(msg.Cc) > 0 {
		b.WriteString(fmt.Sprintf("Cc: %s\n", strings.Join(msg.Cc, ", ")))
	}
	if len(msg.Bcc) > 0 {
		b.WriteString(fmt.Sprintf("Bcc: %s\n", strings.Join(msg.Bcc, ", ")))
	}

	b.WriteString(fmt.Sprintf("Subject: %s\n", msg.Subject))
	b.WriteString(fmt.Sprintf("Importance: %s\n", msg.Importance))
	b.WriteString(fmt.Sprintf("Save to Sent Items: %t\n", msg.SaveToSentItems))

	contentType := "Text"
	body := msg.TextBody
	if msg.HTMLBody != "" {
		contentType = "HTML"
		body = msg.HTMLBody
	}
	b.WriteString(fmt.Sprintf("Content Type: %s\n", contentType))
	b.WriteString("Body:\n")
	b.WriteString(body + "\n")

	if len(msg.Attachments) > 0 {
		names := make([]string, 0, len(msg.Attachments))
		for _, att := range msg.Attachments {
			names = append(names, fmt.Sprintf("%s (%s, %s)", att.Filename, att.ContentType, formatSize(len(att.Content))))
		}
		b.WriteString(fmt.Sprintf("Attachments: %s\n", strings.Join(names, ", ")))
	}

	b.WriteString("================================\n")

	fmt.Fprint(p.writer, b.String())
	return nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "mock"
}

// formatSize formats a byte count into a human-readable string.
func formatSize(bytes int) string {
	const (
		kb = 1024
		mb = kb * 1024
	)

	switch {
	case bytes >= mb:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(mb))
	case bytes >= kb:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(kb))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// Reader fabricates message summaries without contacting any mailbox.
type Reader struct{}

// NewReader creates a mock Reader.
func NewReader() *Reader {
	return &Reader{}
}

// Read returns deterministic fake summaries sized to the query. Even-indexed
// messages are read and every third has attachments, so formatting paths see
// both values.
func (r *Reader) Read(_ context.Context, q mail.ReadQuery) ([]mail.MessageSummary, error) {
	count := q.Top
	if count <= 0 {
		count = 5
	}

	summaries := make([]mail.MessageSummary, 0, count)
	for i := 1; i <= count; i++ {
		from := q.Sender
		if from == "" {
			from = fmt.Sprintf("mock.sender%d@example.com", i)
		}
		subject := fmt.Sprintf("Mock Email %d", i)
		if q.Subject != "" {
			subject = q.Subject + " " + subject
		}

		summaries = append(summaries, mail.MessageSummary{
			MessageID:        fmt.Sprintf("mock-msg-%d", i),
			Subject:          subject,
			From:             from,
			ReceivedDateTime: fmt.Sprintf("2025-10-21T%02d:00:00Z", 8+i%12),
			BodyPreview:      "This is a mock email body preview for testing purposes",
			IsRead:           i%2 == 0,
			HasAttachments:   i%3 == 0,
		})
	}
	return summaries, nil
}
