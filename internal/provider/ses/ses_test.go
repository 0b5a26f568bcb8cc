package ses

import (
	"context"
	"errors"
	"strings"
	"testing"

	sesv2 "github.com/aws/aws-sdk-go-v2/service/sesv2"

	"github.com/shineum/graph-mailer/internal/mail"
)

// mockSendEmailAPI captures the last input and returns a configured error.
type mockSendEmailAPI struct {
	lastInput *sesv2.SendEmailInput
	err       error
}

func (m *mockSendEmailAPI) SendEmail(_ context.Context, params *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	m.lastInput = params
	if m.err != nil {
		return nil, m.err
	}
	return &sesv2.SendEmailOutput{}, nil
}

func TestSend_SimpleMessage(t *testing.T) {
	t.Parallel()

	mock := &mockSendEmailAPI{}
	p := NewWithClient(mock)

	msg := &mail.Message{
		From:     "noreply@example.com",
		To:       []string{"alice@example.com"},
		Cc:       []string{"bob@example.com"},
		Subject:  "Hello",
		TextBody: "plain body",
	}

	if err := p.Send(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	input := mock.lastInput
	if input == nil {
		t.Fatal("SendEmail was not called")
	}
	if *input.FromEmailAddress != "noreply@example.com" {
		t.Errorf("FromEmailAddress: got %q", *input.FromEmailAddress)
	}
	if input.Content.Simple == nil {
		t.Fatal("expected simple content for message without attachments")
	}
	if *input.Content.Simple.Subject.Data != "Hello" {
		t.Errorf("Subject: got %q", *input.Content.Simple.Subject.Data)
	}
	if input.Content.Simple.Body.Text == nil || *input.Content.Simple.Body.Text.Data != "plain body" {
		t.Error("text body not set correctly")
	}
	if len(input.Destination.CcAddresses) != 1 {
		t.Errorf("CcAddresses: got %d, want 1", len(input.Destination.CcAddresses))
	}
}

func TestSend_WithAttachmentsBuildsRawMIME(t *testing.T) {
	t.Parallel()

	mock := &mockSendEmailAPI{}
	p := NewWithClient(mock)

	msg := &mail.Message{
		From:     "noreply@example.com",
		To:       []string{"alice@example.com"},
		Subject:  "Report",
		HTMLBody: "<p>see attached</p>",
		Attachments: []mail.Attachment{
			{Filename: "data.csv", ContentType: "text/csv", Content: []byte("a,b\n1,2\n")},
		},
	}

	if err := p.Send(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	input := mock.lastInput
	if input.Content.Raw == nil {
		t.Fatal("expected raw content for message with attachments")
	}
	raw := string(input.Content.Raw.Data)
	if !strings.Contains(raw, "Content-Type: multipart/mixed") {
		t.Error("raw message missing multipart content type")
	}
	if !strings.Contains(raw, "Subject: Report") {
		t.Error("raw message missing subject header")
	}
	if !strings.Contains(raw, "Content-Transfer-Encoding: base64") {
		t.Error("raw message missing attachment encoding header")
	}
}

func TestSend_SurfacesAPIError(t *testing.T) {
	t.Parallel()

	mock := &mockSendEmailAPI{err: errors.New("throttled")}
	p := NewWithClient(mock)

	msg := &mail.Message{
		From:     "noreply@example.com",
		To:       []string{"alice@example.com"},
		Subject:  "Hello",
		TextBody: "body",
	}

	err := p.Send(context.Background(), msg)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "throttled") {
		t.Errorf("error: got %q", err.Error())
	}
}

func TestEncodeBase64WithLineBreaks(t *testing.T) {
	t.Parallel()

	encoded := encodeBase64WithLineBreaks(make([]byte, 100))
	for _, line := range strings.Split(encoded, "\r\n") {
		if len(line) > 76 {
			t.Errorf("line exceeds 76 chars: %d", len(line))
		}
	}
}
