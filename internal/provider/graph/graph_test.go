package graph

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shineum/graph-mailer/internal/mail"
)

func TestBuildSendMailRequest_BasicMessage(t *testing.T) {
	t.Parallel()

	msg := &mail.Message{
		From:            "sender@example.com",
		To:              []string{"alice@example.com", "bob@example.com"},
		Subject:         "Test Subject",
		TextBody:        "Hello, World!",
		Importance:      mail.ImportanceNormal,
		SaveToSentItems: true,
	}

	req := buildSendMailRequest(msg)

	if req.Message.Subject != "Test Subject" {
		t.Errorf("Subject: got %q, want %q", req.Message.Subject, "Test Subject")
	}
	if req.Message.Body.ContentType != "text" {
		t.Errorf("Body.ContentType: got %q, want %q", req.Message.Body.ContentType, "text")
	}
	if len(req.Message.ToRecipients) != 2 {
		t.Fatalf("ToRecipients count: got %d, want 2", len(req.Message.ToRecipients))
	}
	if req.Message.ToRecipients[0].EmailAddress.Address != "alice@example.com" {
		t.Errorf("ToRecipients[0]: got %q", req.Message.ToRecipients[0].EmailAddress.Address)
	}
	if req.Message.CcRecipients != nil {
		t.Errorf("CcRecipients: got %v, want nil", req.Message.CcRecipients)
	}
	if req.Message.Importance != "normal" {
		t.Errorf("Importance: got %q, want %q", req.Message.Importance, "normal")
	}
	if !req.SaveToSentItems {
		t.Error("SaveToSentItems should be true")
	}
}

func TestBuildSendMailRequest_HTMLPreferred(t *testing.T) {
	t.Parallel()

	msg := &mail.Message{
		To:       []string{"user@example.com"},
		Subject:  "HTML Email",
		TextBody: "Plain text",
		HTMLBody: "<p>HTML content</p>",
	}

	req := buildSendMailRequest(msg)

	if req.Message.Body.ContentType != "html" {
		t.Errorf("Body.ContentType: got %q, want %q", req.Message.Body.ContentType, "html")
	}
	if req.Message.Body.Content != "<p>HTML content</p>" {
		t.Errorf("Body.Content: got %q", req.Message.Body.Content)
	}
}

func TestBuildSendMailRequest_WithBccAndAttachments(t *testing.T) {
	t.Parallel()

	msg := &mail.Message{
		To:       []string{"alice@example.com"},
		Bcc:      []string{"hidden@example.com"},
		Subject:  "With Attachment",
		TextBody: "See attached",
		Attachments: []mail.Attachment{
			{
				Filename:    "report.pdf",
				ContentType: "application/pdf",
				Content:     []byte("pdf-content"),
			},
		},
	}

	req := buildSendMailRequest(msg)

	if len(req.Message.BccRecipients) != 1 {
		t.Fatalf("BccRecipients count: got %d, want 1", len(req.Message.BccRecipients))
	}
	if len(req.Message.Attachments) != 1 {
		t.Fatalf("Attachments count: got %d, want 1", len(req.Message.Attachments))
	}

	att := req.Message.Attachments[0]
	if att.ODataType != "#microsoft.graph.fileAttachment" {
		t.Errorf("ODataType: got %q", att.ODataType)
	}
	if att.ContentBytes == "" {
		t.Error("ContentBytes should not be empty")
	}
}

// newTokenServer returns a test server that always issues the given token.
func newTokenServer(t *testing.T, token string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(tokenResponse{
			AccessToken: token,
			ExpiresIn:   3600,
			TokenType:   "Bearer",
		})
	}))
}

func testMessage() *mail.Message {
	return &mail.Message{
		From:            "sender@example.com",
		To:              []string{"user@example.com"},
		Subject:         "Hi",
		TextBody:        "hello",
		Importance:      mail.ImportanceNormal,
		SaveToSentItems: true,
	}
}

func TestSend_Success(t *testing.T) {
	t.Parallel()

	tokenSrv := newTokenServer(t, "tok-1")
	defer tokenSrv.Close()

	var gotPath atomic.Value
	graphSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath.Store(r.URL.Path)
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("Authorization: got %q", got)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer graphSrv.Close()

	p := newWithOverrides(Config{}, graphSrv.URL, tokenSrv.URL, &http.Client{Timeout: 5 * time.Second})

	if err := p.Send(context.Background(), testMessage()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path := gotPath.Load().(string); path != "/users/sender@example.com/sendMail" {
		t.Errorf("path: got %q", path)
	}
}

func TestSend_RefreshesTokenOn401(t *testing.T) {
	t.Parallel()

	var tokenCalls int64
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt64(&tokenCalls, 1)
		json.NewEncoder(w).Encode(tokenResponse{
			AccessToken: "tok-" + strings.Repeat("x", int(n)),
			ExpiresIn:   3600,
		})
	}))
	defer tokenSrv.Close()

	var sendCalls int64
	graphSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt64(&sendCalls, 1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer graphSrv.Close()

	p := newWithOverrides(Config{}, graphSrv.URL, tokenSrv.URL, &http.Client{Timeout: 5 * time.Second})

	if err := p.Send(context.Background(), testMessage()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := atomic.LoadInt64(&sendCalls); got != 2 {
		t.Errorf("send calls: got %d, want 2", got)
	}
	if got := atomic.LoadInt64(&tokenCalls); got != 2 {
		t.Errorf("token calls: got %d, want 2", got)
	}
}

func TestSend_SurfacesGraphError(t *testing.T) {
	t.Parallel()

	tokenSrv := newTokenServer(t, "tok-1")
	defer tokenSrv.Close()

	graphSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(graphErrorResponse{
			Error: graphError{Code: "ErrorInvalidRecipients", Message: "The recipient is invalid."},
		})
	}))
	defer graphSrv.Close()

	p := newWithOverrides(Config{}, graphSrv.URL, tokenSrv.URL, &http.Client{Timeout: 5 * time.Second})

	err := p.Send(context.Background(), testMessage())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "Graph API error (HTTP 400)") {
		t.Errorf("error: got %q", err.Error())
	}
	if !strings.Contains(err.Error(), "The recipient is invalid.") {
		t.Errorf("error: got %q", err.Error())
	}
}

func TestRead_BuildsQueryAndParsesResponse(t *testing.T) {
	t.Parallel()

	tokenSrv := newTokenServer(t, "tok-1")
	defer tokenSrv.Close()

	graphSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if got := q.Get("$top"); got != "5" {
			t.Errorf("$top: got %q, want %q", got, "5")
		}
		if got := q.Get("$orderby"); got != "receivedDateTime desc" {
			t.Errorf("$orderby: got %q", got)
		}
		if got := q.Get("$filter"); !strings.Contains(got, "from/emailAddress/address eq 'boss@example.com'") {
			t.Errorf("$filter: got %q", got)
		}

		json.NewEncoder(w).Encode(listMessagesResponse{
			Value: []graphMessage{
				{
					InternetMessageID: "<id-1@example.com>",
					Subject:           "Status",
					From:              &recipientField{EmailAddress: emailAddress{Address: "boss@example.com"}},
					ReceivedDateTime:  "2026-08-28T09:00:00Z",
					BodyPreview:       "preview",
					IsRead:            true,
					HasAttachments:    false,
				},
			},
		})
	}))
	defer graphSrv.Close()

	p := newWithOverrides(Config{}, graphSrv.URL, tokenSrv.URL, &http.Client{Timeout: 5 * time.Second})

	summaries, err := p.Read(context.Background(), mail.ReadQuery{
		Mailbox: "user@example.com",
		Sender:  "boss@example.com",
		Top:     5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("summaries: got %d, want 1", len(summaries))
	}
	if summaries[0].MessageID != "<id-1@example.com>" {
		t.Errorf("MessageID: got %q", summaries[0].MessageID)
	}
	if summaries[0].From != "boss@example.com" {
		t.Errorf("From: got %q", summaries[0].From)
	}
}
