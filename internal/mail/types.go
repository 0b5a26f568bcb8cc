// Package mail implements the send/read pipeline: request validation against
// configured allow-lists, outbound message construction, provider dispatch
// with retries, and result formatting.
package mail

import (
	"strings"
	"time"
)

// Importance is the outbound message priority.
type Importance string

const (
	ImportanceLow    Importance = "low"
	ImportanceNormal Importance = "normal"
	ImportanceHigh   Importance = "high"
)

// ParseImportance maps a free-text importance value to a known level.
// Unrecognized values fall back to normal rather than failing the request.
func ParseImportance(s string) Importance {
	switch strings.ToLower(s) {
	case "low":
		return ImportanceLow
	case "high":
		return ImportanceHigh
	default:
		return ImportanceNormal
	}
}

// SendRequest is the inbound JSON request for sending an email. Structural
// constraints (required fields, list caps, address format) are enforced by
// the binding tags; business rules are enforced by Validate.
type SendRequest struct {
	// FromUPN may be omitted; the service fills in the configured default
	// sender before validation.
	FromUPN         string            `json:"fromUpn"`
	To              []string          `json:"to" binding:"required,min=1,max=100,dive,email"`
	Cc              []string          `json:"cc" binding:"omitempty,max=50,dive,email"`
	Bcc             []string          `json:"bcc" binding:"omitempty,max=50,dive,email"`
	Subject         string            `json:"subject" binding:"required,max=255"`
	HTMLBody        string            `json:"htmlBody" binding:"omitempty,max=1048576"`
	TextBody        string            `json:"textBody" binding:"omitempty,max=1048576"`
	Attachments     []EmailAttachment `json:"attachments" binding:"omitempty,max=10,dive"`
	SaveToSentItems *bool             `json:"saveToSentItems"`
	Importance      string            `json:"importance"`
}

// EmailAttachment is an inbound attachment with base64-encoded content.
type EmailAttachment struct {
	Filename    string `json:"filename" binding:"required,max=255"`
	ContentType string `json:"contentType" binding:"required"`
	Base64      string `json:"base64" binding:"required"`
}

// SendResult is the outcome of a send operation. The service always produces
// a result value; failures are reported here, never as transport errors.
type SendResult struct {
	Status        string    `json:"status"`
	MessageID     string    `json:"messageId,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
	Message       string    `json:"message,omitempty"`
	CorrelationID string    `json:"correlationId"`
}

// StatusSuccess and StatusFailed are the two SendResult states.
const (
	StatusSuccess = "SUCCESS"
	StatusFailed  = "FAILED"
)

// SuccessResult builds a SUCCESS result with a synthesized message id.
func SuccessResult(messageID, correlationID string) *SendResult {
	return &SendResult{
		Status:        StatusSuccess,
		MessageID:     messageID,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
	}
}

// FailedResult builds a FAILED result carrying a human-readable message.
func FailedResult(message, correlationID string) *SendResult {
	return &SendResult{
		Status:        StatusFailed,
		Timestamp:     time.Now().UTC(),
		Message:       message,
		CorrelationID: correlationID,
	}
}

// Message is the validated, decoded outbound message handed to providers.
type Message struct {
	From            string
	To              []string
	Cc              []string
	Bcc             []string
	Subject         string
	HTMLBody        string
	TextBody        string
	Importance      Importance
	SaveToSentItems bool
	Attachments     []Attachment
}

// Attachment carries decoded attachment bytes for providers.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// ReadQuery describes a mailbox read request.
type ReadQuery struct {
	Mailbox        string
	Sender         string
	Subject        string
	Top            int
	Format         string
	Separator      string
	IncludeHeaders bool
}

// MessageSummary is one row of a mailbox listing, newest first.
type MessageSummary struct {
	MessageID        string `json:"messageId"`
	Subject          string `json:"subject"`
	From             string `json:"from"`
	ReceivedDateTime string `json:"receivedDateTime"`
	BodyPreview      string `json:"bodyPreview"`
	IsRead           bool   `json:"isRead"`
	HasAttachments   bool   `json:"hasAttachments"`
}

// Policy is the immutable allow-list configuration shared by all requests.
type Policy struct {
	allowedSenders     map[string]struct{}
	allowedDomains     map[string]struct{}
	maxAttachmentBytes int64
}

// NewPolicy builds a Policy from sender and domain allow-lists. Domains are
// compared case-insensitively; they are lower-cased here once.
func NewPolicy(senderUPNs, recipientDomains []string, maxAttachmentBytes int64) *Policy {
	p := &Policy{
		allowedSenders:     make(map[string]struct{}, len(senderUPNs)),
		allowedDomains:     make(map[string]struct{}, len(recipientDomains)),
		maxAttachmentBytes: maxAttachmentBytes,
	}
	for _, s := range senderUPNs {
		p.allowedSenders[s] = struct{}{}
	}
	for _, d := range recipientDomains {
		p.allowedDomains[strings.ToLower(d)] = struct{}{}
	}
	return p
}

// SenderAllowed reports whether the given UPN is in the sender allow-list.
func (p *Policy) SenderAllowed(upn string) bool {
	_, ok := p.allowedSenders[upn]
	return ok
}

// DomainAllowed reports whether the given lower-cased domain is allowed.
func (p *Policy) DomainAllowed(domain string) bool {
	_, ok := p.allowedDomains[domain]
	return ok
}

// MaxAttachmentBytes returns the cumulative decoded attachment size limit.
func (p *Policy) MaxAttachmentBytes() int64 {
	return p.maxAttachmentBytes
}
