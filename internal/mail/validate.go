package mail

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"
)

// ErrorKind classifies validation failures for programmatic handling.
type ErrorKind string

const (
	KindValidation    ErrorKind = "validation"
	KindAuthorization ErrorKind = "authorization"
	KindSizeLimit     ErrorKind = "size-limit"
)

// ValidationError is a policy or format violation in a send request. The
// message is client-facing and used verbatim in responses.
type ValidationError struct {
	Kind    ErrorKind
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// allowedMIMETypes is the closed set of attachment content types accepted
// for outbound mail.
var allowedMIMETypes = map[string]struct{}{
	"text/plain":               {},
	"text/html":                {},
	"text/csv":                 {},
	"application/pdf":          {},
	"application/zip":          {},
	"application/vnd.ms-excel": {},
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
	"image/jpeg": {},
	"image/png":  {},
	"image/gif":  {},
}

// maxBodyChars is the per-body character limit (1 MiB).
const maxBodyChars = 1048576

// IsValidEmail reports whether the address matches the accepted syntax.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// Validate checks a send request against the policy. Checks run in a fixed
// order and the first failure wins, so error reporting is deterministic:
// sender syntax, sender allow-list, recipient domains (to, cc, bcc, in list
// order), attachments (type then cumulative size), body size, body presence.
// Pure function over the request and policy; safe to call repeatedly.
func Validate(req *SendRequest, policy *Policy) error {
	if !IsValidEmail(req.FromUPN) {
		return &ValidationError{
			Kind:    KindValidation,
			Message: fmt.Sprintf("Invalid from email address: %s", req.FromUPN),
		}
	}

	if !policy.SenderAllowed(req.FromUPN) {
		return &ValidationError{
			Kind:    KindAuthorization,
			Message: fmt.Sprintf("Sender UPN '%s' is not in the allowed senders list", req.FromUPN),
		}
	}

	for _, list := range [][]string{req.To, req.Cc, req.Bcc} {
		if err := validateRecipientDomains(list, policy); err != nil {
			return err
		}
	}

	if err := validateAttachments(req.Attachments, policy); err != nil {
		return err
	}

	if len(req.HTMLBody) > maxBodyChars {
		return &ValidationError{Kind: KindSizeLimit, Message: "HTML body exceeds 1MB limit"}
	}
	if len(req.TextBody) > maxBodyChars {
		return &ValidationError{Kind: KindSizeLimit, Message: "Text body exceeds 1MB limit"}
	}

	if strings.TrimSpace(req.HTMLBody) == "" && strings.TrimSpace(req.TextBody) == "" {
		return &ValidationError{
			Kind:    KindValidation,
			Message: "Either HTML body or text body is required",
		}
	}

	return nil
}

// validateRecipientDomains checks each recipient's domain against the
// allow-list, left to right. The first violation names the offending domain.
func validateRecipientDomains(recipients []string, policy *Policy) error {
	for _, addr := range recipients {
		domain, err := extractDomain(addr)
		if err != nil {
			return err
		}
		if !policy.DomainAllowed(domain) {
			return &ValidationError{
				Kind:    KindAuthorization,
				Message: fmt.Sprintf("Recipient domain '%s' is not in the allowed domains list", domain),
			}
		}
	}
	return nil
}

// validateAttachments checks each attachment's content type against the MIME
// allow-list and tracks the cumulative decoded size. The size check runs
// after each attachment so a violation is reported as soon as the running
// total first exceeds the limit.
func validateAttachments(attachments []EmailAttachment, policy *Policy) error {
	var totalSize int64
	for _, att := range attachments {
		if strings.ContainsAny(att.Filename, `/\`) {
			return &ValidationError{
				Kind:    KindValidation,
				Message: fmt.Sprintf("Attachment filename '%s' contains invalid characters", att.Filename),
			}
		}

		if _, ok := allowedMIMETypes[att.ContentType]; !ok {
			return &ValidationError{
				Kind:    KindValidation,
				Message: fmt.Sprintf("Attachment MIME type '%s' is not allowed", att.ContentType),
			}
		}

		decoded, err := base64.StdEncoding.DecodeString(att.Base64)
		if err != nil {
			return &ValidationError{
				Kind:    KindValidation,
				Message: fmt.Sprintf("Invalid base64 content in attachment: %s", att.Filename),
			}
		}

		totalSize += int64(len(decoded))
		if totalSize > policy.MaxAttachmentBytes() {
			return &ValidationError{
				Kind:    KindSizeLimit,
				Message: fmt.Sprintf("Total attachment size exceeds limit of %d bytes", policy.MaxAttachmentBytes()),
			}
		}
	}
	return nil
}

// extractDomain returns the lower-cased domain after the last '@'.
func extractDomain(email string) (string, error) {
	at := strings.LastIndex(email, "@")
	if at == -1 {
		return "", &ValidationError{
			Kind:    KindValidation,
			Message: fmt.Sprintf("Invalid email format: %s", email),
		}
	}
	return strings.ToLower(email[at+1:]), nil
}
