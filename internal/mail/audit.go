package mail

import (
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// AuditLogger emits structured audit records for send operations. Records
// carry counts, domains and a subject hash but never message bodies or full
// recipient addresses.
type AuditLogger struct {
	log *zap.Logger
}

// NewAuditLogger creates an audit logger writing through the given zap logger.
func NewAuditLogger(log *zap.Logger) *AuditLogger {
	return &AuditLogger{log: log.Named("audit")}
}

// EmailSent records a successful send.
func (a *AuditLogger) EmailSent(req *SendRequest, messageID, correlationID string) {
	a.log.Info("EMAIL_SENT",
		append(a.baseFields(req, correlationID),
			zap.String("status", StatusSuccess),
			zap.String("messageId", messageID),
		)...,
	)
}

// EmailFailed records a failed send with a sanitized error message.
func (a *AuditLogger) EmailFailed(req *SendRequest, errorMessage, correlationID string) {
	a.log.Info("EMAIL_FAILED",
		append(a.baseFields(req, correlationID),
			zap.String("status", StatusFailed),
			zap.String("errorMessage", sanitizeErrorMessage(errorMessage)),
		)...,
	)
}

func (a *AuditLogger) baseFields(req *SendRequest, correlationID string) []zap.Field {
	fields := []zap.Field{
		zap.String("correlationId", correlationID),
		zap.String("fromUpn", req.FromUPN),
		zap.Int("recipientCount", len(req.To)+len(req.Cc)+len(req.Bcc)),
		zap.String("subjectHash", hashSubject(req.Subject)),
		zap.Int("attachmentCount", len(req.Attachments)),
		zap.Strings("toDomains", uniqueDomains(req.To)),
	}
	if len(req.Cc) > 0 {
		fields = append(fields, zap.Strings("ccDomains", uniqueDomains(req.Cc)))
	}
	if len(req.Bcc) > 0 {
		fields = append(fields, zap.Strings("bccDomains", uniqueDomains(req.Bcc)))
	}
	return fields
}

// hashSubject produces a short stable token for the subject so audit records
// can be correlated without logging the subject itself.
func hashSubject(subject string) string {
	if strings.TrimSpace(subject) == "" {
		return "empty"
	}
	h := fnv.New32a()
	h.Write([]byte(subject))
	return fmt.Sprintf("hash_%x", h.Sum32())
}

// uniqueDomains extracts the distinct lower-cased domains from a recipient
// list, preserving first-seen order.
func uniqueDomains(emails []string) []string {
	seen := make(map[string]struct{}, len(emails))
	domains := make([]string, 0, len(emails))
	for _, email := range emails {
		at := strings.LastIndex(email, "@")
		if at == -1 {
			continue
		}
		domain := strings.ToLower(email[at+1:])
		if _, ok := seen[domain]; ok {
			continue
		}
		seen[domain] = struct{}{}
		domains = append(domains, domain)
	}
	return domains
}

var emailInMessage = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// sanitizeErrorMessage strips email addresses from error text and truncates
// long messages before they reach the audit log.
func sanitizeErrorMessage(msg string) string {
	if msg == "" {
		return "Unknown error"
	}
	sanitized := emailInMessage.ReplaceAllString(msg, "[EMAIL]")
	if len(sanitized) > 200 {
		sanitized = sanitized[:200] + "..."
	}
	return sanitized
}
