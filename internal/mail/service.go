package mail

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Sender delivers an outbound message. Implemented by the provider packages.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
	Name() string
}

// Reader lists message summaries from a mailbox, newest first.
type Reader interface {
	Read(ctx context.Context, q ReadQuery) ([]MessageSummary, error)
}

// maxSendAttempts is the total number of delivery attempts per request.
const maxSendAttempts = 3

// baseRetryDelay is the delay before the second attempt; it doubles for each
// subsequent attempt (300ms, 600ms).
const baseRetryDelay = 300 * time.Millisecond

// Defaults carries configured request fallbacks. FromUPN fills an omitted
// fromUpn before validation; SaveToSentItems applies when the request leaves
// the flag unset.
type Defaults struct {
	FromUPN         string
	SaveToSentItems bool
}

// Service runs the send pipeline (validate, build, deliver with retries) and
// delegates mailbox reads. It never returns a send failure as an error; the
// outcome is always a SendResult value. The error return is non-nil only for
// validation failures, so transports can choose their status code.
type Service struct {
	provider Sender
	reader   Reader
	policy   *Policy
	defaults Defaults
	audit    *AuditLogger

	// sleep is replaceable in tests to avoid real retry delays.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewService creates a mail service bound to a provider, a reader, the
// allow-list policy and the configured request defaults.
func NewService(provider Sender, reader Reader, policy *Policy, defaults Defaults, audit *AuditLogger) *Service {
	return &Service{
		provider: provider,
		reader:   reader,
		policy:   policy,
		defaults: defaults,
		audit:    audit,
		sleep:    sleepWithContext,
	}
}

// Send validates, builds and delivers an email. The returned result is never
// nil. A non-nil error indicates a validation failure (the result already
// carries the client-facing message); delivery failures after retries are
// reported only through the FAILED result.
func (s *Service) Send(ctx context.Context, correlationID string, req *SendRequest) (*SendResult, error) {
	if req.FromUPN == "" {
		req.FromUPN = s.defaults.FromUPN
	}
	if req.SaveToSentItems == nil {
		save := s.defaults.SaveToSentItems
		req.SaveToSentItems = &save
	}

	zap.L().Info("processing email send request",
		zap.String("from_upn", req.FromUPN),
		zap.Int("recipients", len(req.To)+len(req.Cc)+len(req.Bcc)),
		zap.String("correlation_id", correlationID),
	)

	if err := Validate(req, s.policy); err != nil {
		s.audit.EmailFailed(req, err.Error(), correlationID)
		var verr *ValidationError
		if errors.As(err, &verr) {
			return FailedResult("Validation error: "+verr.Message, correlationID), err
		}
		return FailedResult("Validation error: "+err.Error(), correlationID), err
	}

	msg, err := BuildMessage(req)
	if err != nil {
		// Unreachable in practice: attachment decoding was already validated.
		s.audit.EmailFailed(req, err.Error(), correlationID)
		return FailedResult("Failed to send email: "+err.Error(), correlationID), nil
	}

	if err := s.deliver(ctx, msg); err != nil {
		zap.L().Error("failed to send email",
			zap.String("from_upn", req.FromUPN),
			zap.String("correlation_id", correlationID),
			zap.Error(err),
		)
		s.audit.EmailFailed(req, err.Error(), correlationID)
		return FailedResult("Failed to send email: "+err.Error(), correlationID), nil
	}

	// The provider send call does not return a message id, so one is
	// synthesized. Callers must not assume it is traceable in the
	// provider's own message store.
	messageID := uuid.NewString()
	s.audit.EmailSent(req, messageID, correlationID)

	zap.L().Info("email sent successfully",
		zap.String("message_id", messageID),
		zap.String("provider", s.provider.Name()),
		zap.String("correlation_id", correlationID),
	)
	return SuccessResult(messageID, correlationID), nil
}

// deliver attempts the provider send with exponential backoff between
// attempts. Any provider error is retried; only the final outcome surfaces.
func (s *Service) deliver(ctx context.Context, msg *Message) error {
	var lastErr error
	delay := baseRetryDelay

	for attempt := 1; attempt <= maxSendAttempts; attempt++ {
		if attempt > 1 {
			zap.L().Debug("retrying provider send",
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
			)
			if err := s.sleep(ctx, delay); err != nil {
				return err
			}
			delay *= 2
		}

		if lastErr = s.provider.Send(ctx, msg); lastErr == nil {
			return nil
		}
	}

	return lastErr
}

// Read lists messages from a mailbox and serializes them in the requested
// format. Reader failures are reported inside the payload with an ERROR
// status rather than as an error, matching the legacy read contract.
func (s *Service) Read(ctx context.Context, q ReadQuery) string {
	summaries, err := s.reader.Read(ctx, q)
	if err != nil {
		zap.L().Error("failed to read mailbox",
			zap.String("mailbox", q.Mailbox),
			zap.Error(err),
		)
		return FormatError("Error reading emails: " + err.Error())
	}

	if isCSVFormat(q.Format) {
		return FormatSummariesCSV(summaries, q.Separator, q.IncludeHeaders)
	}
	return FormatSummariesJSON(summaries)
}

// sleepWithContext waits for the duration or until the context is cancelled.
func sleepWithContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
