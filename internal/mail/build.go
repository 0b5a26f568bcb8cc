package mail

import (
	"encoding/base64"
	"fmt"
)

// BuildMessage converts a validated send request into the outbound message
// shape consumed by providers. HTML body takes precedence over text when both
// are present. Attachments are base64-decoded here; SaveToSentItems defaults
// to true when absent.
func BuildMessage(req *SendRequest) (*Message, error) {
	msg := &Message{
		From:            req.FromUPN,
		To:              req.To,
		Cc:              req.Cc,
		Bcc:             req.Bcc,
		Subject:         req.Subject,
		HTMLBody:        req.HTMLBody,
		TextBody:        req.TextBody,
		Importance:      ParseImportance(req.Importance),
		SaveToSentItems: req.SaveToSentItems == nil || *req.SaveToSentItems,
	}

	if len(req.Attachments) > 0 {
		msg.Attachments = make([]Attachment, 0, len(req.Attachments))
		for _, att := range req.Attachments {
			content, err := base64.StdEncoding.DecodeString(att.Base64)
			if err != nil {
				return nil, fmt.Errorf("failed to decode attachment %q: %w", att.Filename, err)
			}
			msg.Attachments = append(msg.Attachments, Attachment{
				Filename:    att.Filename,
				ContentType: att.ContentType,
				Content:     content,
			})
		}
	}

	return msg, nil
}
