// Package graph implements the Provider and Reader backed by the Microsoft
// Graph API with OAuth2 client credentials authentication.
package graph

import (
	"encoding/base64"

	"github.com/shineum/graph-mailer/internal/mail"
)

// sendMailRequest is the top-level request body for the Graph sendMail endpoint.
type sendMailRequest struct {
	Message         sendMailMessage `json:"message"`
	SaveToSentItems bool            `json:"saveToSentItems"`
}

// sendMailMessage represents the message portion of a sendMail request.
type sendMailMessage struct {
	Subject       string            `json:"subject"`
	Body          messageBody       `json:"body"`
	ToRecipients  []recipient       `json:"toRecipients"`
	CcRecipients  []recipient       `json:"ccRecipients,omitempty"`
	BccRecipients []recipient       `json:"bccRecipients,omitempty"`
	Importance    string            `json:"importance"`
	Attachments   []graphAttachment `json:"attachments,omitempty"`
}

// messageBody represents the body of an email message.
type messageBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

// recipient represents an email recipient.
type recipient struct {
	EmailAddress emailAddress `json:"emailAddress"`
}

// emailAddress represents an email address in a Graph API request.
type emailAddress struct {
	Address string `json:"address"`
}

// graphAttachment represents a file attachment in a Graph API request.
type graphAttachment struct {
	ODataType    string `json:"@odata.type"`
	Name         string `json:"name"`
	ContentType  string `json:"contentType"`
	ContentBytes string `json:"contentBytes"`
}

// tokenResponse represents the OAuth2 token endpoint response.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// graphErrorResponse represents an error response from the Graph API.
type graphErrorResponse struct {
	Error graphError `json:"error"`
}

// graphError represents the error detail in a Graph API error response.
type graphError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// listMessagesResponse is the body of a GET /users/{id}/messages response.
type listMessagesResponse struct {
	Value []graphMessage `json:"value"`
}

// graphMessage carries the selected fields of a mailbox message.
type graphMessage struct {
	InternetMessageID string          `json:"internetMessageId"`
	Subject           string          `json:"subject"`
	From              *recipientField `json:"from"`
	ReceivedDateTime  string          `json:"receivedDateTime"`
	BodyPreview       string          `json:"bodyPreview"`
	IsRead            bool            `json:"isRead"`
	HasAttachments    bool            `json:"hasAttachments"`
}

// recipientField is the from/sender structure in a Graph message.
type recipientField struct {
	EmailAddress emailAddress `json:"emailAddress"`
}

// buildSendMailRequest converts an outbound message into a Graph sendMail
// request body. HTML content takes precedence when present.
func buildSendMailRequest(msg *mail.Message) *sendMailRequest {
	body := messageBody{
		ContentType: "text",
		Content:     msg.TextBody,
	}
	if msg.HTMLBody != "" {
		body.ContentType = "html"
		body.Content = msg.HTMLBody
	}

	return &sendMailRequest{
		Message: sendMailMessage{
			Subject:       msg.Subject,
			Body:          body,
			ToRecipients:  buildRecipients(msg.To),
			CcRecipients:  buildRecipients(msg.Cc),
			BccRecipients: buildRecipients(msg.Bcc),
			Importance:    string(msg.Importance),
			Attachments:   buildAttachments(msg.Attachments),
		},
		SaveToSentItems: msg.SaveToSentItems,
	}
}

func buildRecipients(addrs []string) []recipient {
	if len(addrs) == 0 {
		return nil
	}
	recipients := make([]recipient, 0, len(addrs))
	for _, addr := range addrs {
		recipients = append(recipients, recipient{
			EmailAddress: emailAddress{Address: addr},
		})
	}
	return recipients
}

func buildAttachments(atts []mail.Attachment) []graphAttachment {
	if len(atts) == 0 {
		return nil
	}
	attachments := make([]graphAttachment, 0, len(atts))
	for _, att := range atts {
		attachments = append(attachments, graphAttachment{
			ODataType:    "#microsoft.graph.fileAttachment",
			Name:         att.Filename,
			ContentType:  att.ContentType,
			ContentBytes: base64.StdEncoding.EncodeToString(att.Content),
		})
	}
	return attachments
}
