package httpapi

import (
	"encoding/base64"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shineum/graph-mailer/internal/mail"
)

// Legacy endpoints preserve the request and response shapes of the service
// they replace, down to the exact error strings. Old clients parse these
// bodies, so the wording and status codes here are load-bearing. Neither
// endpoint is rate limited; the old service was not.

// handleLegacySend is POST /sendemail, a multipart form endpoint. Field
// presence errors and send failures are both reported with HTTP 200 and a
// plain-text body; "OK" signals success.
func (s *Server) handleLegacySend(c *gin.Context) {
	correlationID := correlationIDFrom(c)

	// Required fields are rejected when absent or whitespace-only, but the
	// values are used untrimmed.
	from := c.PostForm("from")
	if strings.TrimSpace(from) == "" {
		c.String(http.StatusOK, "From tidak boleh kosong!")
		return
	}
	// The password field is required for compatibility only. Authentication
	// now uses application credentials, so the value is never used.
	if strings.TrimSpace(c.PostForm("paswd")) == "" {
		c.String(http.StatusOK, "Password tidak boleh kosong!")
		return
	}
	body := c.PostForm("emailbody")
	if strings.TrimSpace(body) == "" {
		c.String(http.StatusOK, "Email body tidak boleh kosong!")
		return
	}
	subject := c.PostForm("subject")
	if strings.TrimSpace(subject) == "" {
		c.String(http.StatusOK, "Subject tidak boleh kosong!")
		return
	}
	to := c.PostFormArray("to")
	if len(to) == 0 {
		c.String(http.StatusOK, "To tidak boleh kosong!")
		return
	}

	req := &mail.SendRequest{
		FromUPN: from,
		To:      to,
		Cc:      c.PostFormArray("cc"),
		Subject: subject,
	}
	if looksLikeHTML(body) {
		req.HTMLBody = body
	} else {
		req.TextBody = body
	}

	attachments, err := legacyAttachments(c)
	if err != nil {
		zap.L().Warn("failed to read legacy attachment",
			zap.Error(err),
			zap.String("correlation_id", correlationID),
		)
		c.String(http.StatusOK, "Failed to send email: %s", err.Error())
		return
	}
	req.Attachments = attachments

	result, _ := s.svc.Send(c.Request.Context(), correlationID, req)
	if result.Status == mail.StatusSuccess {
		c.String(http.StatusOK, "OK")
		return
	}
	c.String(http.StatusOK, result.Message)
}

// looksLikeHTML decides whether a legacy body is sent as HTML. The heuristic
// matches the old service: any of the common markers makes it HTML.
func looksLikeHTML(body string) bool {
	lower := strings.ToLower(body)
	return strings.Contains(lower, "<html>") ||
		strings.Contains(lower, "<p>") ||
		strings.Contains(lower, "<br>")
}

// legacyAttachments reads the uploaded attachBytes files and pairs them with
// attachName entries by position. A file without a paired name keeps its
// upload filename.
func legacyAttachments(c *gin.Context) ([]mail.EmailAttachment, error) {
	form, err := c.MultipartForm()
	if err != nil {
		if err == http.ErrNotMultipart {
			return nil, nil
		}
		return nil, err
	}

	files := form.File["attachBytes"]
	if len(files) == 0 {
		return nil, nil
	}
	names := form.Value["attachName"]

	attachments := make([]mail.EmailAttachment, 0, len(files))
	for i, fh := range files {
		content, err := readUpload(fh)
		if err != nil {
			return nil, fmt.Errorf("reading attachment %q: %w", fh.Filename, err)
		}

		name := fh.Filename
		if i < len(names) && names[i] != "" {
			name = names[i]
		}
		contentType := fh.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		attachments = append(attachments, mail.EmailAttachment{
			Filename:    name,
			ContentType: contentType,
			Base64:      base64.StdEncoding.EncodeToString(content),
		})
	}
	return attachments, nil
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// handleLegacyRead serves GET and POST /reademail. Parameters are accepted
// from the query string or the form body. Missing parameters produce HTTP 400
// with the old service's exact JSON bodies, including the spacing around the
// colon and the "password" wording for the paswd field.
func (s *Server) handleLegacyRead(c *gin.Context) {
	param := func(name string) string {
		if v := c.Query(name); v != "" {
			return v
		}
		return c.PostForm(name)
	}
	missing := func(name string) {
		c.Data(http.StatusBadRequest, "application/json",
			[]byte(`{"errors" : "`+name+` tidak boleh null"}`))
	}

	// Whitespace-only values count as missing, matching the old service's
	// trimmed emptiness checks.
	from := param("from")
	if strings.TrimSpace(from) == "" {
		missing("from")
		return
	}
	if strings.TrimSpace(param("paswd")) == "" {
		missing("password")
		return
	}
	counted := param("counted")
	if strings.TrimSpace(counted) == "" {
		missing("counted")
		return
	}
	sender := param("sender")
	if strings.TrimSpace(sender) == "" {
		missing("sender")
		return
	}
	filetype := param("filetype")
	if strings.TrimSpace(filetype) == "" {
		missing("filetype")
		return
	}
	separator := param("separator")
	if strings.TrimSpace(separator) == "" {
		missing("separator")
		return
	}
	if strings.TrimSpace(param("filename")) == "" {
		missing("filename")
		return
	}

	top, err := strconv.Atoi(counted)
	if err != nil || top < 1 {
		missing("counted")
		return
	}

	body := s.svc.Read(c.Request.Context(), mail.ReadQuery{
		Mailbox:        from,
		Sender:         sender,
		Subject:        param("subject"),
		Top:            top,
		Format:         filetype,
		Separator:      separator,
		IncludeHeaders: strings.EqualFold(param("header"), "true"),
	})
	c.Data(http.StatusOK, "application/json", []byte(body))
}
