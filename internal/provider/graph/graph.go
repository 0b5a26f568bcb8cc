package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/shineum/graph-mailer/internal/mail"
)

// Config holds the settings for creating a Provider.
type Config struct {
	TenantID     string
	ClientID     string
	ClientSecret string
}

// Provider sends mail and lists mailboxes via the Microsoft Graph API. The
// sender mailbox comes from each message, so a single Provider serves every
// allowed sender UPN.
type Provider struct {
	baseURL    string
	httpClient *http.Client
	token      *tokenSource
}

// New creates a Provider for the given tenant and app registration.
func New(cfg Config) *Provider {
	tokenURL := fmt.Sprintf(
		"https://login.microsoftonline.com/%s/oauth2/v2.0/token",
		cfg.TenantID,
	)

	client := &http.Client{Timeout: 30 * time.Second}

	return &Provider{
		baseURL:    "https://graph.microsoft.com/v1.0",
		httpClient: client,
		token: newTokenSource(tokenURL, clientCredentials{
			clientID:     cfg.ClientID,
			clientSecret: cfg.ClientSecret,
		}, client),
	}
}

// newWithOverrides creates a Provider with custom URLs and HTTP client,
// used for testing.
func newWithOverrides(cfg Config, baseURL, tokenURL string, client *http.Client) *Provider {
	return &Provider{
		baseURL:    baseURL,
		httpClient: client,
		token: newTokenSource(tokenURL, clientCredentials{
			clientID:     cfg.ClientID,
			clientSecret: cfg.ClientSecret,
		}, client),
	}
}

// Send delivers a message through the sendMail endpoint of the sender's
// mailbox. A 401 response triggers a single token refresh and one immediate
// retry; every other failure is returned to the caller, whose retry policy
// decides what happens next.
func (p *Provider) Send(ctx context.Context, msg *mail.Message) error {
	reqBody := buildSendMailRequest(msg)
	bodyJSON, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	sendURL := fmt.Sprintf("%s/users/%s/sendMail", p.baseURL, url.PathEscape(msg.From))

	err = p.doSendRequest(ctx, sendURL, bodyJSON)
	if err == nil {
		return nil
	}

	if apiErr, ok := err.(*apiError); ok && apiErr.statusCode == http.StatusUnauthorized {
		zap.L().Info("refreshing Graph API token after 401")
		if _, refreshErr := p.token.ForceRefresh(ctx); refreshErr != nil {
			return fmt.Errorf("token refresh failed: %w", refreshErr)
		}
		return p.doSendRequest(ctx, sendURL, bodyJSON)
	}

	return err
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "msgraph"
}

// doSendRequest performs a single HTTP request to the sendMail endpoint.
func (p *Provider) doSendRequest(ctx context.Context, sendURL string, bodyJSON []byte) error {
	token, err := p.token.Token(ctx)
	if err != nil {
		return fmt.Errorf("failed to get access token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sendURL, bytes.NewReader(bodyJSON))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	// HTTP 202 Accepted is success for sendMail
	if resp.StatusCode == http.StatusAccepted || resp.StatusCode == http.StatusOK {
		return nil
	}

	return p.readAPIError(resp)
}

// Read lists messages from a mailbox, newest first, applying the optional
// sender and subject filters and the result count limit.
func (p *Provider) Read(ctx context.Context, q mail.ReadQuery) ([]mail.MessageSummary, error) {
	token, err := p.token.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get access token: %w", err)
	}

	listURL := fmt.Sprintf("%s/users/%s/messages?%s",
		p.baseURL, url.PathEscape(q.Mailbox), buildListQuery(q))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, listURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, p.readAPIError(resp)
	}

	var list listMessagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("failed to parse messages response: %w", err)
	}

	summaries := make([]mail.MessageSummary, 0, len(list.Value))
	for _, m := range list.Value {
		s := mail.MessageSummary{
			MessageID:        m.InternetMessageID,
			Subject:          m.Subject,
			ReceivedDateTime: m.ReceivedDateTime,
			BodyPreview:      m.BodyPreview,
			IsRead:           m.IsRead,
			HasAttachments:   m.HasAttachments,
		}
		if m.From != nil {
			s.From = m.From.EmailAddress.Address
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

// buildListQuery assembles the OData query string for a mailbox listing.
func buildListQuery(q mail.ReadQuery) string {
	values := url.Values{}
	if q.Top > 0 {
		values.Set("$top", strconv.Itoa(q.Top))
	}

	var filters []string
	if strings.TrimSpace(q.Sender) != "" {
		filters = append(filters, fmt.Sprintf("from/emailAddress/address eq '%s'", q.Sender))
	}
	if strings.TrimSpace(q.Subject) != "" {
		filters = append(filters, fmt.Sprintf("contains(subject, '%s')", q.Subject))
	}
	if len(filters) > 0 {
		values.Set("$filter", strings.Join(filters, " and "))
	}

	values.Set("$select", "subject,from,receivedDateTime,bodyPreview,isRead,hasAttachments,internetMessageId")
	values.Set("$orderby", "receivedDateTime desc")

	return values.Encode()
}

// apiError is a non-2xx response from the Graph API.
type apiError struct {
	statusCode int
	message    string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("Graph API error (HTTP %d): %s", e.statusCode, e.message)
}

// readAPIError extracts the error detail from a failed Graph response,
// falling back to the raw body when it is not the standard error shape.
func (p *Provider) readAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var errResp graphErrorResponse
	if jsonErr := json.Unmarshal(body, &errResp); jsonErr == nil && errResp.Error.Message != "" {
		return &apiError{statusCode: resp.StatusCode, message: errResp.Error.Message}
	}

	return &apiError{statusCode: resp.StatusCode, message: string(body)}
}
