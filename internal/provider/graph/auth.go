package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// tokenExpiryBuffer shortens the cached token lifetime so a token that is
// about to expire is never used for an in-flight request.
const tokenExpiryBuffer = 5 * time.Minute

// clientCredentials identifies the app registration used for the OAuth2
// client credentials grant.
type clientCredentials struct {
	clientID     string
	clientSecret string
	scope        string
}

// tokenSource caches OAuth2 access tokens and refreshes them on demand.
// Safe for concurrent use.
type tokenSource struct {
	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time

	tokenURL   string
	creds      clientCredentials
	httpClient *http.Client
}

func newTokenSource(tokenURL string, creds clientCredentials, httpClient *http.Client) *tokenSource {
	if creds.scope == "" {
		creds.scope = "https://graph.microsoft.com/.default"
	}
	return &tokenSource{
		tokenURL:   tokenURL,
		creds:      creds,
		httpClient: httpClient,
	}
}

// Token returns a cached access token, acquiring a fresh one when the cache
// is empty or expired.
func (ts *tokenSource) Token(ctx context.Context) (string, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.accessToken != "" && time.Now().Before(ts.expiresAt) {
		return ts.accessToken, nil
	}

	return ts.acquire(ctx)
}

// ForceRefresh drops the cached token and acquires a new one. Used when a
// 401 response indicates the token was revoked or invalid.
func (ts *tokenSource) ForceRefresh(ctx context.Context) (string, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	ts.accessToken = ""
	ts.expiresAt = time.Time{}

	return ts.acquire(ctx)
}

// acquire requests a new token from the token endpoint. Caller holds ts.mu.
func (ts *tokenSource) acquire(ctx context.Context) (string, error) {
	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {ts.creds.clientID},
		"client_secret": {ts.creds.clientSecret},
		"scope":         {ts.creds.scope},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ts.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := ts.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", fmt.Errorf("failed to parse token response: %w", err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("token response missing access_token")
	}

	ts.accessToken = tr.AccessToken
	ts.expiresAt = time.Now().Add(time.Duration(tr.ExpiresIn)*time.Second - tokenExpiryBuffer)

	return ts.accessToken, nil
}
