// Package auth implements the token contract consumed by the source catalog
// client. OAuth browser/redirect mechanics are out of scope; this package
// only exchanges client credentials for a bearer token and refreshes it.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/nmartins/melodysync/internal/errs"
	"github.com/nmartins/melodysync/internal/logger"
)

// TokenSource supplies a bearer token to the source catalog client and
// refreshes it on demand after a 401 response.
type TokenSource interface {
	// Token returns the current bearer token, fetching one if necessary.
	Token(ctx context.Context) (string, error)
	// RefreshToken forces a new token to be obtained, discarding any cached one.
	RefreshToken(ctx context.Context) error
}

// ClientCredentialsTokenSource implements TokenSource via the OAuth2
// client-credentials grant against tokenURL.
type ClientCredentialsTokenSource struct {
	httpClient   *http.Client
	tokenURL     string
	clientID     string
	clientSecret string

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// NewClientCredentialsTokenSource creates a ClientCredentialsTokenSource.
func NewClientCredentialsTokenSource(
	httpClient *http.Client,
	tokenURL, clientID, clientSecret string,
) *ClientCredentialsTokenSource {
	return &ClientCredentialsTokenSource{
		httpClient:   httpClient,
		tokenURL:     tokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
	}
}

// Token returns the cached token if it is still valid, otherwise fetches a new one.
func (s *ClientCredentialsTokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && time.Now().Before(s.expiresAt) {
		return s.token, nil
	}

	return s.fetchLocked(ctx)
}

// RefreshToken discards the cached token and fetches a new one immediately.
func (s *ClientCredentialsTokenSource) RefreshToken(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	s.expiresAt = time.Time{}

	_, err := s.fetchLocked(ctx)

	return err
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

func (s *ClientCredentialsTokenSource) fetchLocked(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", s.clientID)
	form.Set("client_secret", s.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", errs.Wrap(errs.KindAuth, "failed to build token request", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", errs.Wrap(errs.KindAuth, "token request failed", err)
	}

	defer resp.Body.Close() //nolint:errcheck // Error on close is not critical here.

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: token endpoint returned %d", errs.ErrAuthExpired, resp.StatusCode)
	}

	var parsed tokenResponse
	if err = json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", errs.Wrap(errs.KindAuth, "failed to decode token response", err)
	}

	if parsed.AccessToken == "" {
		return "", errs.Wrap(errs.KindAuth, "token response missing access_token", nil)
	}

	s.token = parsed.AccessToken

	if parsed.ExpiresIn > 0 {
		// Refresh a little early to avoid racing the server's own expiry.
		s.expiresAt = time.Now().Add(time.Duration(parsed.ExpiresIn)*time.Second - 30*time.Second)
	} else {
		s.expiresAt = time.Now().Add(time.Hour)
	}

	logger.Debug(ctx, "source catalog token refreshed")

	return s.token, nil
}
