// Package providers implements the lyrics providers wired into the
// resolver: a credential-free default and two credentialed fallbacks.
package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	http_transport "github.com/nmartins/melodysync/internal/transport/http"
	"github.com/nmartins/melodysync/internal/utils"
)

// defaultRequestIntervalSecs is the default per-provider rate limit (1 req/s).
const defaultRequestIntervalSecs = 1.0

// defaultTimeout is the per-request HTTP timeout.
const defaultTimeout = 15 * time.Second

// base provides shared HTTP-client construction and rate limiting for providers.
type base struct {
	httpClient *http.Client
	limiter    *rate.Limiter
}

func newBase() base {
	transport := http_transport.NewUserAgentInjector(
		http_transport.NewLogTransport(http.DefaultTransport, 0),
		utils.NewSimpleUserAgentProvider(http_transport.DefaultUserAgent))

	return base{
		httpClient: &http.Client{Transport: transport, Timeout: defaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(1.0/defaultRequestIntervalSecs), 1),
	}
}

// getJSON performs a rate-limited GET and decodes the JSON response body into out.
func (b base) getJSON(ctx context.Context, url string, headers map[string]string, out any) (int, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return 0, err
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return 0, err
	}

	defer resp.Body.Close() //nolint:errcheck // Error on close is not critical here.

	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, nil
	}

	if out == nil {
		return resp.StatusCode, nil
	}

	return resp.StatusCode, json.NewDecoder(resp.Body).Decode(out)
}
