package secondary

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/nmartins/melodysync/internal/errs"
	http_transport "github.com/nmartins/melodysync/internal/transport/http"
	"github.com/nmartins/melodysync/internal/utils"
)

const secondaryThrottleIntervalSecs = 1.0 // 1 second minimum interval between search calls.

// Client searches the secondary catalog for downloadable candidates.
type Client interface {
	// Search runs a single query and returns the raw candidates the catalog reports.
	Search(ctx context.Context, query string) ([]Candidate, error)
	// StreamInfo resolves a candidate's direct stream URL for one format rung
	// of the cascade. A 404 response means that format isn't available for
	// this candidate, not that the request failed.
	StreamInfo(ctx context.Context, candidateID, format string) (*StreamInfo, error)
}

// StreamInfo is a candidate's resolved, fetchable audio stream for one format.
type StreamInfo struct {
	URL           string
	DurationSecs  int
	ContentLength int64
}

// ErrFormatNotAvailable indicates the catalog has no stream for the requested format.
var ErrFormatNotAvailable = errs.New(errs.KindDownload, "secondary catalog has no stream for this format")

// ClientImpl implements Client against a configurable base URL.
type ClientImpl struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a ClientImpl. httpClient should carry a RateLimiterTransport
// enforcing the 1s per-request throttle between secondary-catalog search calls.
func NewClient(baseURL string, httpClient *http.Client) *ClientImpl {
	return &ClientImpl{baseURL: baseURL, httpClient: httpClient}
}

// NewHTTPClient builds an *http.Client wired with the rate limiter and user
// agent conventions shared by the secondary catalog client.
func NewHTTPClient(timeout time.Duration) *http.Client {
	transport := http_transport.NewRateLimiterTransport(http.DefaultTransport, 1.0/secondaryThrottleIntervalSecs, 1)
	transport = http_transport.NewUserAgentInjector(
		http_transport.NewLogTransport(transport, 0),
		utils.NewSimpleUserAgentProvider(http_transport.DefaultUserAgent))

	return &http.Client{Transport: transport, Timeout: timeout}
}

// searchResponse is the wire shape of a secondary-catalog search result page.
type searchResponse struct {
	Results []searchResult `json:"results"`
}

type searchResult struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Artist         string `json:"artist"`
	DurationSecs   *int   `json:"duration_s"`
	Album          string `json:"album"`
	Thumbnail      string `json:"thumbnail"`
	VerifiedArtist bool   `json:"verified_artist"`
}

// Search runs a single query against the secondary catalog's search endpoint.
func (c *ClientImpl) Search(ctx context.Context, query string) ([]Candidate, error) {
	route, err := url.JoinPath(c.baseURL, "search")
	if err != nil {
		return nil, errs.Wrap(errs.KindResolver, "invalid secondary catalog URL", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, route, http.NoBody)
	if err != nil {
		return nil, errs.Wrap(errs.KindResolver, "failed to build search request", err)
	}

	q := url.Values{}
	q.Set("q", query)
	req.URL.RawQuery = q.Encode()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errs.Wrap(errs.KindSourceTransient, "secondary catalog request failed", err)
	}

	defer resp.Body.Close() //nolint:errcheck // Error on close is not critical here.

	if resp.StatusCode != http.StatusOK {
		return nil, errs.Wrap(
			errs.KindSourceTransient, fmt.Sprintf("secondary catalog returned status %d", resp.StatusCode), nil)
	}

	var parsed searchResponse
	if err = json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, errs.Wrap(errs.KindSourceTransient, "failed to decode search response", err)
	}

	candidates := make([]Candidate, 0, len(parsed.Results))

	for _, r := range parsed.Results {
		candidates = append(candidates, Candidate{
			ID:           r.ID,
			Title:        r.Title,
			Artist:       r.Artist,
			DurationSecs: r.DurationSecs,
			Album:        r.Album,
			Thumbnail:    r.Thumbnail,
			Flags:        detectFlags(r.Title, r.VerifiedArtist),
		})
	}

	return candidates, nil
}

// streamInfoResponse is the wire shape of a stream-resolution response.
type streamInfoResponse struct {
	URL           string `json:"url"`
	DurationSecs  int    `json:"duration_s"`
	ContentLength int64  `json:"content_length"`
}

// StreamInfo resolves candidateID's direct stream URL for the given format.
func (c *ClientImpl) StreamInfo(ctx context.Context, candidateID, format string) (*StreamInfo, error) {
	route, err := url.JoinPath(c.baseURL, "stream")
	if err != nil {
		return nil, errs.Wrap(errs.KindDownload, "invalid secondary catalog URL", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, route, http.NoBody)
	if err != nil {
		return nil, errs.Wrap(errs.KindDownload, "failed to build stream request", err)
	}

	q := url.Values{}
	q.Set("id", candidateID)
	q.Set("format", format)
	req.URL.RawQuery = q.Encode()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errs.Wrap(errs.KindSourceTransient, "secondary catalog stream request failed", err)
	}

	defer resp.Body.Close() //nolint:errcheck // Error on close is not critical here.

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrFormatNotAvailable
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errs.Wrap(
			errs.KindSourceTransient, fmt.Sprintf("secondary catalog returned status %d", resp.StatusCode), nil)
	}

	var parsed streamInfoResponse
	if err = json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, errs.Wrap(errs.KindSourceTransient, "failed to decode stream response", err)
	}

	return &StreamInfo{URL: parsed.URL, DurationSecs: parsed.DurationSecs, ContentLength: parsed.ContentLength}, nil
}
