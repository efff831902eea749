package secondary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/nmartins/melodysync/internal/downloader"
)

// DownloadExtractor adapts a secondary catalog Client into a
// downloader.Extractor, translating the catalog's per-format stream
// resolution into the downloader's metadata/stream contract.
type DownloadExtractor struct {
	client     Client
	httpClient *http.Client
}

// NewDownloadExtractor builds a DownloadExtractor. httpClient is used to fetch
// the resolved stream URL directly; it need not carry the search rate limiter.
func NewDownloadExtractor(client Client, httpClient *http.Client) *DownloadExtractor {
	return &DownloadExtractor{client: client, httpClient: httpClient}
}

// ExtractMetadata resolves candidateID's stream for selector and reports its
// duration and content length without fetching any audio bytes.
func (e *DownloadExtractor) ExtractMetadata(
	ctx context.Context, candidateID string, selector downloader.FormatSelector,
) (*downloader.Metadata, error) {
	info, err := e.client.StreamInfo(ctx, candidateID, string(selector))
	if err != nil {
		return nil, wrapFormatUnavailable(selector, err)
	}

	return &downloader.Metadata{DurationSecs: info.DurationSecs, ContentLength: info.ContentLength}, nil
}

// OpenStream resolves candidateID's stream for selector and opens it for reading.
func (e *DownloadExtractor) OpenStream(
	ctx context.Context, candidateID string, selector downloader.FormatSelector,
) (io.ReadCloser, error) {
	info, err := e.client.StreamInfo(ctx, candidateID, string(selector))
	if err != nil {
		return nil, wrapFormatUnavailable(selector, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, info.URL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build stream request: %w", err)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("open stream: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusPartialContent:
		return resp.Body, nil
	case http.StatusNotFound, http.StatusForbidden, http.StatusTooManyRequests:
		resp.Body.Close() //nolint:errcheck,gosec // Best-effort close before returning the classified error.
		return nil, &downloader.FormatUnavailableError{
			Selector: selector,
			Cause:    fmt.Errorf("stream returned status %d", resp.StatusCode),
		}
	default:
		resp.Body.Close() //nolint:errcheck,gosec // Best-effort close before returning the error.
		return nil, fmt.Errorf("stream returned status %d", resp.StatusCode)
	}
}

// wrapFormatUnavailable marks only the catalog's explicit "no stream for this
// format" response as cascade-advancing. Transient failures (network errors,
// 5xx) are left as hard errors so the downloader's outer retry applies instead.
func wrapFormatUnavailable(selector downloader.FormatSelector, err error) error {
	if errors.Is(err, ErrFormatNotAvailable) {
		return &downloader.FormatUnavailableError{Selector: selector, Cause: err}
	}

	return err
}
