// Package source consumes the remote music-platform catalog API: playlist
// reference parsing, paginated track listing, and batch metadata resolution.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/nmartins/melodysync/internal/auth"
	"github.com/nmartins/melodysync/internal/errs"
	"github.com/nmartins/melodysync/internal/logger"
	"github.com/nmartins/melodysync/internal/model"
	http_transport "github.com/nmartins/melodysync/internal/transport/http"
	"github.com/nmartins/melodysync/internal/utils"
)

const (
	tracksPageSize       = 100
	metadataBatchSize    = 50
	throttleIntervalSecs = 0.1 // 100ms minimum interval between outbound requests.
)

// PlaylistItemRef is one slot in a playlist's track listing, as returned by
// the paginated items endpoint before metadata has been resolved.
type PlaylistItemRef struct {
	Position int
	AddedAt  time.Time
	TrackID  string
}

// PlaylistHeader is a playlist's header fields, fetched without its tracks.
type PlaylistHeader struct {
	ID              string
	Name            string
	Description     string
	OwnerName       string
	SnapshotID      string
	Public          bool
	Collaborative   bool
	TotalTrackCount int
}

// Client defines the interface for interacting with the source catalog API.
type Client interface {
	// FetchPlaylistHeader fetches a playlist's header fields, without tracks.
	FetchPlaylistHeader(ctx context.Context, playlistID string) (*PlaylistHeader, error)
	// FetchTracks yields playlist items lazily, in playlist order, one page
	// at a time. Items whose track was removed upstream are skipped with a
	// warning, but position still advances.
	FetchTracks(ctx context.Context, playlistID string, yield func(PlaylistItemRef) error) error
	// ResolveTracksMetadata batch-resolves full track metadata for the given ids,
	// in batches of up to 50 ids per request.
	ResolveTracksMetadata(ctx context.Context, trackIDs []string) (map[string]*model.Track, error)
	// VerifyAccess checks that the current credential can access the given playlist.
	VerifyAccess(ctx context.Context, playlistID string) error
}

// ClientImpl implements Client against a configurable base URL.
type ClientImpl struct {
	baseURL     string
	httpClient  *http.Client
	tokenSource auth.TokenSource
}

// NewClient creates a ClientImpl. httpClient should already carry a
// RateLimiterTransport enforcing the 100ms per-request throttle and a
// UserAgentInjector, per the transport conventions used across clients.
func NewClient(baseURL string, httpClient *http.Client, tokenSource auth.TokenSource) *ClientImpl {
	return &ClientImpl{
		baseURL:     baseURL,
		httpClient:  httpClient,
		tokenSource: tokenSource,
	}
}

// NewHTTPClient builds an *http.Client wired with the rate limiter and user
// agent conventions shared by the source catalog client.
func NewHTTPClient(timeout time.Duration) *http.Client {
	transport := http_transport.NewRateLimiterTransport(http.DefaultTransport, 1.0/throttleIntervalSecs, 1)
	transport = http_transport.NewUserAgentInjector(
		http_transport.NewLogTransport(transport, 0),
		utils.NewSimpleUserAgentProvider(http_transport.DefaultUserAgent))

	return &http.Client{Transport: transport, Timeout: timeout}
}

// FetchPlaylistHeader fetches a playlist's header fields, without tracks.
func (c *ClientImpl) FetchPlaylistHeader(ctx context.Context, playlistID string) (*PlaylistHeader, error) {
	var resp playlistHeaderResponse

	if err := c.getJSON(ctx, "playlists/"+playlistID, nil, &resp); err != nil {
		return nil, err
	}

	return &PlaylistHeader{
		ID:              resp.ID,
		Name:            resp.Name,
		Description:     resp.Description,
		OwnerName:       resp.OwnerName,
		SnapshotID:      resp.SnapshotID,
		Public:          resp.Public,
		Collaborative:   resp.Collaborative,
		TotalTrackCount: resp.TotalTrackCount,
	}, nil
}

// FetchTracks yields playlist items lazily, one page at a time, in playlist order.
func (c *ClientImpl) FetchTracks(ctx context.Context, playlistID string, yield func(PlaylistItemRef) error) error {
	position := 0
	offset := 0

	for {
		query := url.Values{}
		query.Set("limit", strconv.Itoa(tracksPageSize))
		query.Set("offset", strconv.Itoa(offset))

		var page playlistTracksPageResponse
		if err := c.getJSON(ctx, "playlists/"+playlistID+"/tracks", query, &page); err != nil {
			return err
		}

		if len(page.Items) == 0 {
			return nil
		}

		for _, item := range page.Items {
			position++

			if item.Track == nil || item.Track.ID == "" {
				logger.Warnf(ctx, "playlist %s: removed item at position %d, skipping", playlistID, position)

				continue
			}

			addedAt, _ := time.Parse(time.RFC3339, item.AddedAt)

			if err := yield(PlaylistItemRef{Position: position, AddedAt: addedAt, TrackID: item.Track.ID}); err != nil {
				return err
			}
		}

		offset += len(page.Items)

		if page.Next == "" || offset >= page.Total {
			return nil
		}
	}
}

// ResolveTracksMetadata batch-resolves full track metadata in batches of up to 50 ids.
func (c *ClientImpl) ResolveTracksMetadata(ctx context.Context, trackIDs []string) (map[string]*model.Track, error) {
	result := make(map[string]*model.Track, len(trackIDs))

	for _, batch := range chunk(trackIDs, metadataBatchSize) {
		query := url.Values{}
		query.Set("ids", joinComma(batch))

		var resp tracksMetadataResponse
		if err := c.getJSON(ctx, "tracks", query, &resp); err != nil {
			return nil, err
		}

		for _, t := range resp.Tracks {
			result[t.ID] = toModelTrack(t)
		}
	}

	return result, nil
}

// VerifyAccess checks that the current credential can access the given playlist.
func (c *ClientImpl) VerifyAccess(ctx context.Context, playlistID string) error {
	_, err := c.FetchPlaylistHeader(ctx, playlistID)

	return err
}

func toModelTrack(t trackMetadata) *model.Track {
	covers := make([]model.CoverImage, 0, len(t.Album.Covers))
	for _, cov := range t.Album.Covers {
		covers = append(covers, model.CoverImage{URL: cov.URL, Width: cov.Width, Height: cov.Height})
	}

	return &model.Track{
		ID:          t.ID,
		Title:       t.Title,
		Artists:     t.Artists,
		DurationMs:  int64(t.DurationMs),
		Explicit:    t.Explicit,
		TrackNumber: t.TrackNumber,
		DiscNumber:  t.DiscNumber,
		ISRC:        t.ISRC,
		Available:   t.Available,
		PreviewURL:  t.PreviewURL,
		Album: model.Album{
			ID:      t.Album.ID,
			Name:    t.Album.Name,
			Artists: t.Album.Artists,
			Genres:  t.Album.Genres,
			Covers:  covers,
			ReleaseDate: model.ReleaseDate{
				Year:  t.Album.Release.Year,
				Month: t.Album.Release.Month,
				Day:   t.Album.Release.Day,
			},
		},
	}
}

// getJSON performs an authenticated GET, transparently refreshing the bearer
// token once on a 401 and retrying once, and honoring Retry-After on a 429.
func (c *ClientImpl) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	refreshed := false

	for {
		statusCode, err := c.doGet(ctx, path, query, out)
		if err == nil {
			return nil
		}

		if statusCode == http.StatusUnauthorized && !refreshed {
			refreshed = true

			if refreshErr := c.tokenSource.RefreshToken(ctx); refreshErr != nil {
				return errs.Wrap(errs.KindAuth, "token refresh after 401 failed", refreshErr)
			}

			continue
		}

		if statusCode == http.StatusUnauthorized {
			return errs.Wrap(errs.KindAuth, "source catalog rejected refreshed credential", errs.ErrAuthExpired)
		}

		return err
	}
}

func (c *ClientImpl) doGet(ctx context.Context, path string, query url.Values, out any) (int, error) {
	token, err := c.tokenSource.Token(ctx)
	if err != nil {
		return 0, errs.Wrap(errs.KindAuth, "failed to obtain bearer token", err)
	}

	route, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return 0, errs.Wrap(errs.KindSourcePermanent, "invalid source catalog URL", err)
	}

	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, route, http.NoBody)
		if err != nil {
			return 0, errs.Wrap(errs.KindSourcePermanent, "failed to build request", err)
		}

		req.Header.Set("Authorization", "Bearer "+token)

		if query != nil {
			req.URL.RawQuery = query.Encode()
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return 0, errs.Wrap(errs.KindSourceTransient, "source catalog request failed", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close() //nolint:errcheck // Error on close is not critical here.

			if attempt >= 1 {
				return resp.StatusCode, errs.ErrRateLimited
			}

			wait := retryAfterDuration(resp.Header.Get("Retry-After"))
			logger.Infof(ctx, "source catalog rate limited, waiting %s", wait)

			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return resp.StatusCode, ctx.Err()
			}

			continue
		}

		if resp.StatusCode == http.StatusUnauthorized {
			resp.Body.Close() //nolint:errcheck // Error on close is not critical here.

			return resp.StatusCode, errs.ErrAuthExpired
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close() //nolint:errcheck // Error on close is not critical here.

			return resp.StatusCode, errs.Wrap(
				errs.KindSourceTransient, fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
		}

		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close() //nolint:errcheck // Error on close is not critical here.

		if err != nil {
			return resp.StatusCode, errs.Wrap(errs.KindSourceTransient, "failed to decode response", err)
		}

		return resp.StatusCode, nil
	}
}

func retryAfterDuration(header string) time.Duration {
	if header == "" {
		return time.Second
	}

	seconds, err := strconv.Atoi(header)
	if err != nil || seconds < 0 {
		return time.Second
	}

	return time.Duration(seconds) * time.Second
}

func chunk(items []string, size int) [][]string {
	if size <= 0 {
		return [][]string{items}
	}

	chunks := make([][]string, 0, (len(items)+size-1)/size)

	for i := 0; i < len(items); i += size {
		end := i + size
		if end > len(items) {
			end = len(items)
		}

		chunks = append(chunks, items[i:end])
	}

	return chunks
}

func joinComma(items []string) string {
	out := ""

	for i, item := range items {
		if i > 0 {
			out += ","
		}

		out += item
	}

	return out
}
