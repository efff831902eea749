package providers

import (
	"context"
	"net/http"
	"net/url"
)

// plainSearchEndpoint is a credential-free lyrics lookup API: no registration
// required, making it a usable default primary source.
const plainSearchEndpoint = "https://lrclib.net/api/get"

type plainSearchResponse struct {
	PlainLyrics  string `json:"plainLyrics"`
	SyncedLyrics string `json:"syncedLyrics"`
}

// PlainSearchProvider is the credential-free default lyrics source.
type PlainSearchProvider struct {
	base
}

// NewPlainSearchProvider creates the default, credential-free provider.
func NewPlainSearchProvider() *PlainSearchProvider {
	return &PlainSearchProvider{base: newBase()}
}

// Name implements Provider.
func (p *PlainSearchProvider) Name() string { return "plainsearch" }

// Available implements Provider; this provider needs no credentials.
func (p *PlainSearchProvider) Available() bool { return true }

// SearchLyrics implements Provider.
func (p *PlainSearchProvider) SearchLyrics(ctx context.Context, artist, title, album string) (string, error) {
	resp, err := p.fetch(ctx, artist, title, album)
	if err != nil {
		return "", err
	}

	return resp.PlainLyrics, nil
}

// SearchSynced implements SyncedProvider.
func (p *PlainSearchProvider) SearchSynced(ctx context.Context, artist, title string) (string, error) {
	resp, err := p.fetch(ctx, artist, title, "")
	if err != nil {
		return "", err
	}

	return resp.SyncedLyrics, nil
}

func (p *PlainSearchProvider) fetch(ctx context.Context, artist, title, album string) (*plainSearchResponse, error) {
	query := url.Values{}
	query.Set("artist_name", artist)
	query.Set("track_name", title)

	if album != "" {
		query.Set("album_name", album)
	}

	var resp plainSearchResponse

	status, err := p.getJSON(ctx, plainSearchEndpoint+"?"+query.Encode(), nil, &resp)
	if err != nil {
		return nil, err
	}

	if status != http.StatusOK {
		return &plainSearchResponse{}, nil
	}

	return &resp, nil
}
