package providers

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

const (
	musixmatchSearchEndpoint   = "https://api.musixmatch.com/ws/1.1/track.search"
	musixmatchLyricsEndpoint   = "https://api.musixmatch.com/ws/1.1/track.lyrics.get"
	musixmatchSubtitleEndpoint = "https://api.musixmatch.com/ws/1.1/track.subtitle.get"
)

type musixmatchSearchResponse struct {
	Message struct {
		Body struct {
			TrackList []struct {
				Track struct {
					TrackID int64 `json:"track_id"`
				} `json:"track"`
			} `json:"track_list"`
		} `json:"body"`
	} `json:"message"`
}

type musixmatchLyricsResponse struct {
	Message struct {
		Body struct {
			Lyrics struct {
				LyricsBody string `json:"lyrics_body"`
			} `json:"lyrics"`
		} `json:"body"`
	} `json:"message"`
}

type musixmatchSubtitleResponse struct {
	Message struct {
		Body struct {
			Subtitle struct {
				SubtitleBody string `json:"subtitle_body"`
			} `json:"subtitle"`
		} `json:"body"`
	} `json:"message"`
}

// MusixmatchProvider fetches lyrics from the Musixmatch commercial lyrics
// database. It requires an API key.
type MusixmatchProvider struct {
	base

	apiKey string
}

// NewMusixmatchProvider creates a Musixmatch-backed provider. An empty
// apiKey makes Available report false.
func NewMusixmatchProvider(apiKey string) *MusixmatchProvider {
	return &MusixmatchProvider{base: newBase(), apiKey: apiKey}
}

// Name implements Provider.
func (p *MusixmatchProvider) Name() string { return "musixmatch" }

// Available implements Provider.
func (p *MusixmatchProvider) Available() bool { return p.apiKey != "" }

// SearchLyrics implements Provider.
func (p *MusixmatchProvider) SearchLyrics(ctx context.Context, artist, title, _ string) (string, error) {
	if !p.Available() {
		return "", nil
	}

	trackID, err := p.findTrackID(ctx, artist, title)
	if err != nil || trackID == 0 {
		return "", err
	}

	query := url.Values{}
	query.Set("apikey", p.apiKey)
	query.Set("track_id", strconv.FormatInt(trackID, 10))

	var resp musixmatchLyricsResponse

	status, err := p.getJSON(ctx, musixmatchLyricsEndpoint+"?"+query.Encode(), nil, &resp)
	if err != nil || status != http.StatusOK {
		return "", err
	}

	return resp.Message.Body.Lyrics.LyricsBody, nil
}

// SearchSynced implements SyncedProvider.
func (p *MusixmatchProvider) SearchSynced(ctx context.Context, artist, title string) (string, error) {
	if !p.Available() {
		return "", nil
	}

	trackID, err := p.findTrackID(ctx, artist, title)
	if err != nil || trackID == 0 {
		return "", err
	}

	query := url.Values{}
	query.Set("apikey", p.apiKey)
	query.Set("track_id", strconv.FormatInt(trackID, 10))
	query.Set("subtitle_format", "lrc")

	var resp musixmatchSubtitleResponse

	status, err := p.getJSON(ctx, musixmatchSubtitleEndpoint+"?"+query.Encode(), nil, &resp)
	if err != nil || status != http.StatusOK {
		return "", err
	}

	return resp.Message.Body.Subtitle.SubtitleBody, nil
}

func (p *MusixmatchProvider) findTrackID(ctx context.Context, artist, title string) (int64, error) {
	query := url.Values{}
	query.Set("apikey", p.apiKey)
	query.Set("q_artist", artist)
	query.Set("q_track", title)
	query.Set("page_size", "1")

	var resp musixmatchSearchResponse

	status, err := p.getJSON(ctx, musixmatchSearchEndpoint+"?"+query.Encode(), nil, &resp)
	if err != nil || status != http.StatusOK || len(resp.Message.Body.TrackList) == 0 {
		return 0, err
	}

	return resp.Message.Body.TrackList[0].Track.TrackID, nil
}

