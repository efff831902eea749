package providers

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

const geniusSearchEndpoint = "https://api.genius.com/search"

// lyricsContainerPattern extracts the text content of Genius's
// data-lyrics-container divs from a rendered song page.
var lyricsContainerPattern = regexp.MustCompile(`(?s)<div[^>]*data-lyrics-container="true"[^>]*>(.*?)</div>`)

// htmlTagPattern strips any remaining HTML tags after container extraction.
var htmlTagPattern = regexp.MustCompile(`<br/?>|<[^>]+>`)

type geniusSearchResponse struct {
	Response struct {
		Hits []struct {
			Result struct {
				Title        string `json:"title"`
				URL          string `json:"url"`
				PrimaryArtist struct {
					Name string `json:"name"`
				} `json:"primary_artist"`
			} `json:"result"`
		} `json:"hits"`
	} `json:"response"`
}

// GeniusProvider scrapes lyrics from Genius song pages, located via Genius's
// search API. It requires an access token.
type GeniusProvider struct {
	base

	accessToken string
}

// NewGeniusProvider creates a Genius-backed provider. An empty accessToken
// makes Available report false.
func NewGeniusProvider(accessToken string) *GeniusProvider {
	return &GeniusProvider{base: newBase(), accessToken: accessToken}
}

// Name implements Provider.
func (p *GeniusProvider) Name() string { return "genius" }

// Available implements Provider.
func (p *GeniusProvider) Available() bool { return p.accessToken != "" }

// SearchLyrics implements Provider.
func (p *GeniusProvider) SearchLyrics(ctx context.Context, artist, title, _ string) (string, error) {
	if !p.Available() {
		return "", nil
	}

	songURL, err := p.findSongURL(ctx, artist, title)
	if err != nil || songURL == "" {
		return "", err
	}

	return p.scrapeLyrics(ctx, songURL)
}

func (p *GeniusProvider) findSongURL(ctx context.Context, artist, title string) (string, error) {
	query := url.Values{}
	query.Set("q", artist+" "+title)

	var resp geniusSearchResponse

	headers := map[string]string{"Authorization": "Bearer " + p.accessToken}

	status, err := p.getJSON(ctx, geniusSearchEndpoint+"?"+query.Encode(), headers, &resp)
	if err != nil {
		return "", err
	}

	if status != http.StatusOK || len(resp.Response.Hits) == 0 {
		return "", nil
	}

	return p.bestHitURL(resp, artist, title), nil
}

func (p *GeniusProvider) bestHitURL(resp geniusSearchResponse, artist, title string) string {
	lowerArtist, lowerTitle := strings.ToLower(artist), strings.ToLower(title)

	for _, hit := range resp.Response.Hits {
		if strings.Contains(strings.ToLower(hit.Result.Title), lowerTitle) &&
			strings.Contains(strings.ToLower(hit.Result.PrimaryArtist.Name), lowerArtist) {
			return hit.Result.URL
		}
	}

	return resp.Response.Hits[0].Result.URL
}

func (p *GeniusProvider) scrapeLyrics(ctx context.Context, songURL string) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, songURL, http.NoBody)
	if err != nil {
		return "", err
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", err
	}

	defer resp.Body.Close() //nolint:errcheck // Error on close is not critical here.

	if resp.StatusCode != http.StatusOK {
		return "", nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	matches := lyricsContainerPattern.FindAllStringSubmatch(string(body), -1)

	var sections []string

	for _, match := range matches {
		text := htmlTagPattern.ReplaceAllString(match[1], "\n")
		sections = append(sections, text)
	}

	return strings.TrimSpace(strings.Join(sections, "\n")), nil
}
