package secondary

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmartins/melodysync/internal/downloader"
)

type fakeStreamClient struct {
	streams map[string]*StreamInfo
}

func (f *fakeStreamClient) Search(context.Context, string) ([]Candidate, error) {
	return nil, nil
}

func (f *fakeStreamClient) StreamInfo(_ context.Context, candidateID, format string) (*StreamInfo, error) {
	info, ok := f.streams[candidateID+":"+format]
	if !ok {
		return nil, ErrFormatNotAvailable
	}

	return info, nil
}

// TestExtractMetadata_ReturnsMetadataOnHit tests the happy path.
func TestExtractMetadata_ReturnsMetadataOnHit(t *testing.T) {
	t.Parallel()

	client := &fakeStreamClient{streams: map[string]*StreamInfo{
		"c1:flac": {URL: "https://cdn.example/c1.flac", DurationSecs: 180, ContentLength: 2048},
	}}

	extractor := NewDownloadExtractor(client, http.DefaultClient)

	meta, err := extractor.ExtractMetadata(t.Context(), "c1", downloader.FormatSelector("flac"))
	require.NoError(t, err)
	assert.Equal(t, 180, meta.DurationSecs)
	assert.Equal(t, int64(2048), meta.ContentLength)
}

// TestExtractMetadata_MissingFormatIsCascadeAdvancing tests that a miss
// surfaces as downloader.FormatUnavailableError.
func TestExtractMetadata_MissingFormatIsCascadeAdvancing(t *testing.T) {
	t.Parallel()

	client := &fakeStreamClient{streams: map[string]*StreamInfo{}}
	extractor := NewDownloadExtractor(client, http.DefaultClient)

	_, err := extractor.ExtractMetadata(t.Context(), "c1", downloader.FormatSelector("flac"))
	require.Error(t, err)

	var unavailable *downloader.FormatUnavailableError
	require.ErrorAs(t, err, &unavailable)
}

// TestOpenStream_FetchesResolvedURL tests that OpenStream performs a real GET
// against the resolved stream URL.
func TestOpenStream_FetchesResolvedURL(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("audio-bytes"))
	}))
	defer server.Close()

	client := &fakeStreamClient{streams: map[string]*StreamInfo{
		"c1:mp3": {URL: server.URL},
	}}

	extractor := NewDownloadExtractor(client, server.Client())

	body, err := extractor.OpenStream(t.Context(), "c1", downloader.FormatSelector("mp3"))
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "audio-bytes", string(data))
}

// TestOpenStream_ForbiddenIsCascadeAdvancing tests that a 403 from the resolved
// stream URL also advances the format cascade.
func TestOpenStream_ForbiddenIsCascadeAdvancing(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := &fakeStreamClient{streams: map[string]*StreamInfo{
		"c1:mp3": {URL: server.URL},
	}}

	extractor := NewDownloadExtractor(client, server.Client())

	_, err := extractor.OpenStream(t.Context(), "c1", downloader.FormatSelector("mp3"))
	require.Error(t, err)

	var unavailable *downloader.FormatUnavailableError
	require.ErrorAs(t, err, &unavailable)
}
