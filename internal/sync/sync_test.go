package sync

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmartins/melodysync/internal/client/secondary"
	"github.com/nmartins/melodysync/internal/client/source"
	"github.com/nmartins/melodysync/internal/config"
	"github.com/nmartins/melodysync/internal/downloader"
	"github.com/nmartins/melodysync/internal/lyrics"
	"github.com/nmartins/melodysync/internal/manifest"
	"github.com/nmartins/melodysync/internal/model"
	"github.com/nmartins/melodysync/internal/processor"
	"github.com/nmartins/melodysync/internal/tagger"
)

// fakeSourceClient serves a single fixed playlist.
type fakeSourceClient struct {
	header *source.PlaylistHeader
	refs   []source.PlaylistItemRef
	tracks map[string]*model.Track
}

func (f *fakeSourceClient) FetchPlaylistHeader(_ context.Context, _ string) (*source.PlaylistHeader, error) {
	return f.header, nil
}

func (f *fakeSourceClient) FetchTracks(_ context.Context, _ string, yield func(source.PlaylistItemRef) error) error {
	for _, ref := range f.refs {
		if err := yield(ref); err != nil {
			return err
		}
	}

	return nil
}

func (f *fakeSourceClient) ResolveTracksMetadata(_ context.Context, ids []string) (map[string]*model.Track, error) {
	out := make(map[string]*model.Track, len(ids))
	for _, id := range ids {
		if track, ok := f.tracks[id]; ok {
			out[id] = track
		}
	}

	return out, nil
}

func (f *fakeSourceClient) VerifyAccess(_ context.Context, _ string) error { return nil }

// fakeSecondaryClient returns one candidate per query, keyed by the query text.
type fakeSecondaryClient struct {
	candidates map[string]secondary.Candidate
}

func (f *fakeSecondaryClient) Search(_ context.Context, query string) ([]secondary.Candidate, error) {
	if c, ok := f.candidates[query]; ok {
		return []secondary.Candidate{c}, nil
	}

	return nil, nil
}

func (f *fakeSecondaryClient) StreamInfo(_ context.Context, candidateID, _ string) (*secondary.StreamInfo, error) {
	return &secondary.StreamInfo{URL: "https://example.invalid/" + candidateID, DurationSecs: 200}, nil
}

// fakeExtractor always reports a fixed-duration mp3 stream with in-memory content.
type fakeExtractor struct{}

func (fakeExtractor) ExtractMetadata(
	_ context.Context, _ string, _ downloader.FormatSelector,
) (*downloader.Metadata, error) {
	return &downloader.Metadata{DurationSecs: 200, ContentLength: 4}, nil
}

func (fakeExtractor) OpenStream(_ context.Context, _ string, _ downloader.FormatSelector) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("data")), nil
}

// fakeTagger records every Write call without touching the filesystem.
type fakeTagger struct {
	writes []*tagger.Request
}

func (f *fakeTagger) Write(_ context.Context, req *tagger.Request) error {
	f.writes = append(f.writes, req)
	return nil
}

// fakeLyricsProvider always returns a fixed plain lyric body.
type fakeLyricsProvider struct{}

func (fakeLyricsProvider) Name() string    { return "fake" }
func (fakeLyricsProvider) Available() bool { return true }

func (fakeLyricsProvider) SearchLyrics(_ context.Context, _, _, _ string) (string, error) {
	return strings.Repeat("la la la la la ", 5), nil
}

func newTestRunner(t *testing.T, outputDir string) (*Runner, *fakeTagger) {
	t.Helper()

	src := &fakeSourceClient{
		header: &source.PlaylistHeader{ID: "pl1", Name: "Test Mix", TotalTrackCount: 2},
		refs: []source.PlaylistItemRef{
			{Position: 1, TrackID: "t1"},
			{Position: 2, TrackID: "t2"},
		},
		tracks: map[string]*model.Track{
			"t1": {ID: "t1", Title: "One", Artists: []string{"Artist One"}, DurationMs: 200_000},
			"t2": {ID: "t2", Title: "Two", Artists: []string{"Artist Two"}, DurationMs: 200_000},
		},
	}

	sec := &fakeSecondaryClient{
		candidates: map[string]secondary.Candidate{
			"artist one one": {ID: "c1", Title: "One", Artist: "Artist One", DurationSecs: intPtr(200)},
			"artist two two": {ID: "c2", Title: "Two", Artist: "Artist Two", DurationSecs: intPtr(200)},
		},
	}

	dl := downloader.New(fakeExtractor{}, downloader.Options{
		StagingDir:      t.TempDir(),
		FormatCascade:   []downloader.FormatSelector{"mp3"},
		OutputExtension: ".mp3",
	})

	taggerFake := &fakeTagger{}

	lyricsResolver := lyrics.NewResolver([]lyrics.Provider{fakeLyricsProvider{}}, "fake", nil, 10)

	proc := processor.New(processor.Options{FFmpegPath: "melodysync-nonexistent-binary"})

	cfg := &config.Config{
		OutputDirectory:   outputDir,
		Format:            "mp3",
		Concurrency:       2,
		TrackFormat:       "{track} - {artist} - {title}",
		SanitizeFilenames: true,
		LyricsEnabled:     true,
		EmbedInAudio:      true,
		PrimarySource:     "fake",
	}

	runner := NewRunner(Deps{
		SourceClient:    src,
		SecondaryClient: sec,
		Downloader:      dl,
		Tagger:          taggerFake,
		LyricsResolver:  lyricsResolver,
		Processor:       proc,
		Config:          cfg,
	})

	return runner, taggerFake
}

func intPtr(v int) *int { return &v }

func TestSync_FreshRunDownloadsAllTracks(t *testing.T) {
	t.Parallel()

	outputDir := t.TempDir()
	runner, taggerFake := newTestRunner(t, outputDir)

	result, err := runner.Sync(t.Context(), "pl1")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Downloaded)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, 2, result.LyricsFound)
	assert.Len(t, taggerFake.writes, 2)

	dir := filepath.Join(outputDir, "Test Mix")
	manifestPath := filepath.Join(dir, manifest.Filename)
	require.FileExists(t, manifestPath)

	header, entries, err := manifest.Read(manifestPath)
	require.NoError(t, err)
	assert.Equal(t, "pl1", header.SourceID)
	assert.Len(t, entries, 2)

	for _, entry := range entries {
		assert.Equal(t, model.AudioStatusDownloaded, entry.AudioStatus)
		require.FileExists(t, filepath.Join(dir, entry.LocalFile))
	}
}

func TestSync_SecondRunIsIncremental(t *testing.T) {
	t.Parallel()

	outputDir := t.TempDir()
	runner, taggerFake := newTestRunner(t, outputDir)

	_, err := runner.Sync(t.Context(), "pl1")
	require.NoError(t, err)

	taggerFake.writes = nil

	result, err := runner.Sync(t.Context(), "pl1")
	require.NoError(t, err)
	assert.Equal(t, 0, result.Downloaded, "nothing changed, nothing should redownload")
	assert.Empty(t, taggerFake.writes)
}

func TestSync_UnresolvableTrackRecordsFailureWithoutAbortingRun(t *testing.T) {
	t.Parallel()

	outputDir := t.TempDir()
	runner, _ := newTestRunner(t, outputDir)

	// Remove the secondary catalog's candidate for t2 so its resolve fails,
	// while t1 still succeeds.
	runner.deps.SecondaryClient = &fakeSecondaryClient{
		candidates: map[string]secondary.Candidate{
			"artist one one": {ID: "c1", Title: "One", Artist: "Artist One", DurationSecs: intPtr(200)},
		},
	}

	result, err := runner.Sync(t.Context(), "pl1")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Downloaded)
	assert.Equal(t, 1, result.Failed)
}

func TestSync_InvalidRefReturnsError(t *testing.T) {
	t.Parallel()

	outputDir := t.TempDir()
	runner, _ := newTestRunner(t, outputDir)

	_, err := runner.Sync(t.Context(), "not a valid ref!!")
	require.Error(t, err)
}

func TestSync_UnwritableOutputDirectoryAbortsRun(t *testing.T) {
	t.Parallel()

	outputDir := t.TempDir()
	runner, _ := newTestRunner(t, outputDir)

	// Make the output root itself a file, so nothing can be created beneath
	// the directory ResolveDirectory picks and manifest.Create fails outright.
	blocked := filepath.Join(outputDir, "blocked")
	require.NoError(t, os.WriteFile(blocked, []byte("x"), 0o644))
	runner.deps.Config.OutputDirectory = blocked

	_, err := runner.Sync(t.Context(), "pl1")
	require.Error(t, err)
}
