package processor

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProcessor(t *testing.T, run commandRunner) *Processor {
	t.Helper()

	return &Processor{
		opts:       DefaultOptions(),
		ffmpegPath: "ffmpeg",
		available:  true,
		run:        run,
	}
}

// TestTrimBounds_LeadingAndTrailingSilenceOnly tests that only silence
// touching the start or end of the track is trimmed, with padding kept.
func TestTrimBounds_LeadingAndTrailingSilenceOnly(t *testing.T) {
	t.Parallel()

	duration := 10 * time.Second
	intervals := []silenceInterval{
		{start: 0, end: 2 * time.Second},
		{start: 5 * time.Second, end: 6 * time.Second}, // interior, must be left alone
		{start: 9 * time.Second, end: 10 * time.Second},
	}

	keepStart, keepEnd := trimBounds(duration, intervals, 500*time.Millisecond)

	assert.Equal(t, 1500*time.Millisecond, keepStart)
	assert.Equal(t, 9500*time.Millisecond, keepEnd)
}

// TestTrimBounds_NoSilenceLeavesBoundsUntouched tests the no-op case.
func TestTrimBounds_NoSilenceLeavesBoundsUntouched(t *testing.T) {
	t.Parallel()

	keepStart, keepEnd := trimBounds(10*time.Second, nil, 500*time.Millisecond)
	assert.Equal(t, time.Duration(0), keepStart)
	assert.Equal(t, 10*time.Second, keepEnd)
}

// TestTrimSilence_SkipsWhenRemovedAmountIsBelowThreshold tests that a short
// leading silence that wouldn't clear MinSilenceRemoved is left alone.
func TestTrimSilence_SkipsWhenRemovedAmountIsBelowThreshold(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "track.flac")
	require.NoError(t, os.WriteFile(path, []byte("original"), 0o600))

	calls := 0
	run := func(_ context.Context, _ string, _ ...string) ([]byte, error) {
		calls++
		return []byte("Duration: 00:00:10.00, start: 0.0\n" +
			"silence_start: 0\n" +
			"silence_end: 0.3\n"), nil
	}

	p := testProcessor(t, run)
	require.NoError(t, p.TrimSilence(t.Context(), path))

	assert.Equal(t, 1, calls) // only the detection pass, no rewrite.

	contents, err := os.ReadFile(path) //nolint:gosec
	require.NoError(t, err)
	assert.Equal(t, "original", string(contents))
}

// TestTrimSilence_RewritesWhenRemovedAmountClearsThreshold tests that a
// long leading silence triggers a trimming pass and atomic replace.
func TestTrimSilence_RewritesWhenRemovedAmountClearsThreshold(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "track.flac")
	require.NoError(t, os.WriteFile(path, []byte("original"), 0o600))

	calls := 0
	run := func(_ context.Context, _ string, args ...string) ([]byte, error) {
		calls++
		if calls == 1 {
			return []byte("Duration: 00:00:10.00, start: 0.0\n" +
				"silence_start: 0\n" +
				"silence_end: 3.0\n"), nil
		}

		// second call: the trimming pass, writing to its staged output path.
		outputPath := args[len(args)-1]
		require.NoError(t, os.WriteFile(outputPath, []byte("trimmed"), 0o600))

		return nil, nil
	}

	p := testProcessor(t, run)
	require.NoError(t, p.TrimSilence(t.Context(), path))

	assert.Equal(t, 2, calls)

	contents, err := os.ReadFile(path) //nolint:gosec
	require.NoError(t, err)
	assert.Equal(t, "trimmed", string(contents))
}

// TestTrimSilence_NoOpWhenFFmpegUnavailable tests the missing-tool skip path.
func TestTrimSilence_NoOpWhenFFmpegUnavailable(t *testing.T) {
	t.Parallel()

	p := &Processor{opts: DefaultOptions()}
	require.NoError(t, p.TrimSilence(t.Context(), "/nonexistent/path.flac"))
}
