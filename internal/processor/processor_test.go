package processor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNew_UnavailableWhenFFmpegNotOnPath tests that New never fails even
// when ffmpeg cannot be resolved, and that Available reflects that.
func TestNew_UnavailableWhenFFmpegNotOnPath(t *testing.T) {
	t.Parallel()

	p := New(Options{FFmpegPath: "/definitely/not/a/real/ffmpeg/binary"})
	assert.False(t, p.Available())
}

// TestProcess_SkipsSilentlyWhenUnavailable tests that Process is a pure
// no-op, never an error, when ffmpeg wasn't found.
func TestProcess_SkipsSilentlyWhenUnavailable(t *testing.T) {
	t.Parallel()

	p := New(Options{FFmpegPath: "/definitely/not/a/real/ffmpeg/binary"})
	require.NoError(t, p.Process(t.Context(), "/tmp/whatever.flac"))
}

// TestProcess_SwallowsStageErrors tests that a detection failure in either
// stage is logged and does not abort the other stage or return an error.
func TestProcess_SwallowsStageErrors(t *testing.T) {
	t.Parallel()

	run := func(_ context.Context, _ string, _ ...string) ([]byte, error) {
		return nil, errors.New("boom")
	}

	p := testProcessor(t, run)
	require.NoError(t, p.Process(t.Context(), "/tmp/whatever.flac"))
}
