package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestAudioStatus_IconRoundTrip tests that every known audio icon maps back to its status.
func TestAudioStatus_IconRoundTrip(t *testing.T) {
	t.Parallel()

	statuses := []AudioStatus{
		AudioStatusPending,
		AudioStatusDownloading,
		AudioStatusDownloaded,
		AudioStatusFailed,
		AudioStatusSkipped,
	}

	for _, status := range statuses {
		icon := status.Icon()

		parsed, ok := ParseAudioStatusIcon(icon)
		assert.True(t, ok, "icon %q should be recognized", icon)
		assert.Equal(t, status, parsed)
	}
}

// TestLyricsStatus_IconRoundTrip tests that every known lyrics icon maps back to its status.
func TestLyricsStatus_IconRoundTrip(t *testing.T) {
	t.Parallel()

	statuses := []LyricsStatus{
		LyricsStatusDownloaded,
		LyricsStatusNotFound,
		LyricsStatusInstrumental,
		LyricsStatusPending,
		LyricsStatusFailed,
	}

	for _, status := range statuses {
		icon := status.Icon()

		parsed, ok := ParseLyricsStatusIcon(icon)
		assert.True(t, ok, "icon %q should be recognized", icon)
		assert.Equal(t, status, parsed)
	}
}

// TestParseAudioStatusIcon_Unknown tests that an unrecognized icon reports false.
func TestParseAudioStatusIcon_Unknown(t *testing.T) {
	t.Parallel()

	_, ok := ParseAudioStatusIcon("🤷")
	assert.False(t, ok)
}

// TestAlbum_BestCover tests selection of the smallest cover meeting the minimum width.
func TestAlbum_BestCover(t *testing.T) {
	t.Parallel()

	album := Album{
		Covers: []CoverImage{
			{URL: "small", Width: 64, Height: 64},
			{URL: "medium", Width: 300, Height: 300},
			{URL: "large", Width: 640, Height: 640},
		},
	}

	best, ok := album.BestCover(300)
	assert.True(t, ok)
	assert.Equal(t, "medium", best.URL)
}

// TestAlbum_BestCover_FallsBackToLargest tests the fallback when nothing meets the threshold.
func TestAlbum_BestCover_FallsBackToLargest(t *testing.T) {
	t.Parallel()

	album := Album{
		Covers: []CoverImage{
			{URL: "small", Width: 64, Height: 64},
			{URL: "medium", Width: 128, Height: 128},
		},
	}

	best, ok := album.BestCover(300)
	assert.True(t, ok)
	assert.Equal(t, "medium", best.URL)
}

// TestAlbum_BestCover_NoCovers tests that an album with no covers reports false.
func TestAlbum_BestCover_NoCovers(t *testing.T) {
	t.Parallel()

	_, ok := Album{}.BestCover(300)
	assert.False(t, ok)
}

// TestTrack_PrimaryArtist tests that the first artist is returned as primary.
func TestTrack_PrimaryArtist(t *testing.T) {
	t.Parallel()

	track := Track{Artists: []string{"Primary", "Featured"}}
	assert.Equal(t, "Primary", track.PrimaryArtist())

	assert.Empty(t, Track{}.PrimaryArtist())
}

// TestTrack_Duration tests conversion of DurationMs into a time.Duration.
func TestTrack_Duration(t *testing.T) {
	t.Parallel()

	track := Track{DurationMs: 180_000}
	assert.Equal(t, 180*time.Second, track.Duration())
}
