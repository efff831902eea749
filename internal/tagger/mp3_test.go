package tagger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/oshokin/id3v2/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEmptyMP3(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "track.mp3")
	require.NoError(t, os.WriteFile(path, []byte{}, 0o600))

	return path
}

// TestWriteMP3_EmbedsBasicTags tests that title, artist, and track number
// are written and readable back from the saved file.
func TestWriteMP3_EmbedsBasicTags(t *testing.T) {
	t.Parallel()

	path := newEmptyMP3(t)
	w := New()

	req := &Request{
		TrackPath: path,
		Format:    FormatMP3,
		Tags:      Tags{Title: "Song", Artist: "Artist", Album: "Album", TrackNumber: 2, TrackTotal: 9},
	}

	require.NoError(t, w.Write(t.Context(), req))

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true}) //nolint:exhaustruct
	require.NoError(t, err)

	defer tag.Close() //nolint:errcheck

	assert.Equal(t, "Song", tag.Title())
	assert.Equal(t, "Artist", tag.Artist())
	assert.Equal(t, "Album", tag.Album())
}

// TestAddMP3Lyrics_PrefersSyncedWhenParseable tests that valid LRC content
// is embedded as a synchronized lyrics frame rather than plain text.
func TestAddMP3Lyrics_PrefersSyncedWhenParseable(t *testing.T) {
	t.Parallel()

	path := newEmptyMP3(t)
	w := New()

	lrc := "[00:01.00]la\n[00:02.00]la la\n"

	req := &Request{
		TrackPath: path,
		Format:    FormatMP3,
		Tags:      Tags{Title: "Song"},
		Lyrics:    &Lyrics{Synced: lrc, Plain: "la\nla la\n"},
	}

	require.NoError(t, w.Write(t.Context(), req))

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true}) //nolint:exhaustruct
	require.NoError(t, err)

	defer tag.Close() //nolint:errcheck

	synced := tag.GetFrames(tag.CommonID("Synchronised lyrics/text"))
	assert.NotEmpty(t, synced)
}

// TestAddMP3Lyrics_FallsBackToPlainWhenNoSynced tests that unsynced lyrics
// are embedded when only plain text is supplied.
func TestAddMP3Lyrics_FallsBackToPlainWhenNoSynced(t *testing.T) {
	t.Parallel()

	path := newEmptyMP3(t)
	w := New()

	req := &Request{
		TrackPath: path,
		Format:    FormatMP3,
		Tags:      Tags{Title: "Song"},
		Lyrics:    &Lyrics{Plain: "la la la"},
	}

	require.NoError(t, w.Write(t.Context(), req))

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true}) //nolint:exhaustruct
	require.NoError(t, err)

	defer tag.Close() //nolint:errcheck

	unsynced := tag.GetFrames(tag.CommonID("Unsynchronised lyrics/text transcription"))
	assert.NotEmpty(t, unsynced)
}
