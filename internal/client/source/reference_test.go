package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleID = "a1B2c3D4e5F6g7H8i9J0kL"

// TestParsePlaylistRef_RawID tests that a bare 22-char alphanumeric id is accepted as-is.
func TestParsePlaylistRef_RawID(t *testing.T) {
	t.Parallel()

	id, err := ParsePlaylistRef(sampleID)
	require.NoError(t, err)
	assert.Equal(t, sampleID, id)
}

// TestParsePlaylistRef_PathURL tests extraction from a path-style URL.
func TestParsePlaylistRef_PathURL(t *testing.T) {
	t.Parallel()

	id, err := ParsePlaylistRef("https://music.example.com/playlist/" + sampleID)
	require.NoError(t, err)
	assert.Equal(t, sampleID, id)
}

// TestParsePlaylistRef_PathURL_TrailingQuery tests extraction when the URL has a trailing query string.
func TestParsePlaylistRef_PathURL_TrailingQuery(t *testing.T) {
	t.Parallel()

	id, err := ParsePlaylistRef("https://music.example.com/playlist/" + sampleID + "?si=abc123")
	require.NoError(t, err)
	assert.Equal(t, sampleID, id)
}

// TestParsePlaylistRef_URIScheme tests extraction from a scheme:playlist:<id> URI.
func TestParsePlaylistRef_URIScheme(t *testing.T) {
	t.Parallel()

	id, err := ParsePlaylistRef("music:playlist:" + sampleID)
	require.NoError(t, err)
	assert.Equal(t, sampleID, id)
}

// TestParsePlaylistRef_Invalid tests rejection of an unrecognized reference shape.
func TestParsePlaylistRef_Invalid(t *testing.T) {
	t.Parallel()

	_, err := ParsePlaylistRef("not-a-playlist-ref")
	require.Error(t, err)
}

// TestParsePlaylistRef_WrongLength tests rejection of an id with the wrong length.
func TestParsePlaylistRef_WrongLength(t *testing.T) {
	t.Parallel()

	_, err := ParsePlaylistRef("short")
	require.Error(t, err)
}
