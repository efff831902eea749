package sync

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nmartins/melodysync/internal/config"
)

func TestTrackBaseFilename_ExpandsPlaceholders(t *testing.T) {
	t.Parallel()

	track := trackFixture("t1", 3, "My Song")
	track.Artists = []string{"My Artist"}
	track.Album.Name = "My Album"

	cfg := &config.Config{TrackFormat: "{track} - {artist} - {title}"}

	assert.Equal(t, "03 - My Artist - My Song", trackBaseFilename(track, cfg))
}

func TestTrackBaseFilename_SanitizesAndTruncates(t *testing.T) {
	t.Parallel()

	track := trackFixture("t1", 1, `Bad:Title?`)
	track.Artists = []string{"Bad/Artist"}

	cfg := &config.Config{
		TrackFormat:       "{track} - {artist} - {title}",
		SanitizeFilenames: true,
		ReplaceSpaces:     true,
		MaxFilenameLength: 10,
	}

	name := trackBaseFilename(track, cfg)
	assert.LessOrEqual(t, len(name), 10)
	assert.NotContains(t, name, "?")
	assert.NotContains(t, name, ":")
	assert.False(t, strings.Contains(name, " "))
}

func TestLyricsBaseFilename_MatchesSeparateFileNaming(t *testing.T) {
	t.Parallel()

	track := trackFixture("t1", 7, "Song Title")
	track.Artists = []string{"Band Name"}

	assert.Equal(t, "07 - Band Name - Song Title", lyricsBaseFilename(track))
}
