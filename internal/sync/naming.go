package sync

import (
	"fmt"
	"strings"

	"github.com/nmartins/melodysync/internal/config"
	"github.com/nmartins/melodysync/internal/model"
	"github.com/nmartins/melodysync/internal/utils"
)

// trackBaseFilename expands cfg.TrackFormat's {track}/{artist}/{title}/{album}
// placeholders for track, without a file extension — the Downloader appends
// that itself once the format cascade has settled on a rung.
func trackBaseFilename(track *model.PlaylistTrack, cfg *config.Config) string {
	artist := track.PrimaryArtist()
	title := track.Title
	album := track.Album.Name

	if cfg.SanitizeFilenames {
		artist = utils.SanitizeFilename(artist)
		title = utils.SanitizeFilename(title)
		album = utils.SanitizeFilename(album)
	}

	replacer := strings.NewReplacer(
		"{track}", fmt.Sprintf("%02d", track.Position),
		"{artist}", artist,
		"{title}", title,
		"{album}", album,
	)

	name := replacer.Replace(cfg.TrackFormat)

	if cfg.ReplaceSpaces {
		name = strings.ReplaceAll(name, " ", "_")
	}

	if cfg.MaxFilenameLength > 0 && len(name) > cfg.MaxFilenameLength {
		name = name[:cfg.MaxFilenameLength]
	}

	return name
}

// lyricsBaseFilename mirrors lyrics.WriteSeparateFiles's own naming so the
// paths recorded on the track match the files it actually wrote.
func lyricsBaseFilename(track *model.PlaylistTrack) string {
	return fmt.Sprintf("%02d - %s - %s", track.Position,
		utils.SanitizeFilename(track.PrimaryArtist()), utils.SanitizeFilename(track.Title))
}
