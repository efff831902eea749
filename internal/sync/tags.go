package sync

import (
	"fmt"

	"github.com/nmartins/melodysync/internal/config"
	"github.com/nmartins/melodysync/internal/model"
	"github.com/nmartins/melodysync/internal/tagger"
)

// buildTags derives the embedded-metadata fields for track. totalTracks is
// the playlist's track count, used for the TrackTotal tag.
func buildTags(track *model.PlaylistTrack, totalTracks int, cfg *config.Config) tagger.Tags {
	year := ""
	if track.Album.ReleaseDate.Year > 0 {
		year = fmt.Sprintf("%04d", track.Album.ReleaseDate.Year)
	}

	genre := ""
	if len(track.Album.Genres) > 0 {
		genre = track.Album.Genres[0]
	}

	albumArtist := ""
	if len(track.Album.Artists) > 0 {
		albumArtist = track.Album.Artists[0]
	}

	trackNumber := track.Position
	if trackNumber <= 0 {
		trackNumber = track.TrackNumber
	}

	comment := ""
	if cfg.IncludeSourceMetadata {
		comment = cfg.AddComment
	}

	return tagger.Tags{
		Title:       track.Title,
		Artist:      track.PrimaryArtist(),
		Album:       track.Album.Name,
		AlbumArtist: albumArtist,
		Year:        year,
		TrackNumber: trackNumber,
		TrackTotal:  totalTracks,
		DiscNumber:  track.DiscNumber,
		Genre:       genre,
		Comment:     comment,
	}
}
