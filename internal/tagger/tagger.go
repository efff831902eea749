// Package tagger embeds metadata, cover art, and lyrics into downloaded
// audio files across the MP3, FLAC, and M4A formats.
package tagger

import (
	"context"
	"errors"
)

// ErrEmptyTrackPath indicates the track file path was not set.
var ErrEmptyTrackPath = errors.New("track path cannot be empty")

// Format identifies the audio container a Request targets.
type Format string

// Supported formats.
const (
	FormatMP3  Format = "mp3"
	FormatFLAC Format = "flac"
	FormatM4A  Format = "m4a"
)

// Lyrics carries both lyric representations available for a track. Either
// may be empty; Synced, when present, is LRC-formatted text.
type Lyrics struct {
	Plain  string
	Synced string
}

// Tags holds the metadata fields written to every format.
type Tags struct {
	Title       string
	Artist      string
	Album       string
	AlbumArtist string
	Year        string // first four characters of the release date
	TrackNumber int    // playlist position, or the source catalog's track number if unset
	TrackTotal  int
	DiscNumber  int
	Genre       string // the album's first listed genre, if any
	Comment     string
}

// Request describes one track's tag-writing job. Cover is pre-fetched,
// downscaled JPEG bytes; nil when no cover art is available.
type Request struct {
	TrackPath string
	Format    Format
	Tags      Tags
	Cover     []byte
	Lyrics    *Lyrics
}

// Writer embeds tags into an audio file in place.
type Writer interface {
	Write(ctx context.Context, req *Request) error
}

// WriterImpl is the default Writer, dispatching by Request.Format.
type WriterImpl struct{}

// New creates a WriterImpl.
func New() *WriterImpl {
	return &WriterImpl{}
}

// Write embeds req's tags, cover, and lyrics into the file at req.TrackPath.
func (w *WriterImpl) Write(ctx context.Context, req *Request) error {
	if req.TrackPath == "" {
		return ErrEmptyTrackPath
	}

	switch req.Format {
	case FormatFLAC:
		return w.writeFLAC(req)
	case FormatM4A:
		return w.writeM4A(req)
	case FormatMP3:
		return w.writeMP3(ctx, req)
	default:
		return w.writeMP3(ctx, req)
	}
}
