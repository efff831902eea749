// Package model defines the in-memory data model for a synchronized
// playlist: tracks, albums, and the playlist-track entries the sync planner
// and manifest store operate on.
package model

import "time"

// AudioStatus represents the download state of a PlaylistTrack's audio file.
type AudioStatus uint8

// Enum values for AudioStatus.
const (
	AudioStatusPending AudioStatus = iota
	AudioStatusDownloading
	AudioStatusDownloaded
	AudioStatusFailed
	AudioStatusSkipped
)

// String returns a human-readable representation of the AudioStatus.
func (s AudioStatus) String() string {
	switch s {
	case AudioStatusPending:
		return "pending"
	case AudioStatusDownloading:
		return "downloading"
	case AudioStatusDownloaded:
		return "downloaded"
	case AudioStatusFailed:
		return "failed"
	case AudioStatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Icon returns the manifest line icon for this AudioStatus.
func (s AudioStatus) Icon() string {
	switch s {
	case AudioStatusDownloaded:
		return "✅"
	case AudioStatusPending:
		return "⏳"
	case AudioStatusFailed:
		return "❌"
	case AudioStatusSkipped:
		return "⏭️"
	case AudioStatusDownloading:
		return "⬇️"
	default:
		return "⏳"
	}
}

// LyricsStatus represents the resolution state of a PlaylistTrack's lyrics.
type LyricsStatus uint8

// Enum values for LyricsStatus.
const (
	LyricsStatusPending LyricsStatus = iota
	LyricsStatusDownloading
	LyricsStatusDownloaded
	LyricsStatusFailed
	LyricsStatusNotFound
	LyricsStatusInstrumental
	LyricsStatusSkipped
)

// String returns a human-readable representation of the LyricsStatus.
func (s LyricsStatus) String() string {
	switch s {
	case LyricsStatusPending:
		return "pending"
	case LyricsStatusDownloading:
		return "downloading"
	case LyricsStatusDownloaded:
		return "downloaded"
	case LyricsStatusFailed:
		return "failed"
	case LyricsStatusNotFound:
		return "not_found"
	case LyricsStatusInstrumental:
		return "instrumental"
	case LyricsStatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Icon returns the manifest line icon for this LyricsStatus.
func (s LyricsStatus) Icon() string {
	switch s {
	case LyricsStatusDownloaded:
		return "🎵"
	case LyricsStatusNotFound:
		return "🚫"
	case LyricsStatusInstrumental:
		return "🎼"
	case LyricsStatusPending:
		return "⏳"
	case LyricsStatusFailed:
		return "❌"
	default:
		return "⏳"
	}
}

// audioIconToStatus maps a manifest audio icon back to its status. Unknown
// icons are intentionally absent; Manifest parsing treats a lookup miss as
// AudioStatusPending and logs the fact, per the tolerant-parsing rule.
var audioIconToStatus = map[string]AudioStatus{
	"✅": AudioStatusDownloaded,
	"⏳": AudioStatusPending,
	"❌": AudioStatusFailed,
	"⏭️": AudioStatusSkipped,
	"⬇️": AudioStatusDownloading,
}

// lyricsIconToStatus maps a manifest lyrics icon back to its status.
var lyricsIconToStatus = map[string]LyricsStatus{
	"🎵": LyricsStatusDownloaded,
	"🚫": LyricsStatusNotFound,
	"🎼": LyricsStatusInstrumental,
	"⏳": LyricsStatusPending,
	"❌": LyricsStatusFailed,
}

// ParseAudioStatusIcon converts a manifest icon into an AudioStatus. The
// second return value is false for an unrecognized icon.
func ParseAudioStatusIcon(icon string) (AudioStatus, bool) {
	status, ok := audioIconToStatus[icon]
	return status, ok
}

// ParseLyricsStatusIcon converts a manifest icon into a LyricsStatus. The
// second return value is false for an unrecognized icon.
func ParseLyricsStatusIcon(icon string) (LyricsStatus, bool) {
	status, ok := lyricsIconToStatus[icon]
	return status, ok
}

// ReleaseDate carries a release date at whatever precision the source
// catalog reported it (day, month, or year only).
type ReleaseDate struct {
	Year      int
	Month     int // 0 if unknown.
	Day       int // 0 if unknown.
}

// CoverImage is one entry in an album's available cover art sizes.
type CoverImage struct {
	URL    string
	Width  int
	Height int
}

// Album is immutable within a sync run.
type Album struct {
	ID          string
	Name        string
	Artists     []string
	ReleaseDate ReleaseDate
	Covers      []CoverImage
	// Genres lists the album's genre tags, if the source catalog exposes any.
	// The tagger uses the first entry, when present, as the track's genre.
	Genres []string
}

// BestCover returns the smallest cover image at least minWidth px wide, or
// the largest available image if none meet the threshold. It reports false
// when the album has no cover images at all.
func (a Album) BestCover(minWidth int) (CoverImage, bool) {
	if len(a.Covers) == 0 {
		return CoverImage{}, false
	}

	var (
		best    CoverImage
		haveAny bool
	)

	for _, cover := range a.Covers {
		if cover.Width < minWidth {
			continue
		}

		if !haveAny || cover.Width < best.Width {
			best = cover
			haveAny = true
		}
	}

	if haveAny {
		return best, true
	}

	// Nothing met the threshold; fall back to the largest available image.
	largest := a.Covers[0]
	for _, cover := range a.Covers[1:] {
		if cover.Width > largest.Width {
			largest = cover
		}
	}

	return largest, true
}

// Track is the remote, immutable description of a single song.
type Track struct {
	ID         string
	Title      string
	// Artists is ordered; the first entry is the primary artist.
	Artists     []string
	Album       Album
	DurationMs  int64
	Explicit    bool
	TrackNumber int
	DiscNumber  int
	ISRC        string // optional
	Available   bool
	// PreviewURL is a short preview clip URL, when the source catalog exposes one.
	PreviewURL string
}

// PrimaryArtist returns the first artist, or "" if the track has none.
func (t Track) PrimaryArtist() string {
	if len(t.Artists) == 0 {
		return ""
	}

	return t.Artists[0]
}

// Duration returns the track's duration as a time.Duration.
func (t Track) Duration() time.Duration {
	return time.Duration(t.DurationMs) * time.Millisecond
}

// PlaylistTrack is a Track plus all per-run, mutable sync bookkeeping.
type PlaylistTrack struct {
	Track

	// Position is the 1-based index within the playlist.
	Position int

	AudioStatus  AudioStatus
	LyricsStatus LyricsStatus

	LocalFilePath  string
	LyricsFilePaths []string
	LyricsSource    string

	AudioAttempts  int
	LyricsAttempts int

	LastAudioAttemptAt  time.Time
	LastLyricsAttemptAt time.Time

	LastAudioError  string
	LastLyricsError string

	// MatchedCandidateID is the chosen secondary-catalog item id, if resolved.
	MatchedCandidateID string
	// MatchScore is the resolver's total score for MatchedCandidateID, at most 100.
	MatchScore float64

	// Notes is a free-text field carried on the track. The manifest store
	// neither writes it nor reads it back.
	Notes string
}

// Playlist is the remote, run-scoped aggregate of a source-catalog playlist.
type Playlist struct {
	ID          string
	Name        string
	Description string
	Owner       string
	// SnapshotID is the source catalog's opaque playlist-version token.
	SnapshotID string
	Public         bool
	Collaborative  bool
	TotalTrackCount int
	Tracks          []*PlaylistTrack
}
