// Package manifest implements the tracklist.txt store: a line-oriented text
// file recording a playlist's local sync state, used to drive incremental
// sync and diffed against the remote playlist on every run.
package manifest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/nmartins/melodysync/internal/constants"
	"github.com/nmartins/melodysync/internal/errs"
	"github.com/nmartins/melodysync/internal/logger"
	"github.com/nmartins/melodysync/internal/model"
	"github.com/nmartins/melodysync/internal/utils"
)

// Filename is the name of the manifest file within a playlist directory.
const Filename = "tracklist.txt"

// FormatVersion is the current manifest format version this package writes.
const FormatVersion = "1"

// Header carries the manifest's header fields.
type Header struct {
	FormatVersion string
	Playlist      string
	SourceID      string
	Created       time.Time
	LastModified  time.Time
	TotalTracks   int
	LyricsEnabled bool
	LyricsSource  string
	Description   string
	Owner         string
	Public        bool
	Collaborative bool
}

// trackLinePattern parses a manifest track line:
// <A><L> <pos:02d>. <artists> - <title> (<dur>) [source:track:<id>][ -> <filename>][ | Lyrics: <ref>]
//
//nolint:lll // The grammar is inherently a long single-line pattern.
var trackLinePattern = regexp.MustCompile(
	`^(?P<audio>\S+)(?P<lyrics>\S+)\s+(?P<pos>\d+)\.\s+(?P<artists>.+?)\s+-\s+(?P<title>.+?)\s+\((?P<dur>[\d:]+)\)\s+\[source:track:(?P<id>[^\]]+)\](?:\s*->\s*(?P<file>[^\|\[]+?))?(?:\s*\|\s*Lyrics:\s*(?P<lyricsref>.+))?\s*$`, //nolint:lll
)

// headerLinePattern parses a `Key: value` header line.
var headerLinePattern = regexp.MustCompile(`^([A-Za-z ]+):\s*(.*)$`)

// Create writes a fresh manifest for playlist into directory, backing up any
// existing file with a timestamped copy first.
func Create(directory string, playlist *model.Playlist, lyricsEnabled bool, lyricsSource string) error {
	if err := ensureWritableDir(directory); err != nil {
		return errs.Wrap(errs.KindConfig, "output directory is not writable", err)
	}

	path := filepath.Join(directory, Filename)

	if exists, _ := utils.IsFileExist(path); exists {
		if err := backupFile(path); err != nil {
			return errs.Wrap(errs.KindManifest, "failed to back up existing manifest", err)
		}
	}

	now := time.Now()

	header := Header{
		FormatVersion: FormatVersion,
		Playlist:      playlist.Name,
		SourceID:      playlist.ID,
		Created:       now,
		LastModified:  now,
		TotalTracks:   len(playlist.Tracks),
		LyricsEnabled: lyricsEnabled,
		LyricsSource:  lyricsSource,
		Description:   playlist.Description,
		Owner:         playlist.Owner,
		Public:        playlist.Public,
		Collaborative: playlist.Collaborative,
	}

	return writeAtomic(path, header, playlist.Tracks)
}

// Entry is one parsed manifest track line, independent of the live remote
// Track data — callers reconcile Entry against freshly fetched tracks.
type Entry struct {
	Position     int
	Artists      string
	Title        string
	Duration     time.Duration
	SourceID     string
	AudioStatus  model.AudioStatus
	LyricsStatus model.LyricsStatus
	LocalFile    string
	LyricsRef    string
}

// Read loads and parses the manifest at path. Unparseable track lines are
// logged and skipped (callers treat a skipped source id as missing, so it is
// re-downloaded on the next plan).
func Read(path string) (Header, []Entry, error) {
	data, err := os.ReadFile(filepath.Clean(path)) //nolint:gosec // Path is caller-controlled, not user input.
	if err != nil {
		return Header{}, nil, errs.Wrap(errs.KindManifest, "manifest file missing or unreadable", err)
	}

	if len(data) == 0 {
		return Header{}, nil, errs.Wrap(errs.KindManifest, "manifest file is empty", errs.ErrManifestCorrupt)
	}

	lines := strings.Split(string(data), "\n")

	header, headerLineCount, err := parseHeader(lines)
	if err != nil {
		return Header{}, nil, err
	}

	var entries []Entry

	for _, line := range lines[headerLineCount:] {
		trimmed := strings.TrimRight(line, " \t\r")
		if trimmed == "" {
			continue
		}

		entry, ok := parseTrackLine(trimmed)
		if !ok {
			logger.Warnf(context.Background(), "manifest: skipping unparseable track line: %q", trimmed)

			continue
		}

		entries = append(entries, entry)
	}

	return header, entries, nil
}

func parseHeader(lines []string) (Header, int, error) {
	header := Header{}
	fieldsSeen := map[string]bool{}

	i := 0

	for ; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])

		if line == "" {
			continue
		}

		if !strings.HasPrefix(line, "#") {
			break
		}

		content := strings.TrimSpace(strings.TrimPrefix(line, "#"))

		match := headerLinePattern.FindStringSubmatch(content)
		if match == nil {
			continue
		}

		key := strings.TrimSpace(match[1])
		value := strings.TrimSpace(match[2])

		applyHeaderField(&header, key, value)
		fieldsSeen[key] = true
	}

	required := []string{
		"Format Version", "Playlist", "Source ID", "Created",
		"Total tracks", "Last modified", "Lyrics enabled", "Lyrics source",
	}

	for _, field := range required {
		if !fieldsSeen[field] {
			return Header{}, 0, errs.Wrap(errs.KindManifest,
				fmt.Sprintf("manifest header missing required field %q", field), errs.ErrManifestCorrupt)
		}
	}

	return header, i, nil
}

//nolint:cyclop // A header field dispatcher is inherently a flat enumeration.
func applyHeaderField(header *Header, key, value string) {
	switch key {
	case "Format Version":
		header.FormatVersion = value
	case "Playlist":
		header.Playlist = value
	case "Source ID":
		header.SourceID = value
	case "Created":
		header.Created, _ = time.Parse(time.RFC3339, value)
	case "Last modified":
		header.LastModified, _ = time.Parse(time.RFC3339, value)
	case "Total tracks":
		header.TotalTracks, _ = strconv.Atoi(value)
	case "Lyrics enabled":
		header.LyricsEnabled = strings.EqualFold(value, "true")
	case "Lyrics source":
		header.LyricsSource = value
	case "Description":
		header.Description = value
	case "Owner":
		header.Owner = value
	case "Public":
		header.Public = strings.EqualFold(value, "true")
	case "Collaborative":
		header.Collaborative = strings.EqualFold(value, "true")
	}
}

func parseTrackLine(line string) (Entry, bool) {
	match := trackLinePattern.FindStringSubmatch(line)
	if match == nil {
		return Entry{}, false
	}

	groups := make(map[string]string, len(trackLinePattern.SubexpNames()))
	for i, name := range trackLinePattern.SubexpNames() {
		if name != "" && i < len(match) {
			groups[name] = match[i]
		}
	}

	position, err := strconv.Atoi(groups["pos"])
	if err != nil {
		return Entry{}, false
	}

	duration, err := utils.ParseDurationClock(groups["dur"])
	if err != nil {
		return Entry{}, false
	}

	audioStatus, ok := model.ParseAudioStatusIcon(groups["audio"])
	if !ok {
		logger.Warnf(context.Background(), "manifest: unrecognized audio icon %q, treating as pending", groups["audio"])
		audioStatus = model.AudioStatusPending
	}

	lyricsStatus, ok := model.ParseLyricsStatusIcon(groups["lyrics"])
	if !ok {
		logger.Warnf(context.Background(), "manifest: unrecognized lyrics icon %q, treating as pending", groups["lyrics"])
		lyricsStatus = model.LyricsStatusPending
	}

	localFile := strings.TrimSpace(groups["file"])
	lyricsRef := strings.TrimSpace(groups["lyricsref"])

	// With the lyrics segment first ("| Lyrics: <ref> -> <file>"), the lyrics
	// group captures both segments; split the file ref back out of it.
	if localFile == "" {
		if ref, file, found := strings.Cut(lyricsRef, "->"); found {
			lyricsRef, localFile = strings.TrimSpace(ref), strings.TrimSpace(file)
		}
	}

	return Entry{
		Position:     position,
		Artists:      strings.TrimSpace(groups["artists"]),
		Title:        strings.TrimSpace(groups["title"]),
		Duration:     duration,
		SourceID:     strings.TrimSpace(groups["id"]),
		AudioStatus:  audioStatus,
		LyricsStatus: lyricsStatus,
		LocalFile:    localFile,
		LyricsRef:    lyricsRef,
	}, true
}

// Update rewrites the manifest atomically with the given tracks, refreshing
// LastModified and applying any header field overrides from headerPatch.
func Update(directory string, tracks []*model.PlaylistTrack, headerPatch map[string]string) error {
	path := filepath.Join(directory, Filename)

	header, _, err := Read(path)
	if err != nil {
		return err
	}

	header.LastModified = time.Now()
	header.TotalTracks = len(tracks)

	for key, value := range headerPatch {
		applyHeaderField(&header, key, value)
	}

	return writeAtomic(path, header, tracks)
}

func writeAtomic(path string, header Header, tracks []*model.PlaylistTrack) error {
	sorted := make([]*model.PlaylistTrack, len(tracks))
	copy(sorted, tracks)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })

	var buf strings.Builder

	writeHeader(&buf, header)

	for _, track := range sorted {
		buf.WriteString(renderTrackLine(track))
		buf.WriteString("\n")
	}

	tmpPath := path + ".tmp"

	file, err := os.OpenFile(filepath.Clean(tmpPath), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, constants.DefaultFilePermissions)
	if err != nil {
		return errs.Wrap(errs.KindManifest, "failed to open temp manifest", err)
	}

	if _, err = file.WriteString(buf.String()); err != nil {
		_ = file.Close()
		_ = os.Remove(tmpPath)

		return errs.Wrap(errs.KindManifest, "failed to write temp manifest", err)
	}

	if err = file.Sync(); err != nil {
		_ = file.Close()
		_ = os.Remove(tmpPath)

		return errs.Wrap(errs.KindManifest, "failed to fsync temp manifest", err)
	}

	if err = file.Close(); err != nil {
		_ = os.Remove(tmpPath)

		return errs.Wrap(errs.KindManifest, "failed to close temp manifest", err)
	}

	if err = os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)

		return errs.Wrap(errs.KindManifest, "failed to rename temp manifest into place", err)
	}

	return nil
}

func writeHeader(buf *strings.Builder, header Header) {
	fmt.Fprintf(buf, "# Format Version: %s\n", header.FormatVersion)
	fmt.Fprintf(buf, "# Playlist: %s\n", header.Playlist)
	fmt.Fprintf(buf, "# Source ID: %s\n", header.SourceID)
	fmt.Fprintf(buf, "# Created: %s\n", header.Created.Format(time.RFC3339))
	fmt.Fprintf(buf, "# Last modified: %s\n", header.LastModified.Format(time.RFC3339))
	fmt.Fprintf(buf, "# Total tracks: %d\n", header.TotalTracks)
	fmt.Fprintf(buf, "# Lyrics enabled: %t\n", header.LyricsEnabled)
	fmt.Fprintf(buf, "# Lyrics source: %s\n", header.LyricsSource)

	if header.Description != "" {
		fmt.Fprintf(buf, "# Description: %s\n", header.Description)
	}

	if header.Owner != "" {
		fmt.Fprintf(buf, "# Owner: %s\n", header.Owner)
	}

	fmt.Fprintf(buf, "# Public: %t\n", header.Public)
	fmt.Fprintf(buf, "# Collaborative: %t\n", header.Collaborative)
	buf.WriteString("\n")
}

func renderTrackLine(track *model.PlaylistTrack) string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "%s%s %02d. %s - %s (%s) [source:track:%s]",
		track.AudioStatus.Icon(), track.LyricsStatus.Icon(),
		track.Position, strings.Join(track.Track.Artists, ", "), track.Track.Title,
		utils.FormatDurationClock(track.Track.Duration()), track.Track.ID)

	if track.LocalFilePath != "" {
		fmt.Fprintf(&buf, " -> %s", filepath.Base(track.LocalFilePath))
	}

	if len(track.LyricsFilePaths) > 0 {
		fmt.Fprintf(&buf, " | Lyrics: %s", filepath.Base(track.LyricsFilePaths[0]))
	}

	return buf.String()
}

func ensureWritableDir(directory string) error {
	if err := os.MkdirAll(directory, constants.DefaultFolderPermissions); err != nil {
		return err
	}

	probe := filepath.Join(directory, ".write_probe")

	file, err := os.Create(filepath.Clean(probe)) //nolint:gosec // Path is caller-controlled.
	if err != nil {
		return err
	}

	_ = file.Close()

	return os.Remove(probe)
}

func backupFile(path string) error {
	timestamp := time.Now().Format("20060102-150405")
	backupPath := fmt.Sprintf("%s.%s.bak", path, timestamp)

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return err
	}

	return os.WriteFile(backupPath, data, constants.DefaultFilePermissions)
}

// DiffResult is the outcome of comparing manifest entries against a freshly
// fetched remote playlist.
type DiffResult struct {
	Added    []*model.PlaylistTrack
	Removed  []Entry
	Moved    []MovedEntry
	Modified []ModifiedEntry
}

// MovedEntry pairs a remote track with its old and new positions.
type MovedEntry struct {
	Track       *model.PlaylistTrack
	OldPosition int
	NewPosition int
}

// ModifiedEntry pairs a remote track with the stale entry it replaces.
type ModifiedEntry struct {
	Track *model.PlaylistTrack
	Old   Entry
}

// Diff compares manifest entries against the freshly fetched remote tracks.
// detectMoves gates whether same-id/different-position entries are reported
// as moves; when false they are left out of Moved entirely.
func Diff(entries []Entry, remoteTracks []*model.PlaylistTrack, detectMoves bool) DiffResult {
	byID := make(map[string]Entry, len(entries))
	for _, entry := range entries {
		byID[entry.SourceID] = entry
	}

	remoteByID := make(map[string]bool, len(remoteTracks))

	var result DiffResult

	for _, track := range remoteTracks {
		remoteByID[track.ID] = true

		entry, existed := byID[track.ID]
		if !existed {
			result.Added = append(result.Added, track)
			continue
		}

		if detectMoves && entry.Position != track.Position {
			result.Moved = append(result.Moved, MovedEntry{
				Track:       track,
				OldPosition: entry.Position,
				NewPosition: track.Position,
			})
		}

		if entryChanged(entry, track) {
			result.Modified = append(result.Modified, ModifiedEntry{Track: track, Old: entry})
		}
	}

	for _, entry := range entries {
		if !remoteByID[entry.SourceID] {
			result.Removed = append(result.Removed, entry)
		}
	}

	return result
}

func entryChanged(entry Entry, track *model.PlaylistTrack) bool {
	if entry.Title != track.Track.Title {
		return true
	}

	if entry.Artists != strings.Join(track.Track.Artists, ", ") {
		return true
	}

	return entry.Duration != track.Track.Duration()
}
