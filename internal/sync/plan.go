package sync

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nmartins/melodysync/internal/errs"
	"github.com/nmartins/melodysync/internal/manifest"
	"github.com/nmartins/melodysync/internal/model"
	"github.com/nmartins/melodysync/internal/utils"
)

// maxDirectorySuffix bounds the "_1", "_2", … collision probe before falling
// back to a unix-timestamp suffix.
const maxDirectorySuffix = 1000

// DownloadOp is one track that needs its audio (re-)fetched.
type DownloadOp struct {
	Track  *model.PlaylistTrack
	Reason string
}

// Plan is the set of operations one sync run needs to perform against dir.
type Plan struct {
	Directory     string
	FreshManifest bool
	Downloads     []DownloadOp
	Moves         []manifest.MovedEntry
	RemovedCount  int
}

// buildPlan reads dir's manifest, if any, and diffs it against the freshly
// fetched playlist tracks. With no manifest present, every track is planned
// for download. expectedExt gates local-file validation: an entry whose
// local file has a different extension than the currently configured output
// format is treated as invalid and re-downloaded.
func buildPlan(dir string, playlist *model.Playlist, detectMoves bool, expectedExt string) (Plan, error) {
	manifestPath := filepath.Join(dir, manifest.Filename)

	exists, _ := utils.IsFileExist(manifestPath)
	if !exists {
		downloads := make([]DownloadOp, 0, len(playlist.Tracks))
		for _, track := range playlist.Tracks {
			downloads = append(downloads, DownloadOp{Track: track, Reason: "initial"})
		}

		return Plan{Directory: dir, FreshManifest: true, Downloads: downloads}, nil
	}

	_, entries, err := manifest.Read(manifestPath)
	if err != nil {
		return Plan{}, err
	}

	diff := manifest.Diff(entries, playlist.Tracks, detectMoves)

	byID := make(map[string]manifest.Entry, len(entries))
	for _, entry := range entries {
		byID[entry.SourceID] = entry
	}

	addedIDs := make(map[string]bool, len(diff.Added))
	for _, track := range diff.Added {
		addedIDs[track.ID] = true
	}

	modifiedIDs := make(map[string]bool, len(diff.Modified))
	for _, m := range diff.Modified {
		modifiedIDs[m.Track.ID] = true
	}

	downloads := make([]DownloadOp, 0, len(diff.Added))

	for _, track := range diff.Added {
		downloads = append(downloads, DownloadOp{Track: track, Reason: "added"})
	}

	for _, track := range playlist.Tracks {
		if addedIDs[track.ID] {
			continue
		}

		entry, ok := byID[track.ID]
		if !ok {
			continue
		}

		switch {
		case modifiedIDs[track.ID]:
			downloads = append(downloads, DownloadOp{Track: track, Reason: "metadata_changed"})
		case !validateLocalFile(dir, entry, expectedExt):
			downloads = append(downloads, DownloadOp{Track: track, Reason: "missing_or_invalid"})
		default:
			// The existing file is still valid; carry its recorded state
			// forward instead of re-downloading.
			track.AudioStatus = entry.AudioStatus
			track.LyricsStatus = entry.LyricsStatus

			if entry.LocalFile != "" {
				track.LocalFilePath = filepath.Join(dir, entry.LocalFile)
			}
		}
	}

	return Plan{
		Directory:     dir,
		FreshManifest: false,
		Downloads:     downloads,
		Moves:         diff.Moved,
		RemovedCount:  len(diff.Removed),
	}, nil
}

// validateLocalFile reports whether entry's recorded local file still looks
// like a valid, downloaded track: present on disk, non-empty, and matching
// the currently configured output extension.
func validateLocalFile(dir string, entry manifest.Entry, expectedExt string) bool {
	if entry.AudioStatus != model.AudioStatusDownloaded || entry.LocalFile == "" {
		return false
	}

	if expectedExt != "" && !strings.EqualFold(filepath.Ext(entry.LocalFile), expectedExt) {
		return false
	}

	info, err := os.Stat(filepath.Join(dir, entry.LocalFile))
	if err != nil || info.IsDir() || info.Size() == 0 {
		return false
	}

	return true
}

// ResolveDirectory picks the local directory a playlist mirrors into: an
// existing directory whose manifest already carries this sourceID, wherever
// under outputRoot it lives, or else a freshly allocated one named after the
// playlist. Exported so callers can locate a playlist's directory (e.g. to
// open a per-playlist log file) before or independently of a Sync call.
func ResolveDirectory(outputRoot, playlistName, sourceID string) (dir string, reused bool, err error) {
	sanitized := utils.SanitizeDirName(playlistName)
	if sanitized == "" {
		sanitized = sourceID
	}

	base := filepath.Join(outputRoot, sanitized)
	if err = ensureWithinRoot(outputRoot, base); err != nil {
		return "", false, err
	}

	if header, ok := readManifestHeader(base); ok && header.SourceID == sourceID {
		return base, true, nil
	}

	if found, ok := findManifestDirectory(outputRoot, sourceID); ok {
		return found, true, nil
	}

	return allocateDirectory(base), false, nil
}

func readManifestHeader(dir string) (manifest.Header, bool) {
	path := filepath.Join(dir, manifest.Filename)

	if exists, _ := utils.IsFileExist(path); !exists {
		return manifest.Header{}, false
	}

	header, _, err := manifest.Read(path)
	if err != nil {
		return manifest.Header{}, false
	}

	return header, true
}

func findManifestDirectory(outputRoot, sourceID string) (string, bool) {
	entries, err := os.ReadDir(outputRoot)
	if err != nil {
		return "", false
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		candidate := filepath.Join(outputRoot, entry.Name())

		header, ok := readManifestHeader(candidate)
		if ok && header.SourceID == sourceID {
			return candidate, true
		}
	}

	return "", false
}

func allocateDirectory(base string) string {
	if _, err := os.Stat(base); errors.Is(err, os.ErrNotExist) {
		return base
	}

	for i := 1; i <= maxDirectorySuffix; i++ {
		candidate := fmt.Sprintf("%s_%d", base, i)
		if _, err := os.Stat(candidate); errors.Is(err, os.ErrNotExist) {
			return candidate
		}
	}

	return fmt.Sprintf("%s_%d", base, time.Now().Unix())
}

// ensureWithinRoot rejects a computed directory that would escape root,
// which a sufficiently hostile playlist name could otherwise attempt via
// "../" segments surviving sanitization.
func ensureWithinRoot(root, candidate string) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return err
	}

	absCandidate, err := filepath.Abs(candidate)
	if err != nil {
		return err
	}

	rel, err := filepath.Rel(absRoot, absCandidate)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return errs.ErrOutputRootEscape
	}

	return nil
}
