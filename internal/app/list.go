package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nmartins/melodysync/internal/logger"
	"github.com/nmartins/melodysync/internal/manifest"
	"github.com/nmartins/melodysync/internal/model"
)

// ExecuteListCommand enumerates every playlist directory directly under the
// configured output root that carries a manifest, printing each one's name,
// source id, and per-track status tallies. Directories without a manifest
// are skipped silently; one whose manifest fails to parse is skipped with a
// warning rather than aborting the whole listing.
func ExecuteListCommand(ctx context.Context, rt *Runtime) error {
	entries, err := os.ReadDir(rt.Config.OutputDirectory)
	if err != nil {
		return fmt.Errorf("read output directory: %w", err)
	}

	found := 0

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		path := filepath.Join(rt.Config.OutputDirectory, entry.Name(), manifest.Filename)

		if _, statErr := os.Stat(path); statErr != nil {
			continue
		}

		header, tracks, readErr := manifest.Read(path)
		if readErr != nil {
			logger.Warnf(ctx, "skipping %s: %v", path, readErr)
			continue
		}

		found++

		downloaded, failed, pending := tallyAudioStatus(tracks)

		logger.Infof(ctx, "%s  [source:%s]  %d tracks (%d downloaded, %d failed, %d pending)",
			header.Playlist, header.SourceID, header.TotalTracks, downloaded, failed, pending)
	}

	if found == 0 {
		logger.Info(ctx, "no synced playlists found under "+rt.Config.OutputDirectory)
	}

	return nil
}

func tallyAudioStatus(entries []manifest.Entry) (downloaded, failed, pending int) {
	for _, e := range entries {
		switch e.AudioStatus {
		case model.AudioStatusDownloaded:
			downloaded++
		case model.AudioStatusFailed:
			failed++
		default:
			pending++
		}
	}

	return downloaded, failed, pending
}
