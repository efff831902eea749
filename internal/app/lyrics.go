package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nmartins/melodysync/internal/client/source"
	"github.com/nmartins/melodysync/internal/logger"
	"github.com/nmartins/melodysync/internal/lyrics"
	"github.com/nmartins/melodysync/internal/manifest"
	"github.com/nmartins/melodysync/internal/model"
	"github.com/nmartins/melodysync/internal/sync"
)

// ExecuteLyricsDownloadCommand resolves lyrics for every manifest entry of
// the playlist identified by ref whose lyrics are not already downloaded or
// marked instrumental, writing separate .txt/.lrc files alongside the
// already-downloaded audio. It does not touch audio files and never embeds
// into them (embedding only happens as part of the sync pipeline, where the
// audio file is written fresh); this is the standalone "backfill lyrics for
// an existing mirror" entry point named in the CLI contract.
func ExecuteLyricsDownloadCommand(ctx context.Context, rt *Runtime, ref string) error {
	if rt.LyricsResolver == nil {
		return errors.New("lyrics are disabled in configuration (lyrics.enabled = false)")
	}

	playlistID, err := source.ParsePlaylistRef(ref)
	if err != nil {
		return err
	}

	header, err := rt.SourceClient.FetchPlaylistHeader(ctx, playlistID)
	if err != nil {
		return fmt.Errorf("fetch playlist header: %w", err)
	}

	dir, reused, err := sync.ResolveDirectory(rt.Config.OutputDirectory, header.Name, header.ID)
	if err != nil {
		return fmt.Errorf("resolve playlist directory: %w", err)
	}

	if !reused {
		return fmt.Errorf("no existing mirror found for playlist %q; run sync first", header.Name)
	}

	_, entries, err := manifest.Read(filepath.Join(dir, manifest.Filename))
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}

	found, attempted := 0, 0

	for _, entry := range entries {
		if entry.LyricsStatus == model.LyricsStatusDownloaded || entry.LyricsStatus == model.LyricsStatusInstrumental {
			continue
		}

		attempted++

		artist := primaryArtist(entry.Artists)

		result, resolveErr := rt.LyricsResolver.Resolve(ctx, artist, entry.Title, "", "")
		if resolveErr != nil {
			if !errors.Is(resolveErr, lyrics.ErrNotFound) {
				logger.Warnf(ctx, "lyrics lookup failed for %q: %v", entry.Title, resolveErr)
			}

			continue
		}

		writeErr := lyrics.WriteSeparateFiles(
			ctx, dir, entry.Position, artist, entry.Title, result, true, result.Synced != "")
		if writeErr != nil {
			logger.Warnf(ctx, "failed to write lyrics for %q: %v", entry.Title, writeErr)
			continue
		}

		found++
	}

	logger.Infof(ctx, "lyrics: %d/%d tracks resolved", found, attempted)

	return nil
}

// primaryArtist returns the first artist from a manifest entry's
// comma-joined artist string.
func primaryArtist(artists string) string {
	if idx := strings.Index(artists, ", "); idx >= 0 {
		return artists[:idx]
	}

	return artists
}
