package sync

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/nmartins/melodysync/internal/logger"
	"github.com/nmartins/melodysync/internal/lyrics"
	"github.com/nmartins/melodysync/internal/model"
	"github.com/nmartins/melodysync/internal/resolver"
	"github.com/nmartins/melodysync/internal/tagger"
)

// trackOutcome records what happened to one DownloadOp's track.
type trackOutcome struct {
	track       *model.PlaylistTrack
	lyricsFound bool
}

// executeDownloads runs ops' download pipelines across a bounded worker
// pool, one goroutine per track gated by a semaphore. Once ctx is canceled,
// no further tracks are queued, but in-flight ones are allowed to finish.
func (r *Runner) executeDownloads(ctx context.Context, dir string, ops []DownloadOp, totalTracks int) []trackOutcome {
	concurrency := r.deps.Config.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	semaphore := make(chan struct{}, concurrency)

	var waitGroup sync.WaitGroup

	outcomes := make([]trackOutcome, len(ops))

	for i, op := range ops {
		select {
		case <-ctx.Done():
			goto waitForCompletion
		default:
		}

		waitGroup.Add(1)

		go func(i int, op DownloadOp) {
			defer waitGroup.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			if ctx.Err() != nil {
				return // canceled while waiting for a slot: the track is left unstarted.
			}

			outcomes[i] = r.runTrackPipeline(ctx, dir, op.Track, totalTracks)
		}(i, op)
	}

waitForCompletion:
	waitGroup.Wait()

	return outcomes
}

// runTrackPipeline resolves, downloads, optionally post-processes, fetches
// lyrics for, and tags a single track. Any failure at the resolve or
// download stage is recorded on the track and ends its pipeline early;
// tagging and lyrics failures are logged but never mark the track failed,
// since the audio file itself is already a valid mirror of the track.
func (r *Runner) runTrackPipeline(
	ctx context.Context, dir string, track *model.PlaylistTrack, totalTracks int,
) trackOutcome {
	track.AudioAttempts++
	track.LastAudioAttemptAt = time.Now()
	track.AudioStatus = model.AudioStatusDownloading

	match, err := r.resolveTrack(ctx, track)
	if err != nil {
		recordAudioFailure(ctx, track, err)
		return trackOutcome{track: track}
	}

	track.MatchedCandidateID = match.Candidate.ID
	track.MatchScore = match.Score.Total

	basePath := filepath.Join(dir, trackBaseFilename(track, r.deps.Config))

	finalPath, err := r.deps.Downloader.Download(ctx, match.Candidate.ID, basePath, nil)
	if err != nil {
		recordAudioFailure(ctx, track, err)
		return trackOutcome{track: track}
	}

	track.LocalFilePath = finalPath
	track.AudioStatus = model.AudioStatusDownloaded

	if r.deps.Processor != nil && (r.deps.Config.TrimSilence || r.deps.Config.Normalize) {
		_ = r.deps.Processor.Process(ctx, finalPath)
	}

	embeddedLyrics, lyricsFound := r.resolveLyrics(ctx, dir, track)

	r.writeTags(ctx, track, embeddedLyrics, totalTracks)

	return trackOutcome{track: track, lyricsFound: lyricsFound}
}

func (r *Runner) resolveTrack(ctx context.Context, track *model.PlaylistTrack) (*resolver.Match, error) {
	durationSecs := int(track.Duration().Seconds())

	target := resolver.Target{
		Artist:       track.PrimaryArtist(),
		Title:        track.Title,
		DurationSecs: &durationSecs,
		Album:        track.Album.Name,
	}

	return resolver.Resolve(ctx, r.deps.SecondaryClient, target, ResolverOptions(r.deps.Config))
}

// resolveLyrics looks up lyrics for track when enabled, writes separate
// files if configured, and returns the Lyrics to embed in the audio file
// (nil when embedding is disabled or nothing was found).
func (r *Runner) resolveLyrics(ctx context.Context, dir string, track *model.PlaylistTrack) (*tagger.Lyrics, bool) {
	if !r.deps.Config.LyricsEnabled || r.deps.LyricsResolver == nil {
		track.LyricsStatus = model.LyricsStatusSkipped
		return nil, false
	}

	track.LyricsAttempts++
	track.LastLyricsAttemptAt = time.Now()

	result, err := r.deps.LyricsResolver.Resolve(ctx, track.PrimaryArtist(), track.Title, track.Album.Name, "")
	if err != nil {
		if errors.Is(err, lyrics.ErrNotFound) {
			track.LyricsStatus = model.LyricsStatusNotFound
		} else {
			track.LyricsStatus = model.LyricsStatusFailed
			track.LastLyricsError = err.Error()
			logger.Warnf(ctx, "lyrics lookup failed for %q: %v", track.Title, err)
		}

		return nil, false
	}

	track.LyricsSource = result.Source
	track.LyricsStatus = model.LyricsStatusDownloaded

	if r.deps.Config.DownloadSeparateFiles {
		writeTxt := true
		writeLRC := result.Synced != ""

		if err = lyrics.WriteSeparateFiles(
			ctx, dir, track.Position, track.PrimaryArtist(), track.Title, result, writeTxt, writeLRC,
		); err != nil {
			logger.Warnf(ctx, "failed to write lyrics files for %q: %v", track.Title, err)
		} else {
			track.LyricsFilePaths = lyricsFilePaths(dir, track, result, writeTxt, writeLRC)
		}
	}

	if !r.deps.Config.EmbedInAudio {
		return nil, true
	}

	return &tagger.Lyrics{Plain: result.Plain, Synced: result.Synced}, true
}

// lyricsFilePaths mirrors lyrics.WriteSeparateFiles's own naming so the
// paths recorded on the track match the files it actually wrote.
func lyricsFilePaths(dir string, track *model.PlaylistTrack, result *lyrics.Result, writeTxt, writeLRC bool) []string {
	base := filepath.Join(dir, lyricsBaseFilename(track))

	var paths []string

	if writeTxt && result.Plain != "" {
		paths = append(paths, base+".txt")
	}

	if writeLRC && result.Synced != "" {
		paths = append(paths, base+".lrc")
	}

	return paths
}

func (r *Runner) writeTags(ctx context.Context, track *model.PlaylistTrack, embeddedLyrics *tagger.Lyrics, totalTracks int) {
	if r.deps.Tagger == nil || track.LocalFilePath == "" {
		return
	}

	req := &tagger.Request{
		TrackPath: track.LocalFilePath,
		Format:    TaggerFormat(r.deps.Config),
		Tags:      buildTags(track, totalTracks, r.deps.Config),
		Lyrics:    embeddedLyrics,
	}

	if r.deps.Config.IncludeAlbumArt && r.deps.CoverHTTPClient != nil {
		if cover, ok := track.Album.BestCover(300); ok {
			data, err := tagger.FetchAndDownscaleCover(ctx, r.deps.CoverHTTPClient, cover.URL)
			if err != nil {
				logger.Warnf(ctx, "failed to fetch cover art for %q: %v", track.Title, err)
			} else {
				req.Cover = data
			}
		}
	}

	if err := r.deps.Tagger.Write(ctx, req); err != nil {
		logger.Warnf(ctx, "failed to write tags for %q: %v", track.Title, err)
	}
}

func recordAudioFailure(ctx context.Context, track *model.PlaylistTrack, err error) {
	track.AudioStatus = model.AudioStatusFailed
	track.LastAudioError = err.Error()
	logger.Warnf(ctx, "track %q failed: %v", track.Title, err)
}
