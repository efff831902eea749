// Package sync orchestrates one mirror run: fetching the remote playlist,
// planning which tracks need downloading, executing that plan across a
// bounded worker pool, and rewriting the manifest to reflect the result.
package sync

import (
	"context"
	"net/http"
	"time"

	"github.com/nmartins/melodysync/internal/client/secondary"
	"github.com/nmartins/melodysync/internal/client/source"
	"github.com/nmartins/melodysync/internal/config"
	"github.com/nmartins/melodysync/internal/downloader"
	"github.com/nmartins/melodysync/internal/logger"
	"github.com/nmartins/melodysync/internal/lyrics"
	"github.com/nmartins/melodysync/internal/manifest"
	"github.com/nmartins/melodysync/internal/model"
	"github.com/nmartins/melodysync/internal/processor"
	"github.com/nmartins/melodysync/internal/resolver"
	"github.com/nmartins/melodysync/internal/tagger"
)

// stagingSweepAge is how old a leftover staged file must be before a sync
// run's startup sweep removes it.
const stagingSweepAge = 24 * time.Hour

// defaultConcurrency is used when config.Concurrency is unset or invalid.
const defaultConcurrency = 3

// Deps are the components a Runner wires together. All fields are required
// except Processor, which may be nil to skip post-download audio cleanup.
type Deps struct {
	SourceClient    source.Client
	SecondaryClient secondary.Client
	Downloader      *downloader.Downloader
	Tagger          tagger.Writer
	LyricsResolver  *lyrics.Resolver
	Processor       *processor.Processor
	CoverHTTPClient *http.Client
	Config          *config.Config
}

// Result summarizes one Sync call's outcome.
type Result struct {
	Downloaded  int
	Failed      int
	LyricsFound int
	Moved       int
	Skipped     int
	Elapsed     time.Duration
}

// Runner executes sync runs against a fixed set of Deps.
type Runner struct {
	deps Deps
}

// NewRunner builds a Runner.
func NewRunner(deps Deps) *Runner {
	return &Runner{deps: deps}
}

// Sync mirrors the playlist identified by ref into the configured output
// directory. A single track's failure never aborts the run; an error
// returned from Sync means either the run could not be planned (invalid
// ref, playlist unreachable) and the Result is nil, or the manifest could
// not be written after the downloads ran (output directory unwritable) and
// the Result of those downloads is returned with the error.
func (r *Runner) Sync(ctx context.Context, ref string) (*Result, error) {
	start := time.Now()

	plan, playlist, err := r.Plan(ctx, ref)
	if err != nil {
		return nil, err
	}

	if r.deps.Downloader != nil {
		if sweepErr := r.deps.Downloader.CleanStaging(ctx, stagingSweepAge); sweepErr != nil {
			logger.Warnf(ctx, "staging sweep failed: %v", sweepErr)
		}
	}

	result := r.execute(ctx, plan.Directory, *plan, len(playlist.Tracks))
	result.Elapsed = time.Since(start)

	if plan.FreshManifest {
		err = manifest.Create(plan.Directory, playlist, r.deps.Config.LyricsEnabled, r.deps.Config.PrimarySource)
	} else {
		err = manifest.Update(plan.Directory, playlist.Tracks, nil)
	}

	if err != nil {
		return result, err
	}

	return result, nil
}

// Plan resolves ref to a remote playlist, determines (or reuses) its local
// directory, and diffs it against any existing manifest — without executing
// any download. It is the read-only half of Sync, exposed separately so a
// caller can preview what a sync run would do (the "check" operation) or
// verify the playlist and credential are usable without writing anything.
func (r *Runner) Plan(ctx context.Context, ref string) (*Plan, *model.Playlist, error) {
	playlistID, err := source.ParsePlaylistRef(ref)
	if err != nil {
		return nil, nil, err
	}

	header, err := r.deps.SourceClient.FetchPlaylistHeader(ctx, playlistID)
	if err != nil {
		return nil, nil, err
	}

	playlist, err := r.fetchPlaylist(ctx, header)
	if err != nil {
		return nil, nil, err
	}

	dir, _, err := ResolveDirectory(r.deps.Config.OutputDirectory, playlist.Name, playlist.ID)
	if err != nil {
		return nil, nil, err
	}

	plan, err := buildPlan(dir, playlist, r.deps.Config.DetectMovedTracks, OutputExtension(r.deps.Config))
	if err != nil {
		return nil, nil, err
	}

	return &plan, playlist, nil
}

// execute runs plan's download operations across the worker pool and tallies
// the outcome; move operations only need their position recorded, which the
// caller's playlist.Tracks already carry from the freshly fetched remote data.
func (r *Runner) execute(ctx context.Context, dir string, plan Plan, totalTracks int) *Result {
	result := &Result{Moved: len(plan.Moves), Skipped: plan.RemovedCount}

	outcomes := r.executeDownloads(ctx, dir, plan.Downloads, totalTracks)

	for _, outcome := range outcomes {
		if outcome.track == nil {
			continue
		}

		switch outcome.track.AudioStatus {
		case model.AudioStatusDownloaded:
			result.Downloaded++
		case model.AudioStatusFailed:
			result.Failed++
		}

		if outcome.lyricsFound {
			result.LyricsFound++
		}
	}

	return result
}

// fetchPlaylist retrieves every track reference in the playlist and resolves
// their full metadata, building the run's in-memory Playlist aggregate.
func (r *Runner) fetchPlaylist(ctx context.Context, header *source.PlaylistHeader) (*model.Playlist, error) {
	var refs []source.PlaylistItemRef

	err := r.deps.SourceClient.FetchTracks(ctx, header.ID, func(ref source.PlaylistItemRef) error {
		refs = append(refs, ref)
		return nil
	})
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(refs))
	for i, ref := range refs {
		ids[i] = ref.TrackID
	}

	tracksByID, err := r.deps.SourceClient.ResolveTracksMetadata(ctx, ids)
	if err != nil {
		return nil, err
	}

	tracks := make([]*model.PlaylistTrack, 0, len(refs))

	for _, ref := range refs {
		track, ok := tracksByID[ref.TrackID]
		if !ok {
			logger.Warnf(ctx, "playlist %s: metadata unavailable for track %s, skipping", header.ID, ref.TrackID)
			continue
		}

		tracks = append(tracks, &model.PlaylistTrack{Track: *track, Position: ref.Position})
	}

	return &model.Playlist{
		ID:              header.ID,
		Name:            header.Name,
		Description:     header.Description,
		Owner:           header.OwnerName,
		SnapshotID:      header.SnapshotID,
		Public:          header.Public,
		Collaborative:   header.Collaborative,
		TotalTrackCount: header.TotalTrackCount,
		Tracks:          tracks,
	}, nil
}

// OutputExtension returns the file extension the downloader should finalize
// filenames with for cfg's configured output format.
func OutputExtension(cfg *config.Config) string {
	switch cfg.Format {
	case "flac":
		return ".flac"
	case "m4a":
		return ".m4a"
	default:
		return ".mp3"
	}
}

// FormatCascade returns the ordered format selectors the downloader should
// try for cfg's configured output format, falling back toward mp3.
func FormatCascade(cfg *config.Config) []downloader.FormatSelector {
	switch cfg.Format {
	case "flac":
		return []downloader.FormatSelector{"flac", "mp3"}
	case "m4a":
		return []downloader.FormatSelector{"m4a", "mp3"}
	default:
		return []downloader.FormatSelector{"mp3"}
	}
}

// TaggerFormat maps cfg's configured output format to the tagger's Format enum.
func TaggerFormat(cfg *config.Config) tagger.Format {
	switch cfg.Format {
	case "flac":
		return tagger.FormatFLAC
	case "m4a":
		return tagger.FormatM4A
	default:
		return tagger.FormatMP3
	}
}

// ResolverOptions builds resolver.Options from cfg's matching-related fields.
func ResolverOptions(cfg *config.Config) resolver.Options {
	return resolver.Options{
		DurationToleranceSecs: cfg.DurationToleranceSecs,
		PreferOfficial:        cfg.PreferOfficial,
		ExcludeLive:           cfg.ExcludeLive,
		ExcludeCovers:         cfg.ExcludeCovers,
	}
}
