package app

import (
	"context"
	"fmt"
	"time"

	"github.com/nmartins/melodysync/internal/logger"
	"github.com/nmartins/melodysync/internal/sync"
)

// ExecuteSyncCommand mirrors the playlist identified by ref, reconciling
// remote state against any existing local manifest and downloading only
// what has changed. It returns an error for failures that abort the whole
// run (critical per §7), and also, after printing the summary, when one or
// more tracks failed, so the CLI can still exit non-zero without losing the
// summary.
func ExecuteSyncCommand(ctx context.Context, rt *Runtime, ref string) error {
	result, err := rt.Runner.Sync(ctx, ref)
	if err != nil {
		return fmt.Errorf("sync %s: %w", ref, err)
	}

	printSyncSummary(ctx, result)

	if result.Failed > 0 {
		return fmt.Errorf("%d of %d tracks failed to download", result.Failed, result.Downloaded+result.Failed)
	}

	return nil
}

// ExecuteDownloadCommand performs the same reconciliation as
// ExecuteSyncCommand. It is exposed as a separate CLI verb per the spec's
// collaborator contract (§6.5) for a first-time mirror of a playlist the
// caller has not synced before; the synchronizer itself makes no behavioral
// distinction between an initial download and a later incremental sync —
// both are a single plan-then-execute run.
func ExecuteDownloadCommand(ctx context.Context, rt *Runtime, ref string) error {
	return ExecuteSyncCommand(ctx, rt, ref)
}

// printSyncSummary logs the one-line result the CLI prints after a run:
// "N downloaded, M failed, K lyrics, T elapsed" per §7's user-visible
// behavior, plus a line for move/skip counts when non-zero.
func printSyncSummary(ctx context.Context, result *sync.Result) {
	logger.Infof(ctx, "%d downloaded, %d failed, %d lyrics, %s elapsed",
		result.Downloaded, result.Failed, result.LyricsFound, result.Elapsed.Round(time.Millisecond))

	if result.Moved > 0 || result.Skipped > 0 {
		logger.Infof(ctx, "%d moved, %d skipped (removed upstream)", result.Moved, result.Skipped)
	}
}
