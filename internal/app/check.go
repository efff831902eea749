package app

import (
	"context"
	"fmt"

	"github.com/nmartins/melodysync/internal/logger"
)

// ExecuteCheckCommand resolves ref and builds the same plan ExecuteSyncCommand
// would execute, but never downloads anything — it reports what a sync run
// would do (added/missing/moved/removed track counts) so the caller can
// preview before committing to a potentially long-running download.
func ExecuteCheckCommand(ctx context.Context, rt *Runtime, ref string) error {
	plan, playlist, err := rt.Runner.Plan(ctx, ref)
	if err != nil {
		return fmt.Errorf("check %s: %w", ref, err)
	}

	logger.Infof(ctx, "playlist %q (%s): %d tracks, directory %s",
		playlist.Name, playlist.ID, len(playlist.Tracks), plan.Directory)

	if plan.FreshManifest {
		logger.Infof(ctx, "no manifest found: initial sync would download all %d tracks", len(plan.Downloads))
		return nil
	}

	logger.Infof(ctx, "%d to download, %d to move, %d removed upstream (left in place)",
		len(plan.Downloads), len(plan.Moves), plan.RemovedCount)

	for _, op := range plan.Downloads {
		logger.Infof(ctx, "  download: %q (%s)", op.Track.Title, op.Reason)
	}

	return nil
}
