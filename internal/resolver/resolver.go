// Package resolver matches a (artist, title, duration, album) tuple against
// a secondary catalog's search results, scoring and ranking candidates
// through a strict-then-permissive cascade.
package resolver

import (
	"context"
	"sort"

	"github.com/nmartins/melodysync/internal/client/secondary"
	"github.com/nmartins/melodysync/internal/errs"
	"github.com/nmartins/melodysync/internal/logger"
)

const (
	// StrictThreshold is the minimum total score accepted in the strict phase.
	StrictThreshold = 65.0
	// PermissiveThreshold is the minimum total score accepted in the permissive phase.
	PermissiveThreshold = 45.0
	// EarlyExitCount is the number of sufficiently-high-scoring candidates that
	// stops strict-phase query execution early.
	EarlyExitCount = 3
	// EarlyExitScore is the score a candidate must reach to count toward EarlyExitCount.
	EarlyExitScore = 85.0
)

// Options parameterizes scoring and thresholds from configuration.
type Options struct {
	DurationToleranceSecs int
	PreferOfficial        bool // audio is preferred over a music-video result
	ExcludeLive           bool
	ExcludeCovers         bool
}

// Match is the resolver's chosen candidate for a Target.
type Match struct {
	Candidate secondary.Candidate
	Score     ScoreBreakdown
}

// Resolve runs the strict phase, falling back to the permissive phase only if
// strict yields nothing, and returns the best-scoring candidate overall.
func Resolve(ctx context.Context, client secondary.Client, target Target, opts Options) (*Match, error) {
	strict, err := runPhase(ctx, client, target, opts, false, StrictThreshold)
	if err != nil {
		return nil, err
	}

	if len(strict) > 0 {
		return &strict[0], nil
	}

	permissive, err := runPhase(ctx, client, target, opts, true, PermissiveThreshold)
	if err != nil {
		return nil, err
	}

	if len(permissive) == 0 {
		return nil, errs.ErrNoMatch
	}

	return &permissive[0], nil
}

// runPhase executes a phase's query set sequentially, deduplicates candidates
// by id, retains those at or above threshold, and returns them sorted
// descending by total score. Strict-phase queries stop early once
// EarlyExitCount candidates have scored at or above EarlyExitScore.
func runPhase(
	ctx context.Context,
	client secondary.Client,
	target Target,
	opts Options,
	permissive bool,
	threshold float64,
) ([]Match, error) {
	normArtist := NormalizeArtist(target.Artist)
	normTitle := NormalizeTitle(target.Title)

	seen := make(map[string]bool)
	matches := make([]Match, 0, 8)
	highScoreCount := 0

	for _, query := range buildQueries(target, permissive) {
		candidates, err := client.Search(ctx, query)
		if err != nil {
			return nil, errs.Wrap(errs.KindResolver, "secondary catalog search failed", err)
		}

		for _, candidate := range candidates {
			if seen[candidate.ID] {
				continue
			}

			seen[candidate.ID] = true

			breakdown := scoreCandidate(
				normArtist, normTitle, target.DurationSecs, candidate,
				opts.DurationToleranceSecs, opts.PreferOfficial, opts.ExcludeLive, opts.ExcludeCovers)

			if breakdown.Total < threshold {
				continue
			}

			matches = append(matches, Match{Candidate: candidate, Score: breakdown})

			if breakdown.Total >= EarlyExitScore {
				highScoreCount++
			}
		}

		if !permissive && highScoreCount >= EarlyExitCount {
			logger.Debugf(ctx, "resolver: early exit after %d high-scoring candidates", highScoreCount)

			break
		}
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score.Total > matches[j].Score.Total })

	return matches, nil
}
