// Package lyrics resolves plain and synchronized lyrics for a track across
// an ordered set of providers, validating and scoring results, and
// optionally writing them to separate files alongside the audio.
package lyrics

import "context"

// Result is a resolved lyrics lookup.
type Result struct {
	Plain      string
	Synced     string // LRC-formatted, empty when unavailable
	Source     string
	Confidence float64
}

// Provider is the minimal capability every lyrics source must implement.
type Provider interface {
	// Name identifies the provider in Result.Source and configuration.
	Name() string
	// Available reports whether the provider has what it needs to run
	// (credentials, reachable endpoint). An unavailable provider is skipped.
	Available() bool
	// SearchLyrics returns plain lyrics text, or "" if no match was found.
	SearchLyrics(ctx context.Context, artist, title, album string) (string, error)
}

// SyncedProvider is implemented by providers that can also return
// LRC-formatted synchronized lyrics.
type SyncedProvider interface {
	Provider
	SearchSynced(ctx context.Context, artist, title string) (string, error)
}
