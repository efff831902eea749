// Package app wires the synchronizer's components into the operations the
// CLI surface exposes: auth status, sync/download, check, list, lyrics
// download, config show/set, and doctor. It owns no domain logic of its
// own — everything here is construction and thin orchestration over
// internal/sync, internal/auth, and the catalog/lyrics clients.
package app

import (
	"context"
	"net/http"

	"github.com/nmartins/melodysync/internal/auth"
	"github.com/nmartins/melodysync/internal/client/secondary"
	"github.com/nmartins/melodysync/internal/client/source"
	"github.com/nmartins/melodysync/internal/config"
	"github.com/nmartins/melodysync/internal/downloader"
	"github.com/nmartins/melodysync/internal/lyrics"
	"github.com/nmartins/melodysync/internal/lyrics/providers"
	"github.com/nmartins/melodysync/internal/processor"
	"github.com/nmartins/melodysync/internal/sync"
	"github.com/nmartins/melodysync/internal/tagger"
)

// Runtime holds every component a CLI operation needs, built once from a
// loaded and validated config.Config.
type Runtime struct {
	Config          *config.Config
	TokenSource     auth.TokenSource
	SourceClient    source.Client
	SecondaryClient secondary.Client
	Downloader      *downloader.Downloader
	LyricsResolver  *lyrics.Resolver
	CoverHTTPClient *http.Client
	Runner          *sync.Runner
}

// NewRuntime constructs a Runtime from cfg. It performs no network calls;
// the token source authenticates lazily on first use.
func NewRuntime(_ context.Context, cfg *config.Config) *Runtime {
	tokenSource := auth.NewClientCredentialsTokenSource(
		&http.Client{Timeout: cfg.ParsedTimeout}, cfg.SourceTokenURL, cfg.SourceClientID, cfg.SourceClientSecret)

	sourceClient := source.NewClient(cfg.SourceBaseURL, source.NewHTTPClient(cfg.ParsedTimeout), tokenSource)

	var secondaryClient secondary.Client = secondary.NewClient(
		cfg.SecondaryBaseURL, secondary.NewHTTPClient(cfg.ParsedTimeout))
	secondaryClient = secondary.NewCachingClient(secondaryClient)

	extractor := secondary.NewDownloadExtractor(secondaryClient, &http.Client{Timeout: cfg.ParsedTimeout})

	dl := downloader.New(extractor, downloader.Options{
		StagingDir:      stagingDir(cfg),
		FormatCascade:   sync.FormatCascade(cfg),
		MinDurationSecs: cfg.MinDurationSecs,
		MaxDurationSecs: cfg.MaxDurationSecs,
		OutputExtension: sync.OutputExtension(cfg),
		RetryAttempts:   cfg.RetryAttempts,
	})

	lyricsResolver := buildLyricsResolver(cfg)

	var proc *processor.Processor
	if cfg.TrimSilence || cfg.Normalize {
		proc = processor.New(processor.DefaultOptions())
	}

	deps := sync.Deps{
		SourceClient:    sourceClient,
		SecondaryClient: secondaryClient,
		Downloader:      dl,
		Tagger:          tagger.New(),
		LyricsResolver:  lyricsResolver,
		Processor:       proc,
		CoverHTTPClient: &http.Client{Timeout: cfg.ParsedTimeout},
		Config:          cfg,
	}

	return &Runtime{
		Config:          cfg,
		TokenSource:     tokenSource,
		SourceClient:    sourceClient,
		SecondaryClient: secondaryClient,
		Downloader:      dl,
		LyricsResolver:  lyricsResolver,
		CoverHTTPClient: deps.CoverHTTPClient,
		Runner:          sync.NewRunner(deps),
	}
}

// stagingDir is a process-wide scratch area for in-flight downloads, kept
// inside the output root so it shares the same filesystem (atomic rename
// into the final directory requires that).
func stagingDir(cfg *config.Config) string {
	return cfg.OutputDirectory + "/.staging"
}

// buildLyricsResolver wires the three providers the spec names: the
// credential-free default and the two credentialed fallbacks, keyed by
// config's api-key map. A provider left without a key simply reports itself
// unavailable and the resolver skips it.
func buildLyricsResolver(cfg *config.Config) *lyrics.Resolver {
	if !cfg.LyricsEnabled {
		return nil
	}

	providerList := []lyrics.Provider{
		providers.NewPlainSearchProvider(),
		providers.NewGeniusProvider(cfg.LyricsAPIKeys["genius"]),
		providers.NewMusixmatchProvider(cfg.LyricsAPIKeys["musixmatch"]),
	}

	return lyrics.NewResolver(providerList, cfg.PrimarySource, cfg.FallbackSources, cfg.MinLength)
}
