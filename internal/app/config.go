package app

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/nmartins/melodysync/internal/config"
	"github.com/nmartins/melodysync/internal/logger"
)

// configDump is the subset of config.Config printed by ExecuteConfigShowCommand.
// Secrets (client id/secret, lyrics api keys) are deliberately omitted.
type configDump struct {
	OutputDirectory   string   `yaml:"output_directory"`
	Format            string   `yaml:"format"`
	Quality           string   `yaml:"quality"`
	Concurrency       int      `yaml:"concurrency"`
	RetryAttempts     int      `yaml:"retry_attempts"`
	TrimSilence       bool     `yaml:"trim_silence"`
	Normalize         bool     `yaml:"normalize"`
	ScoreThreshold    float64  `yaml:"score_threshold"`
	PreferOfficial    bool     `yaml:"prefer_official"`
	ExcludeLive       bool     `yaml:"exclude_live"`
	ExcludeCovers     bool     `yaml:"exclude_covers"`
	LyricsEnabled     bool     `yaml:"lyrics_enabled"`
	PrimarySource     string   `yaml:"primary_source"`
	FallbackSources   []string `yaml:"fallback_sources"`
	AutoSync          bool     `yaml:"auto_sync"`
	DetectMovedTracks bool     `yaml:"detect_moved_tracks"`
	TrackFormat       string   `yaml:"track_format"`
}

// ExecuteConfigShowCommand prints the effective, non-secret configuration as YAML.
func ExecuteConfigShowCommand(ctx context.Context, cfg *config.Config) error {
	dump := configDump{
		OutputDirectory:   cfg.OutputDirectory,
		Format:            cfg.Format,
		Quality:           cfg.Quality,
		Concurrency:       cfg.Concurrency,
		RetryAttempts:     cfg.RetryAttempts,
		TrimSilence:       cfg.TrimSilence,
		Normalize:         cfg.Normalize,
		ScoreThreshold:    cfg.ScoreThreshold,
		PreferOfficial:    cfg.PreferOfficial,
		ExcludeLive:       cfg.ExcludeLive,
		ExcludeCovers:     cfg.ExcludeCovers,
		LyricsEnabled:     cfg.LyricsEnabled,
		PrimarySource:     cfg.PrimarySource,
		FallbackSources:   cfg.FallbackSources,
		AutoSync:          cfg.AutoSync,
		DetectMovedTracks: cfg.DetectMovedTracks,
		TrackFormat:       cfg.TrackFormat,
	}

	out, err := yaml.Marshal(dump)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	logger.Info(ctx, string(out))

	return nil
}

// ExecuteConfigSetCommand updates a single configuration key in the config
// file on disk. It does not validate the new value; an invalid value (e.g. an
// invalid format or a negative concurrency) is only rejected when the
// configuration is next loaded and validated.
func ExecuteConfigSetCommand(ctx context.Context, key, value string) error {
	if err := config.SaveConfig(nil, key, value); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}

	logger.Infof(ctx, "%s = %s", key, value)

	return nil
}
