// Package config loads and validates the synchronizer's configuration
// surface from a YAML file via viper, deriving parsed fields (durations,
// byte sizes, log levels) the way the rest of the pipeline consumes them.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/nmartins/melodysync/internal/constants"
	"github.com/nmartins/melodysync/internal/logger"
	"github.com/nmartins/melodysync/internal/utils"
)

// Config holds all configuration settings consumed by the sync pipeline.
type Config struct {
	// --- Output ---

	// OutputDirectory is the root directory playlists are mirrored into (tilde-expanded).
	OutputDirectory string `mapstructure:"output_directory"`
	// Format is the output audio format: mp3, flac, or m4a.
	Format string `mapstructure:"format"`
	// Quality is a coarse hint (low, medium, high); Bitrate takes precedence when set.
	Quality string `mapstructure:"quality"`
	// Bitrate is the target encode bitrate in kbps, if the format supports one.
	Bitrate int `mapstructure:"bitrate"`
	// Concurrency is the max number of tracks downloaded simultaneously.
	Concurrency int `mapstructure:"concurrency"`
	// RetryAttempts is the outer retry count for a failed download operation.
	RetryAttempts int `mapstructure:"retry_attempts"`
	// TimeoutSeconds is the per-request HTTP timeout, in seconds.
	TimeoutSeconds int `mapstructure:"timeout"`

	// --- Audio ---

	TrimSilence     bool `mapstructure:"trim_silence"`
	Normalize       bool `mapstructure:"normalize"`
	MinDurationSecs int  `mapstructure:"min_duration"`
	MaxDurationSecs int  `mapstructure:"max_duration"`
	SampleRate      int  `mapstructure:"sample_rate"`
	Channels        int  `mapstructure:"channels"`

	// --- Secondary catalog ---

	MaxResults          int     `mapstructure:"max_results"`
	ScoreThreshold      float64 `mapstructure:"score_threshold"`
	PreferOfficial      bool    `mapstructure:"prefer_official"`
	ExcludeLive         bool    `mapstructure:"exclude_live"`
	ExcludeCovers       bool    `mapstructure:"exclude_covers"`
	DurationToleranceSecs int   `mapstructure:"duration_tolerance"`

	// --- Lyrics ---

	LyricsEnabled          bool     `mapstructure:"enabled"`
	DownloadSeparateFiles  bool     `mapstructure:"download_separate_files"`
	EmbedInAudio           bool     `mapstructure:"embed_in_audio"`
	LyricsFormat           string   `mapstructure:"format_lyrics"`
	PrimarySource          string   `mapstructure:"primary_source"`
	FallbackSources        []string `mapstructure:"fallback_sources"`
	CleanLyrics            bool     `mapstructure:"clean_lyrics"`
	MinLength              int      `mapstructure:"min_length"`
	LyricsTimeoutSeconds   int      `mapstructure:"lyrics_timeout"`
	MaxAttempts            int      `mapstructure:"max_attempts"`
	SimilarityThreshold    float64  `mapstructure:"similarity_threshold"`

	// --- Sync ---

	AutoSync          bool `mapstructure:"auto_sync"`
	SyncLyrics        bool `mapstructure:"sync_lyrics"`
	BackupTracklist   bool `mapstructure:"backup_tracklist"`
	DetectMovedTracks bool `mapstructure:"detect_moved_tracks"`

	// --- Metadata ---

	IncludeAlbumArt         bool   `mapstructure:"include_album_art"`
	IncludeSourceMetadata   bool   `mapstructure:"include_source_metadata"`
	PreserveOriginalTags    bool   `mapstructure:"preserve_original_tags"`
	AddComment              string `mapstructure:"add_comment"`
	ID3Version              int    `mapstructure:"id3_version"`
	Encoding                string `mapstructure:"encoding"`

	// --- Naming ---

	TrackFormat        string `mapstructure:"track_format"`
	SanitizeFilenames  bool   `mapstructure:"sanitize_filenames"`
	MaxFilenameLength  int    `mapstructure:"max_filename_length"`
	ReplaceSpaces      bool   `mapstructure:"replace_spaces"`

	// --- Endpoints ---

	// SourceBaseURL is the source catalog API's base URL.
	SourceBaseURL string `mapstructure:"source_base_url"`
	// SourceTokenURL is the OAuth2 client-credentials token endpoint for the source catalog.
	SourceTokenURL string `mapstructure:"source_token_url"`
	// SecondaryBaseURL is the secondary catalog's (match/download source) API base URL.
	SecondaryBaseURL string `mapstructure:"secondary_base_url"`

	// --- Secrets (sourced from environment, not the YAML file) ---

	SourceClientID     string `mapstructure:"-"`
	SourceClientSecret string `mapstructure:"-"`
	LyricsAPIKeys      map[string]string `mapstructure:"-"`

	// --- Logging ---

	LogLevel string `mapstructure:"log_level"`

	// --- Derived/parsed fields, populated by ValidateConfig ---

	ParsedLogLevel           zapcore.Level
	ParsedMinDuration        time.Duration
	ParsedMaxDuration        time.Duration
	ParsedDurationTolerance  time.Duration
	ParsedTimeout            time.Duration
	ParsedLyricsTimeout      time.Duration
	ParsedBitrateLimit       int64
}

// Environment variable names holding secrets; these are never read from the YAML file.
const (
	EnvSourceClientID     = "MELODYSYNC_SOURCE_CLIENT_ID"
	EnvSourceClientSecret = "MELODYSYNC_SOURCE_CLIENT_SECRET"
	// EnvLyricsAPIKeyPrefix + provider name (uppercased) yields the env var for that provider's key,
	// e.g. MELODYSYNC_LYRICS_API_KEY_MUSIXMATCH.
	EnvLyricsAPIKeyPrefix = "MELODYSYNC_LYRICS_API_KEY_"
)

const (
	// DefaultConfigFilename is the default name of the configuration file.
	DefaultConfigFilename = ".melodysync.yaml"

	// DefaultTrackFormat is the default filename template for downloaded tracks.
	DefaultTrackFormat = "{track} - {artist} - {title}"

	// DefaultMaxLogLength is the default maximum size (in bytes) for a single HTTP log dump.
	DefaultMaxLogLength = 1 * 1024 * 1024 // 1 MB

	// DefaultSourceBaseURL is the source catalog API's default base URL.
	DefaultSourceBaseURL = "https://api.source-catalog.example/v1"
	// DefaultSourceTokenURL is the source catalog's default OAuth2 token endpoint.
	DefaultSourceTokenURL = "https://auth.source-catalog.example/oauth/token"
	// DefaultSecondaryBaseURL is the secondary catalog's default API base URL.
	DefaultSecondaryBaseURL = "https://api.secondary-catalog.example/v1"

	validFormats = "mp3, flac, m4a"
)

// Static error definitions for validation failures.
var (
	ErrEmptyOutputDirectory  = errors.New("output_directory cannot be empty")
	ErrUnwritableOutputRoot  = errors.New("output_directory is not writable")
	ErrInvalidFormat         = fmt.Errorf("format must be one of: %s", validFormats)
	ErrInvalidConcurrency    = errors.New("concurrency must be a positive integer")
	ErrInvalidRetryAttempts  = errors.New("retry_attempts must be a positive integer")
	ErrInvalidMinDuration    = errors.New("min_duration must be positive")
	ErrInvalidMaxDuration    = errors.New("max_duration must be positive")
	ErrMaxDurationTooLow     = errors.New("max_duration must be greater than min_duration")
	ErrUnknownLogLevel       = errors.New("unknown log level")
	ErrMissingSourceSecret   = errors.New("source client id/secret must be set via environment")
	ErrInvalidScoreThreshold = errors.New("score_threshold must be in [0, 110]")
)

// LoadConfig loads configuration settings from a YAML file and overlays secrets from the environment.
func LoadConfig(configFilename string) (*Config, error) {
	if configFilename == "" {
		configFilename = DefaultConfigFilename
	}

	viper.SetConfigFile(configFilename)

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config from file: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	loadSecretsFromEnv(&cfg)

	return &cfg, nil
}

func loadSecretsFromEnv(cfg *Config) {
	cfg.SourceClientID = os.Getenv(EnvSourceClientID)
	cfg.SourceClientSecret = os.Getenv(EnvSourceClientSecret)

	cfg.LyricsAPIKeys = make(map[string]string)

	for _, provider := range append([]string{cfg.PrimarySource}, cfg.FallbackSources...) {
		if provider == "" {
			continue
		}

		envName := EnvLyricsAPIKeyPrefix + strings.ToUpper(provider)
		if key := os.Getenv(envName); key != "" {
			cfg.LyricsAPIKeys[provider] = key
		}
	}
}

// ValidateConfig checks the configuration for validity and sets derived fields.
//
//nolint:funlen,gocognit,cyclop // Validation functions naturally have high complexity and length due to sequential checks.
func ValidateConfig(cfg *Config) error {
	if cfg.OutputDirectory == "" {
		return ErrEmptyOutputDirectory
	}

	expanded, err := expandTilde(cfg.OutputDirectory)
	if err != nil {
		return fmt.Errorf("failed to expand output_directory: %w", err)
	}

	cfg.OutputDirectory = expanded

	if err = ensureWritable(cfg.OutputDirectory); err != nil {
		return fmt.Errorf("%w: %s", ErrUnwritableOutputRoot, err.Error())
	}

	switch cfg.Format {
	case "mp3", "flac", "m4a":
	default:
		return ErrInvalidFormat
	}

	if cfg.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	if cfg.RetryAttempts <= 0 {
		return ErrInvalidRetryAttempts
	}

	if cfg.MinDurationSecs <= 0 {
		return ErrInvalidMinDuration
	}

	cfg.ParsedMinDuration = time.Duration(cfg.MinDurationSecs) * time.Second

	if cfg.MaxDurationSecs <= 0 {
		return ErrInvalidMaxDuration
	}

	cfg.ParsedMaxDuration = time.Duration(cfg.MaxDurationSecs) * time.Second

	if cfg.ParsedMaxDuration <= cfg.ParsedMinDuration {
		return ErrMaxDurationTooLow
	}

	if cfg.ScoreThreshold < 0 || cfg.ScoreThreshold > 110 {
		return ErrInvalidScoreThreshold
	}

	cfg.ParsedDurationTolerance = time.Duration(cfg.DurationToleranceSecs) * time.Second

	parsedLogLevel, isLogLevelCorrect := logger.ParseLogLevel(cfg.LogLevel)
	if !isLogLevelCorrect {
		return fmt.Errorf("%w: '%s'", ErrUnknownLogLevel, cfg.LogLevel)
	}

	cfg.ParsedLogLevel = parsedLogLevel

	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = 30
	}

	cfg.ParsedTimeout = time.Duration(cfg.TimeoutSeconds) * time.Second

	if cfg.LyricsTimeoutSeconds <= 0 {
		cfg.LyricsTimeoutSeconds = 10
	}

	cfg.ParsedLyricsTimeout = time.Duration(cfg.LyricsTimeoutSeconds) * time.Second

	if cfg.MaxFilenameLength <= 0 {
		cfg.MaxFilenameLength = 200
	}

	// Bitrate is configured in kbps; derive the equivalent bytes-per-second
	// figure and log it. No other package reads ParsedBitrateLimit.
	if cfg.Bitrate > 0 {
		cfg.ParsedBitrateLimit = utils.SafeUint64ToInt64(uint64(cfg.Bitrate) * 1000 / 8)
		logger.Debugf(context.Background(), "configured bitrate ceiling: %s/s",
			humanize.Bytes(uint64(cfg.ParsedBitrateLimit)))
	}

	if cfg.SourceClientID == "" || cfg.SourceClientSecret == "" {
		return ErrMissingSourceSecret
	}

	if cfg.SourceBaseURL == "" {
		cfg.SourceBaseURL = DefaultSourceBaseURL
	}

	if cfg.SourceTokenURL == "" {
		cfg.SourceTokenURL = DefaultSourceTokenURL
	}

	if cfg.SecondaryBaseURL == "" {
		cfg.SecondaryBaseURL = DefaultSecondaryBaseURL
	}

	return nil
}

func expandTilde(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

func ensureWritable(dir string) error {
	if err := os.MkdirAll(dir, constants.DefaultFolderPermissions); err != nil {
		return err
	}

	probe := filepath.Join(dir, ".melodysync_write_probe")

	file, err := os.Create(filepath.Clean(probe)) //nolint:gosec // Path is config-sourced, not user input.
	if err != nil {
		return err
	}

	_ = file.Close()

	return os.Remove(probe)
}

// SaveConfig saves the configuration to the file while preserving the original format and order.
// Only the value of a matching top-level key that already exists in the file is rewritten; secrets are never
// persisted. cfg is not read.
func SaveConfig(cfg *Config, key string, value string) error {
	configFile := getConfigFilePath()

	originalContent, err := os.ReadFile(configFile)
	if err != nil {
		return handleMissingConfigFile(configFile, key, value, err)
	}

	var node yaml.Node
	if err = yaml.Unmarshal(originalContent, &node); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	updateValueInNode(&node, key, value)

	newContent, err := yaml.Marshal(&node)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err = os.WriteFile(configFile, newContent, constants.DefaultFilePermissions); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func getConfigFilePath() string {
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		return DefaultConfigFilename
	}

	return configFile
}

func handleMissingConfigFile(configFile, key, value string, err error) error {
	if !os.IsNotExist(err) {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	viper.Set(key, value)

	if err = viper.SafeWriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	return nil
}

func updateValueInNode(node *yaml.Node, key, value string) {
	if len(node.Content) == 0 || node.Content[0].Kind != yaml.MappingNode {
		return
	}

	mapNode := node.Content[0]

	for i := 0; i < len(mapNode.Content); i += 2 {
		keyNode := mapNode.Content[i]
		valueNode := mapNode.Content[i+1]

		if keyNode.Value == key {
			valueNode.Value = value

			if valueNode.Style == 0 {
				valueNode.Style = yaml.DoubleQuotedStyle
			}

			break
		}
	}
}
