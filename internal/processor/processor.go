// Package processor applies optional post-download audio cleanup: trimming
// leading/trailing silence and normalizing loudness to an EBU R128 target.
// Both stages shell out to ffmpeg and degrade to a no-op when it is absent,
// since neither is required for a file to be a valid mirror of a track.
package processor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/nmartins/melodysync/internal/constants"
	"github.com/nmartins/melodysync/internal/logger"
)

// Options configures the silence-trim and loudness-normalization stages.
type Options struct {
	// SilenceThresholdDB is the noise floor below which audio is considered silent.
	SilenceThresholdDB float64
	// MinSilenceDuration is the minimum length of a quiet stretch to count as silence.
	MinSilenceDuration time.Duration
	// Padding is kept on either side of a trimmed silent stretch.
	Padding time.Duration
	// MinSilenceRemoved is the minimum amount of audio that must be cut for the
	// trim to be worth rewriting the file at all.
	MinSilenceRemoved time.Duration

	// LoudnessTargetLUFS is the EBU R128 integrated loudness target (I).
	LoudnessTargetLUFS float64
	// LoudnessTruePeak is the EBU R128 true peak ceiling (TP), in dBFS.
	LoudnessTruePeak float64
	// LoudnessRange is the EBU R128 loudness range target (LRA).
	LoudnessRange float64

	// FFmpegPath overrides the ffmpeg binary looked up on PATH.
	FFmpegPath string
}

// DefaultOptions returns the spec-mandated defaults for both stages.
func DefaultOptions() Options {
	return Options{
		SilenceThresholdDB: -40,
		MinSilenceDuration: 1000 * time.Millisecond,
		Padding:            500 * time.Millisecond,
		MinSilenceRemoved:  1 * time.Second,
		LoudnessTargetLUFS: -23,
		LoudnessTruePeak:   -1,
		LoudnessRange:      7,
	}
}

// commandRunner executes an external command and returns its combined
// stdout+stderr output. Swapped out in tests to avoid invoking ffmpeg.
type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func runExternalCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.CombinedOutput()
}

// Processor runs the post-download cleanup stages against a file in place.
type Processor struct {
	opts       Options
	ffmpegPath string
	available  bool
	run        commandRunner
}

// New resolves the ffmpeg binary and returns a Processor. It never fails:
// if ffmpeg cannot be found, the returned Processor's stages are no-ops.
func New(opts Options) *Processor {
	p := &Processor{opts: opts, run: runExternalCommand}

	path := opts.FFmpegPath
	if path == "" {
		path = "ffmpeg"
	}

	resolved, err := exec.LookPath(path)
	if err != nil {
		return p
	}

	p.ffmpegPath = resolved
	p.available = true

	return p
}

// Available reports whether ffmpeg was found and the stages will do real work.
func (p *Processor) Available() bool {
	return p.available
}

// Process runs silence trimming followed by loudness normalization against
// path. Both stages are best-effort: a missing ffmpeg binary or a detection
// failure is logged and treated as a skip, never a hard error.
func (p *Processor) Process(ctx context.Context, path string) error {
	if !p.available {
		logger.Debugf(ctx, "ffmpeg not available, skipping audio post-processing for %s", path)
		return nil
	}

	if err := p.TrimSilence(ctx, path); err != nil {
		logger.Warnf(ctx, "silence trim failed for %s: %v", path, err)
	}

	if err := p.NormalizeLoudness(ctx, path); err != nil {
		logger.Warnf(ctx, "loudness normalization failed for %s: %v", path, err)
	}

	return nil
}

// replaceInPlace atomically swaps tmpPath in as the contents of path,
// preserving path's name and permissions.
func replaceInPlace(path, tmpPath string) error {
	if err := os.Chmod(tmpPath, constants.DefaultFilePermissions); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("chmod staged output: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace %s with processed output: %w", path, err)
	}

	return nil
}

func stagedSiblingPath(path, suffix string) string {
	dir := filepath.Dir(path)
	return filepath.Join(dir, uuid.NewString()+suffix+filepath.Ext(path))
}

var durationPattern = regexp.MustCompile(`Duration:\s*(\d+):(\d+):(\d+(?:\.\d+)?)`)

func parseContainerDuration(ffmpegOutput []byte) (time.Duration, bool) {
	m := durationPattern.FindSubmatch(ffmpegOutput)
	if m == nil {
		return 0, false
	}

	hours, _ := strconv.Atoi(string(m[1]))
	minutes, _ := strconv.Atoi(string(m[2]))
	seconds, _ := strconv.ParseFloat(string(m[3]), 64)

	total := time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds*float64(time.Second))

	return total, true
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}
