// Package downloader fetches audio for a resolved secondary-catalog
// candidate through an ordered format cascade, staging it atomically into
// its final location and reporting progress.
package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"

	"github.com/nmartins/melodysync/internal/constants"
	"github.com/nmartins/melodysync/internal/errs"
	"github.com/nmartins/melodysync/internal/logger"
)

// startThrottleIntervalMs is the minimum gap enforced between download starts.
const startThrottleIntervalMs = 500

// progressLogEveryBytes throttles progress logging to roughly once per megabyte.
const progressLogEveryBytes = 1 << 20

// FormatSelector names one rung of the format cascade, most-specific/high-quality first.
type FormatSelector string

// Metadata is the pre-download, no-bytes-fetched description of a candidate's stream.
type Metadata struct {
	DurationSecs  int
	ContentLength int64
}

// Extractor resolves a (candidateID, FormatSelector) pair to stream metadata
// and, separately, to the stream itself. A format-availability error (see
// isFormatUnavailable) advances the cascade instead of failing the attempt.
type Extractor interface {
	ExtractMetadata(ctx context.Context, candidateID string, selector FormatSelector) (*Metadata, error)
	OpenStream(ctx context.Context, candidateID string, selector FormatSelector) (io.ReadCloser, error)
}

// Status is a progress event's download phase.
type Status int

// Status values.
const (
	StatusDownloading Status = iota
	StatusFinished
	StatusError
)

// ProgressEvent reports download progress for a single candidate id. Events
// for a given id are emitted strictly in order; a Finished or Error event
// never precedes that id's final Downloading event.
type ProgressEvent struct {
	CandidateID     string
	BytesDownloaded int64
	TotalBytes      int64
	Speed           float64 // bytes/sec
	ETA             time.Duration
	Status          Status
}

// ProgressFunc receives ordered ProgressEvents for one Download call.
type ProgressFunc func(ProgressEvent)

// Options configures a Downloader.
type Options struct {
	StagingDir         string
	FormatCascade      []FormatSelector
	MinDurationSecs    int
	MaxDurationSecs    int
	OutputExtension    string // e.g. ".mp3", including the leading dot
	RetryAttempts      int
	RetryBaseDelay     time.Duration
	RetryBackoffFactor float64
}

// Downloader fetches audio through the format cascade into a shared staging
// area, then atomically renames into the caller's target directory.
type Downloader struct {
	opts      Options
	extractor Extractor

	startThrottle *rate.Limiter

	mu            sync.Mutex // guards metadataCache
	metadataCache map[string]*Metadata
}

// New creates a Downloader. extractor resolves candidates to streams for
// each cascade selector.
func New(extractor Extractor, opts Options) *Downloader {
	if opts.RetryAttempts <= 0 {
		opts.RetryAttempts = 3
	}

	if opts.RetryBaseDelay <= 0 {
		opts.RetryBaseDelay = 2 * time.Second
	}

	if opts.RetryBackoffFactor <= 0 {
		opts.RetryBackoffFactor = 2
	}

	return &Downloader{
		opts:          opts,
		extractor:     extractor,
		startThrottle: rate.NewLimiter(rate.Every(startThrottleIntervalMs*time.Millisecond), 1),
		metadataCache: make(map[string]*Metadata),
	}
}

// formatUnavailableMarker is implemented by extractor errors that should
// advance the format cascade instead of failing the attempt outright.
type formatUnavailableMarker interface {
	FormatUnavailable() bool
}

// FormatUnavailableError wraps a cause that should advance the cascade:
// "format not available", HTTP 403, HTTP 429, or "unable to extract".
type FormatUnavailableError struct {
	Selector FormatSelector
	Cause    error
}

func (e *FormatUnavailableError) Error() string {
	return fmt.Sprintf("format %s unavailable: %v", e.Selector, e.Cause)
}

func (e *FormatUnavailableError) Unwrap() error { return e.Cause }

// FormatUnavailable marks this error as cascade-advancing.
func (e *FormatUnavailableError) FormatUnavailable() bool { return true }

// Download fetches candidateID to basePath+extension (no extension supplied
// by the caller), retrying the whole operation with exponential backoff on
// any error other than a duration rejection or an exhausted format cascade,
// and reports progress via onProgress if non-nil.
func (d *Downloader) Download(
	ctx context.Context, candidateID, basePath string, onProgress ProgressFunc,
) (string, error) {
	if err := d.startThrottle.Wait(ctx); err != nil {
		return "", err
	}

	delay := d.opts.RetryBaseDelay

	var lastErr error

	for attempt := 0; attempt < d.opts.RetryAttempts; attempt++ {
		if attempt > 0 {
			logger.Infof(ctx, "download %s: retrying attempt %d/%d after %s", candidateID, attempt+1,
				d.opts.RetryAttempts, delay)

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", ctx.Err()
			}

			delay = time.Duration(float64(delay) * d.opts.RetryBackoffFactor)
		}

		finalPath, err := d.attempt(ctx, candidateID, basePath, onProgress)
		if err == nil {
			return finalPath, nil
		}

		lastErr = err

		if errors.Is(err, errs.ErrTrackTooShort) || errors.Is(err, errs.ErrTrackTooLong) ||
			errors.Is(err, errs.ErrFormatsExhausted) {
			return "", err // classification and format errors are not retried.
		}
	}

	return "", errs.Wrap(errs.KindDownload, "download failed after retries", lastErr)
}

func (d *Downloader) attempt(
	ctx context.Context, candidateID, basePath string, onProgress ProgressFunc,
) (string, error) {
	meta, err := d.cachedMetadata(ctx, candidateID)
	if err != nil {
		return "", err
	}

	if err = d.validateDuration(meta.DurationSecs); err != nil {
		return "", err
	}

	stagingPath := filepath.Join(d.opts.StagingDir, candidateID+"-"+uuid.NewString()+".staged")

	succeeded := false

	defer func() {
		if !succeeded {
			_ = os.Remove(stagingPath)
		}
	}()

	if err = d.stream(ctx, candidateID, stagingPath, meta, onProgress); err != nil {
		if onProgress != nil {
			onProgress(ProgressEvent{CandidateID: candidateID, Status: StatusError})
		}

		return "", err
	}

	finalPath, err := d.finalize(stagingPath, basePath)
	if err != nil {
		if onProgress != nil {
			onProgress(ProgressEvent{CandidateID: candidateID, Status: StatusError})
		}

		return "", err
	}

	succeeded = true

	if onProgress != nil {
		onProgress(ProgressEvent{CandidateID: candidateID, BytesDownloaded: meta.ContentLength,
			TotalBytes: meta.ContentLength, Status: StatusFinished})
	}

	return finalPath, nil
}

func (d *Downloader) cachedMetadata(ctx context.Context, candidateID string) (*Metadata, error) {
	d.mu.Lock()
	cached, ok := d.metadataCache[candidateID]
	d.mu.Unlock()

	if ok {
		return cached, nil
	}

	for _, selector := range d.opts.FormatCascade {
		meta, err := d.extractor.ExtractMetadata(ctx, candidateID, selector)
		if err == nil {
			d.mu.Lock()
			d.metadataCache[candidateID] = meta
			d.mu.Unlock()

			return meta, nil
		}

		if !isFormatUnavailable(err) {
			return nil, errs.Wrap(errs.KindDownload, "failed to extract metadata", err)
		}
	}

	return nil, errs.ErrFormatsExhausted
}

func (d *Downloader) validateDuration(durationSecs int) error {
	if d.opts.MinDurationSecs > 0 && durationSecs < d.opts.MinDurationSecs {
		return errs.ErrTrackTooShort
	}

	if d.opts.MaxDurationSecs > 0 && durationSecs > d.opts.MaxDurationSecs {
		return errs.ErrTrackTooLong
	}

	return nil
}

func (d *Downloader) stream(
	ctx context.Context, candidateID, stagingPath string, meta *Metadata, onProgress ProgressFunc,
) error {
	var lastErr error

	for _, selector := range d.opts.FormatCascade {
		body, err := d.extractor.OpenStream(ctx, candidateID, selector)
		if err != nil {
			if isFormatUnavailable(err) {
				lastErr = err

				continue
			}

			return errs.Wrap(errs.KindDownload, "failed to open stream", err)
		}

		err = d.copyToFile(candidateID, stagingPath, body, meta.ContentLength, onProgress)
		body.Close() //nolint:errcheck // Error on close is not critical here.

		if err != nil {
			return errs.Wrap(errs.KindDownload, "failed to write staged file", err)
		}

		return nil
	}

	return errs.Wrap(errs.KindDownload, "all format selectors exhausted", lastErr)
}

func (d *Downloader) copyToFile(
	candidateID, stagingPath string, body io.Reader, totalBytes int64, onProgress ProgressFunc,
) error {
	file, err := os.OpenFile(filepath.Clean(stagingPath),
		os.O_CREATE|os.O_TRUNC|os.O_WRONLY, constants.DefaultFilePermissions)
	if err != nil {
		return err
	}

	defer file.Close() //nolint:errcheck // Error on close is not critical here.

	var writer io.Writer = file

	var bar *progressbar.ProgressBar

	if logger.Level() <= zapcore.InfoLevel {
		bar = progressbar.DefaultBytes(totalBytes, "downloading "+candidateID)
		writer = io.MultiWriter(file, bar)
	}

	tracker := &progressTracker{
		candidateID: candidateID, totalBytes: totalBytes, onProgress: onProgress, start: time.Now(),
	}
	writer = io.MultiWriter(writer, tracker)

	_, err = io.Copy(writer, body)

	return err
}

// progressTracker implements io.Writer, emitting a throttled Downloading
// ProgressEvent roughly once per megabyte written.
type progressTracker struct {
	candidateID     string
	totalBytes      int64
	onProgress      ProgressFunc
	start           time.Time
	written         int64
	sinceLastReport int64
}

func (t *progressTracker) Write(p []byte) (int, error) {
	n := len(p)
	t.written += int64(n)
	t.sinceLastReport += int64(n)

	if t.onProgress != nil && t.sinceLastReport >= progressLogEveryBytes {
		t.sinceLastReport = 0

		elapsed := time.Since(t.start).Seconds()

		speed := 0.0
		if elapsed > 0 {
			speed = float64(t.written) / elapsed
		}

		var eta time.Duration
		if speed > 0 && t.totalBytes > t.written {
			eta = time.Duration(float64(t.totalBytes-t.written)/speed) * time.Second
		}

		t.onProgress(ProgressEvent{
			CandidateID: t.candidateID, BytesDownloaded: t.written, TotalBytes: t.totalBytes,
			Speed: speed, ETA: eta, Status: StatusDownloading,
		})
	}

	return n, nil
}

// finalize atomically renames the staged file to <basePath><ext>, appending
// _1, _2, … on collision.
func (d *Downloader) finalize(stagingPath, basePath string) (string, error) {
	target := basePath + d.opts.OutputExtension

	for suffix := 0; ; suffix++ {
		candidate := target
		if suffix > 0 {
			candidate = basePath + "_" + strconv.Itoa(suffix) + d.opts.OutputExtension
		}

		if _, err := os.Stat(candidate); errors.Is(err, os.ErrNotExist) {
			if err = os.Rename(stagingPath, candidate); err != nil {
				return "", err
			}

			return candidate, nil
		}
	}
}

// CleanStaging purges staged files in the staging directory older than olderThan.
// It is invoked once at planner startup rather than on a background timer.
func (d *Downloader) CleanStaging(ctx context.Context, olderThan time.Duration) error {
	entries, err := os.ReadDir(d.opts.StagingDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}

		return err
	}

	cutoff := time.Now().Add(-olderThan)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if info.ModTime().Before(cutoff) {
			path := filepath.Join(d.opts.StagingDir, entry.Name())

			if err = os.Remove(path); err != nil {
				logger.Warnf(ctx, "failed to remove stale staging file %s: %v", path, err)
			}
		}
	}

	return nil
}

func isFormatUnavailable(err error) bool {
	var marker formatUnavailableMarker
	if errors.As(err, &marker) {
		return marker.FormatUnavailable()
	}

	return false
}
