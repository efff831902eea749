package processor

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var (
	silenceStartPattern = regexp.MustCompile(`silence_start:\s*(-?\d+(?:\.\d+)?)`)
	silenceEndPattern   = regexp.MustCompile(`silence_end:\s*(-?\d+(?:\.\d+)?)`)
)

type silenceInterval struct {
	start time.Duration
	end   time.Duration
}

// detectSilence runs ffmpeg's silencedetect filter over path and returns the
// container duration plus every detected silent interval, in order.
func (p *Processor) detectSilence(ctx context.Context, path string) (time.Duration, []silenceInterval, error) {
	filter := fmt.Sprintf("silencedetect=noise=%gdB:d=%s", p.opts.SilenceThresholdDB, formatSeconds(p.opts.MinSilenceDuration))

	output, _ := p.run(ctx, p.ffmpegPath, "-i", path, "-af", filter, "-f", "null", "-")

	duration, ok := parseContainerDuration(output)
	if !ok {
		return 0, nil, fmt.Errorf("could not determine duration of %s", path)
	}

	starts := silenceStartPattern.FindAllSubmatch(output, -1)
	ends := silenceEndPattern.FindAllSubmatch(output, -1)

	intervals := make([]silenceInterval, 0, len(starts))

	for i, s := range starts {
		startSecs, err := strconv.ParseFloat(string(s[1]), 64)
		if err != nil {
			continue
		}

		interval := silenceInterval{start: secondsToDuration(startSecs), end: duration}
		if i < len(ends) {
			if endSecs, err := strconv.ParseFloat(string(ends[i][1]), 64); err == nil {
				interval.end = secondsToDuration(endSecs)
			}
		}

		intervals = append(intervals, interval)
	}

	return duration, intervals, nil
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// trimBounds computes the [keepStart, keepEnd) window that should survive
// trimming, given the track's total duration and its detected silent
// intervals. Only leading and trailing silence is considered: interior
// silence (between two verses, say) is left untouched.
func trimBounds(duration time.Duration, intervals []silenceInterval, padding time.Duration) (keepStart, keepEnd time.Duration) {
	keepStart = 0
	keepEnd = duration

	if len(intervals) == 0 {
		return keepStart, keepEnd
	}

	leading := intervals[0]
	if leading.start <= padding {
		keepStart = leading.end - padding
		if keepStart < 0 {
			keepStart = 0
		}
	}

	trailing := intervals[len(intervals)-1]
	if duration-trailing.end <= padding {
		keepEnd = trailing.start + padding
		if keepEnd > duration {
			keepEnd = duration
		}
	}

	if keepEnd < keepStart {
		keepEnd = keepStart
	}

	return keepStart, keepEnd
}

// TrimSilence removes leading and trailing silence from the audio at path,
// rewriting it in place with a stream copy (no re-encode) only when the amount removed clears
// Options.MinSilenceRemoved. Interior silence is left alone.
func (p *Processor) TrimSilence(ctx context.Context, path string) error {
	if !p.available {
		return nil
	}

	duration, intervals, err := p.detectSilence(ctx, path)
	if err != nil {
		return err
	}

	keepStart, keepEnd := trimBounds(duration, intervals, p.opts.Padding)

	removed := duration - (keepEnd - keepStart)
	if removed < p.opts.MinSilenceRemoved {
		return nil
	}

	tmpPath := stagedSiblingPath(path, ".trimmed")

	args := []string{
		"-y",
		"-i", path,
		"-ss", formatSeconds(keepStart),
		"-to", formatSeconds(keepEnd),
		"-c", "copy",
		tmpPath,
	}

	if _, err := p.run(ctx, p.ffmpegPath, args...); err != nil {
		return fmt.Errorf("trim silence: %w", err)
	}

	return replaceInPlace(path, tmpPath)
}
