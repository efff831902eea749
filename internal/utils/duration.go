package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatDurationClock renders a duration as m:ss, or h:mm:ss once it reaches
// an hour, matching the manifest's `<mm:ss>` / `<h:mm:ss>` track-line format.
func FormatDurationClock(d time.Duration) string {
	totalSeconds := int64(d.Round(time.Second) / time.Second)
	if totalSeconds < 0 {
		totalSeconds = 0
	}

	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}

	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

// ParseDurationClock parses a `m:ss`, `mm:ss`, or `h:mm:ss` clock string into
// a time.Duration. It tolerates surrounding whitespace.
func ParseDurationClock(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)

	parts := strings.Split(s, ":")

	var hours, minutes, seconds int64

	var err error

	switch len(parts) {
	case 2:
		minutes, err = strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid minutes in duration %q: %w", s, err)
		}

		seconds, err = strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid seconds in duration %q: %w", s, err)
		}
	case 3:
		hours, err = strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid hours in duration %q: %w", s, err)
		}

		minutes, err = strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid minutes in duration %q: %w", s, err)
		}

		seconds, err = strconv.ParseInt(parts[2], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid seconds in duration %q: %w", s, err)
		}
	default:
		return 0, fmt.Errorf("duration %q is not in m:ss, mm:ss, or h:mm:ss form", s)
	}

	total := hours*3600 + minutes*60 + seconds

	return time.Duration(total) * time.Second, nil
}
