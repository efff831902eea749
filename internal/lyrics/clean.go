package lyrics

import (
	"regexp"
	"strings"
)

// sectionMarkerPattern matches bracketed structure markers such as
// [Verse 1], [Chorus], [Bridge], [Intro], [Outro].
var sectionMarkerPattern = regexp.MustCompile(`(?i)^\s*\[[^\]]*\]\s*$`)

// blankLinePattern collapses runs of two or more blank lines to one.
var blankLinePattern = regexp.MustCompile(`\n{3,}`)

// CleanLyrics strips bracketed section markers and collapses blank lines.
func CleanLyrics(text string) string {
	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))

	for _, line := range lines {
		if sectionMarkerPattern.MatchString(line) {
			continue
		}

		kept = append(kept, strings.TrimRight(line, " \t"))
	}

	cleaned := strings.Join(kept, "\n")
	cleaned = blankLinePattern.ReplaceAllString(cleaned, "\n\n")

	return strings.TrimSpace(cleaned)
}
