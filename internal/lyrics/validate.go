package lyrics

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
)

// DefaultMinLength is the minimum accepted lyrics length in characters.
const DefaultMinLength = 50

// minAlphanumericFraction is the minimum fraction of alphanumeric-or-whitespace
// characters a lyrics block must have to be accepted.
const minAlphanumericFraction = 0.70

// ErrTooShort indicates the lyrics text is shorter than the configured minimum.
var ErrTooShort = errors.New("lyrics text is shorter than the minimum accepted length")

// ErrNoLyricsPhrase indicates the text is a known "no lyrics available" placeholder.
var ErrNoLyricsPhrase = errors.New("lyrics text indicates no lyrics are available")

// ErrNotEnoughText indicates too much of the text is non-alphanumeric noise.
var ErrNotEnoughText = errors.New("lyrics text is mostly non-alphanumeric content")

// noLyricsPhrases are substrings (case-insensitive) that mark placeholder content.
var noLyricsPhrases = []string{
	"instrumental",
	"no lyrics",
	"music only",
	"lyrics not available",
	"purely instrumental",
}

// Validate applies the length, placeholder-phrase, and content-density checks.
func Validate(text string, minLength int) error {
	if minLength <= 0 {
		minLength = DefaultMinLength
	}

	trimmed := strings.TrimSpace(text)

	if len(trimmed) < minLength {
		return ErrTooShort
	}

	lower := strings.ToLower(trimmed)
	for _, phrase := range noLyricsPhrases {
		if strings.Contains(lower, phrase) {
			return ErrNoLyricsPhrase
		}
	}

	if alphanumericFraction(trimmed) < minAlphanumericFraction {
		return ErrNotEnoughText
	}

	return nil
}

func alphanumericFraction(text string) float64 {
	if text == "" {
		return 0
	}

	var accepted int

	total := 0

	for _, r := range text {
		total++

		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			accepted++
		}
	}

	if total == 0 {
		return 0
	}

	return float64(accepted) / float64(total)
}

// structureMarkerPattern detects bracketed section markers in raw (uncleaned) text.
var structureMarkerPattern = regexp.MustCompile(`(?i)\[(verse|chorus|bridge|intro|outro|hook|pre-chorus)[^\]]*\]`)

// HasStructureMarker reports whether the raw lyrics text contains a
// recognizable section marker, used as a signal of well-formatted content.
func HasStructureMarker(rawText string) bool {
	return structureMarkerPattern.MatchString(rawText)
}

// ConfidenceScore implements 0.6*titleOverlap + 0.2*(len>=2*minLength) +
// 0.1*(hasStructureMarker) - 0.3*(len<minLength), clamped to [0, 1].
func ConfidenceScore(text, title string, minLength int, hasStructureMarker bool) float64 {
	if minLength <= 0 {
		minLength = DefaultMinLength
	}

	length := len(strings.TrimSpace(text))

	score := 0.6 * titleWordOverlapRatio(text, title)

	if length >= 2*minLength {
		score += 0.2
	}

	if hasStructureMarker {
		score += 0.1
	}

	if length < minLength {
		score -= 0.3
	}

	switch {
	case score < 0:
		return 0
	case score > 1:
		return 1
	default:
		return score
	}
}

// titleWordOverlapRatio is the fraction of the title's words found anywhere in text.
func titleWordOverlapRatio(text, title string) float64 {
	words := strings.Fields(strings.ToLower(title))
	if len(words) == 0 {
		return 0
	}

	lowerText := strings.ToLower(text)

	var found int

	for _, word := range words {
		if strings.Contains(lowerText, word) {
			found++
		}
	}

	return float64(found) / float64(len(words))
}
