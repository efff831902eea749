package utils

import (
	"math"
	"mime"
	"os"
	"regexp"
	"strings"
)

const (
	// ImageJPEGMimeType is the MIME type for JPEG images.
	ImageJPEGMimeType = "image/jpeg"

	// ImagePNGMimeType is the MIME type for PNG images.
	ImagePNGMimeType = "image/png"
)

var (
	// invalidCharsPattern includes ASCII control characters (0-31) and Windows-restricted characters: < > : " / \ | ? *.
	//nolint:gochecknoglobals // This is immutable, pre-compiled regex pattern and used as a constant.
	invalidCharsPattern = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1F]`)

	// textContentTypePatterns is a slice of regular expressions that match content types
	// considered to be text-based. This includes "text/*", "application/json", and
	// "application/samlmetadata+xml".
	//nolint:gochecknoglobals // These are immutable, pre-compiled regex patterns and used as constants.
	textContentTypePatterns = []*regexp.Regexp{
		regexp.MustCompile("^text/.+"),
		regexp.MustCompile("^application/json$"),
		regexp.MustCompile(`^application/samlmetadata\+xml`),
	}

	// windowsReservedNames is a map of filenames that are reserved on Windows systems.
	// These names are case-insensitive and cannot be used as filenames or folder names.
	// Examples include "CON", "PRN", "AUX", "NUL", and COM1-COM9, LPT1-LPT9.
	//nolint:gochecknoglobals // This is an immutable map used as a constant for validation purposes.
	windowsReservedNames = map[string]struct{}{
		"CON":  {},
		"PRN":  {},
		"AUX":  {},
		"NUL":  {},
		"COM1": {},
		"COM2": {},
		"COM3": {},
		"COM4": {},
		"COM5": {},
		"COM6": {},
		"COM7": {},
		"COM8": {},
		"COM9": {},
		"LPT1": {},
		"LPT2": {},
		"LPT3": {},
		"LPT4": {},
		"LPT5": {},
		"LPT6": {},
		"LPT7": {},
		"LPT8": {},
		"LPT9": {},
	}
)

// SafeUint64ToInt64 converts a uint64 value to an int64 safely,
// ensuring that the value does not exceed the maximum limit of int64.
func SafeUint64ToInt64(val uint64) int64 {
	if val > math.MaxInt64 {
		return math.MaxInt64
	}

	return int64(val)
}

// interiorWhitespacePattern matches any run of whitespace so it can be
// collapsed to a single space.
//
//nolint:gochecknoglobals // Immutable, pre-compiled regex pattern used as a constant.
var interiorWhitespacePattern = regexp.MustCompile(`\s+`)

// SanitizeFilename sanitizes a filename to be valid on both Windows and
// Unix-like systems, per §6.4: invalid characters are replaced, interior
// whitespace is collapsed, leading and trailing dots are stripped, Windows
// reserved device names are escaped by prepending an underscore, and a
// non-empty name never yields an empty result (an empty name is returned
// unchanged).
func SanitizeFilename(name string) string {
	if name == "" {
		return ""
	}

	result := interiorWhitespacePattern.ReplaceAllString(name, " ")
	result = invalidCharsPattern.ReplaceAllString(result, "_")
	result = strings.TrimSpace(result)
	result = strings.Trim(result, ".")

	// Extract base filename (without extension) for comparison.
	baseName := result
	if dotIndex := strings.LastIndex(result, "."); dotIndex != -1 {
		baseName = result[:dotIndex]
	}

	// If base name is a Windows reserved name, prepend an underscore.
	if _, ok := windowsReservedNames[strings.ToUpper(baseName)]; ok {
		result = "_" + result
	}

	// Ensure the filename is not empty.
	if result == "" {
		result = "_"
	}

	return result
}

// SanitizeDirName applies SanitizeFilename's rules and additionally collapses
// any ".." path-traversal sequence, per §6.4's directory-name rules. Callers
// still compose the result with ensureWithinRoot-style checks before joining
// it to a trusted root; this only protects the name itself from carrying a
// traversal segment.
func SanitizeDirName(name string) string {
	result := SanitizeFilename(name)

	for strings.Contains(result, "..") {
		result = strings.ReplaceAll(result, "..", ".")
	}

	result = strings.Trim(result, ".")
	if result == "" {
		result = "_"
	}

	return result
}

// IsFileExist checks if a file exists at the specified path.
// It returns true if the file exists and is not a directory, false if the file does not exist,
// and an error if there was an issue accessing the file.
func IsFileExist(path string) (bool, error) {
	stat, err := os.Stat(path)
	if err == nil {
		return !stat.IsDir(), nil
	}

	if os.IsNotExist(err) {
		return false, nil
	}

	return false, err
}

// IsTextContentType checks if the given content type represents a text-based format.
// It supports common text content types like "text/*", "application/json", and "application/samlmetadata+xml".
// It also checks that the charset, if present, is either "utf-8" or "us-ascii".
func IsTextContentType(contentType string) bool {
	parsedType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	for _, pattern := range textContentTypePatterns {
		if !pattern.MatchString(parsedType) {
			continue
		}

		charset := strings.ToLower(params["charset"])

		return charset == "" || charset == "utf-8" || charset == "us-ascii"
	}

	return false
}
