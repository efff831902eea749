// Package errs defines the error kinds used across the synchronizer and the
// propagation policy attached to each: critical kinds abort a run before any
// worker starts, per-track kinds are recorded on the offending track, and
// non-fatal kinds downgrade a track to partial success without failing it.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the purposes of the propagation policy.
type Kind string

// Error kinds, matching the taxonomy consumed by the sync executor.
const (
	KindConfig          Kind = "config"
	KindManifest        Kind = "manifest"
	KindAuth            Kind = "auth"
	KindSourceTransient Kind = "source_transient"
	KindSourcePermanent Kind = "source_permanent"
	KindResolver        Kind = "resolver"
	KindDownload        Kind = "download"
	KindTagger          Kind = "tagger"
	KindLyrics          Kind = "lyrics"
)

// Critical reports whether errors of this kind abort the run immediately.
func (k Kind) Critical() bool {
	switch k {
	case KindConfig, KindManifest, KindAuth:
		return true
	default:
		return false
	}
}

// PerTrack reports whether errors of this kind are recorded on a single
// PlaylistTrack without aborting the run.
func (k Kind) PerTrack() bool {
	switch k {
	case KindSourcePermanent, KindResolver, KindDownload:
		return true
	default:
		return false
	}
}

// NonFatal reports whether errors of this kind downgrade a track to a
// partial-success state instead of marking it failed.
func (k Kind) NonFatal() bool {
	switch k {
	case KindTagger, KindLyrics:
		return true
	default:
		return false
	}
}

// Error wraps an underlying cause with a Kind so callers can branch on
// propagation policy via errors.As without string matching.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// New creates a classified error with the given message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates a classified error wrapping an existing cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}

	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap allows errors.Is/errors.As to see through to the cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is allows two classified errors to compare equal by kind and message,
// which lets sentinel-style comparisons (errors.Is(err, errs.ErrNoMatch)) work.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}

	return e.Kind == other.Kind && e.Message == other.Message
}

// Sentinel errors for conditions callers commonly need to test for directly.
var (
	// ErrNoMatch indicates the resolver found no candidate above threshold in either phase.
	ErrNoMatch = New(KindResolver, "no candidate above threshold")
	// ErrTrackTooShort indicates a candidate's duration is below the configured minimum.
	ErrTrackTooShort = New(KindDownload, "track too short")
	// ErrTrackTooLong indicates a candidate's duration is above the configured maximum.
	ErrTrackTooLong = New(KindDownload, "track too long")
	// ErrFormatsExhausted indicates every format selector in the cascade failed.
	ErrFormatsExhausted = New(KindDownload, "all format selectors exhausted")
	// ErrManifestCorrupt indicates the manifest header could not be parsed.
	ErrManifestCorrupt = New(KindManifest, "manifest header is corrupt or unreadable")
	// ErrAuthExpired indicates credentials remained invalid after a refresh attempt.
	ErrAuthExpired = New(KindAuth, "credentials invalid after refresh")
	// ErrInvalidPlaylistRef indicates a playlist reference did not match any accepted shape.
	ErrInvalidPlaylistRef = New(KindConfig, "playlist reference is not a recognized id, URL, or URI")
	// ErrOutputRootEscape indicates a computed path would escape the configured output root.
	ErrOutputRootEscape = New(KindConfig, "computed path escapes the output root")
	// ErrRateLimited indicates a catalog endpoint kept rejecting requests with 429 after the Retry-After wait.
	ErrRateLimited = New(KindSourceTransient, "rate limited after Retry-After wait")
)
