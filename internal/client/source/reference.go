package source

import (
	"regexp"

	"github.com/nmartins/melodysync/internal/errs"
)

// playlistIDPattern matches a bare 22-character alphanumeric playlist id.
var playlistIDPattern = regexp.MustCompile(`^[A-Za-z0-9]{22}$`)

// playlistPathPattern matches a path-style URL containing /playlist/<id>.
var playlistPathPattern = regexp.MustCompile(`/playlist/([A-Za-z0-9]{22})(?:[/?#].*)?$`)

// playlistURIPattern matches a URI-style scheme:playlist:<id> reference.
var playlistURIPattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*:playlist:([A-Za-z0-9]{22})$`)

// ParsePlaylistRef extracts a 22-character playlist id from a raw id, a
// path-style URL, or a scheme:playlist:<id> URI. It returns
// errs.ErrInvalidPlaylistRef for anything else.
func ParsePlaylistRef(ref string) (string, error) {
	if playlistIDPattern.MatchString(ref) {
		return ref, nil
	}

	if m := playlistURIPattern.FindStringSubmatch(ref); m != nil {
		return m[1], nil
	}

	if m := playlistPathPattern.FindStringSubmatch(ref); m != nil {
		return m[1], nil
	}

	return "", errs.Wrap(errs.KindSourcePermanent, "unrecognized playlist reference: "+ref, errs.ErrInvalidPlaylistRef)
}
