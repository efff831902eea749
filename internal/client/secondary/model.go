// Package secondary consumes a searchable secondary music catalog that the
// track resolver queries for downloadable candidates.
package secondary

import "strings"

// CandidateFlags are boolean attributes detected from a candidate's title
// (and, for VerifiedArtist, the catalog's own artist record) that the
// resolver's quality_bonus scoring term consumes.
type CandidateFlags struct {
	Official       bool
	Live           bool
	Cover          bool
	Karaoke        bool
	Remix          bool
	MusicVideo     bool
	VerifiedArtist bool
}

// Candidate is a single secondary-catalog search result.
type Candidate struct {
	ID           string
	Title        string
	Artist       string
	DurationSecs *int
	Album        string
	Thumbnail    string
	Flags        CandidateFlags
}

// detectFlags derives CandidateFlags by substring matching on the candidate's
// lowercased title; verifiedArtist comes from the catalog's own artist record.
func detectFlags(title string, verifiedArtist bool) CandidateFlags {
	lower := strings.ToLower(title)

	return CandidateFlags{
		Official:       strings.Contains(lower, "official"),
		Live:           strings.Contains(lower, "live"),
		Cover:          strings.Contains(lower, "cover"),
		Karaoke:        strings.Contains(lower, "karaoke"),
		Remix:          strings.Contains(lower, "remix"),
		MusicVideo:     strings.Contains(lower, "music video") || strings.Contains(lower, "official video"),
		VerifiedArtist: verifiedArtist,
	}
}
