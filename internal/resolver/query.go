package resolver

// Target is the (artist, title, optional duration, optional album) tuple the
// resolver converts into candidate search queries.
type Target struct {
	Artist       string
	Title        string
	DurationSecs *int
	Album        string
}

// buildQueries produces the ordered, deduplicated query list for a phase.
// permissive adds the concatenation and quoted-exact-title variants.
func buildQueries(target Target, permissive bool) []string {
	normArtist := NormalizeArtist(target.Artist)
	normTitle := NormalizeTitle(target.Title)

	seen := make(map[string]bool)
	queries := make([]string, 0, 6)

	add := func(q string) {
		if q == "" || seen[q] {
			return
		}

		seen[q] = true
		queries = append(queries, q)
	}

	add(normArtist + " " + normTitle)
	add(target.Artist + " " + target.Title)
	add(normTitle)
	add(target.Title)

	if HasFeatPattern(target.Artist) {
		add(StripFeat(normArtist) + " " + normTitle)
	}

	if permissive {
		add(target.Artist + target.Title)

		if wordCount(target.Title) > 1 {
			add(`"` + target.Title + `"`)
		}
	}

	return queries
}

func wordCount(s string) int {
	return len(whitespacePattern.Split(collapseWhitespace(s), -1))
}
