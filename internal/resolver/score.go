package resolver

import (
	"github.com/nmartins/melodysync/internal/client/secondary"
	"github.com/nmartins/melodysync/internal/utils"
)

const (
	titleScoreMax    = 40.0
	artistScoreMax   = 30.0
	durationScoreMax = 20.0
	qualityBonusMin  = -10.0
	qualityBonusMax  = 10.0

	defaultDurationToleranceSecs = 15
)

// ScoreBreakdown is the per-component score for a single candidate, useful
// for debugging and tests; Total is what the cascade sorts and thresholds on.
type ScoreBreakdown struct {
	TitleScore    float64
	ArtistScore   float64
	DurationScore float64
	QualityBonus  float64
	Total         float64
}

// scoreCandidate computes the weighted score of a candidate against a
// normalized target (artist, title, optional duration), per the exact
// weights and thresholds of the matching formula.
func scoreCandidate(
	normTargetArtist, normTargetTitle string,
	targetDurationSecs *int,
	candidate secondary.Candidate,
	durationToleranceSecs int,
	preferAudioOverVideo, excludeLive, excludeCovers bool,
) ScoreBreakdown {
	normCandTitle := NormalizeTitle(candidate.Title)
	normCandArtist := NormalizeArtist(candidate.Artist)

	titleScore := titleScoreMax * utils.StringSimilarity(normTargetTitle, normCandTitle)
	artistScore := scoreArtist(normTargetArtist, normCandArtist, candidate)
	durationScore := scoreDuration(targetDurationSecs, candidate.DurationSecs, durationToleranceSecs)
	qualityBonus := scoreQualityBonus(candidate.Flags, preferAudioOverVideo, excludeLive, excludeCovers)

	return ScoreBreakdown{
		TitleScore:    titleScore,
		ArtistScore:   artistScore,
		DurationScore: durationScore,
		QualityBonus:  qualityBonus,
		Total:         titleScore + artistScore + durationScore + qualityBonus,
	}
}

func scoreArtist(normTargetArtist, normCandArtist string, candidate secondary.Candidate) float64 {
	best := utils.StringSimilarity(normTargetArtist, normCandArtist)

	if best < 0.8 {
		for _, featured := range featuredArtistNames(candidate.Artist) {
			if sim := utils.StringSimilarity(normTargetArtist, NormalizeArtist(featured)); sim > best {
				best = sim
			}
		}
	}

	return artistScoreMax * best
}

// featuredArtistNames extracts the names following a feat/ft/featuring/with
// marker in a raw (non-normalized) artist string, split on common separators.
func featuredArtistNames(artist string) []string {
	match := featNamesPattern.FindStringSubmatch(artist)
	if match == nil {
		return nil
	}

	return splitFeaturedNames(match[1])
}

func scoreDuration(targetSecs, candidateSecs *int, toleranceSecs int) float64 {
	if targetSecs == nil {
		return durationScoreMax / 2
	}

	if candidateSecs == nil {
		return 0
	}

	if toleranceSecs <= 0 {
		toleranceSecs = defaultDurationToleranceSecs
	}

	delta := *targetSecs - *candidateSecs
	if delta < 0 {
		delta = -delta
	}

	tau := float64(toleranceSecs)
	diff := float64(delta)

	switch {
	case diff <= tau:
		return durationScoreMax
	case diff <= 3*tau:
		return durationScoreMax * (1 - (diff-tau)/(2*tau))
	default:
		return 0
	}
}

func scoreQualityBonus(flags secondary.CandidateFlags, preferAudioOverVideo, excludeLive, excludeCovers bool) float64 {
	bonus := 0.0

	if flags.Official {
		bonus += 5
	}

	if flags.VerifiedArtist {
		bonus += 2
	}

	if flags.MusicVideo && preferAudioOverVideo {
		bonus--
	}

	if flags.Live && excludeLive {
		bonus -= 8
	}

	if flags.Cover && excludeCovers {
		bonus -= 6
	}

	if flags.Karaoke {
		bonus -= 10
	}

	if flags.Remix {
		bonus -= 3
	}

	return clamp(bonus, qualityBonusMin, qualityBonusMax)
}

func clamp(v, lo, hi float64) float64 {
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	default:
		return v
	}
}
