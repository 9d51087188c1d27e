package evaluate

import "sort"

// DefaultRecommendThreshold is the composite score a package must
// reach to be recommended.
const DefaultRecommendThreshold = 5.0

// Rank returns evaluations sorted by composite score descending, with
// ties broken by the popularity step and then by name. The input
// slice is not modified.
func Rank(evals []Evaluation) []Evaluation {
	ranked := make([]Evaluation, len(evals))
	copy(ranked, evals)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Score.Composite != b.Score.Composite {
			return a.Score.Composite > b.Score.Composite
		}
		if a.Score.Popularity != b.Score.Popularity {
			return a.Score.Popularity > b.Score.Popularity
		}
		return a.Name < b.Name
	})
	return ranked
}

// Recommend returns the best-ranked candidate whose composite score
// meets DefaultRecommendThreshold. Error records and deprecated
// packages are never recommended. ok is false when nothing qualifies.
func Recommend(evals []Evaluation) (Evaluation, bool) {
	return RecommendAbove(evals, DefaultRecommendThreshold)
}

// RecommendAbove is Recommend with a caller-chosen minimum composite.
func RecommendAbove(evals []Evaluation, threshold float64) (Evaluation, bool) {
	for _, ev := range Rank(evals) {
		if ev.Error != "" || ev.Deprecated {
			continue
		}
		if ev.Score.Composite >= threshold {
			return ev, true
		}
		// Ranked descending: nothing below this can qualify.
		break
	}
	return Evaluation{}, false
}
