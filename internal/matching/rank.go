package matching

import (
	"sort"

	"properly/internal/model"
)

// Rank scores every property and orders the result by score, highest first.
// Equal scores keep their catalog order. Nothing is filtered out.
func Rank(catalog []model.Property, prefs model.Preferences) []model.ScoredProperty {
	results := make([]model.ScoredProperty, 0, len(catalog))

	for _, p := range catalog {
		score, reasons := evaluate(p, prefs)
		results = append(results, model.ScoredProperty{
			Property:           p,
			CompatibilityScore: score,
			MatchedReasons:     reasons,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].CompatibilityScore > results[j].CompatibilityScore
	})

	return results
}

// TopMatches returns the first n ranked entries with a positive score.
// This is the quiz-results view policy.
func TopMatches(ranked []model.ScoredProperty, n int) []model.ScoredProperty {
	if n <= 0 {
		return []model.ScoredProperty{}
	}
	out := make([]model.ScoredProperty, 0, n)
	for _, sp := range ranked {
		if len(out) >= n {
			break
		}
		if sp.CompatibilityScore > 0 {
			out = append(out, sp)
		}
	}
	return out
}

// SplitDashboard separates ranked entries into those that earned credit and
// those that did not, preserving ranked order in both.
func SplitDashboard(ranked []model.ScoredProperty) model.DashboardView {
	view := model.DashboardView{
		Matches: []model.ScoredProperty{},
		Others:  []model.ScoredProperty{},
	}
	for _, sp := range ranked {
		if sp.CompatibilityScore > 0 {
			view.Matches = append(view.Matches, sp)
		} else {
			view.Others = append(view.Others, sp)
		}
	}
	return view
}
