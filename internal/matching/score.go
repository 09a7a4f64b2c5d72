// Package matching scores catalog properties against questionnaire answers
// and orders them for display.
package matching

import (
	"strings"

	"properly/internal/model"
)

// Dimension weights. They are credits, not penalties: an unmatched or
// unanswered dimension contributes nothing.
const (
	WeightPropertyType = 40
	WeightLocation     = 30
	WeightPool         = 30
)

// Match reason constants
const (
	ReasonPropertyTypeMatch = "Property type match"
	ReasonLocationMatch     = "Location match"
	ReasonPoolMatch         = "Pool preference match"
)

// Score returns the compatibility score of p for prefs, in [0, 100]
func Score(p model.Property, prefs model.Preferences) int {
	score, _ := evaluate(p, prefs)
	return score
}

// evaluate computes the score along with the reasons that earned credit
func evaluate(p model.Property, prefs model.Preferences) (int, []string) {
	score := 0
	reasons := []string{}

	if matchesPropertyType(p, prefs) {
		score += WeightPropertyType
		reasons = append(reasons, ReasonPropertyTypeMatch)
	}
	if matchesLocation(p, prefs) {
		score += WeightLocation
		reasons = append(reasons, ReasonLocationMatch)
	}
	if matchesPool(p, prefs) {
		score += WeightPool
		reasons = append(reasons, ReasonPoolMatch)
	}

	return score, reasons
}

func matchesPropertyType(p model.Property, prefs model.Preferences) bool {
	return prefs.PropertyType != nil && *prefs.PropertyType == p.PropertyType
}

// matchesLocation is a raw case-insensitive substring check. No trimming or
// tokenizing: "Hua" matches "Hua Hin" and anything else containing "hua".
// An empty answer is treated as unanswered.
func matchesLocation(p model.Property, prefs model.Preferences) bool {
	if prefs.Location == nil || *prefs.Location == "" {
		return false
	}
	return strings.Contains(strings.ToLower(p.Location), strings.ToLower(*prefs.Location))
}

func matchesPool(p model.Property, prefs model.Preferences) bool {
	return prefs.Pool != nil && *prefs.Pool == p.Pool
}
