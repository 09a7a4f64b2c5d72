package utils

import (
	"strings"
)

// propertyTypeAliases maps loose wording onto canonical property type names.
// Longer aliases come first so "townhouse" wins over "house".
var propertyTypeAliases = []struct {
	alias     string
	canonical string
}{
	{"single family home", "Single Family Home"},
	{"single-family home", "Single Family Home"},
	{"detached house", "Single Family Home"},
	{"family home", "Single Family Home"},
	{"condominium", "Condominium"},
	{"penthouse", "Penthouse"},
	{"townhouse", "Townhouse"},
	{"town house", "Townhouse"},
	{"townhome", "Townhouse"},
	{"row house", "Townhouse"},
	{"shophouse", "Townhouse"},
	{"apartment", "Apartment"},
	{"pool villa", "Villa"},
	{"bungalow", "Villa"},
	{"duplex", "Duplex"},
	{"condo", "Condominium"},
	{"villa", "Villa"},
	{"house", "Single Family Home"},
	{"flat", "Apartment"},
	{"studio", "Apartment"},
}

// FuzzyMatchPropertyType maps a free-form property type onto one of the
// canonical names. Exact names match regardless of case, then aliases are
// tried as substrings.
func FuzzyMatchPropertyType(term string, canonical []string) (string, bool) {
	termLower := strings.ToLower(strings.TrimSpace(term))
	if termLower == "" {
		return "", false
	}

	// Exact match
	for _, name := range canonical {
		if termLower == strings.ToLower(name) {
			return name, true
		}
	}

	// Alias match
	for _, a := range propertyTypeAliases {
		if !strings.Contains(termLower, a.alias) {
			continue
		}
		for _, name := range canonical {
			if name == a.canonical {
				return name, true
			}
		}
	}

	return "", false
}
