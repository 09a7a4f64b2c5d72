package utils

import "testing"

func TestFuzzyMatchPropertyType(t *testing.T) {
	canonical := []string{"Condominium", "Single Family Home", "Townhouse", "Apartment", "Villa", "Duplex", "Penthouse"}

	tests := []struct {
		term   string
		want   string
		wantOK bool
	}{
		{term: "Villa", want: "Villa", wantOK: true},
		{term: "  penthouse ", want: "Penthouse", wantOK: true},
		{term: "condo", want: "Condominium", wantOK: true},
		{term: "Luxury Condo", want: "Condominium", wantOK: true},
		{term: "townhouse", want: "Townhouse", wantOK: true},
		{term: "house", want: "Single Family Home", wantOK: true},
		{term: "beach bungalow", want: "Villa", wantOK: true},
		{term: "flat", want: "Apartment", wantOK: true},
		{term: "castle", wantOK: false},
		{term: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			got, ok := FuzzyMatchPropertyType(tt.term, canonical)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("FuzzyMatchPropertyType(%q) = (%q, %v), want (%q, %v)", tt.term, got, ok, tt.want, tt.wantOK)
			}
		})
	}

	t.Run("alias outside the allowed set", func(t *testing.T) {
		if _, ok := FuzzyMatchPropertyType("condo", []string{"Villa"}); ok {
			t.Error("matched a type that is not in the canonical list")
		}
	})
}
