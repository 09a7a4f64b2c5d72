package model

import (
	"encoding/json"
	"fmt"
)

// PropertyType is the closed set of property kinds a listing can have
type PropertyType string

const (
	Condominium      PropertyType = "Condominium"
	SingleFamilyHome PropertyType = "Single Family Home"
	Townhouse        PropertyType = "Townhouse"
	Apartment        PropertyType = "Apartment"
	Villa            PropertyType = "Villa"
	Duplex           PropertyType = "Duplex"
	Penthouse        PropertyType = "Penthouse"
)

// PropertyTypes returns every property type in display order
func PropertyTypes() []PropertyType {
	return []PropertyType{
		Condominium,
		SingleFamilyHome,
		Townhouse,
		Apartment,
		Villa,
		Duplex,
		Penthouse,
	}
}

// Valid reports whether t belongs to the closed set
func (t PropertyType) Valid() bool {
	switch t {
	case Condominium, SingleFamilyHome, Townhouse, Apartment, Villa, Duplex, Penthouse:
		return true
	}
	return false
}

// ParsePropertyType converts a string into a PropertyType, rejecting unknown values
func ParsePropertyType(s string) (PropertyType, error) {
	t := PropertyType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown property type %q", s)
	}
	return t, nil
}

// UnmarshalJSON implements json.Unmarshaler and rejects values outside the set
func (t *PropertyType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("property type must be a string: %w", err)
	}
	parsed, err := ParsePropertyType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Property represents one listing in the catalog
type Property struct {
	ID                  string       `json:"id"`
	Location            string       `json:"location"`
	Price               float64      `json:"price"`
	NumberOfRooms       int          `json:"number_of_rooms"`
	NumberOfBathrooms   int          `json:"number_of_bathrooms"`
	HouseSize           float64      `json:"house_size"` // square meters
	Pool                bool         `json:"pool"`
	Lift                bool         `json:"lift"`
	YearBuilt           int          `json:"year_built"`
	PropertyType        PropertyType `json:"property_type"`
	EnergyCertificate   string       `json:"energy_certificate"`
	Amenities           []string     `json:"amenities"`
	DetailedDescription string       `json:"detailed_description"`
	ImageURL            string       `json:"image_url"`
}

// ScoredProperty is a Property annotated with its compatibility score for one ranking pass
type ScoredProperty struct {
	Property
	CompatibilityScore int      `json:"compatibility_score"`
	MatchedReasons     []string `json:"matched_reasons"`
}
