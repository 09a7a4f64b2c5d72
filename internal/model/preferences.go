package model

// Preferences holds the questionnaire answers. A nil field means no preference
// was stated for that dimension; Pool set to false is a stated preference.
type Preferences struct {
	PropertyType *PropertyType `json:"property_type,omitempty"`
	Location     *string       `json:"location,omitempty"`
	Pool         *bool         `json:"pool,omitempty"`
}

// IsEmpty reports whether no dimension has been answered
func (p Preferences) IsEmpty() bool {
	return p.PropertyType == nil && p.Location == nil && p.Pool == nil
}

// Clone returns a deep copy so callers can keep editing their own answers
func (p Preferences) Clone() Preferences {
	var out Preferences
	if p.PropertyType != nil {
		t := *p.PropertyType
		out.PropertyType = &t
	}
	if p.Location != nil {
		l := *p.Location
		out.Location = &l
	}
	if p.Pool != nil {
		b := *p.Pool
		out.Pool = &b
	}
	return out
}
