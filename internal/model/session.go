package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Session is a captured lead: the email a visitor left and the answers that
// drive their dashboard
type Session struct {
	ID             string      `json:"id" db:"id"`
	Email          string      `json:"email" db:"email"`
	Preferences    Preferences `json:"preferences" db:"preferences"`
	TopPropertyIDs []string    `json:"top_property_ids" db:"-"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at" db:"updated_at"`
}

// Interaction is one user/assistant exchange kept as chat memory
type Interaction struct {
	ID          string      `json:"id" db:"id"`
	SessionID   string      `json:"session_id" db:"session_id"`
	UserMessage string      `json:"user_message" db:"user_message"`
	AIMessage   string      `json:"ai_message" db:"ai_message"`
	Preferences Preferences `json:"preferences" db:"preferences"`
	PropertyIDs []string    `json:"property_ids" db:"-"`
	Embedding   []float32   `json:"-" db:"-"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
}

// LeadEvent is published whenever a visitor leaves their email
type LeadEvent struct {
	SessionID      string      `json:"session_id"`
	Email          string      `json:"email"`
	Preferences    Preferences `json:"preferences"`
	TopPropertyIDs []string    `json:"top_property_ids"`
	CapturedAt     time.Time   `json:"captured_at"`
}

// Value implements driver.Valuer so preferences are stored as JSONB
func (p Preferences) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan implements sql.Scanner interface
func (p *Preferences) Scan(value interface{}) error {
	if value == nil {
		*p = Preferences{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	default:
		return fmt.Errorf("cannot scan %T into Preferences", value)
	}
}
