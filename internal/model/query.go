package model

import "time"

// MatchRequest carries the questionnaire answers for a ranking pass
type MatchRequest struct {
	Preferences Preferences `json:"preferences"`
}

// MatchResponse is the full ranked catalog
type MatchResponse struct {
	Results []ScoredProperty `json:"results"`
	Total   int              `json:"total"`
	Took    int64            `json:"took_ms"`
}

// ResultsResponse is the quiz-results view: positive scores only, capped
type ResultsResponse struct {
	Results []ScoredProperty `json:"results"`
	Limit   int              `json:"limit"`
}

// DashboardView separates the properties that earned credit from the rest
type DashboardView struct {
	Matches []ScoredProperty `json:"matches"`
	Others  []ScoredProperty `json:"others"`
}

// SessionRequest captures a lead at the end of the quiz
type SessionRequest struct {
	Email       string      `json:"email" binding:"required,email"`
	Preferences Preferences `json:"preferences"`
}

// SessionResponse is returned after capturing or restoring a session
type SessionResponse struct {
	SessionID   string        `json:"session_id"`
	Email       string        `json:"email"`
	MagicLink   string        `json:"magic_link"`
	Preferences Preferences   `json:"preferences"`
	Dashboard   DashboardView `json:"dashboard"`
	Persisted   bool          `json:"persisted"`
}

// ParsePreferencesRequest is free text describing what the visitor wants
type ParsePreferencesRequest struct {
	Query string `json:"query" binding:"required"`
}

// ParsePreferencesResponse holds the answers extracted from free text
type ParsePreferencesResponse struct {
	Preferences Preferences      `json:"preferences"`
	Results     []ScoredProperty `json:"results"`
}

// PropertiesResponse lists the catalog
type PropertiesResponse struct {
	Items []Property `json:"items"`
	Total int        `json:"total"`
}

// QuizStep describes one questionnaire step
type QuizStep struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Question string `json:"question"`
}

// PopularLocation is a suggested answer for the location step
type PopularLocation struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

// QuizResponse is the questionnaire definition
type QuizResponse struct {
	Steps            []QuizStep        `json:"steps"`
	PropertyTypes    []PropertyType    `json:"property_types"`
	PopularLocations []PopularLocation `json:"popular_locations"`
}

// HealthResponse reports service and collaborator status
type HealthResponse struct {
	Status     string    `json:"status"`
	Service    string    `json:"service"`
	Version    string    `json:"version"`
	Properties int       `json:"properties"`
	Assistant  bool      `json:"assistant"`
	Time       time.Time `json:"time"`
}
