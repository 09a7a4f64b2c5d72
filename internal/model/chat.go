package model

import "time"

// Sender identifies who wrote a chat message
type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// Message is one entry of the chat transcript
type Message struct {
	ID                   string           `json:"id"`
	Text                 string           `json:"text"`
	Sender               Sender           `json:"sender"`
	Timestamp            time.Time        `json:"timestamp"`
	AssociatedProperties []ScoredProperty `json:"associated_properties,omitempty"`
}

// ChatRequest is a user message plus the context the dashboard is showing
type ChatRequest struct {
	SessionID   string       `json:"session_id,omitempty"`
	Message     string       `json:"message" binding:"required"`
	Preferences *Preferences `json:"preferences,omitempty"`
}

// ChatResponse is the assistant reply
type ChatResponse struct {
	Message  Message `json:"message"`
	Degraded bool    `json:"degraded"`
}

// GreetingResponse is the first assistant message of a dashboard visit
type GreetingResponse struct {
	Message   Message `json:"message"`
	Connected bool    `json:"connected"`
}
