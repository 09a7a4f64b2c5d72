package service

import (
	"context"
	"errors"
)

// ErrAssistantDisabled is returned when no assistant API key is configured
var ErrAssistantDisabled = errors.New("assistant is not enabled (missing API key)")

// Assistant is the external conversational service. Every caller must cope
// with it being nil or disabled.
type Assistant interface {
	// Reply returns the assistant answer for a prepared conversation
	Reply(ctx context.Context, messages []ChatMessage) (string, error)

	// ReplyStream is Reply with incremental delivery; onDelta receives each
	// content fragment and the full text is returned at the end
	ReplyStream(ctx context.Context, messages []ChatMessage, onDelta func(delta string) error) (string, error)

	// ParsePreferences turns a free-text request into raw questionnaire answers
	ParsePreferences(ctx context.Context, query string) (*AIPreferencesResponse, error)

	// CreateEmbeddings generates embeddings for texts
	CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)

	// IsEnabled returns whether the assistant is configured and ready
	IsEnabled() bool
}

// AIPreferencesResponse is the preference JSON the assistant produces.
// Values are unchecked; PreferenceParser normalizes them.
type AIPreferencesResponse struct {
	PropertyType *string `json:"property_type,omitempty"`
	Location     *string `json:"location,omitempty"`
	Pool         *bool   `json:"pool,omitempty"`
}

// Ensure OpenAIClient implements Assistant
var _ Assistant = (*OpenAIClient)(nil)
