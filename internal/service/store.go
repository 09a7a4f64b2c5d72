package service

import (
	"context"

	"properly/internal/model"
)

// SessionStore persists captured leads
type SessionStore interface {
	SaveSession(ctx context.Context, s *model.Session) error
	GetSession(ctx context.Context, id string) (*model.Session, error)
	DeleteSession(ctx context.Context, id string) error
}

// InteractionStore keeps chat exchanges as long-term memory
type InteractionStore interface {
	LogInteraction(ctx context.Context, it *model.Interaction) error
	SimilarInteractions(ctx context.Context, sessionID string, embedding []float32, limit int) ([]model.Interaction, error)
}
