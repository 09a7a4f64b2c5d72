package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"properly/internal/events"
	"properly/internal/matching"
	"properly/internal/model"
	"properly/internal/repository"
)

// SessionService captures leads and restores their dashboards
type SessionService struct {
	matcher   *MatchService
	store     SessionStore
	publisher events.Publisher
	logger    *slog.Logger
}

// NewSessionService creates a session service. store and publisher may be nil.
func NewSessionService(matcher *MatchService, store SessionStore, publisher events.Publisher, logger *slog.Logger) *SessionService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &SessionService{
		matcher:   matcher,
		store:     store,
		publisher: publisher,
		logger:    logger,
	}
}

// MagicLink returns the dashboard path a session is restored from
func MagicLink(sessionID string) string {
	return "/dashboard/" + sessionID
}

// Create stores a new session for the email and answers. Persistence and
// event publishing are best-effort: the dashboard is always returned.
func (s *SessionService) Create(ctx context.Context, req model.SessionRequest) *model.SessionResponse {
	now := time.Now().UTC()
	prefs := req.Preferences.Clone()
	ranked := s.matcher.Rank(prefs)
	top := matching.TopMatches(ranked, s.matcher.topN)

	session := &model.Session{
		ID:             uuid.NewString(),
		Email:          strings.TrimSpace(req.Email),
		Preferences:    prefs,
		TopPropertyIDs: propertyIDs(top),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	persisted := false
	if s.store != nil {
		if err := s.store.SaveSession(ctx, session); err != nil {
			s.logger.Warn("failed to save session", "session_id", session.ID, "error", err)
		} else {
			persisted = true
		}
	}

	evt := model.LeadEvent{
		SessionID:      session.ID,
		Email:          session.Email,
		Preferences:    session.Preferences,
		TopPropertyIDs: session.TopPropertyIDs,
		CapturedAt:     now,
	}
	if err := s.publisher.PublishLead(ctx, evt); err != nil {
		s.logger.Warn("failed to publish lead", "session_id", session.ID, "error", err)
	}

	s.logger.Info("lead captured", "session_id", session.ID, "persisted", persisted, "matches", len(top))

	return &model.SessionResponse{
		SessionID:   session.ID,
		Email:       session.Email,
		MagicLink:   MagicLink(session.ID),
		Preferences: session.Preferences,
		Dashboard:   matching.SplitDashboard(ranked),
		Persisted:   persisted,
	}
}

// Get restores a session and recomputes its dashboard
func (s *SessionService) Get(ctx context.Context, id string) (*model.SessionResponse, error) {
	session, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	return &model.SessionResponse{
		SessionID:   session.ID,
		Email:       session.Email,
		MagicLink:   MagicLink(session.ID),
		Preferences: session.Preferences,
		Dashboard:   s.matcher.Dashboard(session.Preferences),
		Persisted:   true,
	}, nil
}

// Preferences returns the stored answers of a session
func (s *SessionService) Preferences(ctx context.Context, id string) (model.Preferences, error) {
	session, err := s.lookup(ctx, id)
	if err != nil {
		return model.Preferences{}, err
	}
	return session.Preferences, nil
}

// Delete forgets a session so the visitor can retake the quiz
func (s *SessionService) Delete(ctx context.Context, id string) error {
	if s.store == nil {
		return repository.ErrSessionNotFound
	}
	if err := s.store.DeleteSession(ctx, id); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	s.logger.Info("session deleted", "session_id", id)
	return nil
}

func (s *SessionService) lookup(ctx context.Context, id string) (*model.Session, error) {
	if s.store == nil {
		return nil, repository.ErrSessionNotFound
	}
	session, err := s.store.GetSession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	return session, nil
}

func propertyIDs(props []model.ScoredProperty) []string {
	ids := make([]string, 0, len(props))
	for _, p := range props {
		ids = append(ids, p.ID)
	}
	return ids
}
