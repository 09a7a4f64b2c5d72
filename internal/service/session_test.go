package service

import (
	"context"
	"errors"
	"testing"

	"properly/internal/logging"
	"properly/internal/model"
	"properly/internal/repository"
)

func TestSessionService_CreateAndGet(t *testing.T) {
	repo := repository.NewMemoryRepository()
	pub := &recordingPublisher{}
	svc := NewSessionService(testMatcher(t), repo, pub, logging.Discard())
	ctx := context.Background()

	resp := svc.Create(ctx, model.SessionRequest{
		Email:       " buyer@example.com ",
		Preferences: model.Preferences{PropertyType: typePtr(model.Villa), Pool: boolPtr(true)},
	})

	if !resp.Persisted {
		t.Error("session should be persisted")
	}
	if resp.SessionID == "" || resp.MagicLink != "/dashboard/"+resp.SessionID {
		t.Errorf("magic link = %q for session %q", resp.MagicLink, resp.SessionID)
	}
	if resp.Email != "buyer@example.com" {
		t.Errorf("Email = %q", resp.Email)
	}
	if len(resp.Dashboard.Matches)+len(resp.Dashboard.Others) != 5 {
		t.Errorf("dashboard should show the whole catalog")
	}
	if resp.Dashboard.Matches[0].ID != "prop2" || resp.Dashboard.Matches[0].CompatibilityScore != 70 {
		t.Errorf("top match = %s (%d), want prop2 (70)", resp.Dashboard.Matches[0].ID, resp.Dashboard.Matches[0].CompatibilityScore)
	}

	if len(pub.events) != 1 || pub.events[0].SessionID != resp.SessionID {
		t.Fatalf("lead event not published: %+v", pub.events)
	}
	// prop3 has no pool and is not a villa
	for _, id := range pub.events[0].TopPropertyIDs {
		if id == "prop3" {
			t.Error("zero-score property listed among top matches")
		}
	}

	restored, err := svc.Get(ctx, resp.SessionID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if restored.Preferences.PropertyType == nil || *restored.Preferences.PropertyType != model.Villa {
		t.Errorf("restored preferences = %+v", restored.Preferences)
	}
	if restored.Dashboard.Matches[0].ID != "prop2" {
		t.Errorf("restored dashboard differs")
	}

	if err := svc.Delete(ctx, resp.SessionID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := svc.Get(ctx, resp.SessionID); !errors.Is(err, repository.ErrSessionNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrSessionNotFound", err)
	}
}

func TestSessionService_StoreFailure(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := NewSessionService(testMatcher(t), failingSessionStore{}, pub, logging.Discard())

	resp := svc.Create(context.Background(), model.SessionRequest{Email: "a@b.co"})

	if resp.Persisted {
		t.Error("Persisted should be false when the store fails")
	}
	if len(resp.Dashboard.Others) != 5 {
		t.Errorf("empty answers should put every property in others, got %d", len(resp.Dashboard.Others))
	}
	if len(pub.events) != 1 {
		t.Error("lead should still be published")
	}
}

func TestSessionService_NoStore(t *testing.T) {
	svc := NewSessionService(testMatcher(t), nil, nil, logging.Discard())
	ctx := context.Background()

	resp := svc.Create(ctx, model.SessionRequest{Email: "a@b.co"})
	if resp.Persisted {
		t.Error("Persisted should be false without a store")
	}
	if _, err := svc.Get(ctx, resp.SessionID); !errors.Is(err, repository.ErrSessionNotFound) {
		t.Errorf("Get() error = %v, want ErrSessionNotFound", err)
	}
	if err := svc.Delete(ctx, resp.SessionID); !errors.Is(err, repository.ErrSessionNotFound) {
		t.Errorf("Delete() error = %v, want ErrSessionNotFound", err)
	}
}

func TestMatchService_Views(t *testing.T) {
	m := testMatcher(t)
	prefs := model.Preferences{PropertyType: typePtr(model.Condominium), Location: strPtr("Bangkok"), Pool: boolPtr(true)}

	full := m.Match(prefs)
	if full.Total != 5 || full.Results[0].ID != "prop1" || full.Results[0].CompatibilityScore != 100 {
		t.Errorf("unexpected full ranking: %+v", full.Results[0])
	}

	results := m.Results(prefs)
	if results.Limit != 5 {
		t.Errorf("Limit = %d", results.Limit)
	}
	for _, r := range results.Results {
		if r.CompatibilityScore == 0 {
			t.Errorf("results view contains zero-score property %s", r.ID)
		}
	}

	none := m.Results(model.Preferences{})
	if none.Results == nil || len(none.Results) != 0 {
		t.Errorf("no answers should produce an empty, non-nil results view")
	}

	if _, err := m.Property("missing"); err == nil {
		t.Error("expected not found error")
	}
}
