package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"properly/internal/catalog"
	"properly/internal/config"
	"properly/internal/logging"
	"properly/internal/model"
)

type fakeAssistant struct {
	enabled    bool
	reply      string
	replyErr   error
	deltas     []string
	embedding  []float32
	parsed     *AIPreferencesResponse
	parseErr   error
	mu         sync.Mutex
	gotMessage []ChatMessage
}

func (f *fakeAssistant) Reply(_ context.Context, messages []ChatMessage) (string, error) {
	f.mu.Lock()
	f.gotMessage = messages
	f.mu.Unlock()
	return f.reply, f.replyErr
}

func (f *fakeAssistant) ReplyStream(ctx context.Context, messages []ChatMessage, onDelta func(string) error) (string, error) {
	f.mu.Lock()
	f.gotMessage = messages
	f.mu.Unlock()
	if f.replyErr != nil {
		return "", f.replyErr
	}
	full := ""
	for _, d := range f.deltas {
		if err := onDelta(d); err != nil {
			return "", err
		}
		full += d
	}
	return full, nil
}

func (f *fakeAssistant) ParsePreferences(context.Context, string) (*AIPreferencesResponse, error) {
	return f.parsed, f.parseErr
}

func (f *fakeAssistant) CreateEmbeddings(_ context.Context, texts []string) ([][]float32, error) {
	if f.embedding == nil {
		return nil, errors.New("embeddings unavailable")
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.embedding
	}
	return out, nil
}

func (f *fakeAssistant) IsEnabled() bool { return f.enabled }

func (f *fakeAssistant) messages() []ChatMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gotMessage
}

type failingSessionStore struct{}

func (failingSessionStore) SaveSession(context.Context, *model.Session) error {
	return errors.New("database is down")
}

func (failingSessionStore) GetSession(context.Context, string) (*model.Session, error) {
	return nil, errors.New("database is down")
}

func (failingSessionStore) DeleteSession(context.Context, string) error {
	return errors.New("database is down")
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.LeadEvent
	err    error
}

func (p *recordingPublisher) PublishLead(_ context.Context, evt model.LeadEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func testMatcher(t *testing.T) *MatchService {
	t.Helper()
	cat, err := catalog.Load(context.Background(), config.CatalogConfig{}, logging.Discard())
	if err != nil {
		t.Fatalf("load sample catalog: %v", err)
	}
	return NewMatchService(cat, 5)
}

func testLimits() config.ResultsConfig {
	return config.ResultsConfig{TopN: 5, ContextProperties: 3, AssociatedMax: 2, MemoryLimit: 3}
}

func typePtr(t model.PropertyType) *model.PropertyType { return &t }
func strPtr(s string) *string                          { return &s }
func boolPtr(b bool) *bool                             { return &b }
