package repository

import (
	"context"
	"math"
	"sort"
	"sync"

	"properly/internal/model"
)

// MemoryRepository keeps sessions and chat memory in process. It backs the
// service when PostgreSQL is not configured or not reachable.
type MemoryRepository struct {
	mu           sync.RWMutex
	sessions     map[string]model.Session
	interactions []model.Interaction
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		sessions: make(map[string]model.Session),
	}
}

// SaveSession stores a copy of s
func (r *MemoryRepository) SaveSession(_ context.Context, s *model.Session) error {
	cp := *s
	cp.Preferences = s.Preferences.Clone()
	cp.TopPropertyIDs = append([]string(nil), s.TopPropertyIDs...)

	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.sessions[s.ID]; ok {
		cp.CreatedAt = prev.CreatedAt
	}
	r.sessions[s.ID] = cp
	return nil
}

// GetSession returns a copy of the stored session
func (r *MemoryRepository) GetSession(_ context.Context, id string) (*model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.Preferences = s.Preferences.Clone()
	s.TopPropertyIDs = append([]string(nil), s.TopPropertyIDs...)
	return &s, nil
}

// DeleteSession forgets a session and its chat memory
func (r *MemoryRepository) DeleteSession(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(r.sessions, id)

	kept := r.interactions[:0]
	for _, it := range r.interactions {
		if it.SessionID != id {
			kept = append(kept, it)
		}
	}
	r.interactions = kept
	return nil
}

// LogInteraction appends one exchange. Exchanges without a session are
// dropped since recall is always scoped to a session.
func (r *MemoryRepository) LogInteraction(_ context.Context, it *model.Interaction) error {
	if it.SessionID == "" {
		return nil
	}

	cp := *it
	cp.PropertyIDs = append([]string(nil), it.PropertyIDs...)
	cp.Embedding = append([]float32(nil), it.Embedding...)

	r.mu.Lock()
	r.interactions = append(r.interactions, cp)
	r.mu.Unlock()
	return nil
}

// SimilarInteractions ranks the session's exchanges by cosine similarity to embedding
func (r *MemoryRepository) SimilarInteractions(_ context.Context, sessionID string, embedding []float32, limit int) ([]model.Interaction, error) {
	if limit <= 0 || len(embedding) == 0 {
		return []model.Interaction{}, nil
	}

	type scored struct {
		it  model.Interaction
		sim float64
	}

	r.mu.RLock()
	var candidates []scored
	for _, it := range r.interactions {
		if it.SessionID != sessionID || len(it.Embedding) != len(embedding) {
			continue
		}
		candidates = append(candidates, scored{it: it, sim: cosineSimilarity(it.Embedding, embedding)})
	}
	r.mu.RUnlock()

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].sim > candidates[j].sim
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	out := make([]model.Interaction, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.it)
	}
	return out, nil
}

func cosineSimilarity(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
