package service

import (
	"time"

	"properly/internal/catalog"
	"properly/internal/matching"
	"properly/internal/model"
)

// MatchService ranks the catalog against questionnaire answers
type MatchService struct {
	catalog *catalog.Catalog
	topN    int
}

// NewMatchService creates a match service. topN caps the results view.
func NewMatchService(cat *catalog.Catalog, topN int) *MatchService {
	return &MatchService{catalog: cat, topN: topN}
}

// Rank returns the whole catalog ordered by compatibility
func (s *MatchService) Rank(prefs model.Preferences) []model.ScoredProperty {
	return matching.Rank(s.catalog.All(), prefs)
}

// Match returns the full ranked list with timing information
func (s *MatchService) Match(prefs model.Preferences) *model.MatchResponse {
	start := time.Now()
	ranked := s.Rank(prefs)
	return &model.MatchResponse{
		Results: ranked,
		Total:   len(ranked),
		Took:    time.Since(start).Milliseconds(),
	}
}

// Results returns the quiz-results view: positive scores only, at most topN
func (s *MatchService) Results(prefs model.Preferences) *model.ResultsResponse {
	return &model.ResultsResponse{
		Results: matching.TopMatches(s.Rank(prefs), s.topN),
		Limit:   s.topN,
	}
}

// Dashboard returns every property split into matches and others
func (s *MatchService) Dashboard(prefs model.Preferences) model.DashboardView {
	return matching.SplitDashboard(s.Rank(prefs))
}

// Properties returns the catalog in catalog order
func (s *MatchService) Properties() []model.Property {
	return s.catalog.All()
}

// Property returns one catalog entry
func (s *MatchService) Property(id string) (model.Property, error) {
	return s.catalog.Get(id)
}

// Count returns the catalog size
func (s *MatchService) Count() int {
	return s.catalog.Len()
}
