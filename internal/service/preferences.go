package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"properly/internal/model"
	"properly/internal/utils"
)

// PreferenceParser turns free-text requests into questionnaire answers using the assistant
type PreferenceParser struct {
	assistant Assistant
	logger    *slog.Logger
}

// NewPreferenceParser creates a new preference parser. assistant may be nil.
func NewPreferenceParser(assistant Assistant, logger *slog.Logger) *PreferenceParser {
	return &PreferenceParser{
		assistant: assistant,
		logger:    logger,
	}
}

// Enabled reports whether parsing can reach the assistant
func (p *PreferenceParser) Enabled() bool {
	return p.assistant != nil && p.assistant.IsEnabled()
}

// Parse extracts answers from query. Values the assistant gets wrong are
// dropped rather than failing the request.
func (p *PreferenceParser) Parse(ctx context.Context, query string) (*model.Preferences, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return &model.Preferences{}, nil
	}

	if !p.Enabled() {
		return nil, ErrAssistantDisabled
	}

	raw, err := p.assistant.ParsePreferences(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("assistant parsing error: %w", err)
	}

	prefs := p.normalize(raw)
	p.logger.Debug("preferences parsed", "query", query, "preferences", prefs)
	return &prefs, nil
}

func (p *PreferenceParser) normalize(raw *AIPreferencesResponse) model.Preferences {
	var prefs model.Preferences
	if raw == nil {
		return prefs
	}

	if raw.PropertyType != nil {
		if t, ok := matchPropertyType(*raw.PropertyType); ok {
			prefs.PropertyType = &t
		} else {
			p.logger.Warn("dropping unknown property type from assistant", "property_type", *raw.PropertyType)
		}
	}

	if raw.Location != nil {
		if loc := strings.TrimSpace(*raw.Location); loc != "" {
			prefs.Location = &loc
		}
	}

	if raw.Pool != nil {
		pool := *raw.Pool
		prefs.Pool = &pool
	}

	return prefs
}

// matchPropertyType maps assistant output onto the closed set, ignoring case
// and accepting common aliases such as "condo" or "flat"
func matchPropertyType(s string) (model.PropertyType, bool) {
	types := model.PropertyTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}

	name, ok := utils.FuzzyMatchPropertyType(s, names)
	if !ok {
		return "", false
	}
	t, err := model.ParsePropertyType(name)
	return t, err == nil
}
