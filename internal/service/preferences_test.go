package service

import (
	"context"
	"errors"
	"testing"

	"properly/internal/logging"
	"properly/internal/model"
)

func TestPreferenceParser_WithoutAssistant(t *testing.T) {
	tests := []struct {
		name      string
		assistant Assistant
	}{
		{name: "nil assistant", assistant: nil},
		{name: "disabled assistant", assistant: &fakeAssistant{enabled: false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := NewPreferenceParser(tt.assistant, logging.Discard())

			if _, err := parser.Parse(context.Background(), "villa in Phuket"); !errors.Is(err, ErrAssistantDisabled) {
				t.Errorf("Parse() error = %v, want ErrAssistantDisabled", err)
			}
		})
	}
}

func TestPreferenceParser_BlankQuery(t *testing.T) {
	parser := NewPreferenceParser(nil, logging.Discard())

	prefs, err := parser.Parse(context.Background(), "   ")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !prefs.IsEmpty() {
		t.Errorf("expected empty preferences, got %+v", prefs)
	}
}

func TestPreferenceParser_Normalize(t *testing.T) {
	tests := []struct {
		name string
		raw  *AIPreferencesResponse
		want model.Preferences
	}{
		{
			name: "all answers",
			raw:  &AIPreferencesResponse{PropertyType: strPtr("Villa"), Location: strPtr("Phuket"), Pool: boolPtr(true)},
			want: model.Preferences{PropertyType: typePtr(model.Villa), Location: strPtr("Phuket"), Pool: boolPtr(true)},
		},
		{
			name: "type in another case",
			raw:  &AIPreferencesResponse{PropertyType: strPtr("single family home")},
			want: model.Preferences{PropertyType: typePtr(model.SingleFamilyHome)},
		},
		{
			name: "type alias",
			raw:  &AIPreferencesResponse{PropertyType: strPtr("condo")},
			want: model.Preferences{PropertyType: typePtr(model.Condominium)},
		},
		{
			name: "unknown type dropped",
			raw:  &AIPreferencesResponse{PropertyType: strPtr("Castle"), Pool: boolPtr(false)},
			want: model.Preferences{Pool: boolPtr(false)},
		},
		{
			name: "blank location dropped",
			raw:  &AIPreferencesResponse{Location: strPtr("  ")},
			want: model.Preferences{},
		},
		{
			name: "nothing extracted",
			raw:  &AIPreferencesResponse{},
			want: model.Preferences{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := NewPreferenceParser(&fakeAssistant{enabled: true, parsed: tt.raw}, logging.Discard())

			got, err := parser.Parse(context.Background(), "some request")
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			assertPreferences(t, *got, tt.want)
		})
	}
}

func TestPreferenceParser_AssistantError(t *testing.T) {
	parser := NewPreferenceParser(&fakeAssistant{enabled: true, parseErr: errors.New("timeout")}, logging.Discard())

	if _, err := parser.Parse(context.Background(), "condo"); err == nil {
		t.Error("expected an error")
	}
}

func assertPreferences(t *testing.T, got, want model.Preferences) {
	t.Helper()
	if (got.PropertyType == nil) != (want.PropertyType == nil) ||
		(got.PropertyType != nil && *got.PropertyType != *want.PropertyType) {
		t.Errorf("PropertyType = %v, want %v", got.PropertyType, want.PropertyType)
	}
	if (got.Location == nil) != (want.Location == nil) ||
		(got.Location != nil && *got.Location != *want.Location) {
		t.Errorf("Location = %v, want %v", got.Location, want.Location)
	}
	if (got.Pool == nil) != (want.Pool == nil) ||
		(got.Pool != nil && *got.Pool != *want.Pool) {
		t.Errorf("Pool = %v, want %v", got.Pool, want.Pool)
	}
}
