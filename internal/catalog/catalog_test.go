package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"properly/internal/config"
	"properly/internal/logging"
	"properly/internal/model"
)

func TestLoad_EmbeddedSampleData(t *testing.T) {
	c, err := Load(context.Background(), config.CatalogConfig{}, logging.Discard())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if c.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", c.Len())
	}

	all := c.All()
	wantOrder := []string{"prop1", "prop2", "prop3", "prop4", "prop5"}
	for i, id := range wantOrder {
		if all[i].ID != id {
			t.Errorf("position %d = %s, want %s", i, all[i].ID, id)
		}
	}

	p, err := c.Get("prop2")
	if err != nil {
		t.Fatalf("Get(prop2) error = %v", err)
	}
	if p.PropertyType != model.Villa || !p.Pool || p.Location != "Phuket, Thailand" {
		t.Errorf("unexpected prop2: %+v", p)
	}
}

func TestCatalog_AllReturnsCopy(t *testing.T) {
	c, err := New([]model.Property{{ID: "a", PropertyType: model.Villa}, {ID: "b", PropertyType: model.Duplex}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	all := c.All()
	all[0].ID = "mutated"

	if again := c.All(); again[0].ID != "a" {
		t.Errorf("catalog was mutated through All(): %s", again[0].ID)
	}
}

func TestCatalog_GetUnknown(t *testing.T) {
	c, _ := New(nil)
	if _, err := c.Get("nope"); !errors.Is(err, ErrPropertyNotFound) {
		t.Errorf("Get() error = %v, want ErrPropertyNotFound", err)
	}
}

func TestNew_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		props []model.Property
	}{
		{name: "duplicate id", props: []model.Property{{ID: "a", PropertyType: model.Villa}, {ID: "a", PropertyType: model.Villa}}},
		{name: "missing id", props: []model.Property{{PropertyType: model.Villa}}},
		{name: "unknown type", props: []model.Property{{ID: "a", PropertyType: "Castle"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.props); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestDecode_SchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "not an array", doc: `{"id": "x"}`},
		{name: "unknown property type", doc: `[{"id":"x","location":"L","price":1,"number_of_rooms":1,"number_of_bathrooms":1,"house_size":10,"pool":true,"lift":false,"year_built":2000,"property_type":"Castle"}]`},
		{name: "negative price", doc: `[{"id":"x","location":"L","price":-1,"number_of_rooms":1,"number_of_bathrooms":1,"house_size":10,"pool":true,"lift":false,"year_built":2000,"property_type":"Villa"}]`},
		{name: "zero house size", doc: `[{"id":"x","location":"L","price":1,"number_of_rooms":1,"number_of_bathrooms":1,"house_size":0,"pool":true,"lift":false,"year_built":2000,"property_type":"Villa"}]`},
		{name: "missing pool", doc: `[{"id":"x","location":"L","price":1,"number_of_rooms":1,"number_of_bathrooms":1,"house_size":10,"lift":false,"year_built":2000,"property_type":"Villa"}]`},
		{name: "malformed", doc: `[{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode([]byte(tt.doc)); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")
	doc := `[
	  {"id":"x1","location":"Krabi, Thailand","price":90000,"number_of_rooms":1,"number_of_bathrooms":1,
	   "house_size":40,"pool":false,"lift":true,"year_built":2021,"property_type":"Apartment"}
	]`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}

	c, err := Load(context.Background(), config.CatalogConfig{Path: path}, logging.Discard())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	p, err := c.Get("x1")
	if err != nil {
		t.Fatal(err)
	}
	if p.PropertyType != model.Apartment || len(p.Amenities) != 0 || p.Amenities == nil {
		t.Errorf("unexpected property: %+v", p)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(context.Background(), config.CatalogConfig{Path: "/does/not/exist.json"}, logging.Discard())
	if err == nil || !strings.Contains(err.Error(), "read properties file") {
		t.Errorf("expected read error, got %v", err)
	}
}

func TestLoad_SQLiteMirror(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "catalog.db")
	cfg := config.CatalogConfig{SQLitePath: dbPath}

	first, err := Load(context.Background(), cfg, logging.Discard())
	if err != nil {
		t.Fatalf("first Load() error = %v", err)
	}

	// second load reads the already-seeded database
	second, err := Load(context.Background(), cfg, logging.Discard())
	if err != nil {
		t.Fatalf("second Load() error = %v", err)
	}

	a, b := first.All(), second.All()
	if len(a) != 5 || len(b) != 5 {
		t.Fatalf("expected 5 properties in both loads, got %d and %d", len(a), len(b))
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			t.Errorf("order differs at %d: %s vs %s", i, a[i].ID, b[i].ID)
		}
		if len(a[i].Amenities) != len(b[i].Amenities) || a[i].Pool != b[i].Pool || a[i].PropertyType != b[i].PropertyType {
			t.Errorf("round trip changed %s", a[i].ID)
		}
	}
}

func TestLoad_SQLiteMirrorRejectsDuplicateIDs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")
	doc := `[
	  {"id":"d1","location":"Krabi, Thailand","price":90000,"number_of_rooms":1,"number_of_bathrooms":1,
	   "house_size":40,"pool":false,"lift":true,"year_built":2021,"property_type":"Apartment"},
	  {"id":"d1","location":"Phuket, Thailand","price":250000,"number_of_rooms":3,"number_of_bathrooms":2,
	   "house_size":180,"pool":true,"lift":false,"year_built":2019,"property_type":"Villa"}
	]`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}

	for _, tt := range []struct {
		name string
		cfg  config.CatalogConfig
	}{
		{name: "json only", cfg: config.CatalogConfig{Path: path}},
		{name: "sqlite mirror", cfg: config.CatalogConfig{Path: path, SQLitePath: filepath.Join(dir, "catalog.db")}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(context.Background(), tt.cfg, logging.Discard())
			if err == nil || !strings.Contains(err.Error(), `duplicate property id "d1"`) {
				t.Errorf("Load() error = %v, want duplicate id error", err)
			}
		})
	}

	if _, err := os.Stat(filepath.Join(dir, "catalog.db")); err == nil {
		t.Error("sqlite mirror was created from an invalid catalog")
	}
}
