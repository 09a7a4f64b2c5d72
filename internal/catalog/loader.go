package catalog

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"properly/internal/config"
	"properly/internal/model"
)

//go:embed data/sample_properties.json data/catalog.schema.json
var dataFS embed.FS

const schemaResource = "catalog.schema.json"

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func catalogSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		raw, err := dataFS.ReadFile("data/catalog.schema.json")
		if err != nil {
			schemaErr = fmt.Errorf("read catalog schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaResource, bytes.NewReader(raw)); err != nil {
			schemaErr = fmt.Errorf("add catalog schema: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile(schemaResource)
	})
	return compiledSchema, schemaErr
}

// SampleData returns the embedded sample catalog document
func SampleData() ([]byte, error) {
	return dataFS.ReadFile("data/sample_properties.json")
}

// Decode validates a catalog document against the schema and decodes it
func Decode(data []byte) ([]model.Property, error) {
	schema, err := catalogSchema()
	if err != nil {
		return nil, err
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("catalog does not match schema: %w", err)
	}

	var props []model.Property
	if err := json.Unmarshal(data, &props); err != nil {
		return nil, fmt.Errorf("unmarshal properties: %w", err)
	}
	return props, nil
}

// LoadPropertiesFromFile reads and validates a catalog JSON file
func LoadPropertiesFromFile(path string) ([]model.Property, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read properties file: %w", err)
	}
	return Decode(b)
}

// Load builds the catalog from the configured source. When a SQLite path is
// set the JSON source only seeds an empty database and the catalog is read
// back from SQLite.
func Load(ctx context.Context, cfg config.CatalogConfig, logger *slog.Logger) (*Catalog, error) {
	var (
		props []model.Property
		err   error
	)
	if cfg.Path != "" {
		props, err = LoadPropertiesFromFile(cfg.Path)
		logger.Info("catalog source", "path", cfg.Path)
	} else {
		var raw []byte
		if raw, err = SampleData(); err == nil {
			props, err = Decode(raw)
		}
		logger.Info("catalog source", "path", "embedded sample data")
	}
	if err != nil {
		return nil, err
	}

	// the source is validated before it seeds the mirror
	cat, err := New(props)
	if err != nil {
		return nil, err
	}
	if cfg.SQLitePath == "" {
		return cat, nil
	}

	props, err = mirrorToSQLite(ctx, cfg.SQLitePath, cat.All(), logger)
	if err != nil {
		return nil, err
	}
	return New(props)
}

func mirrorToSQLite(ctx context.Context, path string, seed []model.Property, logger *slog.Logger) ([]model.Property, error) {
	store, err := OpenSQLite(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog sqlite: %w", err)
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("catalog sqlite schema: %w", err)
	}

	n, err := store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count catalog rows: %w", err)
	}
	if n == 0 {
		if err := store.InsertMany(ctx, seed); err != nil {
			return nil, fmt.Errorf("seed catalog sqlite: %w", err)
		}
		logger.Info("catalog sqlite seeded", "path", path, "properties", len(seed))
	}

	return store.ListAll(ctx)
}
