package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"properly/internal/model"
)

// SQLiteStore mirrors the catalog into a SQLite file
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the SQLite database at path
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the database
func (s *SQLiteStore) Close() error { return s.db.Close() }

// EnsureSchema creates the properties table if needed
func (s *SQLiteStore) EnsureSchema(ctx context.Context) error {
	const createTable = `
CREATE TABLE IF NOT EXISTS properties (
  id TEXT PRIMARY KEY,
  location TEXT NOT NULL,
  price REAL NOT NULL,
  number_of_rooms INTEGER NOT NULL,
  number_of_bathrooms INTEGER NOT NULL,
  house_size REAL NOT NULL,
  pool INTEGER NOT NULL,
  lift INTEGER NOT NULL,
  year_built INTEGER NOT NULL,
  property_type TEXT NOT NULL,
  energy_certificate TEXT NOT NULL DEFAULT '',
  amenities_json TEXT NOT NULL DEFAULT '[]',
  detailed_description TEXT NOT NULL DEFAULT '',
  image_url TEXT NOT NULL DEFAULT ''
);
`
	_, err := s.db.ExecContext(ctx, createTable)
	return err
}

// Count returns the number of stored properties
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM properties`).Scan(&n)
	return n, err
}

// InsertMany inserts properties in order without duplicating by id
func (s *SQLiteStore) InsertMany(ctx context.Context, items []model.Property) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
INSERT OR IGNORE INTO properties
(id, location, price, number_of_rooms, number_of_bathrooms, house_size, pool, lift,
 year_built, property_type, energy_certificate, amenities_json, detailed_description, image_url)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range items {
		amenities := p.Amenities
		if amenities == nil {
			amenities = []string{}
		}
		am, err := json.Marshal(amenities)
		if err != nil {
			return fmt.Errorf("marshal amenities of %s: %w", p.ID, err)
		}
		if _, err := stmt.ExecContext(ctx,
			p.ID, p.Location, p.Price, p.NumberOfRooms, p.NumberOfBathrooms, p.HouseSize,
			p.Pool, p.Lift, p.YearBuilt, string(p.PropertyType), p.EnergyCertificate,
			string(am), p.DetailedDescription, p.ImageURL,
		); err != nil {
			return fmt.Errorf("insert %s: %w", p.ID, err)
		}
	}
	return tx.Commit()
}

// ListAll returns every property in insertion order
func (s *SQLiteStore) ListAll(ctx context.Context) ([]model.Property, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, location, price, number_of_rooms, number_of_bathrooms, house_size, pool, lift,
       year_built, property_type, energy_certificate, amenities_json, detailed_description, image_url
FROM properties
ORDER BY rowid
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Property{}
	for rows.Next() {
		var (
			p            model.Property
			propertyType string
			amJSON       string
		)
		if err := rows.Scan(
			&p.ID, &p.Location, &p.Price, &p.NumberOfRooms, &p.NumberOfBathrooms, &p.HouseSize,
			&p.Pool, &p.Lift, &p.YearBuilt, &propertyType, &p.EnergyCertificate,
			&amJSON, &p.DetailedDescription, &p.ImageURL,
		); err != nil {
			return nil, err
		}
		if p.PropertyType, err = model.ParsePropertyType(propertyType); err != nil {
			return nil, fmt.Errorf("property %s: %w", p.ID, err)
		}
		if err := json.Unmarshal([]byte(amJSON), &p.Amenities); err != nil {
			return nil, fmt.Errorf("property %s amenities: %w", p.ID, err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
