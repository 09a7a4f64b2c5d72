package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"properly/internal/model"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

// ErrSessionNotFound is returned when no session exists for an id
var ErrSessionNotFound = errors.New("session not found")

// PostgresRepository stores sessions and chat memory in PostgreSQL
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int) (*PostgresRepository, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// EnsureSchema creates the tables used by the service. dimensions sizes the
// embedding column and must match the embedding model.
func (r *PostgresRepository) EnsureSchema(ctx context.Context, dimensions int) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS quiz_sessions (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL,
			preferences JSONB NOT NULL DEFAULT '{}',
			top_property_ids TEXT[] NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS chat_interactions (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL DEFAULT '',
			user_message TEXT NOT NULL,
			ai_message TEXT NOT NULL,
			preferences JSONB NOT NULL DEFAULT '{}',
			property_ids TEXT[] NOT NULL DEFAULT '{}',
			embedding vector(%d),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, dimensions),
		`CREATE INDEX IF NOT EXISTS idx_chat_interactions_session ON chat_interactions (session_id, created_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}

type sessionRow struct {
	model.Session
	TopPropertyIDs pq.StringArray `db:"top_property_ids"`
}

type interactionRow struct {
	model.Interaction
	PropertyIDs pq.StringArray `db:"property_ids"`
}

// SaveSession inserts a session or replaces the answers of an existing one
func (r *PostgresRepository) SaveSession(ctx context.Context, s *model.Session) error {
	query := `
		INSERT INTO quiz_sessions (id, email, preferences, top_property_ids, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			preferences = EXCLUDED.preferences,
			top_property_ids = EXCLUDED.top_property_ids,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.Email, s.Preferences, pq.StringArray(s.TopPropertyIDs), s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by id
func (r *PostgresRepository) GetSession(ctx context.Context, id string) (*model.Session, error) {
	var row sessionRow
	query := `
		SELECT id, email, preferences, top_property_ids, created_at, updated_at
		FROM quiz_sessions
		WHERE id = $1
	`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	s := row.Session
	s.TopPropertyIDs = []string(row.TopPropertyIDs)
	return &s, nil
}

// DeleteSession removes a session and its chat memory
func (r *PostgresRepository) DeleteSession(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM quiz_sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrSessionNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM chat_interactions WHERE session_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete interactions: %w", err)
	}

	return tx.Commit()
}

// LogInteraction stores one chat exchange with its optional embedding
func (r *PostgresRepository) LogInteraction(ctx context.Context, it *model.Interaction) error {
	var vec *pgvector.Vector
	if len(it.Embedding) > 0 {
		v := pgvector.NewVector(it.Embedding)
		vec = &v
	}

	query := `
		INSERT INTO chat_interactions (id, session_id, user_message, ai_message, preferences, property_ids, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		it.ID, it.SessionID, it.UserMessage, it.AIMessage, it.Preferences,
		pq.StringArray(it.PropertyIDs), vec, it.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to log interaction: %w", err)
	}
	return nil
}

// SimilarInteractions returns the session's past exchanges nearest to embedding
func (r *PostgresRepository) SimilarInteractions(ctx context.Context, sessionID string, embedding []float32, limit int) ([]model.Interaction, error) {
	if limit <= 0 || len(embedding) == 0 {
		return []model.Interaction{}, nil
	}

	query := `
		SELECT id, session_id, user_message, ai_message, preferences, property_ids, created_at
		FROM chat_interactions
		WHERE session_id = $1 AND embedding IS NOT NULL
		ORDER BY embedding <-> $2
		LIMIT $3
	`
	var rows []interactionRow
	if err := r.db.SelectContext(ctx, &rows, query, sessionID, pgvector.NewVector(embedding), limit); err != nil {
		return nil, fmt.Errorf("failed to search interactions: %w", err)
	}

	out := make([]model.Interaction, 0, len(rows))
	for _, row := range rows {
		it := row.Interaction
		it.PropertyIDs = []string(row.PropertyIDs)
		out = append(out, it)
	}
	return out, nil
}
