// Package store persists section embeddings in Postgres with pgvector,
// as an alternative backend to the in-memory index.
package store

import (
	"context"
	"errors"
	"fmt"

	"support-bot/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB represents the database connection.
type DB struct {
	Pool *pgxpool.Pool
}

// NewDB creates a new database connection.
func NewDB(ctx context.Context, connStr string) (*DB, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Initialize sets up the sections table and vector index. dimension is the
// embedding dimension of the configured model.
func (db *DB) Initialize(ctx context.Context, dimension int) error {
	_, err := db.Pool.Exec(ctx, fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS sections (
            id SERIAL PRIMARY KEY,
            doc_id TEXT NOT NULL,
            idx INTEGER NOT NULL,
            content TEXT NOT NULL,
            embedding vector(%d) NOT NULL
        )
    `, dimension))
	if err != nil {
		return fmt.Errorf("failed to create sections table: %w", err)
	}

	_, err = db.Pool.Exec(ctx, `
		CREATE INDEX IF NOT EXISTS sections_embedding_idx ON sections
		USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100)
	`)
	if err != nil {
		return fmt.Errorf("failed to create vector index: %w", err)
	}

	_, err = db.Pool.Exec(ctx, `
		CREATE INDEX IF NOT EXISTS sections_doc_idx ON sections (doc_id, idx)
	`)
	if err != nil {
		return fmt.Errorf("failed to create doc index: %w", err)
	}

	return nil
}

// ReplaceDocument deletes any previously stored sections for docID and
// inserts the given ones. There is no incremental update path: loading a
// document rebuilds its whole set of sections.
func (db *DB) ReplaceDocument(ctx context.Context, docID string, sections []models.Section) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM sections WHERE doc_id = $1`, docID); err != nil {
		return fmt.Errorf("failed to delete old sections: %w", err)
	}

	for _, s := range sections {
		_, err := tx.Exec(ctx, `
            INSERT INTO sections (doc_id, idx, content, embedding)
            VALUES ($1, $2, $3, $4)
        `, docID, s.Index, s.Text, s.Embedding)
		if err != nil {
			return fmt.Errorf("failed to insert section %d: %w", s.Index, err)
		}
	}

	return tx.Commit(ctx)
}

// NearestSection returns the closest stored section of docID to the
// embedding by cosine similarity, along with that similarity. Insertion order
// breaks ties so retrieval stays reproducible. The store may hold several
// documents; retrieval never crosses between them.
func (db *DB) NearestSection(ctx context.Context, docID string, embedding []float64) (*models.Section, float64, error) {
	row := db.Pool.QueryRow(ctx, `
		SELECT idx, content, 1 - (embedding <=> $2) AS similarity
		FROM sections
		WHERE doc_id = $1
		ORDER BY embedding <=> $2, idx
		LIMIT 1
	`, docID, embedding)

	var section models.Section
	var similarity float64
	if err := row.Scan(&section.Index, &section.Text, &similarity); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("failed to query nearest section: %w", err)
	}

	return &section, similarity, nil
}

// SectionAt returns the stored section with the given index for docID, or
// nil when absent. Used for neighboring-context augmentation.
func (db *DB) SectionAt(ctx context.Context, docID string, idx int) (*models.Section, error) {
	row := db.Pool.QueryRow(ctx, `
		SELECT idx, content FROM sections WHERE doc_id = $1 AND idx = $2
	`, docID, idx)

	var section models.Section
	if err := row.Scan(&section.Index, &section.Text); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query section: %w", err)
	}
	return &section, nil
}

// CountSections returns the number of stored sections across all documents.
func (db *DB) CountSections(ctx context.Context) (int, error) {
	var n int
	if err := db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM sections`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count sections: %w", err)
	}
	return n, nil
}

// Close closes the database connection.
func (db *DB) Close() {
	db.Pool.Close()
}
