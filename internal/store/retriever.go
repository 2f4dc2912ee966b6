package store

import (
	"context"
	"fmt"

	"support-bot/internal/embedding"
	"support-bot/internal/models"
)

// sectionStore is the slice of DB the retriever needs. Every lookup is
// scoped to one document.
type sectionStore interface {
	NearestSection(ctx context.Context, docID string, embedding []float64) (*models.Section, float64, error)
	SectionAt(ctx context.Context, docID string, idx int) (*models.Section, error)
}

// Retriever answers nearest-section lookups out of the Postgres store,
// satisfying the same interface as the in-memory index.
type Retriever struct {
	DB        sectionStore
	Embedder  embedding.Embedder
	Threshold float64
	DocID     string
}

// Retrieve embeds the query and asks the store for the closest section of
// the configured document, applying the similarity threshold on the way out.
func (r *Retriever) Retrieve(ctx context.Context, query string) (models.RetrievalResult, error) {
	vec, err := r.Embedder.Embed(ctx, query)
	if err != nil {
		return models.RetrievalResult{}, fmt.Errorf("failed to embed query: %w", err)
	}

	section, similarity, err := r.DB.NearestSection(ctx, r.DocID, vec)
	if err != nil {
		return models.RetrievalResult{}, err
	}
	if section == nil || similarity < r.Threshold {
		return models.RetrievalResult{Score: similarity}, nil
	}
	return models.RetrievalResult{Section: section, Score: similarity}, nil
}

// SectionAt resolves a stored section by document position.
func (r *Retriever) SectionAt(ctx context.Context, idx int) (*models.Section, error) {
	return r.DB.SectionAt(ctx, r.DocID, idx)
}
