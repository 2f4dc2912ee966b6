// Package index holds section embeddings in memory and answers
// nearest-section lookups by cosine similarity.
package index

import (
	"context"
	"fmt"
	"math"

	"support-bot/internal/embedding"
	"support-bot/internal/models"
)

// Index is an in-memory embedding index over the sections of one document.
// It is built once and read-only afterwards; loading a new document means
// building a fresh index.
type Index struct {
	embedder  embedding.Embedder
	threshold float64
	sections  []models.Section
}

// New creates an empty index. threshold is the minimum cosine similarity for
// a retrieval to count as a match.
func New(embedder embedding.Embedder, threshold float64) *Index {
	return &Index{embedder: embedder, threshold: threshold}
}

// Build embeds every section and stores them in insertion order. Any
// previous contents are discarded.
func (ix *Index) Build(ctx context.Context, sections []models.Section) error {
	texts := make([]string, len(sections))
	for i, s := range sections {
		texts[i] = s.Text
	}

	vectors, err := ix.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed sections: %w", err)
	}

	indexed := make([]models.Section, len(sections))
	for i, s := range sections {
		s.Embedding = vectors[i]
		indexed[i] = s
	}
	ix.sections = indexed
	return nil
}

// Len returns the number of indexed sections.
func (ix *Index) Len() int { return len(ix.sections) }

// Sections returns the indexed sections in document order.
func (ix *Index) Sections() []models.Section { return ix.sections }

// SectionAt returns the section at idx, or nil when out of range. The
// context is unused here but keeps the signature shared with the
// Postgres-backed retriever.
func (ix *Index) SectionAt(_ context.Context, idx int) (*models.Section, error) {
	if idx < 0 || idx >= len(ix.sections) {
		return nil, nil
	}
	s := ix.sections[idx]
	return &s, nil
}

// Retrieve embeds the query and returns the single most similar section.
// Ties resolve to the first occurring index. When the best similarity falls
// below the threshold the result carries a nil section and the best score,
// so out-of-scope queries degrade gracefully instead of returning an
// irrelevant section.
func (ix *Index) Retrieve(ctx context.Context, query string) (models.RetrievalResult, error) {
	vec, err := ix.embedder.Embed(ctx, query)
	if err != nil {
		return models.RetrievalResult{}, fmt.Errorf("failed to embed query: %w", err)
	}

	bestIdx := -1
	bestScore := math.Inf(-1)
	for i := range ix.sections {
		score := cosineSimilarity(vec, ix.sections[i].Embedding)
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}

	if bestIdx < 0 || bestScore < ix.threshold {
		score := bestScore
		if bestIdx < 0 {
			score = 0
		}
		return models.RetrievalResult{Score: score}, nil
	}

	section := ix.sections[bestIdx]
	return models.RetrievalResult{Section: &section, Score: bestScore}, nil
}

// cosineSimilarity computes the normalized dot product of two vectors.
// Mismatched or zero-length vectors score 0.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
