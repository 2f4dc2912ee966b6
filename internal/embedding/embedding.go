// Package embedding converts text into dense vectors via an external model.
package embedding

import (
	"context"
	"fmt"
)

// EmbeddingError wraps a model invocation failure. Callers recover by
// degrading to the fallback answer text.
type EmbeddingError struct {
	Model string
	Err   error
}

func (e *EmbeddingError) Error() string { return fmt.Sprintf("embedding (%s): %v", e.Model, e.Err) }
func (e *EmbeddingError) Unwrap() error { return e.Err }

// Embedder produces a fixed-dimension vector for a piece of text.
type Embedder interface {
	// Embed generates an embedding for a single text.
	Embed(ctx context.Context, text string) ([]float64, error)

	// EmbedBatch generates embeddings for several texts, preserving order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)
}
