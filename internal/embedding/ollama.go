package embedding

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/ollama/ollama/envconfig"
)

// OllamaEmbedder generates embeddings using the Ollama API.
type OllamaEmbedder struct {
	Client        *api.Client
	Model         string
	MaxRetries    int
	Timeout       time.Duration
	MaxConcurrent int
}

// NewOllamaEmbedder creates a new Ollama embedder. An empty host defers to
// the OLLAMA_HOST environment variable.
func NewOllamaEmbedder(host string, model string) (*OllamaEmbedder, error) {
	hostURL := envconfig.Host()
	if host != "" {
		parsed, err := url.Parse(host)
		if err != nil {
			return nil, &EmbeddingError{Model: model, Err: err}
		}
		hostURL = parsed
	}
	client := api.NewClient(hostURL, http.DefaultClient)

	return &OllamaEmbedder{
		Client:        client,
		Model:         model,
		MaxRetries:    3,
		Timeout:       time.Second * 30,
		MaxConcurrent: 3,
	}, nil
}

// Embed generates an embedding for a text, retrying transient failures.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	var lastErr error
	for retries := 0; retries <= e.MaxRetries; retries++ {
		if retries > 0 {
			time.Sleep(time.Duration(retries) * time.Second)
		}

		embedding, err := e.createEmbedding(ctx, text)
		if err == nil {
			return embedding, nil
		}
		lastErr = err
	}

	return nil, &EmbeddingError{Model: e.Model, Err: lastErr}
}

func (e *OllamaEmbedder) createEmbedding(ctx context.Context, text string) ([]float64, error) {
	req := api.EmbeddingRequest{
		Model:   e.Model,
		Prompt:  text,
		Options: map[string]any{},
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, e.Timeout)
	defer cancel()

	resp, err := e.Client.Embeddings(ctxWithTimeout, &req)
	if err != nil {
		return nil, err
	}

	return resp.Embedding, nil
}

// EmbedBatch generates embeddings for multiple texts in parallel, bounded by
// MaxConcurrent. Result order matches input order.
func (e *OllamaEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, e.MaxConcurrent)
	errChan := make(chan error, len(texts))

	vectors := make([][]float64, len(texts))
	var mu sync.Mutex

	for i := range texts {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(i int) {
			defer wg.Done()
			defer func() { <-semaphore }()

			vec, err := e.Embed(ctx, texts[i])
			if err != nil {
				errChan <- err
				return
			}

			mu.Lock()
			vectors[i] = vec
			mu.Unlock()
		}(i)
	}

	wg.Wait()
	close(errChan)

	if err := <-errChan; err != nil {
		return nil, err
	}

	return vectors, nil
}
