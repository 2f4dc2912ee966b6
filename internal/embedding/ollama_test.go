package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func newEmbedServer(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embeddings" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if calls != nil {
			calls.Add(1)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"embedding": []float64{0.1, 0.2, 0.3},
		})
	}))
}

func TestOllamaEmbedderEmbed(t *testing.T) {
	server := newEmbedServer(t, nil)
	defer server.Close()

	e, err := NewOllamaEmbedder(server.URL, "test-model")
	if err != nil {
		t.Fatalf("NewOllamaEmbedder() error: %v", err)
	}

	vec, err := e.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Embed() error: %v", err)
	}
	if len(vec) != 3 {
		t.Errorf("embedding has %d dims, want 3", len(vec))
	}
}

func TestOllamaEmbedderEmbedBatchPreservesOrder(t *testing.T) {
	var calls atomic.Int32
	server := newEmbedServer(t, &calls)
	defer server.Close()

	e, err := NewOllamaEmbedder(server.URL, "test-model")
	if err != nil {
		t.Fatal(err)
	}

	vectors, err := e.EmbedBatch(context.Background(), []string{"a", "b", "c", "d"})
	if err != nil {
		t.Fatalf("EmbedBatch() error: %v", err)
	}
	if len(vectors) != 4 {
		t.Fatalf("got %d vectors, want 4", len(vectors))
	}
	for i, v := range vectors {
		if len(v) != 3 {
			t.Errorf("vector %d has %d dims", i, len(v))
		}
	}
	if calls.Load() != 4 {
		t.Errorf("server saw %d calls, want 4", calls.Load())
	}
}

func TestOllamaEmbedderServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	e, err := NewOllamaEmbedder(server.URL, "test-model")
	if err != nil {
		t.Fatal(err)
	}
	e.MaxRetries = 0

	_, err = e.Embed(context.Background(), "hello")
	if err == nil {
		t.Fatal("Embed() should fail on server error")
	}
	var ee *EmbeddingError
	if !errors.As(err, &ee) {
		t.Errorf("error %v is not an *EmbeddingError", err)
	}
}
