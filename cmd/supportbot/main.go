package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"support-bot/internal/bot"
	"support-bot/internal/botlog"
	"support-bot/internal/config"
	"support-bot/internal/embedding"
	"support-bot/internal/qa"
	"support-bot/internal/store"
)

var cfgFile string

func main() {
	root := &cobra.Command{
		Use:   "supportbot",
		Short: "Customer support bot answering questions from a single document",
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config file (optional)")

	root.AddCommand(runCMD(), askCMD(), indexCMD(), serveCMD())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

// buildBot assembles the retriever (in-memory index, or the Postgres store
// when configured), the answerer and the stage logger into a ready bot.
// The returned cleanup closes the log file and any database pool.
func buildBot(ctx context.Context, cfg *config.Config) (*bot.Bot, func(), error) {
	lg, err := botlog.Open(cfg.LogFile)
	if err != nil {
		log.Printf("stage log unavailable: %v", err)
	}

	embedder, err := embedding.NewOllamaEmbedder(cfg.Ollama.Host, cfg.Ollama.EmbeddingModel)
	if err != nil {
		lg.Close()
		return nil, nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	answerer, err := qa.NewOllamaAnswerer(cfg.Ollama.Host, cfg.Ollama.QAModel)
	if err != nil {
		lg.Close()
		return nil, nil, fmt.Errorf("failed to create QA client: %w", err)
	}

	var (
		retriever bot.Retriever
		cleanup   = func() { lg.Close() }
	)
	if cfg.Storage.PostgresURL != "" {
		db, err := store.NewDB(ctx, cfg.Storage.PostgresURL)
		if err != nil {
			lg.Close()
			return nil, nil, err
		}
		retriever = &store.Retriever{
			DB:        db,
			Embedder:  embedder,
			Threshold: cfg.Retrieval.SimilarityThreshold,
			DocID:     cfg.Document.Path,
		}
		cleanup = func() { db.Close(); lg.Close() }
	} else {
		_, ix, err := bot.LoadAndIndex(ctx, lg, embedder, cfg.Document.Path, cfg.Retrieval.SimilarityThreshold)
		if err != nil {
			lg.Close()
			return nil, nil, err
		}
		retriever = ix
	}

	b := bot.New(retriever, answerer, lg, bot.Options{
		ConfidenceThreshold: cfg.Feedback.ConfidenceThreshold,
		MaxIterations:       cfg.Feedback.MaxIterations,
	})
	return b, cleanup, nil
}
