package main

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/spf13/cobra"

	"support-bot/internal/botlog"
	"support-bot/internal/embedding"
	"support-bot/internal/store"
)

func indexCMD() *cobra.Command {
	var docPath string

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Load, split and embed a document into the Postgres store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Storage.PostgresURL == "" {
				return errors.New("storage.postgres_url must be configured for indexing")
			}
			if docPath == "" {
				docPath = cfg.Document.Path
			}

			ctx := context.Background()

			lg, err := botlog.Open(cfg.LogFile)
			if err != nil {
				log.Printf("stage log unavailable: %v", err)
			}
			defer lg.Close()

			embedder, err := embedding.NewOllamaEmbedder(cfg.Ollama.Host, cfg.Ollama.EmbeddingModel)
			if err != nil {
				return err
			}

			db, err := store.NewDB(ctx, cfg.Storage.PostgresURL)
			if err != nil {
				return err
			}
			defer db.Close()

			start := time.Now()
			count, err := store.IndexDocument(ctx, lg, db, embedder, docPath)
			if err != nil {
				return err
			}
			log.Printf("Indexed %d sections from %s in %v", count, docPath, time.Since(start).Round(time.Millisecond))

			total, err := db.CountSections(ctx)
			if err != nil {
				return err
			}
			log.Printf("Store now holds %d sections", total)
			return nil
		},
	}

	cmd.Flags().StringVar(&docPath, "doc", "", "Path to the document (defaults to document.path from config)")
	return cmd
}
