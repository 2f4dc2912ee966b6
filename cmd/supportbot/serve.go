package main

import (
	"context"
	"log"

	"github.com/spf13/cobra"

	"support-bot/internal/botlog"
	"support-bot/internal/embedding"
	"support-bot/internal/qa"
	"support-bot/internal/server"
	"support-bot/internal/telemetry"
)

func serveCMD() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the upload-and-ask web front end",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
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
			answerer, err := qa.NewOllamaAnswerer(cfg.Ollama.Host, cfg.Ollama.QAModel)
			if err != nil {
				return err
			}

			metrics := telemetry.New(nil)

			srv, err := server.New(ctx, cfg, embedder, answerer, lg, metrics)
			if err != nil {
				return err
			}
			log.Printf("listening on %s", cfg.Server.Address)
			return srv.Start()
		},
	}
}
