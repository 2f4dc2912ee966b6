package main

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"support-bot/internal/bot"
	"support-bot/internal/models"
)

// sampleQueries is the canned demo: three in-scope questions plus one
// out-of-scope query that exercises the fallback path.
var sampleQueries = []string{
	"How do I reset my password?",
	"What's the refund policy?",
	"How do I contact support?",
	"How do I fly to the moon?",
}

func runCMD() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the batch demo over the sample queries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx := context.Background()
			b, cleanup, err := buildBot(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			for _, query := range sampleQueries {
				result, err := b.Process(ctx, query)
				if err != nil {
					log.Printf("failed to process %q: %v", query, err)
					continue
				}
				printResult(result)
				fmt.Println()
			}
			return nil
		},
	}
}

func printResult(result models.Result) {
	for i, ex := range result.Exchanges {
		if ex.State == string(bot.StateInitial) {
			fmt.Printf("Initial Response to '%s': %s\n", result.Query, ex.Answer.Text)
		} else {
			fmt.Printf("Updated Response to '%s' (iter %d): %s\n", result.Query, i, ex.Answer.Text)
		}
		fmt.Printf("  Feedback: %s\n", ex.Verdict)
	}
	fmt.Printf("Final Response to '%s': %s\n", result.Query, result.Final.Text)
}
