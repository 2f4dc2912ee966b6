package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"support-bot/internal/models"
)

// botRunner is what the REPL needs from the bot.
type botRunner interface {
	Process(ctx context.Context, query string) (models.Result, error)
}

func askCMD() *cobra.Command {
	var (
		queryFlag   string
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "ask",
		Short: "Answer a single question, or chat interactively with -i",
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

			if interactive {
				runInteractive(ctx, b)
				return nil
			}

			if queryFlag == "" {
				return errors.New("query is required in non-interactive mode, use -q 'your question'")
			}
			result, err := b.Process(ctx, queryFlag)
			if err != nil {
				return err
			}
			printResult(result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&queryFlag, "query", "q", "", "Question to answer (non-interactive mode)")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Run in interactive mode")
	return cmd
}

func runInteractive(ctx context.Context, b botRunner) {
	scanner := bufio.NewScanner(os.Stdin)

	fmt.Println("Support Bot - Ask questions about the loaded document (type 'exit' to quit)")

	for {
		fmt.Print("\n> ")
		if !scanner.Scan() {
			break
		}

		input := scanner.Text()
		if strings.ToLower(input) == "exit" || strings.ToLower(input) == "quit" {
			break
		}
		if strings.TrimSpace(input) == "" {
			continue
		}

		fmt.Print("Thinking... ")
		result, err := b.Process(ctx, input)
		if err != nil {
			fmt.Printf("\rError: %v\n", err)
			continue
		}
		fmt.Println("\r" + result.Final.Text)
		fmt.Printf("  (feedback trail: %v)\n", result.Verdicts())
	}
}
