// Package qa produces answers to queries from a retrieved context section.
package qa

import (
	"context"
	"fmt"

	"support-bot/internal/models"
)

// FallbackText is the fixed answer for out-of-scope queries and model
// failures.
const FallbackText = "I don't have enough information to answer that."

// AnswerError wraps a QA model invocation failure. Callers log it and
// convert to FallbackText.
type AnswerError struct {
	Model string
	Err   error
}

func (e *AnswerError) Error() string { return fmt.Sprintf("answer (%s): %v", e.Model, e.Err) }
func (e *AnswerError) Unwrap() error { return e.Err }

// Answerer generates an answer to a query given a context section.
type Answerer interface {
	Answer(ctx context.Context, query string, section *models.Section) (models.Answer, error)
}

// Fallback returns the canned no-information answer, optionally attributed
// to the section that was (un)retrieved.
func Fallback(section *models.Section) models.Answer {
	return models.Answer{Text: FallbackText, Confidence: 0, Section: section}
}
