// Package bot orchestrates the retrieve-answer-feedback pipeline with a
// fixed-depth scripted refinement loop.
package bot

import (
	"context"
	"strings"

	"support-bot/internal/botlog"
	"support-bot/internal/models"
	"support-bot/internal/qa"
	"support-bot/internal/telemetry"
)

// Retriever finds the most relevant section for a query and resolves
// sections by index for neighboring-context augmentation. Implemented by
// the in-memory index and the Postgres-backed store.
type Retriever interface {
	Retrieve(ctx context.Context, query string) (models.RetrievalResult, error)
	SectionAt(ctx context.Context, idx int) (*models.Section, error)
}

// State of the refinement loop for a single query.
type State string

const (
	StateInitial State = "initial"
	StateRefined State = "refined"
	StateDone    State = "done"
)

// RephrasePrefix is prepended to the query when simulated feedback judges an
// answer not helpful and the full retrieval chain is re-run.
const RephrasePrefix = "Please explain: "

// Options tune the simulated-feedback loop.
type Options struct {
	// ConfidenceThreshold below which an answer is judged too vague.
	ConfidenceThreshold float64
	// MaxIterations caps refinement iterations per query. This is a hard
	// cap, not a convergence criterion.
	MaxIterations int
	// Metrics is optional; nil disables counting.
	Metrics *telemetry.Metrics
}

// Bot answers queries against a read-only retriever, simulating user
// feedback to drive at most MaxIterations deterministic refinements.
type Bot struct {
	retriever Retriever
	answerer  qa.Answerer
	log       *botlog.Logger
	opts      Options
}

// New creates a bot. A nil logger discards stage events.
func New(retriever Retriever, answerer qa.Answerer, lg *botlog.Logger, opts Options) *Bot {
	if lg == nil {
		lg = botlog.Discard()
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = 2
	}
	return &Bot{retriever: retriever, answerer: answerer, log: lg, opts: opts}
}

// Process runs the full pipeline for one query: initial answer, then up to
// MaxIterations classify-and-adjust rounds. Re-running the same query
// against an unchanged index yields an identical result.
func (b *Bot) Process(ctx context.Context, query string) (models.Result, error) {
	if m := b.opts.Metrics; m != nil {
		m.QueriesTotal.Inc()
	}

	result := models.Result{Query: query}
	answer := b.answerOnce(ctx, query)
	state := StateInitial

	for iter := 0; iter < b.opts.MaxIterations; iter++ {
		verdict := b.classify(answer)
		b.log.Event(botlog.StageFeedback, "query=%q iteration=%d verdict=%s", query, iter+1, verdict)
		if m := b.opts.Metrics; m != nil {
			m.IterationsTotal.Inc()
			m.VerdictsTotal.WithLabelValues(string(verdict)).Inc()
		}
		result.Exchanges = append(result.Exchanges, models.Exchange{Answer: answer, Verdict: verdict, State: string(state)})

		if verdict == models.VerdictGood {
			break
		}

		switch verdict {
		case models.VerdictTooVague:
			answer = b.augment(ctx, query, answer)
		case models.VerdictNotHelpful:
			answer = b.answerOnce(ctx, RephrasePrefix+query)
		}
		state = StateRefined
	}

	// Hard iteration cap: whatever the last verdict was, the loop ends here
	// in StateDone with the latest answer.
	result.Final = answer
	if answer.Text == qa.FallbackText {
		if m := b.opts.Metrics; m != nil {
			m.FallbacksTotal.Inc()
		}
	}
	b.log.Event(botlog.StageFinal, "query=%q verdicts=%v answer=%q", query, result.Verdicts(), truncate(answer.Text, 120))

	return result, nil
}

// answerOnce runs one retrieve-then-answer pass. Every failure degrades to
// the fallback answer; nothing here is fatal to query processing.
func (b *Bot) answerOnce(ctx context.Context, query string) models.Answer {
	retrieval, err := b.retriever.Retrieve(ctx, query)
	if err != nil {
		b.log.Event(botlog.StageRetrieve, "query=%q error: %v", query, err)
		return qa.Fallback(nil)
	}

	if !retrieval.Matched() {
		b.log.Event(botlog.StageRetrieve, "query=%q no match (best score %.3f)", query, retrieval.Score)
		b.log.Event(botlog.StageAnswer, "query=%q fallback (no context)", query)
		return qa.Fallback(nil)
	}
	b.log.Event(botlog.StageRetrieve, "query=%q section=%d score=%.3f", query, retrieval.Section.Index, retrieval.Score)

	answer, err := b.answerer.Answer(ctx, query, retrieval.Section)
	if err != nil {
		b.log.Event(botlog.StageAnswer, "query=%q error: %v", query, err)
		return qa.Fallback(retrieval.Section)
	}
	b.log.Event(botlog.StageAnswer, "query=%q confidence=%.3f answer=%q", query, answer.Confidence, truncate(answer.Text, 120))

	return answer
}

// classify is the deterministic simulated-feedback rule table. The fallback
// and empty-answer cases take precedence over the confidence check so that
// out-of-scope queries are judged not helpful rather than merely vague.
func (b *Bot) classify(answer models.Answer) models.Verdict {
	if strings.TrimSpace(answer.Text) == "" || answer.Text == qa.FallbackText {
		return models.VerdictNotHelpful
	}
	if answer.Confidence < b.opts.ConfidenceThreshold {
		return models.VerdictTooVague
	}
	return models.VerdictGood
}

// augment re-invokes the answerer with the previous section extended by its
// neighboring section (next by index, previous when at the end).
func (b *Bot) augment(ctx context.Context, query string, prev models.Answer) models.Answer {
	if prev.Section == nil {
		return b.answerOnce(ctx, query)
	}

	neighbor, err := b.retriever.SectionAt(ctx, prev.Section.Index+1)
	if err != nil || neighbor == nil {
		neighbor, err = b.retriever.SectionAt(ctx, prev.Section.Index-1)
	}
	if err != nil || neighbor == nil {
		// Single-section document: nothing extra to add.
		return prev
	}

	combined := &models.Section{
		Index: prev.Section.Index,
		Text:  prev.Section.Text + "\n\n" + neighbor.Text,
	}
	answer, err := b.answerer.Answer(ctx, query, combined)
	if err != nil {
		b.log.Event(botlog.StageAnswer, "query=%q error: %v", query, err)
		return qa.Fallback(combined)
	}
	b.log.Event(botlog.StageAnswer, "query=%q augmented confidence=%.3f answer=%q", query, answer.Confidence, truncate(answer.Text, 120))

	return answer
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
