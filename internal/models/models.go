package models

// DocumentFormat identifies how a source document is parsed.
type DocumentFormat string

const (
	FormatText DocumentFormat = "text"
	FormatPDF  DocumentFormat = "pdf"
)

// Document is the raw source material, immutable once loaded.
type Document struct {
	ID     string         `json:"id"`
	Path   string         `json:"path"`
	Format DocumentFormat `json:"format"`
	Text   string         `json:"-"`
}

// Section is a paragraph-level chunk of the document, the unit of retrieval.
// Index is the 0-based position in the document; order is preserved so
// retrieval ties resolve deterministically.
type Section struct {
	Index     int       `json:"index"`
	Text      string    `json:"text"`
	Embedding []float64 `json:"embedding,omitempty"`
}

// RetrievalResult is the outcome of a nearest-section lookup. Section is nil
// only when the best similarity fell below the configured threshold.
type RetrievalResult struct {
	Section *Section `json:"section,omitempty"`
	Score   float64  `json:"score"`
}

// Matched reports whether retrieval found a section above the threshold.
func (r RetrievalResult) Matched() bool { return r.Section != nil }

// Answer is a single answer produced by the QA model (or the fallback path).
// Answers are never mutated; each refinement iteration produces a new one.
type Answer struct {
	Text       string   `json:"text"`
	Confidence float64  `json:"confidence"`
	Section    *Section `json:"section,omitempty"`
}

// Verdict is the simulated feedback classification of an answer.
type Verdict string

const (
	VerdictGood       Verdict = "good"
	VerdictTooVague   Verdict = "too_vague"
	VerdictNotHelpful Verdict = "not_helpful"
)

// Exchange records one iteration of the refinement loop: the answer the bot
// produced, the simulated verdict it received, and the loop state in which
// the classification happened.
type Exchange struct {
	Answer  Answer  `json:"answer"`
	Verdict Verdict `json:"verdict"`
	State   string  `json:"state"`
}

// Result is the full outcome of processing one query, including the
// per-iteration trace.
type Result struct {
	Query     string     `json:"query"`
	Final     Answer     `json:"final"`
	Exchanges []Exchange `json:"exchanges"`
}

// Verdicts returns the verdict sequence in iteration order.
func (r Result) Verdicts() []Verdict {
	out := make([]Verdict, len(r.Exchanges))
	for i, ex := range r.Exchanges {
		out[i] = ex.Verdict
	}
	return out
}
