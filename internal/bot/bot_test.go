package bot

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"support-bot/internal/models"
	"support-bot/internal/qa"
)

// scriptedRetriever matches queries to section indexes deterministically.
type scriptedRetriever struct {
	sections []models.Section
	matches  map[string]int
	calls    []string
}

func (r *scriptedRetriever) Retrieve(_ context.Context, query string) (models.RetrievalResult, error) {
	r.calls = append(r.calls, query)
	idx, ok := r.matches[query]
	if !ok {
		return models.RetrievalResult{Score: 0.1}, nil
	}
	s := r.sections[idx]
	return models.RetrievalResult{Section: &s, Score: 0.9}, nil
}

func (r *scriptedRetriever) SectionAt(_ context.Context, idx int) (*models.Section, error) {
	if idx < 0 || idx >= len(r.sections) {
		return nil, nil
	}
	s := r.sections[idx]
	return &s, nil
}

// scriptedAnswerer returns canned answers keyed by the context text it was
// handed, so augmented contexts can be scripted separately.
type scriptedAnswerer struct {
	byContext map[string]models.Answer
	err       error
	calls     int
}

func (a *scriptedAnswerer) Answer(_ context.Context, _ string, section *models.Section) (models.Answer, error) {
	a.calls++
	if a.err != nil {
		return models.Answer{}, a.err
	}
	if section == nil {
		return qa.Fallback(nil), nil
	}
	if ans, ok := a.byContext[section.Text]; ok {
		ans.Section = section
		return ans, nil
	}
	return qa.Fallback(section), nil
}

func testOptions() Options {
	return Options{ConfidenceThreshold: 0.35, MaxIterations: 2}
}

func TestProcessGoodOnFirstIteration(t *testing.T) {
	t.Parallel()
	retriever := &scriptedRetriever{
		sections: []models.Section{{Index: 0, Text: "Q: How do I reset my password? A: Go to settings > reset."}},
		matches:  map[string]int{"How do I reset my password?": 0},
	}
	answerer := &scriptedAnswerer{byContext: map[string]models.Answer{
		"Q: How do I reset my password? A: Go to settings > reset.": {Text: "Go to settings > reset.", Confidence: 0.8},
	}}
	b := New(retriever, answerer, nil, testOptions())

	result, err := b.Process(context.Background(), "How do I reset my password?")
	if err != nil {
		t.Fatalf("Process() error: %v", err)
	}

	if got := result.Verdicts(); !reflect.DeepEqual(got, []models.Verdict{models.VerdictGood}) {
		t.Errorf("verdicts = %v, want [good]", got)
	}
	if result.Exchanges[0].State != string(StateInitial) {
		t.Errorf("exchange state = %q, want initial", result.Exchanges[0].State)
	}
	if answerer.calls != 1 {
		t.Errorf("answerer invoked %d times, want 1", answerer.calls)
	}
	if result.Final.Text != "Go to settings > reset." {
		t.Errorf("final answer = %q", result.Final.Text)
	}
}

func TestProcessNoMatchFallbackAndRephrase(t *testing.T) {
	t.Parallel()
	retriever := &scriptedRetriever{
		sections: []models.Section{{Index: 0, Text: "password reset instructions"}},
		matches:  map[string]int{},
	}
	answerer := &scriptedAnswerer{}
	b := New(retriever, answerer, nil, testOptions())

	result, err := b.Process(context.Background(), "How do I fly to the moon?")
	if err != nil {
		t.Fatalf("Process() error: %v", err)
	}

	// No match means the QA model is never invoked.
	if answerer.calls != 0 {
		t.Errorf("answerer invoked %d times, want 0", answerer.calls)
	}
	if result.Final.Text != qa.FallbackText {
		t.Errorf("final answer = %q, want fallback", result.Final.Text)
	}

	wantVerdicts := []models.Verdict{models.VerdictNotHelpful, models.VerdictNotHelpful}
	if got := result.Verdicts(); !reflect.DeepEqual(got, wantVerdicts) {
		t.Errorf("verdicts = %v, want %v", got, wantVerdicts)
	}

	// not_helpful re-runs the whole chain with a rephrased query after each
	// of the two classifications, so the retriever is invoked three times.
	wantCalls := []string{
		"How do I fly to the moon?",
		RephrasePrefix + "How do I fly to the moon?",
		RephrasePrefix + "How do I fly to the moon?",
	}
	if !reflect.DeepEqual(retriever.calls, wantCalls) {
		t.Errorf("retriever calls = %v, want %v", retriever.calls, wantCalls)
	}
}

func TestProcessTooVagueAugmentsWithNeighbor(t *testing.T) {
	t.Parallel()
	retriever := &scriptedRetriever{
		sections: []models.Section{
			{Index: 0, Text: "first section"},
			{Index: 1, Text: "second section"},
		},
		matches: map[string]int{"question": 0},
	}
	answerer := &scriptedAnswerer{byContext: map[string]models.Answer{
		"first section":                   {Text: "vague", Confidence: 0.1},
		"first section\n\nsecond section": {Text: "detailed answer", Confidence: 0.9},
	}}
	b := New(retriever, answerer, nil, testOptions())

	result, err := b.Process(context.Background(), "question")
	if err != nil {
		t.Fatalf("Process() error: %v", err)
	}

	wantVerdicts := []models.Verdict{models.VerdictTooVague, models.VerdictGood}
	if got := result.Verdicts(); !reflect.DeepEqual(got, wantVerdicts) {
		t.Errorf("verdicts = %v, want %v", got, wantVerdicts)
	}
	if result.Final.Text != "detailed answer" {
		t.Errorf("final answer = %q, want the augmented one", result.Final.Text)
	}
	if result.Exchanges[1].State != string(StateRefined) {
		t.Errorf("second exchange state = %q, want refined", result.Exchanges[1].State)
	}
	if answerer.calls != 2 {
		t.Errorf("answerer invoked %d times, want 2", answerer.calls)
	}
}

func TestProcessNeverExceedsIterationCap(t *testing.T) {
	t.Parallel()
	retriever := &scriptedRetriever{
		sections: []models.Section{
			{Index: 0, Text: "alpha"},
			{Index: 1, Text: "beta"},
		},
		matches: map[string]int{"q": 0},
	}
	// Every context yields a low-confidence answer, so the verdict is
	// too_vague forever; the loop must still stop after MaxIterations.
	// The second too_vague re-augments the already-augmented context.
	answerer := &scriptedAnswerer{byContext: map[string]models.Answer{
		"alpha":                 {Text: "meh", Confidence: 0.01},
		"alpha\n\nbeta":         {Text: "still meh", Confidence: 0.01},
		"alpha\n\nbeta\n\nbeta": {Text: "final meh", Confidence: 0.01},
	}}
	b := New(retriever, answerer, nil, testOptions())

	result, err := b.Process(context.Background(), "q")
	if err != nil {
		t.Fatalf("Process() error: %v", err)
	}
	if len(result.Exchanges) != 2 {
		t.Fatalf("loop classified %d times, want exactly 2", len(result.Exchanges))
	}
	wantVerdicts := []models.Verdict{models.VerdictTooVague, models.VerdictTooVague}
	if got := result.Verdicts(); !reflect.DeepEqual(got, wantVerdicts) {
		t.Errorf("verdicts = %v, want %v", got, wantVerdicts)
	}
	if result.Final.Text != "final meh" {
		t.Errorf("final answer = %q, want the latest answer", result.Final.Text)
	}
}

func TestProcessSingleSectionAugmentKeepsAnswer(t *testing.T) {
	t.Parallel()
	retriever := &scriptedRetriever{
		sections: []models.Section{{Index: 0, Text: "only"}},
		matches:  map[string]int{"q": 0},
	}
	answerer := &scriptedAnswerer{byContext: map[string]models.Answer{
		"only": {Text: "short", Confidence: 0.1},
	}}
	b := New(retriever, answerer, nil, testOptions())

	result, err := b.Process(context.Background(), "q")
	if err != nil {
		t.Fatalf("Process() error: %v", err)
	}
	// Nothing to augment with, so the answer carries through unchanged.
	if result.Final.Text != "short" {
		t.Errorf("final answer = %q, want %q", result.Final.Text, "short")
	}
}

func TestProcessAnswererFailureDegradesToFallback(t *testing.T) {
	t.Parallel()
	retriever := &scriptedRetriever{
		sections: []models.Section{{Index: 0, Text: "section"}},
		matches:  map[string]int{"q": 0, RephrasePrefix + "q": 0},
	}
	answerer := &scriptedAnswerer{err: errors.New("model unavailable")}
	b := New(retriever, answerer, nil, testOptions())

	result, err := b.Process(context.Background(), "q")
	if err != nil {
		t.Fatalf("Process() must not fail on model errors, got: %v", err)
	}
	if result.Final.Text != qa.FallbackText {
		t.Errorf("final answer = %q, want fallback", result.Final.Text)
	}
}

func TestProcessIsIdempotent(t *testing.T) {
	t.Parallel()
	newBot := func() (*Bot, *scriptedAnswerer) {
		retriever := &scriptedRetriever{
			sections: []models.Section{
				{Index: 0, Text: "first section"},
				{Index: 1, Text: "second section"},
			},
			matches: map[string]int{"question": 0},
		}
		answerer := &scriptedAnswerer{byContext: map[string]models.Answer{
			"first section":                   {Text: "vague", Confidence: 0.1},
			"first section\n\nsecond section": {Text: "detailed answer", Confidence: 0.9},
		}}
		return New(retriever, answerer, nil, testOptions()), answerer
	}

	b1, _ := newBot()
	b2, _ := newBot()
	r1, err1 := b1.Process(context.Background(), "question")
	r2, err2 := b2.Process(context.Background(), "question")
	if err1 != nil || err2 != nil {
		t.Fatalf("Process() errors: %v, %v", err1, err2)
	}
	if !reflect.DeepEqual(r1, r2) {
		t.Errorf("identical inputs produced different results:\n%+v\n%+v", r1, r2)
	}
}

func TestClassifyRuleTable(t *testing.T) {
	t.Parallel()
	b := New(nil, nil, nil, testOptions())

	cases := []struct {
		name   string
		answer models.Answer
		want   models.Verdict
	}{
		{"confident", models.Answer{Text: "solid answer", Confidence: 0.8}, models.VerdictGood},
		{"low confidence", models.Answer{Text: "something", Confidence: 0.2}, models.VerdictTooVague},
		{"empty", models.Answer{Text: "", Confidence: 0.9}, models.VerdictNotHelpful},
		{"fallback", models.Answer{Text: qa.FallbackText, Confidence: 0}, models.VerdictNotHelpful},
		{"at threshold", models.Answer{Text: "x", Confidence: 0.35}, models.VerdictGood},
	}
	for _, tc := range cases {
		if got := b.classify(tc.answer); got != tc.want {
			t.Errorf("%s: classify = %s, want %s", tc.name, got, tc.want)
		}
	}
}
