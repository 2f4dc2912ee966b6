package qa

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"support-bot/internal/models"

	"github.com/ollama/ollama/api"
	"github.com/ollama/ollama/envconfig"
)

// OllamaAnswerer answers queries via the Ollama generate API, constrained to
// extract from the provided context section.
type OllamaAnswerer struct {
	Client  *api.Client
	Model   string
	Timeout time.Duration
}

// NewOllamaAnswerer creates a new Ollama QA client. An empty host defers to
// the OLLAMA_HOST environment variable.
func NewOllamaAnswerer(host string, model string) (*OllamaAnswerer, error) {
	hostURL := envconfig.Host()
	if host != "" {
		parsed, err := url.Parse(host)
		if err != nil {
			return nil, &AnswerError{Model: model, Err: err}
		}
		hostURL = parsed
	}
	client := api.NewClient(hostURL, http.DefaultClient)

	return &OllamaAnswerer{
		Client:  client,
		Model:   model,
		Timeout: time.Second * 60,
	}, nil
}

// Answer short-circuits to the fallback text when no section was retrieved;
// otherwise it invokes the model with (query, context) and scores the
// answer's confidence by how well it is grounded in the section text.
func (o *OllamaAnswerer) Answer(ctx context.Context, query string, section *models.Section) (models.Answer, error) {
	if section == nil || len(strings.TrimSpace(section.Text)) < 10 {
		return Fallback(section), nil
	}

	prompt := buildPrompt(query, section.Text)

	req := api.GenerateRequest{
		Model:  o.Model,
		Prompt: prompt,
		Options: map[string]interface{}{
			"temperature": 0.0,
			"num_predict": 256,
		},
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, o.Timeout)
	defer cancel()

	var responseBuilder strings.Builder
	err := o.Client.Generate(ctxWithTimeout, &req, func(resp api.GenerateResponse) error {
		_, err := responseBuilder.WriteString(resp.Response)
		return err
	})
	if err != nil {
		return models.Answer{}, &AnswerError{Model: o.Model, Err: err}
	}

	text := strings.TrimSpace(responseBuilder.String())
	return models.Answer{
		Text:       text,
		Confidence: Confidence(text, section.Text),
		Section:    section,
	}, nil
}

// buildPrompt instructs the model to answer strictly from the given context,
// keeping the answer span-like rather than free-form.
func buildPrompt(query, context string) string {
	var sb strings.Builder
	sb.WriteString("You are a customer support assistant. ")
	sb.WriteString("Answer the question using only the provided context, quoting it where possible. ")
	sb.WriteString("If the context does not contain the answer, reply exactly: ")
	sb.WriteString(FallbackText)
	sb.WriteString("\n\nContext:\n")
	sb.WriteString(context)
	sb.WriteString("\n\nQuestion: ")
	sb.WriteString(query)
	sb.WriteString("\n\nAnswer: ")
	return sb.String()
}
