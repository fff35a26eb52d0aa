// Package narrative asks a Gemini model for a short underwriter summary of a
// scored application.
package narrative

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/dvloznov/hcstc-decisioning/internal/metrics"
	"github.com/dvloznov/hcstc-decisioning/internal/scoring"
)

// DefaultModelName is the Gemini model used when none is configured.
const DefaultModelName = "gemini-2.5-flash"

// Narrative is the model's reading of a decision.
type Narrative struct {
	Summary  string   `json:"summary"`
	Concerns []string `json:"concerns"`
}

// Generator is the subset of genai.Models used here.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Summarizer produces narratives with a Generator.
type Summarizer struct {
	gen   Generator
	model string
}

// NewSummarizer wraps an existing Generator.
func NewSummarizer(gen Generator, model string) *Summarizer {
	if model == "" {
		model = DefaultModelName
	}
	return &Summarizer{gen: gen, model: model}
}

// NewGeminiSummarizer creates a genai client from the environment
// (GOOGLE_API_KEY or Vertex AI settings).
func NewGeminiSummarizer(ctx context.Context, model string) (*Summarizer, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("NewGeminiSummarizer: create genai client: %w", err)
	}
	return NewSummarizer(client.Models, model), nil
}

// Summarize returns the model's summary for the decision. It never alters
// the result.
func (s *Summarizer) Summarize(ctx context.Context, result scoring.Result, m metrics.Metrics) (*Narrative, error) {
	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: buildPrompt(result, m)}},
		},
	}

	resp, err := s.gen.GenerateContent(ctx, s.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("Summarize: generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return nil, errors.New("Summarize: empty response from model")
	}

	var n Narrative
	if err := json.Unmarshal([]byte(cleanModelJSON(rawText)), &n); err != nil {
		return nil, fmt.Errorf("Summarize: unmarshal JSON: %w\nraw response: %s", err, rawText)
	}
	if n.Summary == "" {
		return nil, errors.New("Summarize: model returned no summary")
	}
	return &n, nil
}

// cleanModelJSON strips Markdown fences and any text around the outermost
// JSON object.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		idx := strings.Index(s, "\n")
		if idx == -1 {
			return s
		}
		s = strings.TrimSpace(s[idx+1:])
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}
	return s
}
