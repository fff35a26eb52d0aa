package narrative

import (
	"context"
	"errors"
	"strings"
	"testing"

	"google.golang.org/genai"

	"github.com/dvloznov/hcstc-decisioning/internal/metrics"
	"github.com/dvloznov/hcstc-decisioning/internal/scoring"
)

// MockGenerator is a mock implementation of Generator.
type MockGenerator struct {
	GenerateContentFunc func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

func (m *MockGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return m.GenerateContentFunc(ctx, model, contents, config)
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Role: "model", Parts: []*genai.Part{{Text: text}}}},
		},
	}
}

func referResult() scoring.Result {
	return scoring.Result{
		ApplicationID:   "app-1",
		Decision:        scoring.Refer,
		Score:           64,
		RiskLevel:       scoring.RiskHigh,
		ReferralReasons: []string{"bank_charges: 3 bank charges in the last 90 days"},
	}
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name         string
		reply        string
		wantSummary  string
		wantConcerns int
		wantErr      bool
	}{
		{
			name:         "plain json",
			reply:        `{"summary": "Stable salary, recent charges.", "concerns": ["bank charges"]}`,
			wantSummary:  "Stable salary, recent charges.",
			wantConcerns: 1,
		},
		{
			name:        "fenced json",
			reply:       "```json\n{\"summary\": \"Looks fine.\", \"concerns\": []}\n```",
			wantSummary: "Looks fine.",
		},
		{
			name:        "chatter around object",
			reply:       "Here you go: {\"summary\": \"Fine.\"} Hope that helps.",
			wantSummary: "Fine.",
		},
		{
			name:    "not json",
			reply:   "I cannot help with that.",
			wantErr: true,
		},
		{
			name:    "missing summary",
			reply:   `{"concerns": ["x"]}`,
			wantErr: true,
		},
		{
			name:    "empty reply",
			reply:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &MockGenerator{
				GenerateContentFunc: func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
					return textResponse(tt.reply), nil
				},
			}
			n, err := NewSummarizer(gen, "").Summarize(context.Background(), referResult(), metrics.Metrics{})
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", n)
				}
				return
			}
			if err != nil {
				t.Fatalf("Summarize() error = %v", err)
			}
			if n.Summary != tt.wantSummary {
				t.Errorf("Summary = %q, want %q", n.Summary, tt.wantSummary)
			}
			if len(n.Concerns) != tt.wantConcerns {
				t.Errorf("Concerns = %v, want %d entries", n.Concerns, tt.wantConcerns)
			}
		})
	}
}

func TestSummarizePromptCarriesDecision(t *testing.T) {
	var gotModel, gotPrompt string
	gen := &MockGenerator{
		GenerateContentFunc: func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			gotModel = model
			gotPrompt = contents[0].Parts[0].Text
			return textResponse(`{"summary": "ok"}`), nil
		},
	}

	if _, err := NewSummarizer(gen, "").Summarize(context.Background(), referResult(), metrics.Metrics{}); err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if gotModel != DefaultModelName {
		t.Errorf("model = %q, want %q", gotModel, DefaultModelName)
	}
	for _, want := range []string{"Decision: REFER", "bank_charges: 3 bank charges"} {
		if !strings.Contains(gotPrompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestSummarizeGeneratorError(t *testing.T) {
	gen := &MockGenerator{
		GenerateContentFunc: func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return nil, errors.New("quota exceeded")
		},
	}
	if _, err := NewSummarizer(gen, "gemini-x").Summarize(context.Background(), referResult(), metrics.Metrics{}); err == nil {
		t.Fatal("expected error")
	}
}
