package pipeline

import (
	"context"
	"fmt"

	"github.com/dvloznov/hcstc-decisioning/internal/categorisation"
	"github.com/dvloznov/hcstc-decisioning/internal/domain"
	"github.com/dvloznov/hcstc-decisioning/internal/income"
	"github.com/dvloznov/hcstc-decisioning/internal/ingest"
	"github.com/dvloznov/hcstc-decisioning/internal/logger"
	"github.com/dvloznov/hcstc-decisioning/internal/metrics"
	"github.com/dvloznov/hcstc-decisioning/internal/scoring"
)

// Dependencies are the collaborators of a decision pipeline. Narrator and
// Decisions are optional.
type Dependencies struct {
	Categorizer   Categorizer
	Calculator    MetricsCalculator
	Scorer        Scorer
	Narrator      Narrator
	Decisions     DecisionWriter
	DefaultAmount float64
	DefaultTerm   int
}

// CoreDependencies builds the categoriser, calculator and engine for a
// validated scoring configuration.
func CoreDependencies(cfg scoring.Config) (Dependencies, error) {
	engine, err := scoring.NewEngine(cfg)
	if err != nil {
		return Dependencies{}, fmt.Errorf("CoreDependencies: %w", err)
	}
	return Dependencies{
		Categorizer:   categorisation.New(income.NewDetector(income.DefaultConfig())),
		Calculator:    metrics.NewCalculator(cfg.MetricsConfig()),
		Scorer:        engine,
		DefaultAmount: cfg.Product.DefaultAmount,
		DefaultTerm:   cfg.Product.DefaultTerm,
	}, nil
}

// NewDecisionPipeline creates the standard pipeline: defaults, categorise,
// metrics, score, then narrate and persist when those collaborators are
// present.
func NewDecisionPipeline(deps Dependencies) *Pipeline {
	steps := []PipelineStep{
		&DefaultsStep{Amount: deps.DefaultAmount, Term: deps.DefaultTerm},
		&CategorizeStep{Categorizer: deps.Categorizer},
		&MetricsStep{Calculator: deps.Calculator},
		&ScoreStep{Scorer: deps.Scorer},
	}
	if deps.Narrator != nil {
		steps = append(steps, &NarrateStep{Narrator: deps.Narrator})
	}
	if deps.Decisions != nil {
		steps = append(steps, &PersistDecisionStep{Decisions: deps.Decisions})
	}
	return NewPipeline(steps...)
}

// Decide runs the pipeline for one application.
func (p *Pipeline) Decide(ctx context.Context, app domain.Application) (*DecisionState, error) {
	ctx = logger.WithApplication(ctx, app.ID)
	state := &DecisionState{Application: app}
	if err := p.Execute(ctx, state); err != nil {
		return state, err
	}
	return state, nil
}

// ScorePayload parses a raw JSON payload and decides it.
func (p *Pipeline) ScorePayload(ctx context.Context, raw []byte) (*DecisionState, error) {
	app, err := ingest.ParseApplication(raw)
	if err != nil {
		return nil, err
	}
	return p.Decide(ctx, app)
}

// ScoreFromGCS fetches an application payload stored in GCS and decides it.
// gcsURI should look like: "gs://bucket/path/to/application.json".
func (p *Pipeline) ScoreFromGCS(ctx context.Context, storage StorageService, gcsURI string) (*DecisionState, error) {
	if storage == nil {
		return nil, fmt.Errorf("ScoreFromGCS: %w: storage", ErrMissingCapability)
	}
	raw, err := storage.FetchFromGCS(ctx, gcsURI)
	if err != nil {
		return nil, fmt.Errorf("ScoreFromGCS: %w", err)
	}

	log := logger.FromContext(ctx)
	log.Debug().Str("gcs_uri", gcsURI).Int("bytes", len(raw)).Msg("Fetched application payload")

	return p.ScorePayload(ctx, raw)
}
