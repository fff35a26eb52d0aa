package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dvloznov/hcstc-decisioning/internal/categorisation"
	"github.com/dvloznov/hcstc-decisioning/internal/domain"
	infra "github.com/dvloznov/hcstc-decisioning/internal/infra/bigquery"
	"github.com/dvloznov/hcstc-decisioning/internal/ingest"
	"github.com/dvloznov/hcstc-decisioning/internal/logger"
	"github.com/dvloznov/hcstc-decisioning/internal/metrics"
	"github.com/dvloznov/hcstc-decisioning/internal/narrative"
	"github.com/dvloznov/hcstc-decisioning/internal/scoring"
)

// ErrMissingCapability is returned by a step whose collaborator is not set.
var ErrMissingCapability = errors.New("missing capability")

// PipelineStep represents a single step in the decision pipeline.
type PipelineStep interface {
	Execute(ctx context.Context, state *DecisionState) error
}

// DecisionState holds the shared state across all pipeline steps.
type DecisionState struct {
	Application domain.Application
	Matches     []domain.CategoryMatch
	Summary     categorisation.Summary
	Metrics     metrics.Metrics
	Result      scoring.Result
	Narrative   *narrative.Narrative
	DecisionID  string
}

// DefaultsStep fills in the requested loan when the payload omitted it.
type DefaultsStep struct {
	Amount float64
	Term   int
}

func (s *DefaultsStep) Execute(ctx context.Context, state *DecisionState) error {
	ingest.ApplyDefaults(&state.Application, s.Amount, s.Term)
	return nil
}

// CategorizeStep classifies the transactions and builds the summary.
type CategorizeStep struct {
	Categorizer Categorizer
}

func (s *CategorizeStep) Execute(ctx context.Context, state *DecisionState) error {
	if s.Categorizer == nil {
		return fmt.Errorf("CategorizeStep: %w: categorizer", ErrMissingCapability)
	}
	txns := state.Application.Transactions
	state.Matches = s.Categorizer.ClassifyBatch(txns)
	state.Summary = categorisation.Summarize(txns, state.Matches)

	log := logger.FromContext(ctx)
	log.Debug().
		Int("transactions", len(txns)).
		Int("buckets", len(state.Summary.Buckets)).
		Int("transfer_pairs", len(state.Summary.TransferPairs)).
		Msg("Transactions categorised")
	return nil
}

// MetricsStep computes the metric groups.
type MetricsStep struct {
	Calculator MetricsCalculator
}

func (s *MetricsStep) Execute(ctx context.Context, state *DecisionState) error {
	if s.Calculator == nil {
		return fmt.Errorf("MetricsStep: %w: metrics calculator", ErrMissingCapability)
	}
	state.Metrics = s.Calculator.Calculate(state.Application, state.Summary)

	log := logger.FromContext(ctx)
	log.Debug().
		Float64("monthly_income", state.Metrics.Income.MonthlyIncome).
		Float64("disposable", state.Metrics.Affordability.Disposable).
		Msg("Metrics calculated")
	return nil
}

// ScoreStep applies the scoring engine.
type ScoreStep struct {
	Scorer Scorer
}

func (s *ScoreStep) Execute(ctx context.Context, state *DecisionState) error {
	if s.Scorer == nil {
		return fmt.Errorf("ScoreStep: %w: scorer", ErrMissingCapability)
	}
	state.Result = s.Scorer.Score(state.Application.ID, state.Metrics)

	log := logger.FromContext(ctx)
	log.Info().
		Str("decision", string(state.Result.Decision)).
		Float64("score", state.Result.Score).
		Str("risk_level", string(state.Result.RiskLevel)).
		Msg("Application scored")
	return nil
}

// NarrateStep attaches a generated summary. Model failures are logged and
// leave the decision untouched.
type NarrateStep struct {
	Narrator Narrator
}

func (s *NarrateStep) Execute(ctx context.Context, state *DecisionState) error {
	if s.Narrator == nil {
		return fmt.Errorf("NarrateStep: %w: narrator", ErrMissingCapability)
	}
	n, err := s.Narrator.Summarize(ctx, state.Result, state.Metrics)
	if err != nil {
		log := logger.FromContext(ctx)
		log.Warn().Err(err).Msg("Narrative generation failed")
		return nil
	}
	state.Narrative = n
	return nil
}

// PersistDecisionStep writes the decision row.
type PersistDecisionStep struct {
	Decisions DecisionWriter
	Now       func() time.Time
}

func (s *PersistDecisionStep) Execute(ctx context.Context, state *DecisionState) error {
	if s.Decisions == nil {
		return fmt.Errorf("PersistDecisionStep: %w: decision writer", ErrMissingCapability)
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	row := infra.NewDecisionRow(state.Result, state.Narrative, now().UTC())
	if err := s.Decisions.InsertDecision(ctx, row); err != nil {
		return fmt.Errorf("PersistDecisionStep: %w", err)
	}
	state.DecisionID = row.DecisionID

	log := logger.FromContext(ctx)
	log.Debug().Str("decision_id", row.DecisionID).Msg("Decision persisted")
	return nil
}

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []PipelineStep
}

// NewPipeline creates a new pipeline with the given steps.
func NewPipeline(steps ...PipelineStep) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs all steps in the pipeline sequentially.
func (p *Pipeline) Execute(ctx context.Context, state *DecisionState) error {
	for i, step := range p.steps {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("pipeline step %d failed: %w", i+1, err)
		}
		if err := step.Execute(ctx, state); err != nil {
			return fmt.Errorf("pipeline step %d failed: %w", i+1, err)
		}
	}
	return nil
}
