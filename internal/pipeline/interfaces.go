package pipeline

import (
	"context"

	"github.com/dvloznov/hcstc-decisioning/internal/categorisation"
	"github.com/dvloznov/hcstc-decisioning/internal/domain"
	"github.com/dvloznov/hcstc-decisioning/internal/gcs"
	infra "github.com/dvloznov/hcstc-decisioning/internal/infra/bigquery"
	"github.com/dvloznov/hcstc-decisioning/internal/metrics"
	"github.com/dvloznov/hcstc-decisioning/internal/narrative"
	"github.com/dvloznov/hcstc-decisioning/internal/scoring"
)

// Categorizer classifies every transaction of one application.
type Categorizer interface {
	ClassifyBatch(txns []domain.Transaction) []domain.CategoryMatch
}

// MetricsCalculator derives metrics from a categorised application.
type MetricsCalculator interface {
	Calculate(app domain.Application, s categorisation.Summary) metrics.Metrics
}

// Scorer turns metrics into a decision.
type Scorer interface {
	Score(applicationID string, m metrics.Metrics) scoring.Result
}

// Narrator writes an underwriter summary of a decision.
type Narrator interface {
	Summarize(ctx context.Context, result scoring.Result, m metrics.Metrics) (*narrative.Narrative, error)
}

// DecisionWriter stores decision rows.
type DecisionWriter interface {
	InsertDecision(ctx context.Context, row *infra.DecisionRow) error
}

// StorageService fetches application payloads.
type StorageService = gcs.StorageService
