package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"

	bq "github.com/dvloznov/hcstc-decisioning/internal/bigquery"
)

// Re-export shared types so callers need only this package.
type (
	DecisionRepository = bq.DecisionRepository
	DecisionRow        = bq.DecisionRow
	DecisionFilter     = bq.DecisionFilter
)

// Table identifies the decisions table.
type Table struct {
	ProjectID string
	Dataset   string
	Name      string
}

// FullName returns the backtick-quoted project.dataset.table name.
func (t Table) FullName() string {
	return fmt.Sprintf("`%s.%s.%s`", t.ProjectID, t.Dataset, t.Name)
}

// BigQueryDecisionRepository is the concrete implementation of
// DecisionRepository. It holds a shared BigQuery client to avoid creating a
// new connection for each operation.
type BigQueryDecisionRepository struct {
	client *bigquery.Client
	table  Table
}

// NewBigQueryDecisionRepository creates a client for table.ProjectID.
func NewBigQueryDecisionRepository(ctx context.Context, table Table) (*BigQueryDecisionRepository, error) {
	if table.ProjectID == "" {
		return nil, fmt.Errorf("NewBigQueryDecisionRepository: project id is required")
	}
	client, err := bigquery.NewClient(ctx, table.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("NewBigQueryDecisionRepository: creating client: %w", err)
	}
	return &BigQueryDecisionRepository{client: client, table: table}, nil
}

// Close closes the BigQuery client connection.
func (r *BigQueryDecisionRepository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// InsertDecision delegates to InsertDecisionWithClient with the shared client.
func (r *BigQueryDecisionRepository) InsertDecision(ctx context.Context, row *DecisionRow) error {
	return InsertDecisionWithClient(ctx, r.client, r.table, row)
}

// GetDecision delegates to GetDecisionWithClient with the shared client.
func (r *BigQueryDecisionRepository) GetDecision(ctx context.Context, decisionID string) (*DecisionRow, error) {
	return GetDecisionWithClient(ctx, r.client, r.table, decisionID)
}

// ListDecisions delegates to ListDecisionsWithClient with the shared client.
func (r *BigQueryDecisionRepository) ListDecisions(ctx context.Context, filter DecisionFilter) ([]*DecisionRow, error) {
	return ListDecisionsWithClient(ctx, r.client, r.table, filter)
}
