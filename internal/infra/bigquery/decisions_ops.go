package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
)

// InsertDecisionWithClient streams one decision row into the table.
func InsertDecisionWithClient(ctx context.Context, client *bigquery.Client, table Table, row *DecisionRow) error {
	inserter := client.DatasetInProject(table.ProjectID, table.Dataset).Table(table.Name).Inserter()
	if err := inserter.Put(ctx, row); err != nil {
		return fmt.Errorf("InsertDecision: inserting row: %w", err)
	}
	return nil
}
