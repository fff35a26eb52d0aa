package notionsync

import (
	"context"

	"github.com/dvloznov/hcstc-decisioning/internal/bigquery"
	"github.com/jomei/notionapi"
)

// NotionService is the subset of the Notion API the referral board needs.
type NotionService interface {
	// CreatePage adds a review page for a referred application.
	CreatePage(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error)

	// UpdatePage refreshes a review page after the application is re-scored.
	UpdatePage(ctx context.Context, pageID string, properties notionapi.Properties) (*notionapi.Page, error)

	// QueryDatabase returns one page of results; callers follow NextCursor.
	QueryDatabase(ctx context.Context, databaseID string, filter *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error)
}

// DecisionSource lists stored decisions. bigquery.DecisionRepository
// satisfies it.
type DecisionSource interface {
	ListDecisions(ctx context.Context, filter bigquery.DecisionFilter) ([]*bigquery.DecisionRow, error)
}
