package notionsync

import (
	"context"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/hcstc-decisioning/internal/bigquery"
	"github.com/dvloznov/hcstc-decisioning/internal/logger"
	"github.com/jomei/notionapi"
)

// maxReferrals caps the decisions read per sync run.
const maxReferrals = 1000

// SyncResult counts what a sync run did.
type SyncResult struct {
	Referrals int // distinct referred applications in range
	Created   int
	Updated   int
	Skipped   int
	Failed    int
}

// SyncReferrals pushes REFER decisions made between from and to into a
// Notion review database. Pages are keyed by application ID: an application
// already on the board is skipped when its page shows the same decision and
// refreshed when a newer referral exists. Only the latest referral of each
// application is considered.
func SyncReferrals(ctx context.Context, source DecisionSource, notionClient NotionService, notionDBID string, from, to civil.Date, dryRun bool) (SyncResult, error) {
	log := logger.FromContext(ctx)
	var result SyncResult

	log.Info().
		Str("from", from.String()).
		Str("to", to.String()).
		Bool("dry_run", dryRun).
		Msg("Starting referral sync to Notion")

	rows, err := source.ListDecisions(ctx, bigquery.DecisionFilter{
		Decision: "REFER",
		From:     from,
		To:       to,
		Limit:    maxReferrals,
	})
	if err != nil {
		return result, fmt.Errorf("failed to list referrals: %w", err)
	}

	// Rows arrive newest first, so the first row per application wins.
	seen := make(map[string]bool)
	var referrals []*bigquery.DecisionRow
	for _, row := range rows {
		if row.ApplicationID == "" || seen[row.ApplicationID] {
			continue
		}
		seen[row.ApplicationID] = true
		referrals = append(referrals, row)
	}
	result.Referrals = len(referrals)

	log.Info().Int("decision_count", len(rows)).Int("referral_count", len(referrals)).Msg("Retrieved referrals from BigQuery")

	pages, err := queryAllNotionPages(ctx, notionClient, notionDBID)
	if err != nil {
		return result, fmt.Errorf("failed to query Notion pages: %w", err)
	}

	existing := make(map[string]notionapi.Page)
	for _, page := range pages {
		if appID := extractApplicationID(page); appID != "" {
			if _, dup := existing[appID]; !dup {
				existing[appID] = page
			}
		}
	}

	log.Info().Int("notion_page_count", len(pages)).Msg("Retrieved existing Notion pages")

	for _, row := range referrals {
		page, onBoard := existing[row.ApplicationID]

		switch {
		case onBoard && extractDecisionID(page) == row.DecisionID:
			result.Skipped++

		case onBoard:
			if dryRun {
				log.Info().
					Str("application_id", row.ApplicationID).
					Str("page_id", string(page.ID)).
					Msg("[DRY RUN] Would refresh Notion review page")
				result.Updated++
				continue
			}
			if _, err := notionClient.UpdatePage(ctx, string(page.ID), DecisionToNotionProperties(row, false)); err != nil {
				log.Warn().
					Err(err).
					Str("application_id", row.ApplicationID).
					Str("page_id", string(page.ID)).
					Msg("Failed to refresh Notion review page")
				result.Failed++
				continue
			}
			result.Updated++

		default:
			if dryRun {
				log.Info().
					Str("application_id", row.ApplicationID).
					Float64("score", row.Score).
					Msg("[DRY RUN] Would create Notion review page")
				result.Created++
				continue
			}
			created, err := notionClient.CreatePage(ctx, notionDBID, DecisionToNotionProperties(row, true))
			if err != nil {
				log.Warn().
					Err(err).
					Str("application_id", row.ApplicationID).
					Msg("Failed to create Notion review page")
				result.Failed++
				continue
			}
			log.Info().
				Str("application_id", row.ApplicationID).
				Str("page_id", string(created.ID)).
				Msg("Created Notion review page")
			result.Created++
		}
	}

	log.Info().
		Int("created", result.Created).
		Int("updated", result.Updated).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Msg("Referral sync completed")

	return result, nil
}

// queryAllNotionPages queries all pages from a Notion database and returns them.
// Handles pagination automatically.
func queryAllNotionPages(ctx context.Context, notionClient NotionService, databaseID string) ([]notionapi.Page, error) {
	var allPages []notionapi.Page
	var cursor notionapi.Cursor

	for {
		req := &notionapi.DatabaseQueryRequest{
			PageSize: 100,
		}
		if cursor != "" {
			req.StartCursor = cursor
		}

		resp, err := notionClient.QueryDatabase(ctx, databaseID, req)
		if err != nil {
			return nil, fmt.Errorf("queryAllNotionPages: %w", err)
		}

		allPages = append(allPages, resp.Results...)

		if !resp.HasMore {
			break
		}
		cursor = resp.NextCursor
	}

	return allPages, nil
}
