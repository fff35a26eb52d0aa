package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/hcstc-decisioning/internal/config"
	"github.com/dvloznov/hcstc-decisioning/internal/infra/bigquery"
	"github.com/dvloznov/hcstc-decisioning/internal/logger"
	"github.com/dvloznov/hcstc-decisioning/internal/notionsync"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New().Fatal().Err(err).Msg("Failed to load configuration")
	}
	log := logger.NewWithConfig(cfg.Logging.Level, cfg.Logging.Format)

	today := civil.DateOf(time.Now().UTC())

	startDateStr := flag.String("start-date", today.AddDays(-7).String(), "Start date in YYYY-MM-DD format")
	endDateStr := flag.String("end-date", today.String(), "End date in YYYY-MM-DD format")
	notionToken := flag.String("notion-token", cfg.Notion.Token, "Notion API token (or set NOTION_TOKEN env)")
	notionDBID := flag.String("notion-db-id", cfg.Notion.DatabaseID, "Notion database ID (or set NOTION_DATABASE_ID env)")
	dryRun := flag.Bool("dry-run", false, "Dry run mode - preview changes without syncing")
	flag.Parse()

	if *notionToken == "" {
		log.Fatal().Msg("Error: --notion-token or NOTION_TOKEN is required")
	}
	if *notionDBID == "" {
		log.Fatal().Msg("Error: --notion-db-id or NOTION_DATABASE_ID is required")
	}
	if cfg.GCP.ProjectID == "" {
		log.Fatal().Msg("Error: GCP_PROJECT_ID is required")
	}

	startDate, err := civil.ParseDate(*startDateStr)
	if err != nil {
		log.Fatal().Err(err).Str("start_date", *startDateStr).Msg("Error: invalid start-date format, expected YYYY-MM-DD")
	}

	endDate, err := civil.ParseDate(*endDateStr)
	if err != nil {
		log.Fatal().Err(err).Str("end_date", *endDateStr).Msg("Error: invalid end-date format, expected YYYY-MM-DD")
	}

	if endDate.Before(startDate) {
		log.Fatal().
			Str("start_date", startDate.String()).
			Str("end_date", endDate.String()).
			Msg("Error: end-date must not be before start-date")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	repo, err := bigquery.NewBigQueryDecisionRepository(ctx, bigquery.Table{
		ProjectID: cfg.GCP.ProjectID,
		Dataset:   cfg.GCP.Dataset,
		Name:      cfg.GCP.DecisionsTable,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize BigQuery repository")
	}
	defer repo.Close()

	notionClient := notionsync.NewNotionClient(*notionToken)

	result, err := notionsync.SyncReferrals(ctx, repo, notionClient, *notionDBID, startDate, endDate, *dryRun)
	if err != nil {
		log.Fatal().Err(err).Msg("Sync failed")
	}

	fmt.Printf("Referrals: %d, created: %d, updated: %d, skipped: %d, failed: %d\n",
		result.Referrals, result.Created, result.Updated, result.Skipped, result.Failed)
	if result.Failed > 0 {
		os.Exit(1)
	}
}
