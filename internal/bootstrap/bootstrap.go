// Package bootstrap assembles the decision pipeline and its optional cloud
// collaborators from a loaded config.Config.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/dvloznov/hcstc-decisioning/internal/config"
	"github.com/dvloznov/hcstc-decisioning/internal/gcsuploader"
	infra "github.com/dvloznov/hcstc-decisioning/internal/infra/bigquery"
	"github.com/dvloznov/hcstc-decisioning/internal/logger"
	"github.com/dvloznov/hcstc-decisioning/internal/narrative"
	"github.com/dvloznov/hcstc-decisioning/internal/pipeline"
	"github.com/dvloznov/hcstc-decisioning/internal/scoring"
)

// Services holds everything a binary needs to decide applications.
// Storage and Decisions are nil when their settings are absent.
type Services struct {
	Scoring      scoring.Config
	Dependencies pipeline.Dependencies
	Storage      *gcsuploader.GCSStorageService
	Decisions    *infra.BigQueryDecisionRepository
}

// Options switch off collaborators a binary does not use.
type Options struct {
	SkipStorage   bool
	SkipNarrative bool
	SkipPersist   bool
}

// Build creates the services described by cfg. GCS is connected when a
// bucket is set, BigQuery when a project is set, Gemini when the narrative
// is enabled. Decisions are only written when PersistDecisions is on.
func Build(ctx context.Context, cfg config.Config, opts Options) (*Services, error) {
	log := logger.FromContext(ctx)

	scoringCfg, err := scoring.LoadConfig(cfg.Scoring.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("Build: %w", err)
	}
	deps, err := pipeline.CoreDependencies(scoringCfg)
	if err != nil {
		return nil, fmt.Errorf("Build: %w", err)
	}

	svc := &Services{Scoring: scoringCfg, Dependencies: deps}

	if cfg.GCP.Bucket != "" && !opts.SkipStorage {
		storage, err := gcsuploader.NewGCSStorageService(ctx)
		if err != nil {
			return nil, fmt.Errorf("Build: %w", err)
		}
		svc.Storage = storage
	}

	if cfg.GCP.ProjectID != "" {
		repo, err := infra.NewBigQueryDecisionRepository(ctx, infra.Table{
			ProjectID: cfg.GCP.ProjectID,
			Dataset:   cfg.GCP.Dataset,
			Name:      cfg.GCP.DecisionsTable,
		})
		if err != nil {
			svc.Close()
			return nil, fmt.Errorf("Build: %w", err)
		}
		svc.Decisions = repo
		if cfg.GCP.PersistDecisions && !opts.SkipPersist {
			svc.Dependencies.Decisions = repo
		}
	} else if cfg.GCP.PersistDecisions && !opts.SkipPersist {
		log.Warn().Msg("PERSIST_DECISIONS is set but no GCP project is configured; decisions will not be stored")
	}

	if cfg.Narrative.Enabled && !opts.SkipNarrative {
		summarizer, err := narrative.NewGeminiSummarizer(ctx, cfg.Narrative.Model)
		if err != nil {
			svc.Close()
			return nil, fmt.Errorf("Build: %w", err)
		}
		svc.Dependencies.Narrator = summarizer
	}

	log.Info().
		Bool("storage", svc.Storage != nil).
		Bool("persist", svc.Dependencies.Decisions != nil).
		Bool("narrative", svc.Dependencies.Narrator != nil).
		Float64("approve_band", scoringCfg.Bands.Approve).
		Msg("Decision services ready")

	return svc, nil
}

// Pipeline returns a new pipeline over the shared dependencies.
func (s *Services) Pipeline() *pipeline.Pipeline {
	return pipeline.NewDecisionPipeline(s.Dependencies)
}

// Close releases the cloud clients.
func (s *Services) Close() error {
	var errs []error
	if s.Storage != nil {
		errs = append(errs, s.Storage.Close())
	}
	if s.Decisions != nil {
		errs = append(errs, s.Decisions.Close())
	}
	return errors.Join(errs...)
}
