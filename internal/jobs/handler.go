package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/dvloznov/hcstc-decisioning/internal/gcs"
	"github.com/dvloznov/hcstc-decisioning/internal/ingest"
	"github.com/dvloznov/hcstc-decisioning/internal/logger"
	"github.com/dvloznov/hcstc-decisioning/internal/pipeline"
)

// PayloadScorer decides a raw application payload.
type PayloadScorer interface {
	ScorePayload(ctx context.Context, raw []byte) (*pipeline.DecisionState, error)
}

// NewScoreHandler returns a JobHandler that scores ScoreApplicationJobs.
// storage may be nil when only inline payloads are expected.
//
// Payload and capability errors are permanent; storage and persistence
// errors are left retryable.
func NewScoreHandler(scorer PayloadScorer, storage gcs.StorageService) JobHandler {
	return func(ctx context.Context, job Job) error {
		scoreJob, ok := job.(*ScoreApplicationJob)
		if !ok {
			return Permanent(fmt.Errorf("unexpected job type: %T", job))
		}

		log := logger.WithFields(logger.FromContext(ctx), map[string]interface{}{
			"job_id":      scoreJob.JobID,
			"retry_count": scoreJob.RetryCount,
		})
		ctx = logger.WithContext(ctx, log)

		raw := []byte(scoreJob.Payload)
		if len(raw) == 0 {
			if storage == nil {
				return Permanent(fmt.Errorf("score job %s: %w: storage", scoreJob.JobID, pipeline.ErrMissingCapability))
			}
			log.Info().Str("gcs_uri", scoreJob.GCSURI).Msg("Fetching application payload")
			fetched, err := storage.FetchFromGCS(ctx, scoreJob.GCSURI)
			if err != nil {
				return fmt.Errorf("score job %s: %w", scoreJob.JobID, err)
			}
			raw = fetched
		}

		state, err := scorer.ScorePayload(ctx, raw)
		if err != nil {
			if isPermanentFailure(err) {
				return Permanent(fmt.Errorf("score job %s: %w", scoreJob.JobID, err))
			}
			return fmt.Errorf("score job %s: %w", scoreJob.JobID, err)
		}

		scoreJob.ApplicationID = state.Application.ID
		scoreJob.Decision = string(state.Result.Decision)
		scoreJob.Score = state.Result.Score
		scoreJob.DecisionID = state.DecisionID

		log.Info().
			Str("application_id", scoreJob.ApplicationID).
			Str("decision", scoreJob.Decision).
			Float64("score", scoreJob.Score).
			Msg("Score job completed")

		return nil
	}
}

func isPermanentFailure(err error) bool {
	return errors.Is(err, ingest.ErrMalformedInput) ||
		errors.Is(err, ingest.ErrUnrecognizedStructure) ||
		errors.Is(err, pipeline.ErrMissingCapability)
}
