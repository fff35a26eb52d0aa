package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/dvloznov/hcstc-decisioning/internal/bootstrap"
	"github.com/dvloznov/hcstc-decisioning/internal/config"
	"github.com/dvloznov/hcstc-decisioning/internal/gcs"
	"github.com/dvloznov/hcstc-decisioning/internal/jobs"
	"github.com/dvloznov/hcstc-decisioning/internal/jobs/inmemory"
	"github.com/dvloznov/hcstc-decisioning/internal/logger"
)

// The worker reads application locations from stdin, one per line: either
// gs:// URIs or local JSON files. Each becomes a score job on an in-memory
// queue; the worker exits once every job has settled.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New().Fatal().Err(err).Msg("Failed to load configuration")
	}

	workers := flag.Int("workers", cfg.Batch.Workers, "Concurrent jobs (or set BATCH_WORKERS env)")
	flag.Parse()

	log := logger.NewWithConfig(cfg.Logging.Level, cfg.Logging.Format)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	svc, err := bootstrap.Build(ctx, cfg, bootstrap.Options{})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialise decision services")
	}
	defer svc.Close()

	var storage gcs.StorageService
	if svc.Storage != nil {
		storage = svc.Storage
	}

	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueueWithOptions(cfg.Batch.QueueSize, jobStore, inmemory.QueueOptions{
		Workers:    *workers,
		MaxRetries: cfg.Batch.MaxRetries,
	})

	if err := jobQueue.Start(ctx, jobs.NewScoreHandler(svc.Pipeline(), storage)); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job consumer")
	}

	log.Info().Int("workers", *workers).Msg("Worker service started, reading jobs from stdin")

	published, err := publishLines(ctx, os.Stdin, jobQueue)
	if err != nil {
		log.Error().Err(err).Msg("Stopped reading jobs")
	}

	waitForJobs(ctx, jobStore, published)

	log.Info().Msg("Shutting down worker service...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during graceful shutdown")
	}

	failed := report(ctx, jobStore)
	log.Info().Int("jobs", published).Int("failed", failed).Msg("Worker service exited")
	if failed > 0 {
		os.Exit(1)
	}
}

// publishLines turns each non-empty line of r into a score job.
func publishLines(ctx context.Context, r io.Reader, publisher jobs.Publisher) (int, error) {
	log := logger.FromContext(ctx)
	published := 0

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		job := &jobs.ScoreApplicationJob{}
		if strings.HasPrefix(line, "gs://") {
			job.GCSURI = line
		} else {
			data, err := os.ReadFile(line)
			if err != nil {
				log.Warn().Err(err).Str("path", line).Msg("Skipping unreadable application file")
				continue
			}
			job.Payload = data
			job.ApplicationID = strings.TrimSuffix(filepath.Base(line), filepath.Ext(line))
		}

		if err := publisher.PublishScoreApplication(ctx, job); err != nil {
			return published, fmt.Errorf("publish %s: %w", line, err)
		}
		published++
	}
	return published, scanner.Err()
}

func settled(status jobs.JobStatus) bool {
	return status == jobs.JobStatusCompleted || status == jobs.JobStatusFailed
}

// waitForJobs polls the store until n jobs have settled or ctx ends.
func waitForJobs(ctx context.Context, store jobs.JobStore, n int) {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		list, err := store.ListJobs(ctx, jobs.JobFilter{})
		if err == nil {
			done := 0
			for _, job := range list {
				if settled(job.Status) {
					done++
				}
			}
			if done >= n {
				return
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// report prints one line per job and returns the number that failed.
func report(ctx context.Context, store jobs.JobStore) int {
	list, err := store.ListJobs(context.WithoutCancel(ctx), jobs.JobFilter{})
	if err != nil {
		return 0
	}

	failed := 0
	for _, job := range list {
		switch job.Status {
		case jobs.JobStatusCompleted:
			fmt.Printf("%s\t%s\t%s\t%.1f\n", job.JobID, job.ApplicationID, job.Decision, job.Score)
		default:
			failed++
			fmt.Printf("%s\t%s\t%s\t%s\n", job.JobID, job.ApplicationID, job.Status, job.Error)
		}
	}
	return failed
}
