package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/dvloznov/hcstc-decisioning/internal/api/handlers"
	"github.com/dvloznov/hcstc-decisioning/internal/api/middleware"
	"github.com/dvloznov/hcstc-decisioning/internal/bootstrap"
	"github.com/dvloznov/hcstc-decisioning/internal/config"
	"github.com/dvloznov/hcstc-decisioning/internal/gcs"
	"github.com/dvloznov/hcstc-decisioning/internal/jobs"
	"github.com/dvloznov/hcstc-decisioning/internal/jobs/inmemory"
	"github.com/dvloznov/hcstc-decisioning/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New().Fatal().Err(err).Msg("Failed to load configuration")
	}

	port := flag.Int("port", cfg.HTTP.Port, "HTTP server port (or set PORT env)")
	flag.Parse()

	log := logger.NewWithConfig(cfg.Logging.Level, cfg.Logging.Format)
	ctx := logger.WithContext(context.Background(), log)

	svc, err := bootstrap.Build(ctx, cfg, bootstrap.Options{})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialise decision services")
	}
	defer svc.Close()

	if svc.Storage == nil {
		log.Warn().Msg("No GCS bucket configured - jobs must carry an inline payload")
	}

	// The scoring collaborators are stateless, so one pipeline serves every
	// request and worker.
	decisionPipeline := svc.Pipeline()

	// Initialize job infrastructure
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueueWithOptions(cfg.Batch.QueueSize, jobStore, inmemory.QueueOptions{
		Workers:    cfg.Batch.Workers,
		MaxRetries: cfg.Batch.MaxRetries,
	})

	var storage gcs.StorageService
	if svc.Storage != nil {
		storage = svc.Storage
	}

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	log.Info().Int("workers", cfg.Batch.Workers).Msg("Starting job workers")
	if err := jobQueue.Start(workerCtx, jobs.NewScoreHandler(decisionPipeline, storage)); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job workers")
	}

	routes := handlers.Routes{
		Applications: handlers.NewApplicationsHandler(decisionPipeline, jobQueue),
		Jobs:         handlers.NewJobsHandler(jobStore),
	}
	if svc.Decisions != nil {
		routes.Decisions = handlers.NewDecisionsHandler(svc.Decisions)
	} else {
		log.Warn().Msg("No GCP project configured - decision history endpoints are disabled")
	}
	mux := handlers.NewRouter(routes)

	// RequestID runs first so the request logger can carry the id.
	handler := middleware.RequestID(
		middleware.Recovery(log)(
			middleware.Logger(log)(
				middleware.CORS(cfg.HTTP.AllowedOrigins)(
					middleware.Auth(cfg.HTTP.APIToken)(mux),
				),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + strconv.Itoa(*port),
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info().Int("port", *port).Bool("auth", cfg.HTTP.APIToken != "").Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// In-flight jobs finish under the worker context before it is cancelled.
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}
	cancelWorker()
	if err := jobQueue.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close job queue")
	}

	log.Info().Msg("Server exited")
}
