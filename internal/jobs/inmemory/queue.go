package inmemory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dvloznov/hcstc-decisioning/internal/jobs"
	"github.com/dvloznov/hcstc-decisioning/internal/logger"
	"github.com/google/uuid"
)

// QueueOptions tunes worker concurrency and retry behaviour.
type QueueOptions struct {
	// Workers is the number of concurrent job handlers. Defaults to 5.
	Workers int

	// MaxRetries applies to jobs published without their own limit.
	// Defaults to 3.
	MaxRetries int

	// BaseBackoff is the delay before the first retry; each further retry
	// doubles it. Defaults to one second.
	BaseBackoff time.Duration
}

func (o QueueOptions) withDefaults() QueueOptions {
	if o.Workers <= 0 {
		o.Workers = 5
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = 3
	}
	if o.BaseBackoff <= 0 {
		o.BaseBackoff = time.Second
	}
	return o
}

// Queue is an in-memory implementation of job publisher and consumer.
// It uses Go channels for job distribution and is safe for concurrent use.
// It suits single-instance deployments and tests.
type Queue struct {
	jobChan   chan *jobs.ScoreApplicationJob
	closeChan chan struct{}
	wg        sync.WaitGroup
	mu        sync.RWMutex
	store     jobs.JobStore
	opts      QueueOptions
	closed    bool
}

// NewQueue creates a new in-memory job queue with default options.
// bufferSize determines how many jobs can be queued before publishing blocks.
func NewQueue(bufferSize int, store jobs.JobStore) *Queue {
	return NewQueueWithOptions(bufferSize, store, QueueOptions{})
}

// NewQueueWithOptions creates a queue with explicit worker and retry settings.
func NewQueueWithOptions(bufferSize int, store jobs.JobStore, opts QueueOptions) *Queue {
	return &Queue{
		jobChan:   make(chan *jobs.ScoreApplicationJob, bufferSize),
		closeChan: make(chan struct{}),
		store:     store,
		opts:      opts.withDefaults(),
	}
}

// PublishScoreApplication implements the Publisher interface.
func (q *Queue) PublishScoreApplication(ctx context.Context, job *jobs.ScoreApplicationJob) error {
	if job.GCSURI == "" && len(job.Payload) == 0 {
		return fmt.Errorf("job needs a gcs_uri or an inline payload")
	}

	if job.JobID == "" {
		job.JobID = uuid.New().String()
	}
	if job.Status == "" {
		job.Status = jobs.JobStatusPending
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}
	if job.MaxRetries == 0 {
		job.MaxRetries = q.opts.MaxRetries
	}

	return q.enqueue(ctx, job)
}

func (q *Queue) enqueue(ctx context.Context, job *jobs.ScoreApplicationJob) error {
	q.mu.RLock()
	closed := q.closed
	q.mu.RUnlock()
	if closed {
		return fmt.Errorf("queue is closed")
	}

	if q.store != nil {
		if err := q.store.SaveJob(ctx, job); err != nil {
			return fmt.Errorf("failed to save job: %w", err)
		}
	}

	select {
	case q.jobChan <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-q.closeChan:
		return fmt.Errorf("queue is closed")
	}
}

// Start implements the Consumer interface.
// It starts Workers goroutines that hand each job to handler.
func (q *Queue) Start(ctx context.Context, handler jobs.JobHandler) error {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return fmt.Errorf("queue is closed")
	}
	q.mu.RUnlock()

	for i := 0; i < q.opts.Workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, handler)
	}

	return nil
}

func (q *Queue) worker(ctx context.Context, handler jobs.JobHandler) {
	defer q.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-q.closeChan:
			return
		case job := <-q.jobChan:
			if job == nil {
				return
			}

			q.processJob(ctx, job, handler)
		}
	}
}

// backoff returns the delay before the given retry attempt (1-based).
func (q *Queue) backoff(attempt int) time.Duration {
	return q.opts.BaseBackoff << (attempt - 1)
}

// processJob executes a single job with retry logic.
func (q *Queue) processJob(ctx context.Context, job *jobs.ScoreApplicationJob, handler jobs.JobHandler) {
	log := logger.FromContext(ctx)

	job.Status = jobs.JobStatusRunning
	now := time.Now()
	job.StartedAt = &now
	job.CompletedAt = nil

	if q.store != nil {
		_ = q.store.SaveJob(ctx, job)
	}

	err := handler(ctx, job)

	completedAt := time.Now()
	job.CompletedAt = &completedAt

	switch {
	case err == nil:
		job.Status = jobs.JobStatusCompleted
		job.Error = ""
	case jobs.IsPermanent(err) || job.RetryCount >= job.MaxRetries:
		job.Status = jobs.JobStatusFailed
		job.Error = err.Error()
		log.Error().Err(err).Str("job_id", job.JobID).Int("retry_count", job.RetryCount).Msg("Job failed")
	default:
		job.Error = err.Error()
		job.RetryCount++
		job.Status = jobs.JobStatusRetrying
	}

	if q.store != nil {
		_ = q.store.SaveJob(ctx, job)
	}

	if job.Status != jobs.JobStatusRetrying {
		return
	}

	// The job must not be touched after this point; the timer owns it.
	delay := q.backoff(job.RetryCount)
	log.Warn().Str("job_id", job.JobID).Str("error", job.Error).Dur("backoff", delay).Msg("Job failed, scheduling retry")

	time.AfterFunc(delay, func() {
		job.Status = jobs.JobStatusPending
		if err := q.enqueue(context.Background(), job); err != nil {
			log.Warn().Err(err).Str("job_id", job.JobID).Msg("Retry dropped")
		}
	})
}

// Stop implements the Consumer interface.
// It stops the queue and waits for all in-flight jobs to complete.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.closeChan)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close implements the Publisher interface.
func (q *Queue) Close() error {
	return q.Stop(context.Background())
}

var _ jobs.Publisher = (*Queue)(nil)
var _ jobs.Consumer = (*Queue)(nil)
