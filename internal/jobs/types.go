package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// JobType names the work a job carries.
type JobType string

// JobTypeScoreApplication scores one loan application end to end.
const JobTypeScoreApplication JobType = "score_application"

// JobStatus is a job's position in its lifecycle. Retrying jobs return to
// the queue after a backoff; completed and failed are terminal.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusRetrying  JobStatus = "retrying"
)

// ScoreApplicationJob scores an application read from GCS or carried
// inline. Exactly one of GCSURI and Payload is set. The decision fields are
// filled in when the job completes.
type ScoreApplicationJob struct {
	JobID string `json:"job_id"`

	// ApplicationID is known up front for inline payloads and filled in
	// after parsing for GCS payloads.
	ApplicationID string          `json:"application_id,omitempty"`
	GCSURI        string          `json:"gcs_uri,omitempty"`
	Payload       json.RawMessage `json:"-"`

	Status     JobStatus `json:"status"`
	Decision   string    `json:"decision,omitempty"`
	Score      float64   `json:"score,omitempty"`
	DecisionID string    `json:"decision_id,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error holds the latest failed attempt and is cleared on success.
	Error      string `json:"error,omitempty"`
	RetryCount int    `json:"retry_count"`
	MaxRetries int    `json:"max_retries"`
}

// Job is what a JobHandler receives from a Consumer.
type Job interface {
	GetID() string
	GetType() JobType
	GetStatus() JobStatus
}

func (j *ScoreApplicationJob) GetID() string        { return j.JobID }
func (j *ScoreApplicationJob) GetType() JobType     { return JobTypeScoreApplication }
func (j *ScoreApplicationJob) GetStatus() JobStatus { return j.Status }

// Publisher accepts scoring jobs for asynchronous processing.
type Publisher interface {
	// PublishScoreApplication assigns a JobID if empty, records the job as
	// pending, and queues it.
	PublishScoreApplication(ctx context.Context, job *ScoreApplicationJob) error

	// Close closes the publisher and releases resources.
	Close() error
}

// Consumer defines the interface for consuming jobs from a queue.
type Consumer interface {
	// Start begins consuming jobs from the queue.
	// The handler function is called for each job received.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming jobs and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler is a function that processes a job.
// Returned errors are retried unless wrapped with Permanent.
type JobHandler func(ctx context.Context, job Job) error

// JobStore defines the interface for storing and retrieving job status.
type JobStore interface {
	// SaveJob saves or updates a job's state.
	SaveJob(ctx context.Context, job *ScoreApplicationJob) error

	// GetJob retrieves a job by ID. It returns ErrJobNotFound when absent.
	GetJob(ctx context.Context, jobID string) (*ScoreApplicationJob, error)

	// ListJobs retrieves jobs with optional filtering, newest first.
	ListJobs(ctx context.Context, filter JobFilter) ([]*ScoreApplicationJob, error)

	// UpdateJobStatus updates the status of a job.
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus, errorMsg string) error
}

// JobFilter narrows ListJobs. Zero values match everything; a zero Limit
// returns all matches after Offset.
type JobFilter struct {
	ApplicationID string
	Status        JobStatus
	Limit         int
	Offset        int
}

// ErrJobNotFound is returned by JobStore implementations for unknown IDs.
var ErrJobNotFound = errors.New("job not found")

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying. A malformed payload fails the
// same way on every attempt.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}
