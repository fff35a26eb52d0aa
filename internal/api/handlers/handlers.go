package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/hcstc-decisioning/internal/api/middleware"
	"github.com/dvloznov/hcstc-decisioning/internal/bigquery"
	"github.com/dvloznov/hcstc-decisioning/internal/jobs"
	"github.com/dvloznov/hcstc-decisioning/internal/logger"
	"github.com/dvloznov/hcstc-decisioning/internal/report"
)

// maxPayloadBytes bounds an inline application payload.
const maxPayloadBytes = 10 << 20

// ApplicationsHandler handles scoring endpoints.
type ApplicationsHandler struct {
	scorer    jobs.PayloadScorer
	publisher jobs.Publisher
}

// NewApplicationsHandler creates a new applications handler. publisher may
// be nil, which disables asynchronous scoring.
func NewApplicationsHandler(scorer jobs.PayloadScorer, publisher jobs.Publisher) *ApplicationsHandler {
	return &ApplicationsHandler{
		scorer:    scorer,
		publisher: publisher,
	}
}

// Score handles POST /api/applications/score
func (h *ApplicationsHandler) Score(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
	if err != nil {
		middleware.WriteError(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return
	}

	state, err := h.scorer.ScorePayload(ctx, raw)
	if err != nil {
		log.Error().Err(err).Msg("Failed to score application")
		middleware.WriteServiceError(w, err, "Failed to score application")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, report.NewDecisionView(state))
}

// Enqueue handles POST /api/applications/enqueue
//
// The body is either {"gcs_uri": "gs://..."} or {"payload": {...}}.
func (h *ApplicationsHandler) Enqueue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	if h.publisher == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Asynchronous scoring is disabled")
		return
	}

	var req struct {
		GCSURI  string          `json:"gcs_uri"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPayloadBytes)).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	hasURI := req.GCSURI != ""
	hasPayload := len(req.Payload) > 0 && string(req.Payload) != "null"
	if hasURI == hasPayload {
		middleware.WriteError(w, http.StatusBadRequest, "Exactly one of gcs_uri and payload is required")
		return
	}
	if hasURI && !strings.HasPrefix(req.GCSURI, "gs://") {
		middleware.WriteError(w, http.StatusBadRequest, "gcs_uri must start with gs://")
		return
	}

	job := &jobs.ScoreApplicationJob{GCSURI: req.GCSURI}
	if hasPayload {
		job.Payload = req.Payload
	}

	if err := h.publisher.PublishScoreApplication(ctx, job); err != nil {
		log.Error().Err(err).Msg("Failed to enqueue scoring job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue scoring job")
		return
	}

	log.Info().Str("job_id", job.JobID).Str("gcs_uri", job.GCSURI).Msg("Scoring job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.JobID,
		"status": string(job.Status),
	})
}

// DecisionsHandler handles stored decision endpoints.
type DecisionsHandler struct {
	repo bigquery.DecisionRepository
}

// NewDecisionsHandler creates a new decisions handler.
func NewDecisionsHandler(repo bigquery.DecisionRepository) *DecisionsHandler {
	return &DecisionsHandler{repo: repo}
}

// ListDecisions handles GET /api/decisions
func (h *DecisionsHandler) ListDecisions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	query := r.URL.Query()
	filter := bigquery.DecisionFilter{
		Decision: strings.ToUpper(query.Get("decision")),
	}

	switch filter.Decision {
	case "", "APPROVE", "REFER", "DECLINE":
	default:
		middleware.WriteError(w, http.StatusBadRequest, "decision must be APPROVE, REFER or DECLINE")
		return
	}

	var err error
	if filter.From, err = parseDate(query.Get("from")); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid from date format")
		return
	}
	if filter.To, err = parseDate(query.Get("to")); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid to date format")
		return
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	decisions, err := h.repo.ListDecisions(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list decisions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list decisions")
		return
	}

	if decisions == nil {
		decisions = []*bigquery.DecisionRow{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"decisions": decisions,
		"count":     len(decisions),
	})
}

// GetDecision handles GET /api/decisions/{id}
func (h *DecisionsHandler) GetDecision(w http.ResponseWriter, r *http.Request, decisionID string) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	decision, err := h.repo.GetDecision(ctx, decisionID)
	if err != nil {
		log.Error().Err(err).Str("decision_id", decisionID).Msg("Failed to get decision")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to get decision")
		return
	}
	if decision == nil {
		middleware.WriteError(w, http.StatusNotFound, "Decision not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, decision)
}

// parseDate reads an optional YYYY-MM-DD value.
func parseDate(s string) (civil.Date, error) {
	if s == "" {
		return civil.Date{}, nil
	}
	return civil.ParseDate(s)
}

// JobsHandler handles job-related endpoints.
type JobsHandler struct {
	store jobs.JobStore
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(store jobs.JobStore) *JobsHandler {
	return &JobsHandler{store: store}
}

// GetJob handles GET /api/jobs/{id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	job, err := h.store.GetJob(ctx, jobID)
	if err != nil {
		if !errors.Is(err, jobs.ErrJobNotFound) {
			log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		}
		middleware.WriteServiceError(w, err, "Failed to get job")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	query := r.URL.Query()
	filter := jobs.JobFilter{
		ApplicationID: query.Get("application_id"),
		Status:        jobs.JobStatus(query.Get("status")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.store.ListJobs(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}

// Health handles GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}
