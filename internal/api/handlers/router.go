package handlers

import (
	"net/http"
	"strings"

	"github.com/dvloznov/hcstc-decisioning/internal/api/middleware"
)

// Routes groups the handlers served by the API. Decisions may be nil when
// decision persistence is disabled.
type Routes struct {
	Applications *ApplicationsHandler
	Jobs         *JobsHandler
	Decisions    *DecisionsHandler
}

// NewRouter registers every endpoint on a new ServeMux.
func NewRouter(routes Routes) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", Health)

	mux.HandleFunc("/api/applications/score", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			routes.Applications.Score(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/applications/enqueue", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			routes.Applications.Enqueue(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			routes.Jobs.ListJobs(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
		if jobID == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
			return
		}
		routes.Jobs.GetJob(w, r, jobID)
	})

	mux.HandleFunc("/api/decisions", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		if routes.Decisions == nil {
			middleware.WriteError(w, http.StatusServiceUnavailable, "Decision storage is disabled")
			return
		}
		routes.Decisions.ListDecisions(w, r)
	})

	mux.HandleFunc("/api/decisions/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		if routes.Decisions == nil {
			middleware.WriteError(w, http.StatusServiceUnavailable, "Decision storage is disabled")
			return
		}
		decisionID := strings.TrimPrefix(r.URL.Path, "/api/decisions/")
		if decisionID == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Decision ID is required")
			return
		}
		routes.Decisions.GetDecision(w, r, decisionID)
	})

	return mux
}
