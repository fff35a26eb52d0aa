package inmemory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dvloznov/hcstc-decisioning/internal/jobs"
)

func seedStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore()
	base := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	seed := []*jobs.ScoreApplicationJob{
		{JobID: "j1", ApplicationID: "app-1", Status: jobs.JobStatusCompleted, CreatedAt: base},
		{JobID: "j2", ApplicationID: "app-2", Status: jobs.JobStatusFailed, CreatedAt: base.Add(time.Minute)},
		{JobID: "j3", ApplicationID: "app-1", Status: jobs.JobStatusCompleted, CreatedAt: base.Add(2 * time.Minute)},
		{JobID: "j4", ApplicationID: "app-3", Status: jobs.JobStatusPending, CreatedAt: base.Add(3 * time.Minute)},
	}
	for _, j := range seed {
		if err := store.SaveJob(context.Background(), j); err != nil {
			t.Fatalf("SaveJob(%s) error = %v", j.JobID, err)
		}
	}
	return store
}

func jobIDs(list []*jobs.ScoreApplicationJob) []string {
	ids := make([]string, 0, len(list))
	for _, j := range list {
		ids = append(ids, j.JobID)
	}
	return ids
}

func TestStoreListJobs(t *testing.T) {
	store := seedStore(t)

	tests := []struct {
		name   string
		filter jobs.JobFilter
		want   []string
	}{
		{name: "all newest first", filter: jobs.JobFilter{}, want: []string{"j4", "j3", "j2", "j1"}},
		{name: "by status", filter: jobs.JobFilter{Status: jobs.JobStatusCompleted}, want: []string{"j3", "j1"}},
		{name: "by application", filter: jobs.JobFilter{ApplicationID: "app-1"}, want: []string{"j3", "j1"}},
		{name: "limit", filter: jobs.JobFilter{Limit: 2}, want: []string{"j4", "j3"}},
		{name: "offset and limit", filter: jobs.JobFilter{Offset: 1, Limit: 2}, want: []string{"j3", "j2"}},
		{name: "offset past end", filter: jobs.JobFilter{Offset: 10}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.ListJobs(context.Background(), tt.filter)
			if err != nil {
				t.Fatalf("ListJobs() error = %v", err)
			}
			ids := jobIDs(got)
			if len(ids) != len(tt.want) {
				t.Fatalf("ListJobs() = %v, want %v", ids, tt.want)
			}
			for i := range ids {
				if ids[i] != tt.want[i] {
					t.Errorf("ListJobs()[%d] = %s, want %s", i, ids[i], tt.want[i])
				}
			}
		})
	}
}

func TestStoreReturnsCopies(t *testing.T) {
	store := NewStore()
	job := &jobs.ScoreApplicationJob{JobID: "j1", Status: jobs.JobStatusPending, Payload: []byte(`{"a":1}`)}
	if err := store.SaveJob(context.Background(), job); err != nil {
		t.Fatalf("SaveJob() error = %v", err)
	}

	job.Status = jobs.JobStatusRunning
	job.Payload[0] = 'x'

	got, err := store.GetJob(context.Background(), "j1")
	if err != nil {
		t.Fatalf("GetJob() error = %v", err)
	}
	if got.Status != jobs.JobStatusPending {
		t.Errorf("Status = %s, want stored value pending", got.Status)
	}
	if string(got.Payload) != `{"a":1}` {
		t.Errorf("Payload = %s, want the stored copy", got.Payload)
	}
}

func TestStoreNotFound(t *testing.T) {
	store := NewStore()

	if _, err := store.GetJob(context.Background(), "missing"); !errors.Is(err, jobs.ErrJobNotFound) {
		t.Errorf("GetJob() error = %v, want ErrJobNotFound", err)
	}
	if err := store.UpdateJobStatus(context.Background(), "missing", jobs.JobStatusFailed, ""); !errors.Is(err, jobs.ErrJobNotFound) {
		t.Errorf("UpdateJobStatus() error = %v, want ErrJobNotFound", err)
	}
	if err := store.SaveJob(context.Background(), &jobs.ScoreApplicationJob{}); err == nil {
		t.Error("expected an error saving a job without an id")
	}
}

func TestStoreUpdateJobStatus(t *testing.T) {
	store := seedStore(t)

	if err := store.UpdateJobStatus(context.Background(), "j4", jobs.JobStatusFailed, "cancelled"); err != nil {
		t.Fatalf("UpdateJobStatus() error = %v", err)
	}
	got, _ := store.GetJob(context.Background(), "j4")
	if got.Status != jobs.JobStatusFailed || got.Error != "cancelled" {
		t.Errorf("job = %+v, want failed with error", got)
	}
}
