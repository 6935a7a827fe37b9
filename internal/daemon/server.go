package daemon

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kosiew/duecron/internal/stamp"
)

// buildRouter constructs the chi mux for the admin listener.
func (d *Daemon) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", d.handleHealth())
	r.Get("/jobs", d.handleJobs())
	r.Handle("/metrics", d.metrics.Handler())

	return r
}

// HealthResponse is the JSON response for GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
	Jobs   int    `json:"jobs"`
}

func (d *Daemon) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(HealthResponse{
			Status: "ok",
			Jobs:   len(d.jobs),
		})
	}
}

// JobStatus is one element of the GET /jobs response.
type JobStatus struct {
	Name     string `json:"name"`
	Schedule string `json:"schedule"`
	LastRun  string `json:"last_run,omitempty"`
}

func (d *Daemon) handleJobs() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		statuses := make([]JobStatus, 0, len(d.jobs))
		for _, job := range d.jobs {
			st := JobStatus{Name: job.Name(), Schedule: job.Schedule()}
			key := stamp.Key(job.Schedule(), job.Name())
			if epoch := d.store.Read(key); epoch > 0 {
				st.LastRun = time.Unix(epoch, 0).UTC().Format(time.RFC3339)
			}
			statuses = append(statuses, st)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(statuses)
	}
}
