// Package api exposes stored measure runs over a small JSON HTTP
// surface, for tabular export tooling and dashboards.
package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/DyadicSolutions/StateSpaceGridLib/grid"
	"github.com/DyadicSolutions/StateSpaceGridLib/internal/httputil"
	"github.com/DyadicSolutions/StateSpaceGridLib/store"
)

// Server serves measure runs from a store.
type Server struct {
	store *store.Store
	mux   *http.ServeMux
}

// NewServer builds a Server over the given store.
func NewServer(st *store.Store) *Server {
	s := &Server{store: st, mux: http.NewServeMux()}
	s.mux.HandleFunc("/api/runs", s.handleRuns)
	s.mux.HandleFunc("/api/run", s.handleRun)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// runPayload is the wire form of one run. Measures travel as the flat
// field/record table so that NaN sentinels survive JSON, which has no
// NaN literal.
type runPayload struct {
	RunID     string   `json:"run_id"`
	CreatedAt int64    `json:"created_at_unix"`
	Fields    []string `json:"fields"`
	Record    []string `json:"record"`
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	runs, err := s.store.ListRuns()
	if err != nil {
		log.Printf("api: list runs: %v", err)
		httputil.InternalServerError(w, "failed to list runs")
		return
	}
	payload := make([]runPayload, len(runs))
	for i, run := range runs {
		payload[i] = toPayload(run)
	}
	httputil.WriteJSON(w, http.StatusOK, payload)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	runID := r.URL.Query().Get("run_id")
	if runID == "" {
		httputil.BadRequest(w, "run_id is required")
		return
	}
	run, err := s.store.Run(runID)
	if errors.Is(err, store.ErrNotFound) {
		httputil.NotFound(w, "no such run")
		return
	}
	if err != nil {
		log.Printf("api: fetch run %s: %v", runID, err)
		httputil.InternalServerError(w, "failed to fetch run")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toPayload(run))
}

func toPayload(run store.Run) runPayload {
	return runPayload{
		RunID:     run.ID,
		CreatedAt: run.CreatedAt.Unix(),
		Fields:    grid.Header(),
		Record:    run.Measures.Record(),
	}
}

