// Package httpapi is the thin HTTP surface the core exposes to the (out of
// scope) public web layer: spec.md §6. It deliberately does not implement
// authentication, the vote ledger, or the taxonomy/admin surfaces — those
// remain external collaborators. It mirrors the teacher's own
// cmd/api/main.go convention of plain net/http with http.HandleFunc and no
// router framework.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/debatelab/engine/internal/scheduler"
	"github.com/debatelab/engine/internal/store"
)

// DebateRunner is the one operation spec.md §6 names as a manual-trigger
// entry point: run_single_debate().
type DebateRunner interface {
	RunSingleDebate(ctx context.Context, excludeCategories []string) (*store.Debate, error)
}

var _ DebateRunner = (*scheduler.Runner)(nil)

// Server wires the core's read-model queries and manual trigger onto a
// plain net/http.ServeMux.
type Server struct {
	Runner  DebateRunner
	Debates *store.DebateRepo
	Models  *store.ModelRepo
	Topics  *store.TopicRepo
	Logger  *slog.Logger
}

func (s *Server) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// Handler builds the ServeMux for this server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/debates/run", s.handleRunDebate)
	mux.HandleFunc("/debates/", s.handleDebateDetail)
	mux.HandleFunc("/models", s.handleModelStandings)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleRunDebate is the manual-trigger endpoint: spec.md §6,
// run_single_debate(). Returns the completed Debate as JSON, or 204 if no
// topic was available, or 500 on failure.
func (s *Server) handleRunDebate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Manual triggers run outside the cron-driven daily sequence, so there is
	// no "today's categories so far" set to exclude.
	d, err := s.Runner.RunSingleDebate(r.Context(), nil)
	if err != nil {
		s.logger().Error("manual debate trigger failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if d == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, d)
}

// handleDebateDetail is a minimal read-model query over one Debate: the
// public HTTP surface proper (list/live/schedule views, pagination,
// filtering) is explicitly out of scope per spec.md §1 and lives in an
// external collaborator; this is just enough to exercise store.DebateRepo.
func (s *Server) handleDebateDetail(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/debates/")
	if idStr == "" || idStr == "run" {
		http.NotFound(w, r)
		return
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		http.Error(w, "invalid debate id", http.StatusBadRequest)
		return
	}
	d, err := s.Debates.GetByID(r.Context(), id)
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, d)
}

// handleModelStandings is a minimal read-model query over active Models,
// ordered the way store.ModelRepo.ListActive already returns them.
func (s *Server) handleModelStandings(w http.ResponseWriter, r *http.Request) {
	models, err := s.Models.ListActive(r.Context(), nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, models)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
