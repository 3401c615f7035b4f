// Package preview serves a generated documentation tree over HTTP.
package preview

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/dgallion1/dhalldocs/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP preview server for a generated tree.
type Server struct {
	router chi.Router
	root   string
	log    *slog.Logger

	mu     sync.RWMutex
	report *pipeline.Report
}

// NewServer creates a server for the output tree rooted at root.
func NewServer(root string, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{root: root, log: log}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetReport publishes the report of the run that produced the tree.
func (s *Server) SetReport(r *pipeline.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.report = r
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)
	r.Get("/api/report", s.handleReport)

	files := http.FileServer(http.Dir(s.root))
	r.Get("/*", files.ServeHTTP)
	r.Head("/*", files.ServeHTTP)

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	report := s.report
	s.mu.RUnlock()
	if report == nil {
		jsonError(w, "no generation report available", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(report.Snapshot())
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
