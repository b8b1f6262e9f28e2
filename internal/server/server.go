package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/wikicull/wikicull/internal/app"
	"github.com/wikicull/wikicull/internal/engine"
	"github.com/wikicull/wikicull/internal/logging"
	"github.com/wikicull/wikicull/internal/store"
)

// Server is the HTTP + WebSocket API surface for wikicull.
type Server struct {
	cfg          Config
	orchestrator *app.Orchestrator
	router       chi.Router
	upgrader     websocket.Upgrader
	logger       logging.Logger
	store        *store.Store
}

// NewServer creates a new Server with its own Orchestrator and store.
func NewServer(cfg Config) (*Server, error) {
	if cfg.AppConfig == nil {
		cfg.AppConfig = app.DefaultConfig()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewStdoutLogger("Server")
	}

	storePath, err := expandPath(cfg.AppConfig.StorePath)
	if err != nil {
		return nil, fmt.Errorf("expanding store path: %w", err)
	}
	cfg.AppConfig.StorePath = storePath
	if err := os.MkdirAll(filepath.Dir(storePath), 0755); err != nil {
		logger.Warn("creating store directory",
			logging.Field{Key: "path", Value: filepath.Dir(storePath)},
			logging.Field{Key: "error", Value: err.Error()})
	}

	st, err := store.Open(storePath, logger)
	if err != nil {
		return nil, fmt.Errorf("opening analysis store: %w", err)
	}

	orch := app.NewOrchestrator(cfg.AppConfig, st, logger)

	r := chi.NewRouter()
	s := &Server{
		cfg:          cfg,
		orchestrator: orch,
		router:       r,
		logger:       logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// TODO: tighten for production
				return true
			},
		},
		store: st,
	}

	s.routes()
	return s, nil
}

// Orchestrator returns the underlying orchestrator for advanced use (tests, etc.).
func (s *Server) Orchestrator() *app.Orchestrator {
	return s.orchestrator
}

func (s *Server) routes() {
	r := s.router

	r.Use(s.corsMiddleware)

	// CORS preflight
	r.Options("/jobs/analyze", s.optionsHandler("POST"))
	r.Options("/jobs", s.optionsHandler("GET"))
	r.Options("/jobs/{jobID}", s.optionsHandler("GET, DELETE"))
	r.Options("/analyses", s.optionsHandler("GET"))
	r.Options("/analyses/{analysisID}", s.optionsHandler("GET, DELETE"))
	r.Options("/analyses/{analysisID}/report", s.optionsHandler("GET"))
	r.Options("/analyses/{analysisID}/culled", s.optionsHandler("GET"))
	r.Options("/analyses/{analysisID}/minor", s.optionsHandler("GET"))
	r.Options("/ws/analyze", s.optionsHandler("GET"))

	// Jobs over REST
	r.Post("/jobs/analyze", s.handleStartAnalyzeJob)
	r.Get("/jobs", s.handleListJobs)
	r.Get("/jobs/{jobID}", s.handleGetJob)
	r.Delete("/jobs/{jobID}", s.handleCancelJob)

	// Saved analyses
	r.Get("/analyses", s.handleListAnalyses)
	r.Get("/analyses/{analysisID}", s.handleGetAnalysis)
	r.Delete("/analyses/{analysisID}", s.handleDeleteAnalysis)
	r.Get("/analyses/{analysisID}/report", s.handleGetReport)
	r.Get("/analyses/{analysisID}/culled", s.handleGetCulledListing)
	r.Get("/analyses/{analysisID}/minor", s.handleGetMinorEdits)

	// WebSocket for job progress
	r.Get("/ws/analyze", s.handleAnalyzeWS)
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		next.ServeHTTP(w, r)
	})
}

func (s *Server) optionsHandler(methods string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Methods", methods)
		w.WriteHeader(http.StatusNoContent)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fields := []logging.Field{
		{Key: "method", Value: r.Method},
		{Key: "path", Value: r.URL.Path},
	}

	if q := r.URL.Query(); len(q) > 0 {
		fields = append(fields, logging.Field{Key: "query", Value: q})
	}

	if r.Body != nil && (r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch) {
		if bodyBytes, err := io.ReadAll(r.Body); err == nil {
			fields = append(fields, logging.Field{Key: "body", Value: string(bodyBytes)})
			r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}
	}

	s.logger.Info("http_request", fields...)

	s.router.ServeHTTP(w, r)
}

// Close shuts down the underlying store.
func (s *Server) Close() {
	if s.store != nil {
		s.store.Close()
	}
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.ListenAddr,
		Handler:      s,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // allow streaming
	}
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) writeStoreError(w http.ResponseWriter, err error, what string) {
	if errors.Is(err, store.ErrAnalysisNotFound) {
		writeError(w, http.StatusNotFound, "analysis not found")
		return
	}
	s.logger.Warn(what, logging.Field{Key: "error", Value: err.Error()})
	writeError(w, http.StatusInternalServerError, err.Error())
}

// --- HTTP handlers ---

// Jobs (REST)

func (s *Server) handleStartAnalyzeJob(w http.ResponseWriter, r *http.Request) {
	var body StartAnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.logger.Warn("decoding analyze body", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if body.Listing == "" {
		writeError(w, http.StatusBadRequest, "missing listing")
		return
	}
	if body.Name == "" {
		body.Name = "unnamed"
	}

	job, err := s.orchestrator.StartAnalyzeJob(context.Background(), body.Name, body.Listing)
	if err != nil {
		s.logger.Warn("starting analyze job", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.logger.Info("started analyze job",
		logging.Field{Key: "job_id", Value: job.ID},
		logging.Field{Key: "name", Value: body.Name})
	writeJSON(w, http.StatusAccepted, job)
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs := s.orchestrator.ListJobs()
	s.logger.Info("listed jobs", logging.Field{Key: "count", Value: len(jobs)})
	writeJSON(w, http.StatusOK, jobs)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		s.logger.Warn("getting job: not found", logging.Field{Key: "job_id", Value: jobID})
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleCancelJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	s.orchestrator.CancelJob(jobID)
	s.logger.Info("canceled job", logging.Field{Key: "job_id", Value: jobID})
	writeJSON(w, http.StatusNoContent, nil)
}

// Saved analyses

func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if ls := r.URL.Query().Get("limit"); ls != "" {
		if v, err := strconv.Atoi(ls); err == nil && v > 0 {
			limit = v
		}
	}

	sums, err := s.orchestrator.ListAnalyses(r.Context(), limit)
	if err != nil {
		s.writeStoreError(w, err, "listing analyses")
		return
	}
	if sums == nil {
		sums = []store.Summary{}
	}
	writeJSON(w, http.StatusOK, sums)
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "analysisID")
	a, err := s.orchestrator.GetAnalysis(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err, "getting analysis")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleDeleteAnalysis(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "analysisID")
	if err := s.orchestrator.DeleteAnalysis(r.Context(), id); err != nil {
		s.writeStoreError(w, err, "deleting analysis")
		return
	}
	s.logger.Info("deleted analysis", logging.Field{Key: "analysis_id", Value: id})
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "analysisID")
	a, err := s.orchestrator.GetAnalysis(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err, "getting analysis report")
		return
	}
	writeJSON(w, http.StatusOK, engine.BuildReport(a.Page))
}

func (s *Server) handleGetCulledListing(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "analysisID")
	a, err := s.orchestrator.GetAnalysis(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err, "getting culled listing")
		return
	}
	writeJSON(w, http.StatusOK, CulledListingResponse{
		AnalysisID: a.ID,
		Culled:     engine.CulledListing(a.Page),
	})
}

func (s *Server) handleGetMinorEdits(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "analysisID")
	a, err := s.orchestrator.GetAnalysis(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err, "getting minor edits")
		return
	}
	minor := a.Page.MinorEdits
	if minor == nil {
		minor = []string{}
	}
	writeJSON(w, http.StatusOK, MinorEditsResponse{AnalysisID: a.ID, Minor: minor})
}

// WebSocket

// handleAnalyzeWS upgrades the connection, reads one StartAnalyzeRequest
// and streams job events until the job reaches a terminal state.
func (s *Server) handleAnalyzeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrading to websocket", logging.Field{Key: "error", Value: err.Error()})
		return
	}
	defer conn.Close()

	var req StartAnalyzeRequest
	if err := conn.ReadJSON(&req); err != nil {
		_ = conn.WriteJSON(map[string]string{"error": "invalid request"})
		return
	}
	if req.Listing == "" {
		_ = conn.WriteJSON(map[string]string{"error": "missing listing"})
		return
	}
	if req.Name == "" {
		req.Name = "unnamed"
	}

	job, err := s.orchestrator.StartAnalyzeJob(context.Background(), req.Name, req.Listing)
	if err != nil {
		s.logger.Warn("starting analyze job", logging.Field{Key: "error", Value: err.Error()})
		_ = conn.WriteJSON(map[string]string{"error": err.Error()})
		return
	}

	s.logger.Info("started analyze job", logging.Field{Key: "job_id", Value: job.ID})
	_ = conn.WriteJSON(job)

	for ev := range job.Events {
		if err := conn.WriteJSON(ev); err != nil {
			// Assume client disconnected; cancel job
			s.orchestrator.CancelJob(job.ID)
			return
		}
	}
}

func expandPath(p string) (string, error) {
	if len(p) > 0 && p[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, p[1:]), nil
	}
	return p, nil
}
