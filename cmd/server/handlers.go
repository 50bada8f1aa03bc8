package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/himanishpuri/SeqSETI/pkg/logger"
	"github.com/himanishpuri/SeqSETI/pkg/models"
	"github.com/himanishpuri/SeqSETI/pkg/seqseti"
	"github.com/himanishpuri/SeqSETI/pkg/seqseti/likelihood"
	"github.com/himanishpuri/SeqSETI/pkg/seqseti/locator"
	"github.com/himanishpuri/SeqSETI/pkg/seqseti/trigger"
	"github.com/himanishpuri/SeqSETI/pkg/utils"
)

// Server encapsulates the HTTP server and its dependencies
type Server struct {
	service seqseti.Service
	config  *ServerConfig
	log     seqseti.Logger
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	DBPath         string
	Workers        int
	AllowedOrigins []string
	SearchTimeout  time.Duration // 0 means 30 minutes
}

// NewServer creates a new server instance
func NewServer(service seqseti.Service, config *ServerConfig) *Server {
	return &Server{
		service: service,
		config:  config,
		log:     logger.GetLogger(),
	}
}

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Errorf("Failed to encode JSON response: %v", err)
	}
}

// respondError writes an error response
func (s *Server) respondError(w http.ResponseWriter, statusCode int, message string) {
	s.respondJSON(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	})
}

// searchStatus maps search failures to HTTP status codes.
func searchStatus(err error) int {
	switch {
	case errors.Is(err, likelihood.ErrInvalidConfig), errors.Is(err, trigger.ErrNonFiniteTime):
		return http.StatusBadRequest
	case errors.Is(err, locator.ErrDegenerateScale):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) searchContext(r *http.Request) (context.Context, context.CancelFunc) {
	timeout := s.config.SearchTimeout
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	return context.WithTimeout(r.Context(), timeout)
}

// runID reads and validates the {id} URL parameter.
func (s *Server) runID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if !utils.IsUUID(id) {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("Invalid run ID: %q", id))
		return "", false
	}
	return id, true
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("Invalid JSON body: %v", err))
		return false
	}
	return true
}

// handleRoot handles GET /
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"service": "SeqSETI API",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"health":     "GET /health",
			"metrics":    "GET /api/health/metrics",
			"runs":       "GET /api/runs",
			"getRun":     "GET /api/runs/{id}",
			"getRecords": "GET /api/runs/{id}/records?top=N",
			"deleteRun":  "DELETE /api/runs/{id}",
			"search":     "POST /api/search",
			"compare":    "POST /api/compare",
		},
	})
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// handleMetrics handles GET /api/health/metrics
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	runs, err := s.service.ListRuns()
	if err != nil {
		s.log.Errorf("Failed to get run count: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to retrieve metrics")
		return
	}

	s.respondJSON(w, http.StatusOK, MetricsResponse{
		Status:       "healthy",
		DatabasePath: s.config.DBPath,
		RunCount:     len(runs),
		Workers:      s.config.Workers,
	})
}

// handleListRuns handles GET /api/runs
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.service.ListRuns()
	if err != nil {
		s.log.Errorf("Failed to list runs: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to retrieve runs")
		return
	}
	if runs == nil {
		runs = []models.Run{}
	}
	s.respondJSON(w, http.StatusOK, ListRunsResponse{Runs: runs, Count: len(runs)})
}

// handleGetRun handles GET /api/runs/{id}
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id, ok := s.runID(w, r)
	if !ok {
		return
	}
	run, err := s.service.GetRun(id)
	if err != nil {
		s.respondLookupError(w, id, err)
		return
	}
	s.respondJSON(w, http.StatusOK, run)
}

// handleGetRecords handles GET /api/runs/{id}/records
func (s *Server) handleGetRecords(w http.ResponseWriter, r *http.Request) {
	id, ok := s.runID(w, r)
	if !ok {
		return
	}

	top := DefaultTopRecords
	if v := r.URL.Query().Get("top"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.respondError(w, http.StatusBadRequest, fmt.Sprintf("Invalid top value: %q", v))
			return
		}
		top = n
	}

	var records []models.Record
	var err error
	if top == 0 {
		records, err = s.service.GetRecords(id)
	} else {
		records, err = s.service.TopRecords(id, top)
	}
	if err != nil {
		s.respondLookupError(w, id, err)
		return
	}
	if records == nil {
		records = []models.Record{}
	}
	s.respondJSON(w, http.StatusOK, RecordsResponse{RunID: id, Records: records, Count: len(records)})
}

// handleDeleteRun handles DELETE /api/runs/{id}
func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	id, ok := s.runID(w, r)
	if !ok {
		return
	}
	if err := s.service.DeleteRun(id); err != nil {
		s.respondLookupError(w, id, err)
		return
	}

	s.log.Infof("Deleted run %s", id)
	s.respondJSON(w, http.StatusOK, DeleteRunResponse{
		Message: "Run deleted successfully",
		ID:      id,
	})
}

func (s *Server) respondLookupError(w http.ResponseWriter, id string, err error) {
	if errors.Is(err, seqseti.ErrRunNotFound) {
		s.log.Warnf("Run not found: %s", id)
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("Run %s not found", id))
		return
	}
	s.log.Errorf("Run %s lookup failed: %v", id, err)
	s.respondError(w, http.StatusInternalServerError, "Failed to retrieve run")
}

// handleSearch handles POST /api/search. The posted triggers are split by
// config.segments and every resulting segment is searched and stored.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	req := SearchRequest{Config: seqseti.DefaultSearchConfig()}
	if !s.decode(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	cfg, err := req.Config.Likelihood()
	if err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("Invalid config: %v", err))
		return
	}

	seg := req.segment("api-" + time.Now().UTC().Format("20060102T150405"))
	segs, err := req.Config.Segments.Apply(seg.Label, seg.Triggers)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("Invalid segments: %v", err))
		return
	}
	if len(segs) == 0 {
		s.respondError(w, http.StatusUnprocessableEntity, "No segments left after filtering")
		return
	}

	ctx, cancel := s.searchContext(r)
	defer cancel()

	s.log.Infof("Search request: %d triggers in %d segment(s)", len(seg.Triggers), len(segs))
	runs, err := s.service.SearchSegments(ctx, segs, cfg)
	if err != nil {
		s.log.Errorf("Search failed: %v", err)
		s.respondError(w, searchStatus(err), fmt.Sprintf("Search failed: %v", err))
		return
	}
	s.respondJSON(w, http.StatusCreated, ListRunsResponse{Runs: runs, Count: len(runs)})
}

// handleCompare handles POST /api/compare
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	req := CompareRequest{Config: seqseti.DefaultSearchConfig()}
	if !s.decode(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	cfg, err := req.Config.Likelihood()
	if err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("Invalid config: %v", err))
		return
	}

	fg := req.Foreground.segment("foreground")
	bg := make([]seqseti.Segment, len(req.Background))
	for i := range req.Background {
		bg[i] = req.Background[i].segment(fmt.Sprintf("background-%d", i))
	}

	ctx, cancel := s.searchContext(r)
	defer cancel()

	s.log.Infof("Compare request: foreground %s against %d background segment(s)", fg.Label, len(bg))
	cmp, err := s.service.Compare(ctx, fg, bg, cfg)
	if err != nil {
		s.log.Errorf("Compare failed: %v", err)
		s.respondError(w, searchStatus(err), fmt.Sprintf("Compare failed: %v", err))
		return
	}
	s.respondJSON(w, http.StatusCreated, cmp)
}
