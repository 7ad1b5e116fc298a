// Package httpapi is the thin HTTP front door: job acceptance plus the
// health and metrics endpoints mounted under one gorilla/mux router.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/phantoooomCam/sabanas-server/internal/config"
	"github.com/phantoooomCam/sabanas-server/internal/health"
	"github.com/phantoooomCam/sabanas-server/internal/job"
	"github.com/phantoooomCam/sabanas-server/internal/metrics"
	apperrors "github.com/phantoooomCam/sabanas-server/pkg/errors"
	"github.com/phantoooomCam/sabanas-server/pkg/logger"
)

// Server is the HTTP surface described in SPEC_FULL.md §6: job acceptance
// plus health/metrics, all API-key gated except health and metrics.
type Server struct {
	cfg     config.HTTPConfig
	engine  *job.Engine
	health  *health.HealthService
	metrics *metrics.PrometheusMetrics
	server  *http.Server
}

func New(cfg config.HTTPConfig, engine *job.Engine, hs *health.HealthService, m *metrics.PrometheusMetrics) *Server {
	s := &Server{cfg: cfg, engine: engine, health: hs, metrics: m}

	r := mux.NewRouter()
	r.HandleFunc("/jobs/sabanas", s.requireAPIKey(s.handleAcceptJob)).Methods(http.MethodPost)
	r.HandleFunc("/health/live", hs.LivenessHandler()).Methods(http.MethodGet)
	r.HandleFunc("/health/ready", hs.ReadinessHandler()).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealthAlias).Methods(http.MethodGet)
	if m != nil {
		r.Handle("/metrics", m.Handler()).Methods(http.MethodGet)
	}

	s.server = &http.Server{
		Addr:         cfg.ListenAddress + ":" + strconv.Itoa(cfg.Port),
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

func (s *Server) Start() error {
	logger.WithField("addr", s.server.Addr).Info("http api started")
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) requireAPIKey(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.APIKey == "" {
			next(w, r)
			return
		}
		key := r.Header.Get("X-API-Key")
		if key == "" {
			if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				key = strings.TrimPrefix(auth, "Bearer ")
			}
		}
		if key != s.cfg.APIKey {
			writeError(w, apperrors.New(apperrors.ErrUnauthorized, "missing or invalid API key").WithStatusCode(http.StatusUnauthorized))
			return
		}
		next(w, r)
	}
}

type acceptJobRequest struct {
	FileID int64 `json:"fileId"`
}

type acceptJobResponse struct {
	JobID         string `json:"jobId"`
	FileID        int64  `json:"fileId"`
	State         string `json:"state"`
	CorrelationID string `json:"correlationId"`
}

func (s *Server) handleAcceptJob(w http.ResponseWriter, r *http.Request) {
	var req acceptJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.FileID < 1 {
		writeError(w, apperrors.New(apperrors.ErrValidation, "fileId must be a positive integer").WithStatusCode(http.StatusBadRequest))
		return
	}

	correlationID := r.Header.Get("X-Correlation-ID")

	jobID, rec, err := s.engine.AcceptJob(r.Context(), req.FileID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, acceptJobResponse{
		JobID:         jobID,
		FileID:        rec.ID,
		State:         string(rec.State),
		CorrelationID: correlationID,
	})
}

func (s *Server) handleHealthAlias(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	status := apperrors.StatusCodeOf(err)
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

