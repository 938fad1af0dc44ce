// Package health provides the HTTP surface: probes, metrics, the picks API and the pick stream.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/smart-picks/internal/models"
)

// DatabasePinger defines the interface for checking database connectivity.
type DatabasePinger interface {
	Ping(ctx context.Context) error
}

// PicksReader serves the latest persisted picks and cycle records.
type PicksReader interface {
	LatestPicks(ctx context.Context, market models.Market, limit int) ([]*models.PickRecord, error)
	LatestRun(ctx context.Context, market models.Market) (*models.AnalysisRun, error)
}

// HealthResponse represents the JSON response for health check endpoints.
type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp,omitempty"`
	Version   string `json:"version,omitempty"`
	Commit    string `json:"commit,omitempty"`
}

// ReadyResponse represents the JSON response for readiness check endpoints.
type ReadyResponse struct {
	Status   string            `json:"status"`
	Service  string            `json:"service"`
	Checks   map[string]string `json:"checks,omitempty"`
	Duration string            `json:"duration,omitempty"`
}

// PicksResponse is the body of /api/picks.
type PicksResponse struct {
	Market models.Market        `json:"market"`
	Run    *models.AnalysisRun  `json:"run,omitempty"`
	Picks  []*models.PickRecord `json:"picks"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server is the HTTP server for probes and the picks API.
type Server struct {
	serviceName string
	version     string
	commit      string
	port        int
	metricsPath string
	wsPath      string
	server      *http.Server
	listener    net.Listener
	handler     http.Handler
	logger      *logrus.Logger
	db          DatabasePinger
	picks       PicksReader
	mu          sync.RWMutex
	ready       bool
}

// Config holds the configuration for the server. Optional handlers are mounted only when set.
type Config struct {
	ServiceName      string
	Version          string
	Commit           string
	Port             int
	Logger           *logrus.Logger
	DB               DatabasePinger
	Picks            PicksReader
	MetricsPath      string
	MetricsHandler   http.Handler
	WebSocketPath    string
	WebSocketHandler http.Handler
}

// NewServer creates a new server.
func NewServer(cfg Config) *Server {
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "/metrics"
	}
	if cfg.WebSocketPath == "" {
		cfg.WebSocketPath = "/ws/picks"
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}

	s := &Server{
		serviceName: cfg.ServiceName,
		version:     cfg.Version,
		commit:      cfg.Commit,
		port:        cfg.Port,
		metricsPath: cfg.MetricsPath,
		wsPath:      cfg.WebSocketPath,
		logger:      cfg.Logger,
		db:          cfg.DB,
		picks:       cfg.Picks,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ready", s.handleReady)
	mux.HandleFunc("/live", s.handleLive)
	if cfg.Picks != nil {
		mux.HandleFunc("/api/picks", s.handlePicks)
	}
	if cfg.MetricsHandler != nil {
		mux.Handle(cfg.MetricsPath, cfg.MetricsHandler)
	}
	if cfg.WebSocketHandler != nil {
		mux.Handle(cfg.WebSocketPath, cfg.WebSocketHandler)
	}
	s.handler = mux

	return s
}

// Handler returns the server's routes.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// SetReady marks the server as ready to accept traffic.
func (s *Server) SetReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

// IsReady returns whether the server is ready.
func (s *Server) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Start binds the port and serves in the background until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", ":"+strconv.Itoa(s.port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", s.port, err)
	}

	s.listener = ln
	s.server = &http.Server{
		Handler:      s.handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.WithFields(logrus.Fields{
		"port":    s.port,
		"service": s.serviceName,
	}).Info("HTTP server starting")

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.WithError(err).Error("HTTP server error")
		}
	}()

	go func() {
		<-ctx.Done()
		if err := s.Shutdown(); err != nil {
			s.logger.WithError(err).Warn("HTTP server shutdown error")
		}
	}()

	return nil
}

// Addr returns the bound address once started.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	if s.server == nil {
		return nil
	}

	s.logger.Info("HTTP server shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}

// handleHealth handles the /health endpoint - basic liveness check.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Service:   s.serviceName,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   s.version,
		Commit:    s.commit,
	})
}

// handleLive handles the /live endpoint - kubernetes liveness probe.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Service: s.serviceName,
	})
}

// handleReady handles the /ready endpoint - checks database connectivity.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	checks := make(map[string]string)
	allHealthy := true

	if !s.IsReady() {
		allHealthy = false
		checks["service"] = "not_ready"
	} else {
		checks["service"] = "ok"
	}

	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		if err := s.db.Ping(ctx); err != nil {
			allHealthy = false
			checks["database"] = fmt.Sprintf("error: %v", err)
		} else {
			checks["database"] = "ok"
		}
	}

	response := ReadyResponse{
		Service:  s.serviceName,
		Checks:   checks,
		Duration: time.Since(start).String(),
	}

	status := http.StatusOK
	response.Status = "ok"
	if !allHealthy {
		response.Status = "not_ready"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, response)
}

// handlePicks serves GET /api/picks?market=btts&limit=n.
func (s *Server) handlePicks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	market, err := models.ParseMarket(r.URL.Query().Get("market"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a non-negative integer"})
			return
		}
	}

	response := PicksResponse{Market: market, Picks: []*models.PickRecord{}}

	run, err := s.picks.LatestRun(r.Context(), market)
	switch {
	case errors.Is(err, models.ErrNotFound):
		writeJSON(w, http.StatusOK, response)
		return
	case err != nil:
		s.logger.WithError(err).WithField("market", market).Error("Failed to load latest run")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to load picks"})
		return
	}
	response.Run = run

	picks, err := s.picks.LatestPicks(r.Context(), market, limit)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		s.logger.WithError(err).WithField("market", market).Error("Failed to load latest picks")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to load picks"})
		return
	}
	if picks != nil {
		response.Picks = picks
	}

	writeJSON(w, http.StatusOK, response)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
