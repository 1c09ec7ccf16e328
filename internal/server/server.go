package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/spigell/resume-analyzer/internal/analysis"
	"github.com/spigell/resume-analyzer/internal/metrics"
	"go.uber.org/zap"
)

const (
	defaultAddress         = ":5000"
	defaultMaxBodyBytes    = 20 << 20
	defaultShutdownTimeout = 10 * time.Second
)

// Analyzer is the pipeline as seen by the HTTP layer.
type Analyzer interface {
	Analyze(ctx context.Context, in analysis.Input) (analysis.Result, error)
}

type Config struct {
	Address         string
	CORSOrigins     []string
	MaxBodyBytes    int64
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type Server struct {
	cfg      Config
	analyzer Analyzer
	logger   *zap.Logger
}

func New(cfg Config, analyzer Analyzer, logger *zap.Logger) *Server {
	if strings.TrimSpace(cfg.Address) == "" {
		cfg.Address = defaultAddress
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultMaxBodyBytes
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Server{cfg: cfg, analyzer: analyzer, logger: logger}
}

// Handler returns the routes wrapped with CORS handling.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", metrics.Handler())

	return withCORS(s.cfg.CORSOrigins, mux)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Address,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("address", s.cfg.Address))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", zap.Duration("timeout", s.cfg.ShutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)

	var in analysis.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		message := "invalid request body"
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			message = "request body too large"
		}
		s.logger.Warn("rejecting analyze request", zap.String("reason", message), zap.Error(err))
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: message})
		return
	}

	res, err := s.analyzer.Analyze(r.Context(), in)
	if err != nil {
		status := http.StatusInternalServerError
		if analysis.Classify(err) == analysis.CategoryValidation {
			status = http.StatusBadRequest
		}
		s.writeJSON(w, status, errorResponse{Error: analysis.Message(err)})
		return
	}

	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Warn("writing response", zap.Error(err))
	}
}
