package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"cadence/internal/api"
	"cadence/internal/config"
	"cadence/internal/logging"
	"cadence/internal/services"
)

const maxBodyBytes = 1 << 20

type apiServer struct {
	bind    string
	logger  *slog.Logger
	daemon  *Daemon
	handler http.Handler

	mu       sync.Mutex
	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) *apiServer {
	srv := &apiServer{
		bind:   strings.TrimSpace(cfg.Paths.APIBind),
		logger: logging.NewComponentLogger(logger, "api-server"),
		daemon: d,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", srv.handleStatus)
	mux.HandleFunc("GET /api/queue", srv.handleQueue)
	mux.HandleFunc("POST /api/download", srv.handleDownload)
	mux.HandleFunc("POST /api/settings/parallel", srv.handleParallel)
	mux.HandleFunc("POST /api/history/clear", srv.handleClearHistory)
	mux.HandleFunc("GET /api/search", srv.handleSearch)
	mux.HandleFunc("GET /api/artist", srv.handleArtist)
	mux.HandleFunc("GET /api/settings", srv.handleSettings)
	mux.HandleFunc("POST /api/settings", srv.handleUpdateSettings)
	mux.HandleFunc("GET /api/events", srv.handleEvents)
	if d.metrics != nil {
		mux.Handle("GET /metrics", d.metrics.Handler())
	}

	srv.handler = requestIDMiddleware(authMiddleware(cfg.Paths.APIToken, mux))
	return srv
}

func (s *apiServer) start(ctx context.Context) error {
	if s.bind == "" {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	server := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	s.mu.Lock()
	s.listener = listener
	s.server = server
	s.mu.Unlock()

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	s.mu.Lock()
	server := s.server
	s.server = nil
	s.listener = nil
	s.mu.Unlock()
	if server == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		_ = server.Close()
	}
}

func (s *apiServer) addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.daemon.Status(r.Context()))
}

func (s *apiServer) handleQueue(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.daemon.service.List(r.Context()))
}

func (s *apiServer) handleDownload(w http.ResponseWriter, r *http.Request) {
	var req api.DownloadRequest
	if !s.decode(w, r, &req) {
		return
	}
	job, err := s.daemon.service.Submit(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.SubmitResponse{Status: "added", Job: *job})
}

func (s *apiServer) handleParallel(w http.ResponseWriter, r *http.Request) {
	var req api.ParallelLimitRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Limit == nil {
		s.writeError(w, r, services.Wrap(services.ErrValidation, "api", "parallel", "limit is required", nil))
		return
	}
	applied := s.daemon.service.SetParallelLimit(r.Context(), *req.Limit)
	s.writeJSON(w, http.StatusOK, api.ParallelLimitResponse{Status: "updated", Limit: applied})
}

func (s *apiServer) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	removed := s.daemon.service.ClearTerminal(r.Context())
	s.writeJSON(w, http.StatusOK, api.ClearResponse{Status: "cleared", Removed: removed})
}

func (s *apiServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	results, err := s.daemon.service.Search(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, results)
}

func (s *apiServer) handleArtist(w http.ResponseWriter, r *http.Request) {
	disc, err := s.daemon.service.Artist(r.Context(), r.URL.Query().Get("url"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, disc)
}

func (s *apiServer) handleSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.daemon.service.Settings(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, settings)
}

func (s *apiServer) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var changes map[string]any
	if !s.decode(w, r, &changes) {
		return
	}
	if _, err := s.daemon.service.UpdateSettings(r.Context(), changes); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.StatusResponse{Status: "updated"})
}

// decode reads a JSON body, writing a 400 on failure.
func (s *apiServer) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		s.writeError(w, r, services.Wrap(services.ErrValidation, "api", "decode", "invalid JSON body", err))
		return false
	}
	return true
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := api.HTTPStatus(err)
	requestID, _ := services.RequestIDFromContext(r.Context())
	logger := logging.WithContext(r.Context(), s.logger)
	attrs := []any{
		logging.String("method", r.Method),
		logging.String("path", r.URL.Path),
		logging.Int("status", status),
		logging.Error(err),
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", attrs...)
	} else {
		logger.Debug("request rejected", attrs...)
	}
	s.writeJSON(w, status, api.ErrorResponse{Error: err.Error(), RequestID: requestID})
}
