package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/specialistvlad/heartbeat/internal/ctxlog"
	"github.com/specialistvlad/heartbeat/internal/gui"
	"github.com/specialistvlad/heartbeat/internal/pump"
)

// StatsResponse is the body served at /stats.
type StatsResponse struct {
	Pump           pump.Stats   `json:"pump"`
	View           gui.Snapshot `json:"view"`
	Diagnostics    uint64       `json:"diagnostics"`
	LastDiagnostic string       `json:"last_diagnostic,omitempty"`
}

// healthHandler answers liveness checks.
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	logger := ctxlog.FromContext(a.ctx)
	logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// statsHandler serves the heartbeat counters as JSON.
func (a *App) statsHandler(w http.ResponseWriter, r *http.Request) {
	logger := ctxlog.FromContext(a.ctx)
	logger.Debug("Stats endpoint hit.", "remote_addr", r.RemoteAddr)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(a.Stats()); err != nil {
		logger.Error("Failed to encode stats", "error", err)
	}
}

// Stats collects the current counters.
func (a *App) Stats() StatsResponse {
	resp := StatsResponse{
		Pump: a.heartbeat.Stats(),
		View: a.coordinator.Snapshot(),
	}
	a.diagMu.Lock()
	resp.Diagnostics = a.diagnostics
	if a.lastDiag != nil {
		resp.LastDiagnostic = fmt.Sprintf("tick %d: %v", a.lastDiag.Tick, a.lastDiag.Err)
	}
	a.diagMu.Unlock()
	return resp
}

// handler builds the HTTP routes.
func (a *App) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", a.healthHandler)
	mux.HandleFunc("GET /stats", a.statsHandler)
	return mux
}

// healthCheckServer initializes and runs the health check HTTP server.
func (a *App) healthCheckServer() {
	logger := ctxlog.FromContext(a.ctx)
	logger.Debug("Configuring health check server.")
	if a.config.HealthcheckPort <= 0 {
		logger.Debug("Health check server not started: disabled")
		return
	}

	addr := fmt.Sprintf(":%d", a.config.HealthcheckPort)
	a.httpServer = &http.Server{
		Addr:              addr,
		Handler:           a.handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	srv := a.httpServer
	go func() {
		logger.Info("🩺 Health check server starting", "address", fmt.Sprintf("http://localhost%s/health", addr))
		// ListenAndServe returns ErrServerClosed on graceful shutdown.
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Health check server failed unexpectedly", "error", err)
		}
	}()
}

func (a *App) closeHealthCheckServer() error {
	logger := ctxlog.FromContext(a.ctx)

	if a.httpServer == nil {
		logger.Debug("Health check server was not running.")
		return nil
	}

	ctx, cancel := context.WithTimeout(a.ctx, 5*time.Second)
	defer cancel()

	logger.Info("🩺 Shutting down health check server...")
	if err := a.httpServer.Shutdown(ctx); err != nil {
		logger.Error("Health check server shutdown failed", "error", err)
		return err
	}
	a.httpServer = nil
	logger.Debug("Health check server shut down gracefully.")
	return nil
}
