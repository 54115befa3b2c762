package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

// HealthFunc reports the state shown by /health. A nil error means healthy.
type HealthFunc func(ctx context.Context) error

// HealthHandler answers GET /health with a small JSON document.
type HealthHandler struct {
	check   HealthFunc
	started time.Time
}

// NewHealthHandler creates a health handler. A nil check always reports healthy.
func NewHealthHandler(check HealthFunc) *HealthHandler {
	return &HealthHandler{check: check, started: time.Now()}
}

// Routes returns the HTTP routes this handler serves.
func (h *HealthHandler) Routes() []string {
	return []string{"GET /health"}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"status": "ok",
		"uptime": time.Since(h.started).Round(time.Second).String(),
	}
	status := http.StatusOK

	if h.check != nil {
		if err := h.check(r.Context()); err != nil {
			body["status"] = "unavailable"
			body["error"] = err.Error()
			status = http.StatusServiceUnavailable
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// statusRecorder captures the status code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Logging logs one line per request at debug level, or warn level for 5xx responses.
func Logging(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			kv := []any{"method", r.Method, "path", r.URL.Path, "status", rec.status, "elapsed", time.Since(start)}
			if rec.status >= 500 {
				logger.Warn("request", kv...)
				return
			}
			logger.Debug("request", kv...)
		})
	}
}

// New builds the router for the metrics server.
func New(logger *log.Logger, metrics http.Handler, health HealthFunc) *BasicRouter {
	r := NewBasicRouter()
	r.Use(Logging(logger))
	r.Handle(http.MethodGet, "/metrics", metrics)
	r.Handler(NewHealthHandler(health))
	logger.Debug("routes registered", "routes", r.Routes())
	return r
}

// Serve listens on addr until ctx ends, then shuts the server down gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler, logger *log.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("metrics server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down metrics server: %w", err)
	}
	logger.Info("metrics server stopped")
	return nil
}
