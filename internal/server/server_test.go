package server

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestBasicRouter(t *testing.T) {
	t.Run("method filtering", func(t *testing.T) {
		r := NewBasicRouter()
		r.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte("pong"))
		}))

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if rec.Code != http.StatusOK || rec.Body.String() != "pong" {
			t.Errorf("expected 200 pong, got %d %q", rec.Code, rec.Body.String())
		}

		rec = httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ping", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
		if allow := rec.Header().Get("Allow"); !strings.Contains(allow, http.MethodGet) {
			t.Errorf("expected Allow to list GET, got %q", allow)
		}
	})

	t.Run("routes", func(t *testing.T) {
		r := New(log.New(&bytes.Buffer{}), http.NotFoundHandler(), nil)
		want := "GET /health,GET /metrics"
		if got := strings.Join(r.Routes(), ","); got != want {
			t.Errorf("expected %s, got %s", want, got)
		}
	})

	t.Run("middleware order", func(t *testing.T) {
		var calls []string
		mark := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					calls = append(calls, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		r := NewBasicRouter()
		r.Use(mark("first"), mark("second"))
		r.Handle(http.MethodGet, "/", http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			calls = append(calls, "handler")
		}))
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		want := "first,second,handler"
		if got := strings.Join(calls, ","); got != want {
			t.Errorf("expected %s, got %s", want, got)
		}
	})
}

func TestMetricsServer(t *testing.T) {
	var logs bytes.Buffer
	logger := log.New(&logs)
	logger.SetLevel(log.DebugLevel)

	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("plx_tasks_in_flight 0\n"))
	})

	t.Run("metrics", func(t *testing.T) {
		r := New(logger, metrics, nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		if !strings.Contains(rec.Body.String(), "plx_tasks_in_flight") {
			t.Errorf("unexpected metrics body: %s", rec.Body.String())
		}
		if !strings.Contains(logs.String(), "/metrics") {
			t.Errorf("expected request to be logged, got: %s", logs.String())
		}
	})

	t.Run("health ok", func(t *testing.T) {
		r := New(logger, metrics, func(context.Context) error { return nil })
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"ok"`) {
			t.Errorf("expected healthy response, got %d %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("health failing", func(t *testing.T) {
		r := New(logger, metrics, func(context.Context) error { return errors.New("database is locked") })
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("expected 503, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "database is locked") {
			t.Errorf("expected error in body, got %s", rec.Body.String())
		}
	})

	t.Run("serve stops with context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if err := Serve(ctx, "127.0.0.1:0", New(logger, metrics, nil), logger); err != nil {
			t.Errorf("expected clean shutdown, got %v", err)
		}
	})
}
