package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/focusnest/exposure-service/internal/platform/logging"
)

func TestNewRouterHealthz(t *testing.T) {
	var logs bytes.Buffer
	router := NewRouter("exposure-service", logging.NewLoggerTo(&logs, "exposure-service"), func(r chi.Router) {
		r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if body.Status != "ok" || body.Service != "exposure-service" {
		t.Fatalf("unexpected health payload: %+v", body)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("registered route not mounted, got %d", rec.Code)
	}

	if !strings.Contains(logs.String(), `"path":"/ping"`) || !strings.Contains(logs.String(), `"status":204`) {
		t.Fatalf("expected access log for /ping, got %s", logs.String())
	}
}
