package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/focusnest/exposure-service/internal/challenge"
	"github.com/focusnest/exposure-service/internal/platform/auth"
	apperrors "github.com/focusnest/exposure-service/internal/platform/errors"
	"github.com/focusnest/exposure-service/internal/platform/logging"
	"github.com/focusnest/exposure-service/internal/platform/server"
	"github.com/focusnest/exposure-service/internal/progression"
	"github.com/focusnest/exposure-service/internal/store"
)

func newTestRouter(t *testing.T, service Service) http.Handler {
	t.Helper()
	verifier, err := auth.NewVerifier(auth.Config{Mode: auth.ModeNoop})
	if err != nil {
		t.Fatalf("verifier: %v", err)
	}
	return server.NewRouter("exposure-service", logging.Discard(), func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(verifier))
			RegisterRoutes(r, service, logging.Discard())
		})
	})
}

func newTestEngine(t *testing.T) *progression.Engine {
	t.Helper()
	catalog := challenge.MustDefault()
	engine, err := progression.NewEngine(progression.Config{
		Store:    store.NewMemoryStore(),
		Selector: challenge.NewSelector(catalog, challenge.NewGenerator(catalog.Templates(), nil)),
		Calendar: progression.NewFixedCalendar("2024-03-05"),
		Logger:   logging.Discard(),
	})
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	return engine
}

func do(t *testing.T, h http.Handler, method, path, user string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if user != "" {
		req.Header.Set("Authorization", "Bearer "+user)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) apperrors.ErrorResponse {
	t.Helper()
	var resp apperrors.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return resp
}

func TestTodayRequiresAuth(t *testing.T) {
	h := newTestRouter(t, newTestEngine(t))
	if rec := do(t, h, http.MethodGet, "/v1/today", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestDailyFlow(t *testing.T) {
	h := newTestRouter(t, newTestEngine(t))

	rec := do(t, h, http.MethodGet, "/v1/today", "user-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("today: expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var today todayResponse
	if err := json.NewDecoder(rec.Body).Decode(&today); err != nil {
		t.Fatalf("decode today: %v", err)
	}
	if today.Phase != progression.PhasePending || today.State.Challenge.ID == "" {
		t.Fatalf("unexpected today payload: %+v", today)
	}

	rec = do(t, h, http.MethodPost, "/v1/today/complete", "user-1", map[string]string{"feeling": "Relief", "notes": "short"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("short notes: expected 400, got %d", rec.Code)
	}

	rec = do(t, h, http.MethodPost, "/v1/today/complete", "user-1", map[string]string{"feeling": "Confident", "notes": "I asked for directions and it was fine."})
	if rec.Code != http.StatusOK {
		t.Fatalf("complete: expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var done progression.CompletionResult
	if err := json.NewDecoder(rec.Body).Decode(&done); err != nil {
		t.Fatalf("decode completion: %v", err)
	}
	if !done.State.Completed || done.State.Streak != 1 || len(done.NewBadges) == 0 {
		t.Fatalf("unexpected completion: %+v", done)
	}

	rec = do(t, h, http.MethodPost, "/v1/today/complete", "user-1", map[string]string{"feeling": "Confident", "notes": "Trying to complete twice today."})
	if rec.Code != http.StatusConflict || decodeError(t, rec).Code != "conflict" {
		t.Fatalf("second complete: expected 409 conflict, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodPost, "/v1/today/skip", "user-1", nil); rec.Code != http.StatusConflict {
		t.Fatalf("skip after complete: expected 409, got %d", rec.Code)
	}

	rec = do(t, h, http.MethodGet, "/v1/reflections", "user-1", nil)
	var history struct {
		Reflections []progression.HistoryEntry `json:"reflections"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&history); err != nil {
		t.Fatalf("decode reflections: %v", err)
	}
	if len(history.Reflections) != 1 || history.Reflections[0].Feeling != progression.FeelingConfident {
		t.Fatalf("unexpected reflections: %+v", history.Reflections)
	}
}

func TestSkipWithoutLoadIsConflict(t *testing.T) {
	h := newTestRouter(t, newTestEngine(t))
	rec := do(t, h, http.MethodPost, "/v1/today/skip", "user-2", nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestAssessmentEndpoints(t *testing.T) {
	h := newTestRouter(t, newTestEngine(t))

	rec := do(t, h, http.MethodGet, "/v1/assessment", "user-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("questions: expected 200, got %d", rec.Code)
	}

	if rec := do(t, h, http.MethodPost, "/v1/assessment", "user-1", map[string][]int{"answers": {1, 9, 1}}); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad answers: expected 400, got %d", rec.Code)
	}

	rec = do(t, h, http.MethodPost, "/v1/assessment", "user-1", map[string][]int{"answers": {2, 2, 1}})
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit: expected 201, got %d: %s", rec.Code, rec.Body)
	}
	var res progression.AssessmentResult
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode assessment: %v", err)
	}
	if res.Level != 2 || res.Archetype != "The Social Explorer" {
		t.Fatalf("unexpected assessment: %+v", res)
	}

	if rec := do(t, h, http.MethodPost, "/v1/assessment", "user-1", map[string][]int{"answers": {3, 3, 3}}); rec.Code != http.StatusConflict {
		t.Fatalf("resubmit: expected 409, got %d", rec.Code)
	}
}

func TestFocusAndCatalogEndpoints(t *testing.T) {
	h := newTestRouter(t, newTestEngine(t))

	if rec := do(t, h, http.MethodPut, "/v1/me/focus", "user-1", map[string]string{"focus": "astrology"}); rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid focus: expected 400, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodPut, "/v1/me/focus", "user-1", map[string]string{"focus": "social", "extra": "x"}); rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown field: expected 400, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodPut, "/v1/me/focus", "user-1", map[string]string{"focus": "social"}); rec.Code != http.StatusOK {
		t.Fatalf("set focus: expected 200, got %d", rec.Code)
	}

	rec := do(t, h, http.MethodGet, "/v1/me", "user-1", nil)
	var profile progression.Profile
	if err := json.NewDecoder(rec.Body).Decode(&profile); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if profile.Focus != "social" || profile.UserID != "user-1" {
		t.Fatalf("unexpected profile: %+v", profile)
	}

	rec = do(t, h, http.MethodGet, "/v1/challenges", "user-1", nil)
	var catalog struct {
		Challenges []challenge.Challenge `json:"challenges"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&catalog); err != nil {
		t.Fatalf("decode catalog: %v", err)
	}
	if len(catalog.Challenges) != 7 {
		t.Fatalf("expected 7 curated challenges, got %d", len(catalog.Challenges))
	}

	if rec := do(t, h, http.MethodGet, "/v1/focus-areas", "user-1", nil); rec.Code != http.StatusOK {
		t.Fatalf("focus areas: expected 200, got %d", rec.Code)
	}
}

func TestResetEndpoint(t *testing.T) {
	h := newTestRouter(t, newTestEngine(t))
	do(t, h, http.MethodGet, "/v1/today", "user-1", nil)

	if rec := do(t, h, http.MethodDelete, "/v1/me", "user-1", nil); rec.Code != http.StatusNoContent {
		t.Fatalf("reset: expected 204, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodPost, "/v1/today/skip", "user-1", nil); rec.Code != http.StatusConflict {
		t.Fatalf("skip after reset: expected 409, got %d", rec.Code)
	}
}

type failingService struct {
	Service
}

func (failingService) Profile(context.Context, string) (*progression.Profile, error) {
	return nil, errors.New("firestore unavailable")
}

func TestInternalErrorsAreMasked(t *testing.T) {
	h := newTestRouter(t, failingService{Service: newTestEngine(t)})

	rec := do(t, h, http.MethodGet, "/v1/me", "user-1", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	resp := decodeError(t, rec)
	if resp.Code != "internal" || resp.Message != "failed to load profile" || resp.RequestID == "" {
		t.Fatalf("unexpected error envelope: %+v", resp)
	}
}
