package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/focusnest/exposure-service/internal/challenge"
	"github.com/focusnest/exposure-service/internal/platform/auth"
	apperrors "github.com/focusnest/exposure-service/internal/platform/errors"
	"github.com/focusnest/exposure-service/internal/platform/logging"
	"github.com/focusnest/exposure-service/internal/progression"
)

const (
	serviceTimeout = 15 * time.Second
	maxBodyBytes   = 16 * 1024
)

var errInvalidPayload = errors.New("invalid payload")

// Service is the progression surface exposed over HTTP.
type Service interface {
	Today() progression.Day
	Catalog() *challenge.Catalog
	Load(ctx context.Context, userID string) (progression.DailyState, error)
	Complete(ctx context.Context, userID string, input progression.ReflectionInput) (progression.CompletionResult, error)
	Skip(ctx context.Context, userID string) (progression.DailyState, error)
	SetFocus(ctx context.Context, userID, focusKey string) error
	SubmitAssessment(ctx context.Context, userID string, answers []int) (progression.AssessmentResult, error)
	Profile(ctx context.Context, userID string) (*progression.Profile, error)
	History(ctx context.Context, userID string) ([]progression.HistoryEntry, error)
	Reset(ctx context.Context, userID string) error
}

type todayResponse struct {
	Today progression.Day        `json:"today"`
	Phase progression.Phase      `json:"phase"`
	State progression.DailyState `json:"state"`
}

// RegisterRoutes registers the exposure routes. They expect auth.Middleware upstream.
func RegisterRoutes(r chi.Router, service Service, logger *slog.Logger) {
	r.Route("/v1/today", func(r chi.Router) {
		r.Use(middleware.Recoverer)

		r.Get("/", getToday(service, logger))
		r.Post("/complete", completeToday(service, logger))
		r.Post("/skip", skipToday(service, logger))
	})

	r.Route("/v1/me", func(r chi.Router) {
		r.Use(middleware.Recoverer)

		r.Get("/", getProfile(service, logger))
		r.Delete("/", resetProfile(service, logger))
		r.Put("/focus", setFocus(service, logger))
	})

	r.Route("/v1/assessment", func(r chi.Router) {
		r.Use(middleware.Recoverer)

		r.Get("/", getAssessment())
		r.Post("/", submitAssessment(service, logger))
	})

	r.Get("/v1/challenges", listChallenges(service))
	r.Get("/v1/focus-areas", listFocusAreas(service))
	r.Get("/v1/reflections", listReflections(service, logger))
}

func getToday(service Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
		defer cancel()

		state, err := service.Load(ctx, userID)
		if err != nil {
			handleServiceError(w, r, logger, "failed to load today", err, userID)
			return
		}
		writeToday(w, service.Today(), state)
	}
}

func completeToday(service Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		var input progression.ReflectionInput
		if err := decodeBody(w, r, &input); err != nil {
			apperrors.Write(w, r, apperrors.CodeBadRequest, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
		defer cancel()

		res, err := service.Complete(ctx, userID, input)
		if err != nil {
			handleServiceError(w, r, logger, "failed to complete challenge", err, userID)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func skipToday(service Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
		defer cancel()

		state, err := service.Skip(ctx, userID)
		if err != nil {
			handleServiceError(w, r, logger, "failed to skip challenge", err, userID)
			return
		}
		writeToday(w, service.Today(), state)
	}
}

func getProfile(service Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
		defer cancel()

		profile, err := service.Profile(ctx, userID)
		if err != nil {
			handleServiceError(w, r, logger, "failed to load profile", err, userID)
			return
		}
		writeJSON(w, http.StatusOK, profile)
	}
}

func resetProfile(service Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
		defer cancel()

		if err := service.Reset(ctx, userID); err != nil {
			handleServiceError(w, r, logger, "failed to reset progression", err, userID)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func setFocus(service Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		var body struct {
			Focus string `json:"focus"`
		}
		if err := decodeBody(w, r, &body); err != nil {
			apperrors.Write(w, r, apperrors.CodeBadRequest, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
		defer cancel()

		if err := service.SetFocus(ctx, userID, body.Focus); err != nil {
			handleServiceError(w, r, logger, "failed to set focus", err, userID)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"focus": body.Focus})
	}
}

func getAssessment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"questions": progression.Questions(),
			"feelings":  progression.Feelings(),
		})
	}
}

func submitAssessment(service Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		var body struct {
			Answers []int `json:"answers"`
		}
		if err := decodeBody(w, r, &body); err != nil {
			apperrors.Write(w, r, apperrors.CodeBadRequest, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
		defer cancel()

		res, err := service.SubmitAssessment(ctx, userID, body.Answers)
		if err != nil {
			handleServiceError(w, r, logger, "failed to submit assessment", err, userID)
			return
		}
		writeJSON(w, http.StatusCreated, res)
	}
}

func listChallenges(service Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		catalog := service.Catalog()
		writeJSON(w, http.StatusOK, map[string]any{
			"challenges": catalog.All(),
			"default":    catalog.DefaultChallenge(),
		})
	}
}

func listFocusAreas(service Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"focus_areas": service.Catalog().FocusAreas(),
			"default":     challenge.DefaultFocusKey,
		})
	}
}

func listReflections(service Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
		defer cancel()

		history, err := service.History(ctx, userID)
		if err != nil {
			handleServiceError(w, r, logger, "failed to load reflections", err, userID)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"reflections": history})
	}
}

func writeToday(w http.ResponseWriter, today progression.Day, state progression.DailyState) {
	writeJSON(w, http.StatusOK, todayResponse{Today: today, Phase: state.PhaseOn(today), State: state})
}

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		apperrors.Write(w, r, apperrors.CodeUnauthorized, "missing user")
		return "", false
	}
	return user.ID, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return errInvalidPayload
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return errInvalidPayload
	}
	return nil
}

// errorCode maps engine errors onto the envelope codes.
func errorCode(err error) string {
	switch {
	case errors.Is(err, progression.ErrInvalidUser):
		return apperrors.CodeUnauthorized
	case errors.Is(err, progression.ErrNoChallengeToday),
		errors.Is(err, progression.ErrAlreadyCompleted),
		errors.Is(err, progression.ErrAlreadyAssessed):
		return apperrors.CodeConflict
	case errors.Is(err, progression.ErrInvalidReflection),
		errors.Is(err, progression.ErrInvalidFocus),
		errors.Is(err, progression.ErrInvalidAssessment):
		return apperrors.CodeBadRequest
	default:
		return apperrors.CodeInternal
	}
}

func handleServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, message string, err error, userID string) {
	code := errorCode(err)
	if code == apperrors.CodeInternal {
		logRequestError(r.Context(), logger, message, err, userID)
		apperrors.Write(w, r, code, message)
		return
	}
	apperrors.Write(w, r, code, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func logRequestError(ctx context.Context, logger *slog.Logger, message string, err error, userID string) {
	if logger == nil || err == nil {
		return
	}
	logging.WithRequestID(ctx, logger).Error(message,
		slog.String("userId", userID),
		slog.Any("error", err),
	)
}
