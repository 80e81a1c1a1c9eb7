package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	apperrors "github.com/focusnest/exposure-service/internal/platform/errors"
)

// Mode selects how bearer tokens are verified.
type Mode string

const (
	// ModeClerk verifies Clerk session JWTs against a JWKS endpoint.
	ModeClerk Mode = "clerk"
	// ModeNoop trusts the bearer token as the user id. Local development and tests only.
	ModeNoop Mode = "noop"
)

// Config captures the inputs required to initialize a Verifier.
type Config struct {
	Mode     Mode
	JWKSURL  string
	Audience string
	Issuer   string
	// AuthorizedParties restricts the Clerk azp claim when non-empty.
	AuthorizedParties []string
}

// User is the subject of a verified token.
type User struct {
	ID        string
	SessionID string
}

// Verifier turns a bearer token into a User.
type Verifier interface {
	Verify(ctx context.Context, token string) (User, error)
}

var (
	errMissingAuthHeader = errors.New("authorization header missing")
	errInvalidAuthHeader = errors.New("authorization header is malformed")
)

type ctxKey struct{}

// Middleware rejects requests without a valid bearer token and stores the User on the context.
func Middleware(verifier Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := bearerToken(r)
			if err != nil {
				apperrors.Write(w, r, apperrors.CodeUnauthorized, err.Error())
				return
			}

			user, err := verifier.Verify(r.Context(), token)
			if err != nil {
				apperrors.Write(w, r, apperrors.CodeUnauthorized, "invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errMissingAuthHeader
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", errInvalidAuthHeader
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", errInvalidAuthHeader
	}
	return token, nil
}

// WithUser stores user on ctx.
func WithUser(ctx context.Context, user User) context.Context {
	return context.WithValue(ctx, ctxKey{}, user)
}

// UserFromContext returns the authenticated user, if any.
func UserFromContext(ctx context.Context) (User, bool) {
	user, ok := ctx.Value(ctxKey{}).(User)
	return user, ok && user.ID != ""
}

// NewVerifier builds the Verifier for cfg.Mode.
func NewVerifier(cfg Config) (Verifier, error) {
	switch cfg.Mode {
	case ModeClerk:
		return newClerkVerifier(cfg)
	case ModeNoop:
		return noopVerifier{}, nil
	default:
		return nil, fmt.Errorf("unsupported auth mode: %s", cfg.Mode)
	}
}
