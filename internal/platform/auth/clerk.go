package auth

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
)

var (
	errMissingSubject      = errors.New("token missing subject claim")
	errUnauthorizedParty   = errors.New("token azp is not an authorized party")
	clerkSigningAlgorithms = []string{"RS256"}
)

// clerkClaims are the Clerk session token claims the service reads.
type clerkClaims struct {
	jwt.RegisteredClaims
	SessionID       string `json:"sid"`
	AuthorizedParty string `json:"azp"`
}

type clerkVerifier struct {
	keyfunc jwt.Keyfunc
	parser  *jwt.Parser
	parties []string
}

func newClerkVerifier(cfg Config) (Verifier, error) {
	if cfg.JWKSURL == "" {
		return nil, errors.New("clerk JWKS URL is required")
	}

	jwks, err := keyfunc.Get(cfg.JWKSURL, keyfunc.Options{
		RefreshInterval:   10 * time.Minute,
		RefreshRateLimit:  time.Minute,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load JWKS: %w", err)
	}
	return newClerkVerifierWithKeyfunc(jwks.Keyfunc, cfg), nil
}

func newClerkVerifierWithKeyfunc(kf jwt.Keyfunc, cfg Config) *clerkVerifier {
	opts := []jwt.ParserOption{
		jwt.WithLeeway(5 * time.Second),
		jwt.WithValidMethods(clerkSigningAlgorithms),
		jwt.WithExpirationRequired(),
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	return &clerkVerifier{keyfunc: kf, parser: jwt.NewParser(opts...), parties: cfg.AuthorizedParties}
}

func (v *clerkVerifier) Verify(_ context.Context, token string) (User, error) {
	var claims clerkClaims
	if _, err := v.parser.ParseWithClaims(token, &claims, v.keyfunc); err != nil {
		return User{}, fmt.Errorf("token verification failed: %w", err)
	}
	if claims.Subject == "" {
		return User{}, errMissingSubject
	}
	if len(v.parties) > 0 && claims.AuthorizedParty != "" && !slices.Contains(v.parties, claims.AuthorizedParty) {
		return User{}, errUnauthorizedParty
	}
	return User{ID: claims.Subject, SessionID: claims.SessionID}, nil
}
