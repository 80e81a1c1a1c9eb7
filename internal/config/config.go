package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/focusnest/exposure-service/internal/challenge"
	"github.com/focusnest/exposure-service/internal/platform/auth"
	"github.com/focusnest/exposure-service/internal/platform/envconfig"
	"github.com/focusnest/exposure-service/internal/scheduler"
)

// Datastore backends.
const (
	DatastoreMemory    = "memory"
	DatastoreSQLite    = "sqlite"
	DatastoreFirestore = "firestore"
)

// Config encapsulates the runtime configuration for the exposure service.
type Config struct {
	Port         string `validate:"required,numeric"`
	GCPProjectID string
	DataStore    string `validate:"required,oneof=memory sqlite firestore"`
	SQLitePath   string
	Timezone     string `validate:"required"`
	Auth         AuthConfig
	Firestore    FirestoreConfig
	Selection    SelectionConfig
	Rollover     RolloverConfig
	Sentiment    SentimentConfig
	RemoteLog    RemoteLogConfig
}

// AuthConfig stores authentication middleware setup.
type AuthConfig struct {
	Mode              auth.Mode `validate:"required"`
	JWKSURL           string
	Audience          string
	Issuer            string
	AuthorizedParties []string
}

// FirestoreConfig tailors Firestore client behavior.
type FirestoreConfig struct {
	EmulatorHost string
	Database     string
}

type SelectionConfig struct {
	GenerationProbability float64 `validate:"gte=0,lte=1"`
}

type RolloverConfig struct {
	Schedule string
}

// SentimentConfig selects Gemini when an API key is present.
type SentimentConfig struct {
	APIKey string
	Model  string
}

// RemoteLogConfig enables the challenge log sink when both fields are set.
type RemoteLogConfig struct {
	URL    string `validate:"omitempty,url"`
	APIKey string
}

// Load reads environment variables into Config with validation.
func Load() (Config, error) {
	cfg := Config{
		Port:         envconfig.Get("PORT", "8080"),
		GCPProjectID: envconfig.Get("GCP_PROJECT_ID", ""),
		DataStore:    strings.ToLower(envconfig.Get("DATASTORE", DatastoreMemory)),
		SQLitePath:   envconfig.Get("SQLITE_PATH", "data/exposure.db"),
		Timezone:     envconfig.Get("APP_TIMEZONE", "UTC"),
		Auth: AuthConfig{
			Mode:     auth.Mode(strings.ToLower(envconfig.Get("AUTH_MODE", string(auth.ModeNoop)))),
			JWKSURL:  envconfig.Get("CLERK_JWKS_URL", ""),
			Audience: envconfig.Get("CLERK_AUDIENCE", ""),
			Issuer:   envconfig.Get("CLERK_ISSUER", ""),

			AuthorizedParties: envconfig.GetList("CLERK_AUTHORIZED_PARTIES"),
		},
		Firestore: FirestoreConfig{
			EmulatorHost: envconfig.Get("FIRESTORE_EMULATOR_HOST", ""),
			Database:     envconfig.Get("FIRESTORE_DATABASE", ""),
		},
		Selection: SelectionConfig{
			GenerationProbability: envconfig.GetFloat("GENERATION_PROBABILITY", challenge.GenerationProbability),
		},
		Rollover: RolloverConfig{
			Schedule: envconfig.Get("ROLLOVER_SCHEDULE", scheduler.DefaultSchedule),
		},
		Sentiment: SentimentConfig{
			APIKey: resolveAPIKey(),
			Model:  envconfig.Get("GEMINI_MODEL", "gemini-2.5-flash"),
		},
		RemoteLog: RemoteLogConfig{
			URL:    envconfig.Get("REMOTE_LOG_URL", ""),
			APIKey: envconfig.Get("REMOTE_LOG_KEY", ""),
		},
	}

	if err := envconfig.Validate(cfg); err != nil {
		return Config{}, err
	}
	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Location resolves the configured timezone.
func (c Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

func validate(cfg Config) error {
	switch cfg.Auth.Mode {
	case auth.ModeClerk:
		if cfg.Auth.JWKSURL == "" {
			return fmt.Errorf("CLERK_JWKS_URL is required when AUTH_MODE=clerk")
		}
	case auth.ModeNoop:
		// no-op
	default:
		return fmt.Errorf("unsupported auth mode: %s", cfg.Auth.Mode)
	}

	switch cfg.DataStore {
	case DatastoreFirestore:
		if cfg.GCPProjectID == "" {
			return fmt.Errorf("GCP_PROJECT_ID is required when DATASTORE=firestore")
		}
	case DatastoreSQLite:
		if strings.TrimSpace(cfg.SQLitePath) == "" {
			return fmt.Errorf("SQLITE_PATH is required when DATASTORE=sqlite")
		}
	}

	if _, err := cfg.Location(); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE %q: %w", cfg.Timezone, err)
	}
	if _, err := cron.ParseStandard(cfg.Rollover.Schedule); err != nil {
		return fmt.Errorf("invalid ROLLOVER_SCHEDULE %q: %w", cfg.Rollover.Schedule, err)
	}
	if (cfg.RemoteLog.URL == "") != (cfg.RemoteLog.APIKey == "") {
		return fmt.Errorf("REMOTE_LOG_URL and REMOTE_LOG_KEY must be set together")
	}
	return nil
}

func resolveAPIKey() string {
	if apiKey := envconfig.Get("GEMINI_API_KEY", ""); strings.TrimSpace(apiKey) != "" {
		return apiKey
	}
	return envconfig.Get("GOOGLE_API_KEY", "")
}
