package config

import (
	"strings"
	"testing"

	"github.com/focusnest/exposure-service/internal/platform/auth"
)

func TestLoadDefaults(t *testing.T) {
	for _, name := range []string{"PORT", "DATASTORE", "AUTH_MODE", "APP_TIMEZONE", "GENERATION_PROBABILITY", "ROLLOVER_SCHEDULE", "REMOTE_LOG_URL", "REMOTE_LOG_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY"} {
		t.Setenv(name, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" || cfg.DataStore != DatastoreMemory || cfg.Auth.Mode != auth.ModeNoop {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Selection.GenerationProbability != 0.4 {
		t.Fatalf("unexpected generation probability %v", cfg.Selection.GenerationProbability)
	}
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{name: "clerk without jwks", env: map[string]string{"AUTH_MODE": "clerk", "CLERK_JWKS_URL": ""}, wantErr: "CLERK_JWKS_URL"},
		{name: "unknown datastore", env: map[string]string{"DATASTORE": "postgres"}, wantErr: "DataStore"},
		{name: "firestore without project", env: map[string]string{"DATASTORE": "firestore", "GCP_PROJECT_ID": ""}, wantErr: "GCP_PROJECT_ID"},
		{name: "bad timezone", env: map[string]string{"APP_TIMEZONE": "Mars/Olympus"}, wantErr: "APP_TIMEZONE"},
		{name: "probability out of range", env: map[string]string{"GENERATION_PROBABILITY": "1.5"}, wantErr: "GenerationProbability"},
		{name: "bad schedule", env: map[string]string{"ROLLOVER_SCHEDULE": "nightly"}, wantErr: "ROLLOVER_SCHEDULE"},
		{name: "remote log url without key", env: map[string]string{"REMOTE_LOG_URL": "https://example.supabase.co", "REMOTE_LOG_KEY": ""}, wantErr: "REMOTE_LOG_KEY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("AUTH_MODE", "noop")
			t.Setenv("DATASTORE", "memory")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}
