package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/focusnest/exposure-service/internal/progression"
)

func run(t *testing.T, db string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--db", db, "--user", "cli-user"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestCLIDailyFlow(t *testing.T) {
	db := filepath.Join(t.TempDir(), "exposure.db")

	out, err := run(t, db, "assess", "1", "2", "2")
	if err != nil {
		t.Fatalf("assess: %v", err)
	}
	var assessed progression.AssessmentResult
	if err := json.Unmarshal([]byte(out), &assessed); err != nil {
		t.Fatalf("decode assess output %q: %v", out, err)
	}
	if assessed.Level != 2 {
		t.Fatalf("expected level 2, got %+v", assessed)
	}

	out, err = run(t, db, "today")
	if err != nil {
		t.Fatalf("today: %v", err)
	}
	var first progression.DailyState
	if err := json.Unmarshal([]byte(out), &first); err != nil {
		t.Fatalf("decode today: %v", err)
	}

	out, err = run(t, db, "today")
	if err != nil {
		t.Fatalf("today again: %v", err)
	}
	var second progression.DailyState
	_ = json.Unmarshal([]byte(out), &second)
	if first.Challenge.ID != second.Challenge.ID {
		t.Fatalf("challenge changed between runs: %s vs %s", first.Challenge.ID, second.Challenge.ID)
	}

	if _, err := run(t, db, "complete", "--feeling", "Excited", "--notes", "I said hello to the baker."); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, err := run(t, db, "skip"); err == nil || !strings.Contains(err.Error(), "already completed") {
		t.Fatalf("expected already completed error, got %v", err)
	}

	out, err = run(t, db, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	var history []progression.HistoryEntry
	if err := json.Unmarshal([]byte(out), &history); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(history) != 1 || history[0].Feeling != progression.FeelingExcited {
		t.Fatalf("unexpected history: %+v", history)
	}

	if _, err := run(t, db, "reset"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	out, err = run(t, db, "profile")
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	var profile progression.Profile
	_ = json.Unmarshal([]byte(out), &profile)
	if profile.Assessed || profile.Completions != 0 {
		t.Fatalf("expected empty profile after reset, got %+v", profile)
	}
}

func TestCLIRejectsBadInput(t *testing.T) {
	db := filepath.Join(t.TempDir(), "exposure.db")
	if _, err := run(t, db, "assess", "1", "x", "2"); err == nil {
		t.Fatalf("expected non-numeric answer error")
	}
	if _, err := run(t, db, "focus", "astrology"); err == nil {
		t.Fatalf("expected unknown focus error")
	}
	if _, err := run(t, db, "catalog"); err != nil {
		t.Fatalf("catalog: %v", err)
	}
}
