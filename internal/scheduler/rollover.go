// Package scheduler runs the nightly day rollover for every registered user.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/focusnest/exposure-service/internal/progression"
)

// DefaultSchedule runs five minutes after local midnight.
const DefaultSchedule = "5 0 * * *"

// Loader is the subset of the progression engine the rollover needs.
type Loader interface {
	Users(ctx context.Context) ([]string, error)
	Load(ctx context.Context, userID string) (progression.DailyState, error)
}

// Rollover loads every registered user so day transitions happen before anyone opens the app.
// Load is idempotent, so overlapping with user traffic is harmless.
type Rollover struct {
	loader  Loader
	logger  *slog.Logger
	cron    *cron.Cron
	timeout time.Duration
}

func NewRollover(loader Loader, loc *time.Location, logger *slog.Logger) *Rollover {
	if loc == nil {
		loc = time.Local
	}
	return &Rollover{
		loader:  loader,
		logger:  logger,
		cron:    cron.New(cron.WithLocation(loc)),
		timeout: 10 * time.Minute,
	}
}

// Schedule registers the rollover under a standard five-field cron spec.
func (r *Rollover) Schedule(spec string) error {
	_, err := r.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		if _, err := r.RunOnce(ctx); err != nil {
			r.logger.Error("rollover failed", slog.Any("error", err))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule rollover %q: %w", spec, err)
	}
	return nil
}

func (r *Rollover) Start() {
	r.cron.Start()
}

// Stop halts scheduling and waits for a running rollover to finish or ctx to expire.
func (r *Rollover) Stop(ctx context.Context) {
	done := r.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

// RunOnce loads every registered user and returns how many were rolled. Per-user failures are
// logged and do not stop the run.
func (r *Rollover) RunOnce(ctx context.Context) (int, error) {
	users, err := r.loader.Users(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}

	rolled := 0
	for _, userID := range users {
		if err := ctx.Err(); err != nil {
			return rolled, err
		}
		state, err := r.loader.Load(ctx, userID)
		if err != nil {
			r.logger.Warn("rollover load failed", slog.String("userId", userID), slog.Any("error", err))
			continue
		}
		rolled++
		r.logger.Debug("rollover loaded", slog.String("userId", userID), slog.String("date", state.Date.String()))
	}
	r.logger.Info("rollover complete", slog.Int("users", len(users)), slog.Int("rolled", rolled))
	return rolled, nil
}
