package progression

import (
	"context"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/focusnest/exposure-service/internal/challenge"
)

// Profile gathers the user's progression summary.
func (e *Engine) Profile(ctx context.Context, userID string) (*Profile, error) {
	userID, err := normalizeUser(userID)
	if err != nil {
		return nil, err
	}

	var (
		state       DailyState
		hasState    bool
		reflections []ReflectionEntry
		completed   []string
		unlocked    []string
		level       int
		assessed    bool
		archetype   string
		focus       string
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ok, err := e.readJSON(ctx, userID, keyDaily, &state)
		hasState = ok
		return err
	})
	g.Go(func() error {
		_, err := e.readJSON(ctx, userID, keyReflections, &reflections)
		return err
	})
	g.Go(func() error {
		_, err := e.readJSON(ctx, userID, keyCompleted, &completed)
		return err
	})
	g.Go(func() error {
		_, err := e.readJSON(ctx, userID, keyBadges, &unlocked)
		return err
	})
	g.Go(func() error {
		ok, err := e.readJSON(ctx, userID, keyLevel, &level)
		assessed = ok
		return err
	})
	g.Go(func() error {
		_, err := e.readJSON(ctx, userID, keyArchetype, &archetype)
		return err
	})
	g.Go(func() error {
		_, err := e.readJSON(ctx, userID, keyFocus, &focus)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if !assessed {
		level = challenge.MinLevel
	}
	if focus == "" {
		focus = challenge.DefaultFocusKey
	}

	badges := e.evaluator.Badges()
	statuses := make([]BadgeStatus, 0, len(badges))
	for _, b := range badges {
		statuses = append(statuses, BadgeStatus{Badge: b, Unlocked: slices.Contains(unlocked, b.ID)})
	}

	return &Profile{
		UserID:      userID,
		Assessed:    assessed,
		Level:       challenge.ClampLevel(level),
		Archetype:   archetype,
		Focus:       focus,
		Streak:      e.currentStreak(state, hasState),
		Completions: len(completed),
		Reflections: len(reflections),
		Badges:      statuses,
	}, nil
}

// currentStreak is the streak as it stands today, before any pending day transition runs.
func (e *Engine) currentStreak(state DailyState, ok bool) int {
	if !ok {
		return 0
	}
	today := e.calendar.Today()
	switch {
	case state.Date == today:
		return state.Streak
	case state.Completed && state.Date.IsDayBefore(today):
		return state.Streak
	default:
		return 0
	}
}

// History returns the user's reflections newest first, each resolved against the catalog.
func (e *Engine) History(ctx context.Context, userID string) ([]HistoryEntry, error) {
	userID, err := normalizeUser(userID)
	if err != nil {
		return nil, err
	}
	var reflections []ReflectionEntry
	if _, err := e.readJSON(ctx, userID, keyReflections, &reflections); err != nil {
		return nil, err
	}

	out := make([]HistoryEntry, 0, len(reflections))
	for i := len(reflections) - 1; i >= 0; i-- {
		entry := HistoryEntry{ReflectionEntry: reflections[i]}
		if c, ok := e.catalog.Lookup(reflections[i].ChallengeID); ok {
			entry.Challenge = &c
		}
		out = append(out, entry)
	}
	return out, nil
}
