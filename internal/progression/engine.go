// Package progression owns the daily challenge state: day transitions, streaks, completions,
// skips and the badge and reflection bookkeeping that follows them.
package progression

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/focusnest/exposure-service/internal/achievement"
	"github.com/focusnest/exposure-service/internal/challenge"
	"github.com/focusnest/exposure-service/internal/remotelog"
	"github.com/focusnest/exposure-service/internal/sentiment"
	"github.com/focusnest/exposure-service/internal/store"
)

const (
	defaultSentimentTimeout = 8 * time.Second
	defaultRemoteLogTimeout = 10 * time.Second
	defaultWriteTimeout     = 10 * time.Second
)

var validate = validator.New()

// Config wires an Engine. Store and Selector are required.
type Config struct {
	Store     store.Store
	Selector  *challenge.Selector
	Evaluator *achievement.Evaluator
	Analyzer  sentiment.Analyzer
	Recorder  remotelog.Recorder
	Calendar  Calendar
	Logger    *slog.Logger
	Now       func() time.Time

	SentimentTimeout time.Duration
	RemoteLogTimeout time.Duration
	// WriteTimeout bounds the persistence that follows a state change. Those writes are
	// detached from the caller's cancellation.
	WriteTimeout time.Duration
}

// Engine serializes load, complete and skip per user.
type Engine struct {
	store     store.Store
	selector  *challenge.Selector
	catalog   *challenge.Catalog
	evaluator *achievement.Evaluator
	analyzer  sentiment.Analyzer
	recorder  remotelog.Recorder
	calendar  Calendar
	logger    *slog.Logger
	now       func() time.Time

	sentimentTimeout time.Duration
	remoteLogTimeout time.Duration
	writeTimeout     time.Duration

	locksMu    sync.Mutex
	locks      map[string]*userLock
	registryMu sync.Mutex
	pending    sync.WaitGroup
}

func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Store == nil {
		return nil, errors.New("progression: store is required")
	}
	if cfg.Selector == nil {
		return nil, errors.New("progression: selector is required")
	}
	e := &Engine{
		store:            cfg.Store,
		selector:         cfg.Selector,
		catalog:          cfg.Selector.Catalog(),
		evaluator:        cfg.Evaluator,
		analyzer:         cfg.Analyzer,
		recorder:         cfg.Recorder,
		calendar:         cfg.Calendar,
		logger:           cfg.Logger,
		now:              cfg.Now,
		sentimentTimeout: cfg.SentimentTimeout,
		remoteLogTimeout: cfg.RemoteLogTimeout,
		writeTimeout:     cfg.WriteTimeout,
		locks:            make(map[string]*userLock),
	}
	if e.evaluator == nil {
		e.evaluator = achievement.NewEvaluator(nil)
	}
	if e.analyzer == nil {
		e.analyzer = sentiment.NewLexiconAnalyzer()
	}
	if e.recorder == nil {
		e.recorder = remotelog.Noop{}
	}
	if e.calendar == nil {
		e.calendar = NewLocationCalendar(time.Local)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.sentimentTimeout <= 0 {
		e.sentimentTimeout = defaultSentimentTimeout
	}
	if e.remoteLogTimeout <= 0 {
		e.remoteLogTimeout = defaultRemoteLogTimeout
	}
	if e.writeTimeout <= 0 {
		e.writeTimeout = defaultWriteTimeout
	}
	return e, nil
}

// Catalog returns the catalog the engine selects from.
func (e *Engine) Catalog() *challenge.Catalog {
	return e.catalog
}

// Today returns the engine's current calendar day.
func (e *Engine) Today() Day {
	return e.calendar.Today()
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

// lock serializes work for userID. Entries are dropped once no caller holds or waits on them.
func (e *Engine) lock(userID string) func() {
	e.locksMu.Lock()
	l, ok := e.locks[userID]
	if !ok {
		l = &userLock{}
		e.locks[userID] = l
	}
	l.refs++
	e.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		e.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(e.locks, userID)
		}
		e.locksMu.Unlock()
	}
}

// persistContext returns a context for writes that must land even if ctx is cancelled.
func (e *Engine) persistContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), e.writeTimeout)
}

func normalizeUser(userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", ErrInvalidUser
	}
	return userID, nil
}

// Load returns today's state, performing the day transition first when the stored state
// belongs to an earlier day. Calling it again on the same day returns the stored state as is.
func (e *Engine) Load(ctx context.Context, userID string) (DailyState, error) {
	userID, err := normalizeUser(userID)
	if err != nil {
		return DailyState{}, err
	}
	unlock := e.lock(userID)
	defer unlock()

	today := e.calendar.Today()
	var stored DailyState
	found, readErr := e.readJSON(ctx, userID, keyDaily, &stored)
	if readErr != nil {
		e.logger.Warn("daily state read failed, serving unsaved state",
			slog.String("userId", userID),
			slog.Any("error", readErr),
		)
	}
	if found && stored.Date == today {
		return stored, nil
	}

	streak := 0
	if found && stored.Completed && stored.Date.IsDayBefore(today) {
		streak = stored.Streak
	}

	level, _ := e.level(ctx, userID)
	next := DailyState{
		Date:      today,
		Challenge: e.selector.Select(level, nil, e.focus(ctx, userID)),
		Streak:    streak,
	}
	if readErr != nil {
		// Stored state is unknown; writing would replace it.
		return next, nil
	}

	wctx, cancel := e.persistContext(ctx)
	defer cancel()
	e.writeOrLog(wctx, userID, keyDaily, next)
	e.register(wctx, userID)

	e.logger.Info("daily challenge assigned",
		slog.String("userId", userID),
		slog.String("date", today.String()),
		slog.String("challengeId", next.Challenge.ID),
		slog.Int("streak", streak),
	)
	return next, nil
}

// pendingToday reads the stored state and requires it to be today's pending challenge.
func (e *Engine) pendingToday(ctx context.Context, userID string) (DailyState, error) {
	var state DailyState
	if !e.readOrDefault(ctx, userID, keyDaily, &state) {
		return DailyState{}, ErrNoChallengeToday
	}
	switch state.PhaseOn(e.calendar.Today()) {
	case PhaseNoChallengeToday:
		return DailyState{}, ErrNoChallengeToday
	case PhaseCompleted:
		return DailyState{}, ErrAlreadyCompleted
	}
	return state, nil
}

// Complete marks today's challenge done, records the reflection and unlocks badges. Sentiment
// and remote log failures never fail the completion.
func (e *Engine) Complete(ctx context.Context, userID string, input ReflectionInput) (CompletionResult, error) {
	userID, err := normalizeUser(userID)
	if err != nil {
		return CompletionResult{}, err
	}
	input = input.normalized()
	if err := validate.Struct(input); err != nil {
		return CompletionResult{}, fmt.Errorf("%w: %v", ErrInvalidReflection, err)
	}

	unlock := e.lock(userID)
	defer unlock()

	state, err := e.pendingToday(ctx, userID)
	if err != nil {
		return CompletionResult{}, err
	}

	verdict := e.analyze(ctx, userID, input.Notes)
	state.Completed = true
	state.Streak++
	state.Feedback = &verdict

	wctx, cancel := e.persistContext(ctx)
	defer cancel()
	e.writeOrLog(wctx, userID, keyDaily, state)

	entry := ReflectionEntry{
		ID:             uuid.NewString(),
		Date:           state.Date,
		ChallengeID:    state.Challenge.ID,
		ChallengeTitle: state.Challenge.Title,
		Feeling:        input.Feeling,
		Notes:          input.Notes,
		SentimentScore: verdict.Score,
		SentimentLabel: verdict.Label,
		CreatedAt:      e.now().UTC(),
	}
	reflections := appendList(wctx, e, userID, keyReflections, entry)
	completed := appendList(wctx, e, userID, keyCompleted, state.Challenge.ID)

	level, _ := e.level(wctx, userID)
	newly := e.unlockBadges(wctx, userID, achievement.Facts{
		Streak:      state.Streak,
		Level:       level,
		Reflections: len(reflections),
		Completions: len(completed),
	})

	e.publish(ctx, remotelog.Record{
		UserID:         userID,
		ChallengeID:    entry.ChallengeID,
		Reflection:     entry.Notes,
		Emotion:        string(entry.Feeling),
		SentimentScore: entry.SentimentScore,
		AIFeedback:     entry.SentimentLabel,
		CompletedAt:    entry.CreatedAt,
	})

	e.logger.Info("daily challenge completed",
		slog.String("userId", userID),
		slog.String("challengeId", state.Challenge.ID),
		slog.Int("streak", state.Streak),
		slog.Int("newBadges", len(newly)),
	)
	return CompletionResult{State: state, Reflection: entry, NewBadges: newly}, nil
}

// Skip replaces today's pending challenge with another one, keeping the streak. The current
// challenge is excluded unless it is the only one available.
func (e *Engine) Skip(ctx context.Context, userID string) (DailyState, error) {
	userID, err := normalizeUser(userID)
	if err != nil {
		return DailyState{}, err
	}
	unlock := e.lock(userID)
	defer unlock()

	state, err := e.pendingToday(ctx, userID)
	if err != nil {
		return DailyState{}, err
	}

	previous := state.Challenge.ID
	level, _ := e.level(ctx, userID)
	state.Challenge = e.selector.Select(level, []string{previous}, e.focus(ctx, userID))

	wctx, cancel := e.persistContext(ctx)
	defer cancel()
	e.writeOrLog(wctx, userID, keyDaily, state)

	e.logger.Info("daily challenge skipped",
		slog.String("userId", userID),
		slog.String("from", previous),
		slog.String("to", state.Challenge.ID),
	)
	return state, nil
}

// SetFocus stores the user's preferred focus area. An empty key clears it.
func (e *Engine) SetFocus(ctx context.Context, userID, focusKey string) error {
	userID, err := normalizeUser(userID)
	if err != nil {
		return err
	}
	focusKey = strings.TrimSpace(focusKey)
	if focusKey != "" {
		if _, ok := e.catalog.FocusArea(focusKey); !ok {
			return fmt.Errorf("%w: %q", ErrInvalidFocus, focusKey)
		}
	}

	unlock := e.lock(userID)
	defer unlock()

	if focusKey == "" {
		if err := e.store.Remove(ctx, store.UserKey(userID, keyFocus)); err != nil {
			return fmt.Errorf("%w: %v", ErrStorage, err)
		}
		return nil
	}
	return e.writeJSON(ctx, userID, keyFocus, focusKey)
}

// Reset deletes every key the engine holds for the user, unlocked badges included.
func (e *Engine) Reset(ctx context.Context, userID string) error {
	userID, err := normalizeUser(userID)
	if err != nil {
		return err
	}
	unlock := e.lock(userID)
	defer unlock()

	keys := make([]string, 0, len(userKeyNames))
	for _, name := range userKeyNames {
		keys = append(keys, store.UserKey(userID, name))
	}
	if err := e.store.RemoveMany(ctx, keys); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if err := e.unregister(ctx, userID); err != nil {
		return err
	}
	e.logger.Info("progression reset", slog.String("userId", userID))
	return nil
}

// Users lists every registered user.
func (e *Engine) Users(ctx context.Context) ([]string, error) {
	e.registryMu.Lock()
	defer e.registryMu.Unlock()
	return e.readRegistry(ctx)
}

// Wait blocks until in-flight remote log writes finish.
func (e *Engine) Wait() {
	e.pending.Wait()
}

func (e *Engine) analyze(ctx context.Context, userID, text string) sentiment.Result {
	ctx, cancel := context.WithTimeout(ctx, e.sentimentTimeout)
	defer cancel()

	res, err := e.analyzer.Analyze(ctx, text)
	if err != nil {
		e.logger.Warn("sentiment analysis failed, using neutral",
			slog.String("userId", userID),
			slog.Any("error", err),
		)
		return sentiment.Neutral()
	}
	return res
}

// unlockBadges evaluates facts and persists newly unlocked badges.
func (e *Engine) unlockBadges(ctx context.Context, userID string, facts achievement.Facts) []achievement.Badge {
	var unlocked []string
	if _, err := e.readJSON(ctx, userID, keyBadges, &unlocked); err != nil {
		e.logger.Warn("badge read failed, skipping evaluation", slog.String("userId", userID), slog.Any("error", err))
		return nil
	}
	newly := e.evaluator.Evaluate(facts, unlocked)
	if len(newly) > 0 {
		e.writeOrLog(ctx, userID, keyBadges, achievement.Merge(unlocked, newly))
	}
	return newly
}

// publish sends rec in the background. The write outlives the request.
func (e *Engine) publish(ctx context.Context, rec remotelog.Record) {
	e.pending.Add(1)
	go func() {
		defer e.pending.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.remoteLogTimeout)
		defer cancel()
		if err := e.recorder.Record(ctx, rec); err != nil {
			e.logger.Warn("remote log write failed",
				slog.String("userId", rec.UserID),
				slog.String("challengeId", rec.ChallengeID),
				slog.Any("error", err),
			)
		}
	}()
}
