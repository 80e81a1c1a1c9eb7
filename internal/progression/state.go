package progression

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"

	"github.com/focusnest/exposure-service/internal/challenge"
	"github.com/focusnest/exposure-service/internal/store"
)

// Per-user key names.
const (
	keyDaily       = "daily"
	keyReflections = "reflections"
	keyBadges      = "badges"
	keyCompleted   = "completed"
	keyLevel       = "level"
	keyArchetype   = "archetype"
	keyFocus       = "focus"
)

var userKeyNames = []string{keyDaily, keyReflections, keyBadges, keyCompleted, keyLevel, keyArchetype, keyFocus}

// readJSON decodes the value under the user's key into dst. A missing key reports false with
// no error.
func (e *Engine) readJSON(ctx context.Context, userID, name string, dst any) (bool, error) {
	key := store.UserKey(userID, name)
	raw, ok, err := e.store.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("%w: get %s: %v", ErrStorage, key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, fmt.Errorf("%w: decode %s: %v", ErrStorage, key, err)
	}
	return true, nil
}

// readOrDefault is readJSON for the engine's core paths: failures are logged and reported as
// missing so the caller continues from defaults.
func (e *Engine) readOrDefault(ctx context.Context, userID, name string, dst any) bool {
	ok, err := e.readJSON(ctx, userID, name, dst)
	if err != nil {
		e.logger.Warn("progression read failed, using default",
			slog.String("userId", userID),
			slog.String("key", name),
			slog.Any("error", err),
		)
		return false
	}
	return ok
}

func (e *Engine) writeJSON(ctx context.Context, userID, name string, v any) error {
	key := store.UserKey(userID, name)
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := e.store.Set(ctx, key, string(raw)); err != nil {
		return fmt.Errorf("%w: set %s: %v", ErrStorage, key, err)
	}
	return nil
}

// writeOrLog persists v and logs instead of failing.
func (e *Engine) writeOrLog(ctx context.Context, userID, name string, v any) {
	if err := e.writeJSON(ctx, userID, name, v); err != nil {
		e.logger.Error("progression write failed",
			slog.String("userId", userID),
			slog.String("key", name),
			slog.Any("error", err),
		)
	}
}

// appendList appends item to the list under name. When the stored list cannot be read the write
// is skipped so the list is never truncated.
func appendList[T any](ctx context.Context, e *Engine, userID, name string, item T) []T {
	var list []T
	if _, err := e.readJSON(ctx, userID, name, &list); err != nil {
		e.logger.Error("progression list read failed, entry not persisted",
			slog.String("userId", userID),
			slog.String("key", name),
			slog.Any("error", err),
		)
		return []T{item}
	}
	list = append(list, item)
	e.writeOrLog(ctx, userID, name, list)
	return list
}

func (e *Engine) level(ctx context.Context, userID string) (int, bool) {
	var level int
	if !e.readOrDefault(ctx, userID, keyLevel, &level) {
		return challenge.MinLevel, false
	}
	return challenge.ClampLevel(level), true
}

func (e *Engine) focus(ctx context.Context, userID string) string {
	var focus string
	e.readOrDefault(ctx, userID, keyFocus, &focus)
	return focus
}

// register adds userID to the global registry.
func (e *Engine) register(ctx context.Context, userID string) {
	e.registryMu.Lock()
	defer e.registryMu.Unlock()

	users, err := e.readRegistry(ctx)
	if err != nil {
		e.logger.Warn("registry read failed", slog.String("userId", userID), slog.Any("error", err))
		return
	}
	if slices.Contains(users, userID) {
		return
	}
	users = append(users, userID)
	if err := e.writeRegistry(ctx, users); err != nil {
		e.logger.Warn("registry write failed", slog.String("userId", userID), slog.Any("error", err))
	}
}

func (e *Engine) unregister(ctx context.Context, userID string) error {
	e.registryMu.Lock()
	defer e.registryMu.Unlock()

	users, err := e.readRegistry(ctx)
	if err != nil {
		return err
	}
	idx := slices.Index(users, userID)
	if idx < 0 {
		return nil
	}
	return e.writeRegistry(ctx, slices.Delete(users, idx, idx+1))
}

func (e *Engine) readRegistry(ctx context.Context) ([]string, error) {
	raw, ok, err := e.store.Get(ctx, store.RegistryKey)
	if err != nil {
		return nil, fmt.Errorf("%w: get registry: %v", ErrStorage, err)
	}
	if !ok {
		return nil, nil
	}
	var users []string
	if err := json.Unmarshal([]byte(raw), &users); err != nil {
		return nil, fmt.Errorf("%w: decode registry: %v", ErrStorage, err)
	}
	return users, nil
}

func (e *Engine) writeRegistry(ctx context.Context, users []string) error {
	raw, err := json.Marshal(users)
	if err != nil {
		return err
	}
	if err := e.store.Set(ctx, store.RegistryKey, string(raw)); err != nil {
		return fmt.Errorf("%w: set registry: %v", ErrStorage, err)
	}
	return nil
}
