// Package store persists opaque string values under string keys.
package store

import (
	"context"
	"errors"
	"strings"
)

// ErrEmptyKey is returned when an operation is given a blank key.
var ErrEmptyKey = errors.New("store: key must not be empty")

// Store is a string key/value persistence layer. Get reports whether the key exists; a missing
// key is not an error. Removing a missing key succeeds.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	RemoveMany(ctx context.Context, keys []string) error
}

// RegistryKey lists every user the engine has seen.
const RegistryKey = "registry:users"

// UserKey namespaces name under userID.
func UserKey(userID, name string) string {
	return "user:" + strings.TrimSpace(userID) + ":" + name
}

func checkKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	return nil
}
