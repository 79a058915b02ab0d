// Package storage persists user preferences as small keyed documents.
package storage

import (
	"errors"
	"log"
)

// Keys used by the application.
const (
	KeyTasks             = "tasks"
	KeyCompletedSessions = "completed_sessions"
	KeyPreset            = "preset"
	KeyAudio             = "audio"
	KeyBreakAudio        = "break_audio"
	KeyTones             = "tones"
)

// ErrClosed is returned by a store after Close.
var ErrClosed = errors.New("store closed")

// Store loads and saves values by key.
type Store interface {
	// Load decodes the value under key into dst and reports whether it existed.
	Load(key string, dst any) (bool, error)
	Save(key string, value any) error
	Close() error
}

// LoadOr returns the stored value under key, or fallback when it is missing or
// unreadable. Failures are logged, never returned.
func LoadOr[T any](store Store, key string, fallback T) T {
	var value T
	found, err := store.Load(key, &value)
	if err != nil {
		log.Printf("storage: load %s: %v", key, err)
		return fallback
	}
	if !found {
		return fallback
	}
	return value
}

// SaveOrLog saves value and logs a failure.
func SaveOrLog(store Store, key string, value any) {
	if err := store.Save(key, value); err != nil {
		log.Printf("storage: save %s: %v", key, err)
	}
}
