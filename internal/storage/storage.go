package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Well-known keys, one blob each per profile.
const (
	KeyBookState = "bookState"
	KeyCart      = "cart"
	KeyFavorites = "favorites"
)

var ErrEmptyProfile = errors.New("profile id required")

// LocalStorage is a string key/value store partitioned by profile, the
// server-side stand-in for one browser profile's localStorage.
type LocalStorage interface {
	GetItem(ctx context.Context, profile, key string) (value string, ok bool, err error)
	SetItem(ctx context.Context, profile, key, value string) error
	RemoveItem(ctx context.Context, profile, key string) error
}

const (
	OpRead = "read" // the backend could not be reached
	OpLoad = "load" // the stored blob did not parse
	OpSave = "save"
)

// PersistenceError reports a failed read or write of a profile blob. The
// in-memory state that triggered the write has already been applied.
type PersistenceError struct {
	Op  string // OpRead, OpLoad or OpSave
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v (changes may not survive a reload)", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Bucket is a LocalStorage bound to one profile with JSON helpers.
type Bucket struct {
	Store   LocalStorage
	Profile string
}

func For(s LocalStorage, profile string) Bucket {
	return Bucket{Store: s, Profile: profile}
}

// LoadJSON decodes key into out. A missing key returns ok=false and no error.
// Decode failures come back as *PersistenceError so callers can fall back to
// an empty state.
func (b Bucket) LoadJSON(ctx context.Context, key string, out any) (bool, error) {
	raw, ok, err := b.Store.GetItem(ctx, b.Profile, key)
	if err != nil {
		return false, &PersistenceError{Op: OpRead, Key: key, Err: err}
	}
	if !ok || raw == "" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, &PersistenceError{Op: OpLoad, Key: key, Err: fmt.Errorf("parse: %w", err)}
	}
	return true, nil
}

func (b Bucket) SaveJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return &PersistenceError{Op: OpSave, Key: key, Err: fmt.Errorf("encode: %w", err)}
	}
	if err := b.Store.SetItem(ctx, b.Profile, key, string(data)); err != nil {
		return &PersistenceError{Op: OpSave, Key: key, Err: err}
	}
	return nil
}
