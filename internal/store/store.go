// Package store is the durable key/value state shared by every session:
// rooms, users, the waiting list, the call history and the latest call.
//
// Reads are fail-open. A missing, empty or unparsable value resolves to the
// default supplied by the caller, so the layers above never branch on store
// failures. Writes overwrite the whole value; there is no merge and no
// transaction.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
)

// Persisted keys.
const (
	KeyRooms       = "medcall_rooms"
	KeyUsers       = "medcall_users"
	KeyHistory     = "medcall_history"
	KeyLatestCall  = "medcall_latest"
	KeyWaitingList = "medcall_waiting"
)

var ErrNotFound = errors.New("store: key not found")

// Store is the raw byte-level contract implemented by every backend.
type Store interface {
	// Get returns the stored value or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set replaces the stored value.
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// Read decodes the value under key into a T. Absent, empty or corrupt
// values yield def.
func Read[T any](ctx context.Context, s Store, key string, def T) T {
	data, err := s.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Printf("[store] read %s: %v", key, err)
		}
		return def
	}
	if len(data) == 0 {
		return def
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		log.Printf("[store] corrupt value for %s, using default: %v", key, err)
		return def
	}
	return v
}

// Write encodes v as JSON and overwrites key.
func Write[T any](ctx context.Context, s Store, key string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("store: marshal %s: %w", key, err)
	}
	if err := s.Set(ctx, key, data); err != nil {
		return fmt.Errorf("store: write %s: %w", key, err)
	}
	return nil
}
