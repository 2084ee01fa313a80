// Package state persists small pieces of client state between runs:
// the session token, the serialized current-user snapshot, and the
// last-seen entity-version token per profile resource.
package state

import "context"

type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// SetMany writes all entries atomically: after a crash either all of
	// them are visible or none are.
	SetMany(ctx context.Context, entries map[string][]byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
