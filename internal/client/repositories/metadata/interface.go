// Package metadata stores sync bookkeeping as key/value pairs in the local cache.
package metadata

import (
	"context"
	"time"
)

const (
	// KeyLastSync holds the time of the last fully successful sync job.
	KeyLastSync = "last_sync_at"
	// KeyLastPull is scoped per kind with KindKey.
	KeyLastPull = "last_pull_at"
)

// Repository is a small key/value table. Get returns (nil, nil) for a missing key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error

	// GetTime returns the zero time when key is absent.
	GetTime(ctx context.Context, key string) (time.Time, error)
	SetTime(ctx context.Context, key string, t time.Time) error
}

// KindKey scopes key to a record kind, e.g. "last_pull_at:notification".
func KindKey(key, kind string) string {
	return key + ":" + kind
}
