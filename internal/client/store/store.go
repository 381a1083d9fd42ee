// Package store declares the local cache contract the sync engine works against.
package store

import (
	"context"

	"github.com/nipa/healthsync/internal/client/models"
)

// Store is the per-kind local cache. Multi-record writes are atomic per call.
// Any returned error is a storage failure.
type Store[T models.Record] interface {
	// GetAll returns every cached record of the kind.
	GetAll(ctx context.Context) ([]T, error)

	// GetAllByOwner returns the records whose owner field equals ownerID.
	GetAllByOwner(ctx context.Context, ownerID string) ([]T, error)

	// GetUnsynced returns records not yet confirmed by the remote.
	GetUnsynced(ctx context.Context) ([]T, error)

	// InsertOrReplace writes every record, overwriting all fields of existing ids.
	InsertOrReplace(ctx context.Context, records []T) error

	// Update overwrites an existing record. Unknown ids yield common.ErrNotFound.
	Update(ctx context.Context, record T) error

	// ConfirmSynced stores sent with synced=true, but only while the row still
	// holds exactly the values of base and is unsynced. It reports false when
	// the record was edited, re-synced or deleted after base was read.
	ConfirmSynced(ctx context.Context, sent, base T) (bool, error)

	// DeleteByIDs removes the given ids. Missing ids are ignored.
	DeleteByIDs(ctx context.Context, ids []string) error

	// GetByID returns one record or common.ErrNotFound.
	GetByID(ctx context.Context, id string) (T, error)
}
