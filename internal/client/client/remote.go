package client

import (
	"context"

	"github.com/nipa/healthsync/internal/client/models"
)

// Remote is a schemaless document collection store.
// Every call may fail independently; nothing is atomic across calls.
type Remote interface {
	// Query returns the documents of collection whose field equals value.
	Query(ctx context.Context, collection, field, value string) ([]models.Document, error)

	// Upsert creates or fully replaces the document stored under id.
	Upsert(ctx context.Context, collection, id string, doc models.Document) error

	// Ping reports whether the remote is reachable.
	Ping(ctx context.Context) error

	Close() error
}
