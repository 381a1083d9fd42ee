package documents

import (
	"context"

	"github.com/nipa/healthsync/internal/server/models"
)

type Repository interface {
	// Query returns the bodies of collection whose top-level field equals value.
	Query(ctx context.Context, collection, field, value string) ([]models.Document, error)

	// Upsert stores doc under (Collection, ID). Overwriting a document that
	// belongs to another owner fails with common.ErrForbidden.
	Upsert(ctx context.Context, doc *models.StoredDocument) error
}
