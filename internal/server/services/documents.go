package services

import (
	"context"
	"database/sql"
	"fmt"
	"maps"
	"strings"

	"github.com/nipa/healthsync/internal/common"
	"github.com/nipa/healthsync/internal/logging"
	"github.com/nipa/healthsync/internal/server/models"
	"github.com/nipa/healthsync/internal/server/repositories/repomanager"
)

// DocumentService enforces the collection rules on top of the document
// repository. Every call is made on behalf of an authenticated owner.
type DocumentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewDocumentService(db *sql.DB, repomanager repomanager.RepositoryManager, logger logging.Logger) *DocumentService {
	return &DocumentService{
		db:          db,
		repomanager: repomanager,
		logger:      logger.With("module", "document_service"),
	}
}

func ownerField(collection string) (string, error) {
	field, ok := common.OwnerField(collection)
	if !ok {
		return "", fmt.Errorf("%w: unknown collection %q", common.ErrValidation, collection)
	}
	return field, nil
}

// Query lists the caller's documents. Filtering is only allowed on the
// collection's owner field and only by the caller's own id.
func (s *DocumentService) Query(ctx context.Context, callerID, collection, field, value string) ([]models.Document, error) {
	owner, err := ownerField(collection)
	if err != nil {
		return nil, err
	}
	if field != owner {
		return nil, fmt.Errorf("%w: %s can only be filtered by %s", common.ErrValidation, collection, owner)
	}
	if callerID == "" || value != callerID {
		return nil, fmt.Errorf("%w: query for %q", common.ErrForbidden, value)
	}

	docs, err := s.repomanager.Documents(s.db).Query(ctx, collection, field, value)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	return docs, nil
}

// Upsert stores doc under id. The stored body always carries "id" equal to
// the key, and its owner field must name the caller.
func (s *DocumentService) Upsert(ctx context.Context, callerID, collection, id string, doc models.Document) error {
	owner, err := ownerField(collection)
	if err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: empty document id", common.ErrValidation)
	}
	if doc == nil {
		return fmt.Errorf("%w: empty document", common.ErrValidation)
	}

	ownerID, _ := doc[owner].(string)
	if ownerID == "" {
		return fmt.Errorf("%w: %s is required", common.ErrValidation, owner)
	}
	if callerID == "" || ownerID != callerID {
		return fmt.Errorf("%w: document owned by %q", common.ErrForbidden, ownerID)
	}

	body := maps.Clone(doc)
	body["id"] = id

	err = s.repomanager.Documents(s.db).Upsert(ctx, &models.StoredDocument{
		Collection: collection,
		ID:         id,
		OwnerID:    ownerID,
		Body:       body,
	})
	if err != nil {
		return fmt.Errorf("upsert %s/%s: %w", collection, id, err)
	}
	s.logger.Debug(ctx, "document stored", "collection", collection, "id", id)
	return nil
}
