package documents

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/nipa/healthsync/internal/common"
	"github.com/nipa/healthsync/internal/server/models"
)

// InMemoryRepository keeps documents in process memory. Bodies go through a
// JSON round trip so they come back exactly as from PostgreSQL.
type InMemoryRepository struct {
	mu   sync.RWMutex
	docs map[string]map[string]models.StoredDocument
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{docs: map[string]map[string]models.StoredDocument{}}
}

func (r *InMemoryRepository) Upsert(ctx context.Context, doc *models.StoredDocument) error {
	body, err := roundTrip(doc.Body)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	coll := r.docs[doc.Collection]
	if coll == nil {
		coll = map[string]models.StoredDocument{}
		r.docs[doc.Collection] = coll
	}
	if prev, ok := coll[doc.ID]; ok && prev.OwnerID != doc.OwnerID {
		return fmt.Errorf("document %s/%s: %w", doc.Collection, doc.ID, common.ErrForbidden)
	}
	coll[doc.ID] = models.StoredDocument{
		Collection: doc.Collection,
		ID:         doc.ID,
		OwnerID:    doc.OwnerID,
		Body:       body,
		UpdatedAt:  time.Now().UTC(),
	}
	return nil
}

func (r *InMemoryRepository) Query(ctx context.Context, collection, field, value string) ([]models.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.docs[collection]))
	for id, d := range r.docs[collection] {
		if s, ok := d.Body[field].(string); ok && s == value {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	result := make([]models.Document, 0, len(ids))
	for _, id := range ids {
		body, err := roundTrip(r.docs[collection][id].Body)
		if err != nil {
			return nil, err
		}
		result = append(result, body)
	}
	return result, nil
}

func roundTrip(doc models.Document) (models.Document, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var out models.Document
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return out, nil
}
