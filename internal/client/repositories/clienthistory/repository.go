// Package clienthistory persists cached consultation history in SQLite.
package clienthistory

import (
	"context"

	"github.com/nipa/healthsync/internal/client/models"
	"github.com/nipa/healthsync/internal/client/store"
)

// Repository is the history cache plus the views used by provider screens.
type Repository interface {
	store.Store[models.ClientHistoryItem]

	// ListByProvider returns a provider's items, most recent consultation first.
	ListByProvider(ctx context.Context, providerID string) ([]models.ClientHistoryItem, error)

	// ListByPatient returns a patient's items, most recent consultation first.
	ListByPatient(ctx context.Context, patientID string) ([]models.ClientHistoryItem, error)

	// CountByProvider counts a provider's items.
	CountByProvider(ctx context.Context, providerID string) (int, error)
}
