// Package notifications persists cached notifications in SQLite.
package notifications

import (
	"context"

	"github.com/nipa/healthsync/internal/client/models"
	"github.com/nipa/healthsync/internal/client/store"
)

// Repository is the notification cache plus the list views the app reads.
type Repository interface {
	store.Store[models.Notification]

	// ListByUser returns a user's notifications, newest first.
	ListByUser(ctx context.Context, userID string) ([]models.Notification, error)

	// UnreadCount counts a user's unread notifications.
	UnreadCount(ctx context.Context, userID string) (int, error)
}
