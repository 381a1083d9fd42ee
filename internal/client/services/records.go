package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nipa/healthsync/internal/client/models"
	"github.com/nipa/healthsync/internal/client/repositories/clienthistory"
	"github.com/nipa/healthsync/internal/client/repositories/notifications"
	"github.com/nipa/healthsync/internal/logging"
)

// RecordService applies local user actions to the cache. Every change leaves
// the record unsynced so the next push uploads it.
type RecordService struct {
	notifications notifications.Repository
	history       clienthistory.Repository
	log           logging.Logger
	now           func() time.Time
}

func NewRecordService(notes notifications.Repository, history clienthistory.Repository, log logging.Logger) *RecordService {
	return &RecordService{
		notifications: notes,
		history:       history,
		log:           log.With("component", "records"),
		now:           time.Now,
	}
}

// NewNotification holds the user-supplied fields of a notification.
type NewNotification struct {
	Title   string
	Message string
	UserID  string
	Type    models.NotificationType
}

func (s *RecordService) CreateNotification(ctx context.Context, in NewNotification) (models.Notification, error) {
	typ := in.Type
	if typ == "" {
		typ = models.NotificationGeneral
	}
	n := models.Notification{
		ID:        uuid.NewString(),
		Title:     strings.TrimSpace(in.Title),
		Message:   strings.TrimSpace(in.Message),
		Timestamp: s.now().UTC().Truncate(time.Second),
		UserID:    in.UserID,
		Type:      typ,
	}
	if err := models.ValidateNotification(n); err != nil {
		return models.Notification{}, err
	}
	if err := s.notifications.InsertOrReplace(ctx, []models.Notification{n}); err != nil {
		return models.Notification{}, fmt.Errorf("saving notification: %w", err)
	}
	s.log.Debug(ctx, "notification created", "id", n.ID)
	return n, nil
}

func (s *RecordService) MarkNotificationRead(ctx context.Context, id string) error {
	n, err := s.notifications.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n.Read {
		return nil
	}
	n.Read = true
	n.Synced = false
	if err := s.notifications.Update(ctx, n); err != nil {
		return fmt.Errorf("marking notification read: %w", err)
	}
	return nil
}

// DeleteNotification removes the local copy only.
func (s *RecordService) DeleteNotification(ctx context.Context, id string) error {
	if err := s.notifications.DeleteByIDs(ctx, []string{id}); err != nil {
		return fmt.Errorf("deleting notification: %w", err)
	}
	return nil
}

// CreateClientHistoryItem assigns an id when missing and stores the item.
func (s *RecordService) CreateClientHistoryItem(ctx context.Context, item models.ClientHistoryItem) (models.ClientHistoryItem, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	item.ConsultationDate = models.Date(item.ConsultationDate)
	if item.Attachments == nil {
		item.Attachments = []string{}
	}
	item.Synced = false

	if err := models.ValidateClientHistoryItem(item, s.now()); err != nil {
		return models.ClientHistoryItem{}, err
	}
	if err := s.history.InsertOrReplace(ctx, []models.ClientHistoryItem{item}); err != nil {
		return models.ClientHistoryItem{}, fmt.Errorf("saving client history item: %w", err)
	}
	s.log.Debug(ctx, "client history item created", "id", item.ID)
	return item, nil
}

func (s *RecordService) UpdateClientHistoryNotes(ctx context.Context, id, notes string) error {
	item, err := s.history.GetByID(ctx, id)
	if err != nil {
		return err
	}
	item.Notes = notes
	item.Synced = false
	if err := s.history.Update(ctx, item); err != nil {
		return fmt.Errorf("updating client history notes: %w", err)
	}
	return nil
}

// DeleteClientHistoryItem removes the local copy only.
func (s *RecordService) DeleteClientHistoryItem(ctx context.Context, id string) error {
	if err := s.history.DeleteByIDs(ctx, []string{id}); err != nil {
		return fmt.Errorf("deleting client history item: %w", err)
	}
	return nil
}
