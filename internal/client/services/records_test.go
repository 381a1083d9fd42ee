package services

import (
	"context"
	"testing"
	"time"

	"github.com/nipa/healthsync/internal/client/models"
	"github.com/nipa/healthsync/internal/common"
	"github.com/nipa/healthsync/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRecords(t *testing.T) (*RecordService, *SyncService, *fakeRemote) {
	t.Helper()
	_, repos := setupRepos(t)
	remote := newFakeRemote()
	rs := NewRecordService(repos.Notifications, repos.ClientHistory, logging.Nop())
	rs.now = func() time.Time { return time.Date(2025, 3, 1, 9, 30, 15, 500, time.UTC) }
	ss := NewSyncService(remote, repos.Notifications, repos.ClientHistory, repos.Metadata, logging.Nop())
	return rs, ss, remote
}

func TestCreateNotification(t *testing.T) {
	rs, _, _ := newRecords(t)
	ctx := context.Background()

	n, err := rs.CreateNotification(ctx, NewNotification{Title: " Lab results ", Message: "Ready", UserID: owner})
	require.NoError(t, err)
	assert.NotEmpty(t, n.ID)
	assert.Equal(t, "Lab results", n.Title)
	assert.Equal(t, models.NotificationGeneral, n.Type)
	assert.Equal(t, time.Date(2025, 3, 1, 9, 30, 15, 0, time.UTC), n.Timestamp)
	assert.False(t, n.Synced)

	stored, err := rs.notifications.GetByID(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, n, stored)
}

func TestCreateNotification_Invalid(t *testing.T) {
	rs, _, _ := newRecords(t)

	_, err := rs.CreateNotification(context.Background(), NewNotification{Title: "x", UserID: owner})
	require.ErrorIs(t, err, common.ErrValidation)

	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Problems, 1)

	all, err := rs.notifications.GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestMarkNotificationRead_UnsyncsRecord(t *testing.T) {
	rs, ss, remote := newRecords(t)
	ctx := context.Background()

	n, err := rs.CreateNotification(ctx, NewNotification{Title: "t", Message: "m", UserID: owner})
	require.NoError(t, err)
	_, err = ss.Push(ctx, models.KindNotification, owner)
	require.NoError(t, err)

	require.NoError(t, rs.MarkNotificationRead(ctx, n.ID))
	got, err := rs.notifications.GetByID(ctx, n.ID)
	require.NoError(t, err)
	assert.True(t, got.Read)
	assert.False(t, got.Synced)

	_, err = ss.Push(ctx, models.KindNotification, owner)
	require.NoError(t, err)
	assert.Equal(t, true, remote.docs["notifications"][n.ID]["read"])

	require.ErrorIs(t, rs.MarkNotificationRead(ctx, "missing"), common.ErrNotFound)
}

func TestClientHistoryLifecycle(t *testing.T) {
	rs, _, _ := newRecords(t)
	ctx := context.Background()

	item, err := rs.CreateClientHistoryItem(ctx, models.ClientHistoryItem{
		ProviderID:       owner,
		PatientID:        "p-9",
		PatientName:      "Jo Doe",
		ConsultationDate: time.Date(2025, 2, 14, 16, 45, 0, 0, time.UTC),
		ConsultationType: models.ConsultationOnline,
		Synced:           true,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, item.ID)
	assert.False(t, item.Synced)
	assert.Equal(t, time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC), item.ConsultationDate)
	assert.Equal(t, []string{}, item.Attachments)

	require.NoError(t, rs.UpdateClientHistoryNotes(ctx, item.ID, "follow up in two weeks"))
	got, err := rs.history.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "follow up in two weeks", got.Notes)

	require.NoError(t, rs.DeleteClientHistoryItem(ctx, item.ID))
	_, err = rs.history.GetByID(ctx, item.ID)
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestCreateClientHistoryItem_Invalid(t *testing.T) {
	rs, _, _ := newRecords(t)

	_, err := rs.CreateClientHistoryItem(context.Background(), models.ClientHistoryItem{
		ProviderID:       owner,
		ConsultationDate: time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC),
		ConsultationType: models.ConsultationOther,
		Attachments:      make([]string, models.MaxAttachments+1),
	})
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Problems, 4)
}

func TestDeleteNotification(t *testing.T) {
	rs, _, _ := newRecords(t)
	ctx := context.Background()

	n, err := rs.CreateNotification(ctx, NewNotification{Title: "t", Message: "m", UserID: owner, Type: models.NotificationSystem})
	require.NoError(t, err)
	require.NoError(t, rs.DeleteNotification(ctx, n.ID))
	require.NoError(t, rs.DeleteNotification(ctx, n.ID))

	_, err = rs.notifications.GetByID(ctx, n.ID)
	require.ErrorIs(t, err, common.ErrNotFound)
}
