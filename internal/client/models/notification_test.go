package models

import (
	"testing"
	"time"

	"github.com/nipa/healthsync/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleNotification() Notification {
	return Notification{
		ID:        "n-1",
		Title:     "Appointment tomorrow",
		Message:   "Dr. Smith at 10:00",
		Timestamp: time.Unix(1_700_000_000, 0).UTC(),
		UserID:    "user-1",
		Read:      true,
		Type:      NotificationAppointment,
		Synced:    true,
	}
}

func TestNotification_DocumentRoundTrip(t *testing.T) {
	n := sampleNotification()

	doc := n.ToDocument()
	_, hasSynced := doc["synced"]
	assert.False(t, hasSynced, "synced must not travel on the wire")
	assert.Equal(t, int64(1_700_000_000), doc["timestamp"])

	got, err := NotificationFromDocument(doc)
	require.NoError(t, err)

	want := n
	want.Synced = false
	assert.Equal(t, want, got)
}

func TestNotificationFromDocument_FloatTimestamp(t *testing.T) {
	got, err := NotificationFromDocument(Document{
		"id":        "n-2",
		"title":     "t",
		"message":   "m",
		"userId":    "user-1",
		"timestamp": float64(1_700_000_123),
		"type":      "REMINDER",
	})
	require.NoError(t, err)
	assert.Equal(t, time.Unix(1_700_000_123, 0).UTC(), got.Timestamp)
	assert.Equal(t, NotificationReminder, got.Type)
	assert.False(t, got.Read)
}

func TestNotificationFromDocument_TypeDefaults(t *testing.T) {
	base := Document{"id": "n-3", "timestamp": 1}

	got, err := NotificationFromDocument(base)
	require.NoError(t, err)
	assert.Equal(t, NotificationGeneral, got.Type)

	base["type"] = "BROADCAST"
	got, err = NotificationFromDocument(base)
	require.NoError(t, err)
	assert.Equal(t, NotificationUnknown, got.Type)
}

func TestNotificationFromDocument_Malformed(t *testing.T) {
	tests := []struct {
		name string
		doc  Document
	}{
		{name: "missing id", doc: Document{"timestamp": 1}},
		{name: "empty id", doc: Document{"id": "", "timestamp": 1}},
		{name: "id not a string", doc: Document{"id": 7, "timestamp": 1}},
		{name: "missing timestamp", doc: Document{"id": "x"}},
		{name: "timestamp is a string", doc: Document{"id": "x", "timestamp": "yesterday"}},
		{name: "read is a string", doc: Document{"id": "x", "timestamp": 1, "read": "yes"}},
		{name: "title is a number", doc: Document{"id": "x", "timestamp": 1, "title": 3.0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NotificationFromDocument(tt.doc)
			require.ErrorIs(t, err, ErrDecode)
		})
	}
}

func TestValidateNotification(t *testing.T) {
	require.NoError(t, ValidateNotification(sampleNotification()))

	bad := Notification{Type: NotificationUnknown}
	err := ValidateNotification(bad)
	require.ErrorIs(t, err, common.ErrValidation)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Problems, 4)
}
