package models

import (
	"strings"
	"time"
)

// NotificationType classifies a notification.
type NotificationType string

const (
	NotificationGeneral     NotificationType = "GENERAL"
	NotificationAppointment NotificationType = "APPOINTMENT"
	NotificationReminder    NotificationType = "REMINDER"
	NotificationSystem      NotificationType = "SYSTEM"
	NotificationUnknown     NotificationType = "UNKNOWN"
)

// ParseNotificationType maps unrecognized names to NotificationUnknown.
func ParseNotificationType(s string) NotificationType {
	switch t := NotificationType(s); t {
	case NotificationGeneral, NotificationAppointment, NotificationReminder, NotificationSystem:
		return t
	default:
		return NotificationUnknown
	}
}

// Notification is a message addressed to a single user.
type Notification struct {
	ID        string
	Title     string
	Message   string
	Timestamp time.Time
	UserID    string
	Read      bool
	Type      NotificationType
	Synced    bool
}

func (n Notification) GetID() string      { return n.ID }
func (n Notification) GetOwnerID() string { return n.UserID }
func (n Notification) IsSynced() bool     { return n.Synced }

// ValidateNotification returns nil or a *ValidationError.
func ValidateNotification(n Notification) error {
	var problems []string
	if strings.TrimSpace(n.Title) == "" {
		problems = append(problems, "title is required")
	}
	if strings.TrimSpace(n.Message) == "" {
		problems = append(problems, "message is required")
	}
	if strings.TrimSpace(n.UserID) == "" {
		problems = append(problems, "user id is required")
	}
	if ParseNotificationType(string(n.Type)) == NotificationUnknown {
		problems = append(problems, "invalid notification type")
	}
	return asError(problems)
}

// ToDocument renders n in wire form. The synced flag is never sent.
func (n Notification) ToDocument() Document {
	return Document{
		"id":        n.ID,
		"title":     n.Title,
		"message":   n.Message,
		"timestamp": n.Timestamp.Unix(),
		"userId":    n.UserID,
		"read":      n.Read,
		"type":      string(n.Type),
	}
}

// NotificationFromDocument decodes a remote document. The result has Synced=false;
// callers that store it as a confirmed copy set the flag themselves.
func NotificationFromDocument(doc Document) (Notification, error) {
	var (
		n   Notification
		err error
	)
	if n.ID, err = requiredString(doc, "id"); err != nil {
		return Notification{}, err
	}
	if n.Title, err = optionalString(doc, "title"); err != nil {
		return Notification{}, err
	}
	if n.Message, err = optionalString(doc, "message"); err != nil {
		return Notification{}, err
	}
	if n.UserID, err = optionalString(doc, "userId"); err != nil {
		return Notification{}, err
	}
	if n.Read, err = optionalBool(doc, "read"); err != nil {
		return Notification{}, err
	}

	secs, ok, err := number(doc, "timestamp")
	if err != nil {
		return Notification{}, err
	}
	if !ok {
		return Notification{}, decodeErr("timestamp", "missing")
	}
	n.Timestamp = time.Unix(secs, 0).UTC()

	typ, err := optionalString(doc, "type")
	if err != nil {
		return Notification{}, err
	}
	if typ == "" {
		n.Type = NotificationGeneral
	} else {
		n.Type = ParseNotificationType(typ)
	}

	return n, nil
}
