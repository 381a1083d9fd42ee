package models

import (
	"fmt"

	"github.com/nipa/healthsync/internal/common"
)

// Kind names a record kind handled by the sync engine.
type Kind string

const (
	KindNotification  Kind = "notification"
	KindClientHistory Kind = "client_history"
)

// Kinds lists every kind in the order a sync job processes them.
var Kinds = []Kind{KindNotification, KindClientHistory}

// Collection returns the remote collection name for the kind.
func (k Kind) Collection() string {
	switch k {
	case KindNotification:
		return common.CollectionNotifications
	case KindClientHistory:
		return common.CollectionClientHistory
	default:
		return ""
	}
}

// OwnerField returns the document field the remote collection is filtered by.
func (k Kind) OwnerField() string {
	f, _ := common.OwnerField(k.Collection())
	return f
}

// ParseKind converts s into a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindNotification, KindClientHistory:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("unknown kind %q", s)
	}
}

// Syncable is implemented by every cached record.
type Syncable interface {
	GetID() string
	GetOwnerID() string
	IsSynced() bool
}
