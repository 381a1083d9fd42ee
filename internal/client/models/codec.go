package models

import "fmt"

// Record is the union of the cached record types.
type Record interface {
	Notification | ClientHistoryItem
	Syncable
	ToDocument() Document
}

// Decoder turns a wire document into a record.
type Decoder[T Record] func(Document) (T, error)

// DecodeNotification and DecodeClientHistoryItem adapt the typed decoders to Decoder.
var (
	DecodeNotification      Decoder[Notification]      = NotificationFromDocument
	DecodeClientHistoryItem Decoder[ClientHistoryItem] = ClientHistoryItemFromDocument
)

// WithSynced returns a copy of r with the synced flag set.
func WithSynced[T Record](r T, synced bool) T {
	switch v := any(r).(type) {
	case Notification:
		v.Synced = synced
		return any(v).(T)
	case ClientHistoryItem:
		v.Synced = synced
		return any(v).(T)
	default:
		panic(fmt.Sprintf("unsupported record %T", r))
	}
}
