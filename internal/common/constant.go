// Package common contains shared constants and sentinel errors used across
// healthsync components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// Remote collection names and the owner field each one is partitioned by.
const (
	CollectionNotifications = "notifications"
	CollectionClientHistory = "client_history"

	OwnerFieldNotifications = "userId"
	OwnerFieldClientHistory = "providerId"
)

// OwnerField returns the owner filter field for a collection and whether the
// collection is known.
func OwnerField(collection string) (string, bool) {
	switch collection {
	case CollectionNotifications:
		return OwnerFieldNotifications, true
	case CollectionClientHistory:
		return OwnerFieldClientHistory, true
	default:
		return "", false
	}
}
