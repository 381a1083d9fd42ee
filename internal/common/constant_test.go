package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOwnerField(t *testing.T) {
	tests := []struct {
		collection string
		field      string
		ok         bool
	}{
		{CollectionNotifications, "userId", true},
		{CollectionClientHistory, "providerId", true},
		{"appointments", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.collection, func(t *testing.T) {
			field, ok := OwnerField(tt.collection)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.field, field)
		})
	}
}
