// Package models holds the gateway's persisted types.
package models

import "time"

// Document is a flat JSON object as exchanged with clients.
type Document = map[string]any

// StoredDocument is one row of the documents table.
type StoredDocument struct {
	Collection string
	ID         string
	OwnerID    string
	Body       Document
	UpdatedAt  time.Time
}
