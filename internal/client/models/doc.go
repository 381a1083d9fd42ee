// Package models defines the cached record kinds, their wire documents and
// the validation rules applied to locally created records.
package models
