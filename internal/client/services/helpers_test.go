package services

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/nipa/healthsync/internal/client/client"
	"github.com/nipa/healthsync/internal/client/migrations"
	"github.com/nipa/healthsync/internal/client/models"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupRepos(t *testing.T) (*sql.DB, *client.Repositories) {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.Up(context.Background(), db))
	return db, client.NewRepositories(db)
}

// fakeRemote is an in-memory document store with injectable failures.
type fakeRemote struct {
	mu       sync.Mutex
	docs     map[string]map[string]models.Document
	queryErr map[string]error
	// extra documents returned regardless of the filter
	extra     map[string][]models.Document
	upsertErr func(collection, id string) error
	queries   []string
	upserts   []string
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		docs:     map[string]map[string]models.Document{},
		queryErr: map[string]error{},
		extra:    map[string][]models.Document{},
	}
}

func (f *fakeRemote) put(collection string, doc models.Document) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.docs[collection] == nil {
		f.docs[collection] = map[string]models.Document{}
	}
	f.docs[collection][doc["id"].(string)] = doc
}

func (f *fakeRemote) Query(ctx context.Context, collection, field, value string) ([]models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, collection)
	if err := f.queryErr[collection]; err != nil {
		return nil, err
	}
	out := append([]models.Document(nil), f.extra[collection]...)
	for _, d := range f.docs[collection] {
		if d[field] == value {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeRemote) Upsert(ctx context.Context, collection, id string, doc models.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts = append(f.upserts, collection+"/"+id)
	if f.upsertErr != nil {
		if err := f.upsertErr(collection, id); err != nil {
			return err
		}
	}
	if f.docs[collection] == nil {
		f.docs[collection] = map[string]models.Document{}
	}
	f.docs[collection][id] = doc
	return nil
}

func (f *fakeRemote) Ping(ctx context.Context) error { return nil }
func (f *fakeRemote) Close() error                   { return nil }

func note(id, user string, synced bool) models.Notification {
	return models.Notification{
		ID:        id,
		Title:     "Reminder " + id,
		Message:   "Take your medication",
		Timestamp: time.Unix(1_700_000_000, 0).UTC(),
		UserID:    user,
		Type:      models.NotificationReminder,
		Synced:    synced,
	}
}

func history(id, provider string, synced bool) models.ClientHistoryItem {
	return models.ClientHistoryItem{
		ID:               id,
		ProviderID:       provider,
		PatientID:        "pat-" + id,
		PatientName:      "Patient " + id,
		ConsultationDate: time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC),
		ConsultationType: models.ConsultationInPerson,
		Notes:            "notes",
		Attachments:      []string{},
		Synced:           synced,
	}
}

func byID[T models.Record](records []T) map[string]T {
	out := make(map[string]T, len(records))
	for _, r := range records {
		out[r.GetID()] = r
	}
	return out
}

func idSet[T models.Record](records []T) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.GetID())
	}
	return out
}
