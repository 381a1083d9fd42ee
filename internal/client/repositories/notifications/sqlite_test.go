package notifications

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/nipa/healthsync/internal/client/migrations"
	"github.com/nipa/healthsync/internal/client/models"
	"github.com/nipa/healthsync/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.Up(context.Background(), db))
	return db
}

func notification(id, user string, ts int64, synced bool) models.Notification {
	return models.Notification{
		ID:        id,
		Title:     "title " + id,
		Message:   "message " + id,
		Timestamp: time.Unix(ts, 0).UTC(),
		UserID:    user,
		Type:      models.NotificationGeneral,
		Synced:    synced,
	}
}

func ids(list []models.Notification) []string {
	out := make([]string, 0, len(list))
	for _, n := range list {
		out = append(out, n.ID)
	}
	return out
}

func TestInsertOrReplace_InsertThenOverwrite(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	n := notification("n1", "u1", 100, false)
	require.NoError(t, r.InsertOrReplace(ctx, []models.Notification{n}))

	got, err := r.GetByID(ctx, "n1")
	require.NoError(t, err)
	assert.Equal(t, n, got)

	n.Title = "changed remotely"
	n.Read = true
	n.Type = models.NotificationSystem
	n.Synced = true
	require.NoError(t, r.InsertOrReplace(ctx, []models.Notification{n}))

	got, err = r.GetByID(ctx, "n1")
	require.NoError(t, err)
	assert.Equal(t, n, got)

	all, err := r.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestInsertOrReplace_EmptyIsNoop(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	require.NoError(t, r.InsertOrReplace(context.Background(), nil))
}

func TestGetUnsyncedAndByOwner(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.InsertOrReplace(ctx, []models.Notification{
		notification("a", "u1", 1, true),
		notification("b", "u1", 2, false),
		notification("c", "u2", 3, false),
	}))

	unsynced, err := r.GetUnsynced(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"b", "c"}, ids(unsynced))

	mine, err := r.GetAllByOwner(ctx, "u1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, ids(mine))
}

func TestUpdate(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	n := notification("n1", "u1", 10, false)
	require.NoError(t, r.InsertOrReplace(ctx, []models.Notification{n}))

	n.Synced = true
	require.NoError(t, r.Update(ctx, n))

	got, err := r.GetByID(ctx, "n1")
	require.NoError(t, err)
	assert.True(t, got.Synced)

	err = r.Update(ctx, notification("ghost", "u1", 1, true))
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestDeleteByIDs(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.InsertOrReplace(ctx, []models.Notification{
		notification("a", "u1", 1, true),
		notification("b", "u1", 2, true),
		notification("c", "u1", 3, true),
	}))

	require.NoError(t, r.DeleteByIDs(ctx, []string{"a", "c", "missing"}))
	require.NoError(t, r.DeleteByIDs(ctx, nil))

	all, err := r.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids(all))

	_, err = r.GetByID(ctx, "a")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestListByUserAndUnreadCount(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	read := notification("old", "u1", 100, true)
	read.Read = true
	require.NoError(t, r.InsertOrReplace(ctx, []models.Notification{
		read,
		notification("new", "u1", 300, true),
		notification("mid", "u1", 200, false),
		notification("other", "u2", 400, true),
	}))

	list, err := r.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"new", "mid", "old"}, ids(list))

	n, err := r.UnreadCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestErrorsAreWrapped(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	require.NoError(t, db.Close())

	_, err := r.GetAll(ctx)
	require.ErrorContains(t, err, "failed to select notifications")

	err = r.InsertOrReplace(ctx, []models.Notification{notification("a", "u1", 1, true)})
	require.ErrorContains(t, err, "failed to upsert notifications")

	err = r.DeleteByIDs(ctx, []string{"a"})
	require.ErrorContains(t, err, "failed to delete notifications")
}

func TestConfirmSynced(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	base := notification("n1", "u1", 10, false)
	require.NoError(t, r.InsertOrReplace(ctx, []models.Notification{base}))

	t.Run("unchanged row is confirmed", func(t *testing.T) {
		ok, err := r.ConfirmSynced(ctx, base, base)
		require.NoError(t, err)
		assert.True(t, ok)

		got, err := r.GetByID(ctx, "n1")
		require.NoError(t, err)
		assert.True(t, got.Synced)
	})

	t.Run("already synced row is left alone", func(t *testing.T) {
		ok, err := r.ConfirmSynced(ctx, base, base)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("edited row is left unsynced", func(t *testing.T) {
		edited := base
		edited.Read = true
		require.NoError(t, r.Update(ctx, edited))

		ok, err := r.ConfirmSynced(ctx, base, base)
		require.NoError(t, err)
		assert.False(t, ok)

		got, err := r.GetByID(ctx, "n1")
		require.NoError(t, err)
		assert.True(t, got.Read)
		assert.False(t, got.Synced)
	})

	t.Run("missing row", func(t *testing.T) {
		ghost := notification("ghost", "u1", 1, false)
		ok, err := r.ConfirmSynced(ctx, ghost, ghost)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
