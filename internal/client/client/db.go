package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nipa/healthsync/internal/client/migrations"
	"github.com/nipa/healthsync/internal/client/repositories/clienthistory"
	"github.com/nipa/healthsync/internal/client/repositories/metadata"
	"github.com/nipa/healthsync/internal/client/repositories/notifications"
	"github.com/nipa/healthsync/internal/filex"

	_ "modernc.org/sqlite"
)

type Repositories struct {
	Notifications notifications.Repository
	ClientHistory clienthistory.Repository
	Metadata      metadata.Repository
}

func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		Notifications: notifications.NewSQLiteRepository(db),
		ClientHistory: clienthistory.NewSQLiteRepository(db),
		Metadata:      metadata.NewSQLiteRepository(db),
	}
}

// InitDatabase opens (creating if needed) the cache at path and migrates it.
// The caller owns the returned handle.
func InitDatabase(ctx context.Context, path string) (*sql.DB, error) {
	abs, err := filex.EnsureParentDir(path)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", abs+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open cache %s: %w", abs, err)
	}

	if err := migrations.Up(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
