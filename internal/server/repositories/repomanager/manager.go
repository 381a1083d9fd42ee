package repomanager

import (
	"context"
	"database/sql"

	"github.com/nipa/healthsync/internal/dbx"
	"github.com/nipa/healthsync/internal/server/repositories/documents"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Documents(db dbx.DBTX) documents.Repository
}
