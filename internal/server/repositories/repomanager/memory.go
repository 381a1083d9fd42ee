package repomanager

import (
	"context"
	"database/sql"

	"github.com/nipa/healthsync/internal/dbx"
	"github.com/nipa/healthsync/internal/server/repositories/documents"
)

// InMemoryRepositoryManager hands out one shared in-memory repository and
// ignores the database handle.
type InMemoryRepositoryManager struct {
	documents *documents.InMemoryRepository
}

func (m *InMemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error {
	return nil
}

func (m *InMemoryRepositoryManager) Documents(dbx.DBTX) documents.Repository {
	return m.documents
}

func NewInMemoryRepositoryManager() RepositoryManager {
	return &InMemoryRepositoryManager{documents: documents.NewInMemoryRepository()}
}
