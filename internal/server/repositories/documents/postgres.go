// Package documents provides the gateway's document storage: a PostgreSQL
// repository over JSONB and an in-memory one for development and tests.
package documents

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nipa/healthsync/internal/common"
	"github.com/nipa/healthsync/internal/dbx"
	"github.com/nipa/healthsync/internal/server/models"
)

// PostgresRepository implements document storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert inserts or replaces a document. A conflicting row of another owner
// is left untouched and common.ErrForbidden is returned.
func (r *PostgresRepository) Upsert(ctx context.Context, doc *models.StoredDocument) error {
	body, err := json.Marshal(doc.Body)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	query := `
		INSERT INTO documents (collection, id, owner_id, body, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (collection, id)
		DO UPDATE SET
			body = EXCLUDED.body,
			updated_at = EXCLUDED.updated_at
			WHERE documents.owner_id = EXCLUDED.owner_id;
	`
	res, err := r.db.ExecContext(ctx, query, doc.Collection, doc.ID, doc.OwnerID, body)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return fmt.Errorf("document %s/%s: %w", doc.Collection, doc.ID, common.ErrForbidden)
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

// Query matches on the text value of a top-level JSON field.
func (r *PostgresRepository) Query(ctx context.Context, collection, field, value string) ([]models.Document, error) {
	query := `SELECT body FROM documents WHERE collection = $1 AND body->>$2 = $3 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, collection, field, value)
	if err != nil {
		return nil, fmt.Errorf("failed to select documents: %w", err)
	}
	defer rows.Close()

	result := []models.Document{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var doc models.Document
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
		result = append(result, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
