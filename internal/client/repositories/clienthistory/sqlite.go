package clienthistory

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nipa/healthsync/internal/client/models"
	"github.com/nipa/healthsync/internal/common"
	"github.com/nipa/healthsync/internal/dbx"
)

const columns = `id, provider_id, patient_id, patient_name, consultation_date, consultation_type, notes, attachments, synced`

// SQLiteRepository implements Repository over the client_history_items table.
// Attachments are stored as a JSON array.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

var _ Repository = (*SQLiteRepository)(nil)

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.ClientHistoryItem, error) {
	return r.list(ctx, `SELECT `+columns+` FROM client_history_items`)
}

func (r *SQLiteRepository) GetAllByOwner(ctx context.Context, ownerID string) ([]models.ClientHistoryItem, error) {
	return r.list(ctx, `SELECT `+columns+` FROM client_history_items WHERE provider_id = ?`, ownerID)
}

func (r *SQLiteRepository) GetUnsynced(ctx context.Context) ([]models.ClientHistoryItem, error) {
	return r.list(ctx, `SELECT `+columns+` FROM client_history_items WHERE synced = 0`)
}

func (r *SQLiteRepository) ListByProvider(ctx context.Context, providerID string) ([]models.ClientHistoryItem, error) {
	return r.list(ctx, `SELECT `+columns+` FROM client_history_items
		WHERE provider_id = ? ORDER BY consultation_date DESC, id`, providerID)
}

func (r *SQLiteRepository) ListByPatient(ctx context.Context, patientID string) ([]models.ClientHistoryItem, error) {
	return r.list(ctx, `SELECT `+columns+` FROM client_history_items
		WHERE patient_id = ? ORDER BY consultation_date DESC, id`, patientID)
}

func (r *SQLiteRepository) CountByProvider(ctx context.Context, providerID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM client_history_items WHERE provider_id = ?`, providerID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count client history: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (models.ClientHistoryItem, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM client_history_items WHERE id = ?`, id)
	item, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ClientHistoryItem{}, fmt.Errorf("client history item %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return models.ClientHistoryItem{}, fmt.Errorf("failed to get client history item: %w", err)
	}
	return item, nil
}

// InsertOrReplace writes all records in one transaction.
func (r *SQLiteRepository) InsertOrReplace(ctx context.Context, records []models.ClientHistoryItem) error {
	if len(records) == 0 {
		return nil
	}
	query := `INSERT INTO client_history_items (` + columns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			provider_id = excluded.provider_id,
			patient_id = excluded.patient_id,
			patient_name = excluded.patient_name,
			consultation_date = excluded.consultation_date,
			consultation_type = excluded.consultation_type,
			notes = excluded.notes,
			attachments = excluded.attachments,
			synced = excluded.synced`

	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, item := range records {
			a, err := args(item)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, query, a...); err != nil {
				return fmt.Errorf("client history item %s: %w", item.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to upsert client history: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Update(ctx context.Context, item models.ClientHistoryItem) error {
	a, err := args(item)
	if err != nil {
		return err
	}
	// args starts with the id; the UPDATE wants it last.
	a = append(a[1:], a[0])

	res, err := r.db.ExecContext(ctx, `UPDATE client_history_items SET
			provider_id = ?, patient_id = ?, patient_name = ?, consultation_date = ?,
			consultation_type = ?, notes = ?, attachments = ?, synced = ?
		WHERE id = ?`, a...)
	if err != nil {
		return fmt.Errorf("failed to update client history item: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return fmt.Errorf("client history item %s: %w", item.ID, common.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) ConfirmSynced(ctx context.Context, sent, base models.ClientHistoryItem) (bool, error) {
	set, err := args(sent)
	if err != nil {
		return false, err
	}
	where, err := args(base)
	if err != nil {
		return false, err
	}
	// both slices start with the id and end with synced
	a := append(set[1:len(set)-1:len(set)-1], where[:len(where)-1]...)

	res, err := r.db.ExecContext(ctx, `UPDATE client_history_items SET
			provider_id = ?, patient_id = ?, patient_name = ?, consultation_date = ?,
			consultation_type = ?, notes = ?, attachments = ?, synced = 1
		WHERE id = ? AND synced = 0
			AND provider_id = ? AND patient_id = ? AND patient_name = ? AND consultation_date = ?
			AND consultation_type = ? AND notes = ? AND attachments = ?`, a...)
	if err != nil {
		return false, fmt.Errorf("failed to confirm client history item: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return ra == 1, nil
}

// DeleteByIDs removes ids in one transaction.
func (r *SQLiteRepository) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		_, err := tx.ExecContext(ctx,
			`DELETE FROM client_history_items WHERE id IN (`+dbx.Placeholders(len(ids))+`)`, dbx.StringArgs(ids)...)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to delete client history: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) list(ctx context.Context, query string, args ...any) ([]models.ClientHistoryItem, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select client history: %w", err)
	}
	defer rows.Close()

	result := []models.ClientHistoryItem{}
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client history item: %w", err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate client history: %w", err)
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (models.ClientHistoryItem, error) {
	var (
		item        models.ClientHistoryItem
		date, kind  string
		attachments string
	)
	err := s.Scan(&item.ID, &item.ProviderID, &item.PatientID, &item.PatientName,
		&date, &kind, &item.Notes, &attachments, &item.Synced)
	if err != nil {
		return models.ClientHistoryItem{}, err
	}

	if item.ConsultationDate, err = time.Parse(models.DateLayout, date); err != nil {
		return models.ClientHistoryItem{}, fmt.Errorf("bad consultation date %q: %w", date, err)
	}
	item.ConsultationType = models.ConsultationType(kind)
	if err := json.Unmarshal([]byte(attachments), &item.Attachments); err != nil {
		return models.ClientHistoryItem{}, fmt.Errorf("bad attachments: %w", err)
	}
	if item.Attachments == nil {
		item.Attachments = []string{}
	}
	return item, nil
}

func args(item models.ClientHistoryItem) ([]any, error) {
	attachments := item.Attachments
	if attachments == nil {
		attachments = []string{}
	}
	encoded, err := json.Marshal(attachments)
	if err != nil {
		return nil, fmt.Errorf("failed to encode attachments: %w", err)
	}
	return []any{
		item.ID, item.ProviderID, item.PatientID, item.PatientName,
		item.ConsultationDate.Format(models.DateLayout), string(item.ConsultationType),
		item.Notes, string(encoded), item.Synced,
	}, nil
}
