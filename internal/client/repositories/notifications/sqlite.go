package notifications

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nipa/healthsync/internal/client/models"
	"github.com/nipa/healthsync/internal/common"
	"github.com/nipa/healthsync/internal/dbx"
)

const columns = `id, title, message, timestamp, user_id, read, type, synced`

// SQLiteRepository implements Repository over the notifications table.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository returns a repository bound to db.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

var _ Repository = (*SQLiteRepository)(nil)

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Notification, error) {
	return r.list(ctx, `SELECT `+columns+` FROM notifications`)
}

func (r *SQLiteRepository) GetAllByOwner(ctx context.Context, ownerID string) ([]models.Notification, error) {
	return r.list(ctx, `SELECT `+columns+` FROM notifications WHERE user_id = ?`, ownerID)
}

func (r *SQLiteRepository) GetUnsynced(ctx context.Context) ([]models.Notification, error) {
	return r.list(ctx, `SELECT `+columns+` FROM notifications WHERE synced = 0`)
}

func (r *SQLiteRepository) ListByUser(ctx context.Context, userID string) ([]models.Notification, error) {
	return r.list(ctx, `SELECT `+columns+` FROM notifications WHERE user_id = ? ORDER BY timestamp DESC, id`, userID)
}

func (r *SQLiteRepository) UnreadCount(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = ? AND read = 0`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (models.Notification, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM notifications WHERE id = ?`, id)
	n, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Notification{}, fmt.Errorf("notification %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return models.Notification{}, fmt.Errorf("failed to get notification: %w", err)
	}
	return n, nil
}

// InsertOrReplace writes all records in one transaction.
func (r *SQLiteRepository) InsertOrReplace(ctx context.Context, records []models.Notification) error {
	if len(records) == 0 {
		return nil
	}
	query := `INSERT INTO notifications (` + columns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			message = excluded.message,
			timestamp = excluded.timestamp,
			user_id = excluded.user_id,
			read = excluded.read,
			type = excluded.type,
			synced = excluded.synced`

	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, n := range records {
			if _, err := tx.ExecContext(ctx, query, args(n)...); err != nil {
				return fmt.Errorf("notification %s: %w", n.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to upsert notifications: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Update(ctx context.Context, n models.Notification) error {
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET
			title = ?, message = ?, timestamp = ?, user_id = ?, read = ?, type = ?, synced = ?
		WHERE id = ?`,
		n.Title, n.Message, n.Timestamp.Unix(), n.UserID, n.Read, string(n.Type), n.Synced, n.ID)
	if err != nil {
		return fmt.Errorf("failed to update notification: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return fmt.Errorf("notification %s: %w", n.ID, common.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) ConfirmSynced(ctx context.Context, sent, base models.Notification) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET
			title = ?, message = ?, timestamp = ?, user_id = ?, read = ?, type = ?, synced = 1
		WHERE id = ? AND synced = 0
			AND title = ? AND message = ? AND timestamp = ? AND user_id = ? AND read = ? AND type = ?`,
		sent.Title, sent.Message, sent.Timestamp.Unix(), sent.UserID, sent.Read, string(sent.Type),
		base.ID,
		base.Title, base.Message, base.Timestamp.Unix(), base.UserID, base.Read, string(base.Type))
	if err != nil {
		return false, fmt.Errorf("failed to confirm notification: %w", err)
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
			`DELETE FROM notifications WHERE id IN (`+dbx.Placeholders(len(ids))+`)`, dbx.StringArgs(ids)...)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to delete notifications: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) list(ctx context.Context, query string, args ...any) ([]models.Notification, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select notifications: %w", err)
	}
	defer rows.Close()

	result := []models.Notification{}
	for rows.Next() {
		n, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (models.Notification, error) {
	var (
		n    models.Notification
		ts   int64
		kind string
	)
	if err := s.Scan(&n.ID, &n.Title, &n.Message, &ts, &n.UserID, &n.Read, &kind, &n.Synced); err != nil {
		return models.Notification{}, err
	}
	n.Timestamp = time.Unix(ts, 0).UTC()
	n.Type = models.ParseNotificationType(kind)
	return n, nil
}

func args(n models.Notification) []any {
	return []any{n.ID, n.Title, n.Message, n.Timestamp.Unix(), n.UserID, n.Read, string(n.Type), n.Synced}
}
