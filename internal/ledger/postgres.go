package ledger

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresLog persists point log entries in PostgreSQL.
type PostgresLog struct {
	db *pgxpool.Pool
}

// NewPostgresLog constructs a Postgres-backed point log.
func NewPostgresLog(db *pgxpool.Pool) *PostgresLog {
	return &PostgresLog{db: db}
}

// Append inserts a new entry and returns its assigned id.
func (l *PostgresLog) Append(ctx context.Context, entry Entry) (int64, error) {
	if entry.UserID == 0 || entry.Type == "" || entry.Points <= 0 {
		return 0, ErrInvalidEntry
	}
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	const query = `INSERT INTO point_log (user_id, related_user_id, entry_type, points, remark, created_at)
        VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	var id int64
	err := l.db.QueryRow(ctx, query,
		entry.UserID, entry.RelatedUserID, string(entry.Type), entry.Points, entry.Remark, createdAt).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// ListByUser returns all entries owned by the user, newest first.
func (l *PostgresLog) ListByUser(ctx context.Context, userID int64) ([]Entry, error) {
	const query = `SELECT id, user_id, related_user_id, entry_type, points, remark, created_at
        FROM point_log WHERE user_id = $1 ORDER BY id DESC`
	rows, err := l.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var entryType string
		if err := rows.Scan(&e.ID, &e.UserID, &e.RelatedUserID, &entryType, &e.Points, &e.Remark, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Type = EntryType(entryType)
		e.CreatedAt = e.CreatedAt.UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Delete removes an entry by id. The wallet is intentionally left untouched.
func (l *PostgresLog) Delete(ctx context.Context, id int64) error {
	cmd, err := l.db.Exec(ctx, `DELETE FROM point_log WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrEntryNotFound
	}
	return nil
}
