package cash

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// errNotPending indicates the conditional mark-audited update matched no row.
var errNotPending = errors.New("request not pending")

// Repository persists withdrawal requests.
type Repository interface {
	Create(ctx context.Context, req Request) (int64, error)
	Get(ctx context.Context, id int64) (Request, error)
	MarkAudited(ctx context.Context, id int64, auditedAt time.Time) error
	// Delete removes the row and returns it as it was, so the caller can
	// decide whether frozen funds must be restored.
	Delete(ctx context.Context, id int64) (Request, error)
	List(ctx context.Context, status string) ([]Request, error)
}

// PostgresRepository stores withdrawal requests in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed cash repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new pending request.
func (r *PostgresRepository) Create(ctx context.Context, req Request) (int64, error) {
	createdAt := req.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	const query = `INSERT INTO cash_requests (user_id, status, amount, points, bank_name, bank_account, payee, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	var id int64
	err := r.db.QueryRow(ctx, query,
		req.UserID, req.Status, req.Amount, req.Points,
		req.BankName, req.BankAccount, req.Payee, createdAt).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Get fetches a request by id.
func (r *PostgresRepository) Get(ctx context.Context, id int64) (Request, error) {
	row := r.db.QueryRow(ctx, `SELECT id, user_id, status, amount, points, bank_name, bank_account, payee,
        created_at, COALESCE(audited_at, 'epoch'::timestamptz)
        FROM cash_requests WHERE id = $1`, id)
	return scanRequest(row)
}

// MarkAudited flips a pending request to audited. The status guard prevents a
// request from being audited twice.
func (r *PostgresRepository) MarkAudited(ctx context.Context, id int64, auditedAt time.Time) error {
	const query = `UPDATE cash_requests SET status = $2, audited_at = $3
        WHERE id = $1 AND status = $4`
	cmd, err := r.db.Exec(ctx, query, id, StatusAudited, auditedAt.UTC(), StatusPending)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return errNotPending
	}
	return nil
}

// Delete removes the request and returns the deleted row.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) (Request, error) {
	row := r.db.QueryRow(ctx, `DELETE FROM cash_requests WHERE id = $1
        RETURNING id, user_id, status, amount, points, bank_name, bank_account, payee,
        created_at, COALESCE(audited_at, 'epoch'::timestamptz)`, id)
	return scanRequest(row)
}

// List returns requests filtered by status, or all when status is empty.
func (r *PostgresRepository) List(ctx context.Context, status string) ([]Request, error) {
	const query = `SELECT id, user_id, status, amount, points, bank_name, bank_account, payee,
        created_at, COALESCE(audited_at, 'epoch'::timestamptz)
        FROM cash_requests WHERE ($1 = '' OR status = $1) ORDER BY id`
	rows, err := r.db.Query(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func scanRequest(row pgx.Row) (Request, error) {
	var req Request
	err := row.Scan(&req.ID, &req.UserID, &req.Status, &req.Amount, &req.Points,
		&req.BankName, &req.BankAccount, &req.Payee, &req.CreatedAt, &req.AuditedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Request{}, ErrNotFound
		}
		return Request{}, err
	}
	req.CreatedAt = req.CreatedAt.UTC()
	req.AuditedAt = req.AuditedAt.UTC()
	return req, nil
}
