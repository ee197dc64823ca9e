package order

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// errAlreadyPaid indicates the conditional mark-paid update matched no row.
var errAlreadyPaid = errors.New("order already paid")

// Repository persists top-up orders.
type Repository interface {
	Create(ctx context.Context, o Order) (int64, error)
	FindByCode(ctx context.Context, code string) (Order, error)
	MarkPaid(ctx context.Context, id int64, method string, paidAt time.Time) error
}

// PostgresRepository stores orders in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed order repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new unpaid order.
func (r *PostgresRepository) Create(ctx context.Context, o Order) (int64, error) {
	createdAt := o.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	const query = `INSERT INTO orders (code, user_id, status, amount, points, pay_method, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	var id int64
	if err := r.db.QueryRow(ctx, query, o.Code, o.UserID, o.Status, o.Amount, o.Points, o.PayMethod, createdAt).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// FindByCode fetches an order by its correlation code.
func (r *PostgresRepository) FindByCode(ctx context.Context, code string) (Order, error) {
	row := r.db.QueryRow(ctx, `SELECT id, code, user_id, status, amount, points, pay_method,
        COALESCE(paid_at, 'epoch'::timestamptz), created_at
        FROM orders WHERE code = $1`, code)
	var o Order
	if err := row.Scan(&o.ID, &o.Code, &o.UserID, &o.Status, &o.Amount, &o.Points, &o.PayMethod, &o.PaidAt, &o.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, ErrOrderNotFound
		}
		return Order{}, err
	}
	o.PaidAt = o.PaidAt.UTC()
	o.CreatedAt = o.CreatedAt.UTC()
	return o, nil
}

// MarkPaid flips an order to paid, recording the method and timestamp. The
// status guard keeps the transition single-shot under duplicate callbacks.
func (r *PostgresRepository) MarkPaid(ctx context.Context, id int64, method string, paidAt time.Time) error {
	const query = `UPDATE orders SET status = $3, pay_method = $2, paid_at = $4
        WHERE id = $1 AND status = $5`
	cmd, err := r.db.Exec(ctx, query, id, method, StatusPaid, paidAt.UTC(), StatusUnpaid)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return errAlreadyPaid
	}
	return nil
}
