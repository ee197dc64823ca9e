package user

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound indicates the referenced user does not exist.
	ErrNotFound = errors.New("user not found")

	// ErrInsufficientBalance occurs when available points cannot cover a
	// freeze or debit.
	ErrInsufficientBalance = errors.New("insufficient available points")

	// ErrInsufficientFrozen occurs when frozen points cannot cover an
	// unfreeze or settlement.
	ErrInsufficientFrozen = errors.New("insufficient frozen points")

	// ErrInvalidPoints rejects non-positive point amounts.
	ErrInvalidPoints = errors.New("points must be positive")
)

// Repository persists users and applies balance deltas. Every delta is a
// single conditional update; callers never read a balance, compute a new
// value and write it back.
type Repository interface {
	Create(ctx context.Context, u User) (int64, error)
	Get(ctx context.Context, id int64) (User, error)
	AddAvailable(ctx context.Context, id, points int64) error
	MoveToFrozen(ctx context.Context, id, points int64) error
	MoveToAvailable(ctx context.Context, id, points int64) error
	DeductFrozen(ctx context.Context, id, points int64) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed user repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new user with zero balances.
func (r *PostgresRepository) Create(ctx context.Context, u User) (int64, error) {
	createdAt := u.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	const query = `INSERT INTO users (username, available_points, frozen_points, created_at)
        VALUES ($1, $2, $3, $4) RETURNING id`
	var id int64
	if err := r.db.QueryRow(ctx, query, u.Username, u.AvailablePoints, u.FrozenPoints, createdAt).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// Get fetches a user by id.
func (r *PostgresRepository) Get(ctx context.Context, id int64) (User, error) {
	row := r.db.QueryRow(ctx, `SELECT id, username, available_points, frozen_points, created_at
        FROM users WHERE id = $1`, id)
	var u User
	if err := row.Scan(&u.ID, &u.Username, &u.AvailablePoints, &u.FrozenPoints, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return u, nil
}

// AddAvailable increases available points by the given amount.
func (r *PostgresRepository) AddAvailable(ctx context.Context, id, points int64) error {
	if points <= 0 {
		return ErrInvalidPoints
	}
	cmd, err := r.db.Exec(ctx, `UPDATE users SET available_points = available_points + $2 WHERE id = $1`, id, points)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MoveToFrozen shifts points from available to frozen in one statement. The
// guard on available_points keeps the balance from going negative under
// concurrent settlements.
func (r *PostgresRepository) MoveToFrozen(ctx context.Context, id, points int64) error {
	if points <= 0 {
		return ErrInvalidPoints
	}
	const query = `UPDATE users
        SET available_points = available_points - $2, frozen_points = frozen_points + $2
        WHERE id = $1 AND available_points >= $2`
	cmd, err := r.db.Exec(ctx, query, id, points)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return r.guardFailure(ctx, id, ErrInsufficientBalance)
	}
	return nil
}

// MoveToAvailable shifts points from frozen back to available in one statement.
func (r *PostgresRepository) MoveToAvailable(ctx context.Context, id, points int64) error {
	if points <= 0 {
		return ErrInvalidPoints
	}
	const query = `UPDATE users
        SET available_points = available_points + $2, frozen_points = frozen_points - $2
        WHERE id = $1 AND frozen_points >= $2`
	cmd, err := r.db.Exec(ctx, query, id, points)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return r.guardFailure(ctx, id, ErrInsufficientFrozen)
	}
	return nil
}

// DeductFrozen removes points from the frozen pool without a corresponding
// increase elsewhere; the payout happens outside the system.
func (r *PostgresRepository) DeductFrozen(ctx context.Context, id, points int64) error {
	if points <= 0 {
		return ErrInvalidPoints
	}
	const query = `UPDATE users SET frozen_points = frozen_points - $2
        WHERE id = $1 AND frozen_points >= $2`
	cmd, err := r.db.Exec(ctx, query, id, points)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return r.guardFailure(ctx, id, ErrInsufficientFrozen)
	}
	return nil
}

// guardFailure distinguishes a missing user from a failed balance guard after
// a zero-row conditional update.
func (r *PostgresRepository) guardFailure(ctx context.Context, id int64, guardErr error) error {
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	return guardErr
}
