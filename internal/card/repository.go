package card

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// errNoUnusedCard is the repository-level miss; the service folds it into
	// ErrCardNotFound so callers cannot distinguish the reason.
	errNoUnusedCard = errors.New("no unused card for number")

	// errAlreadyUsed indicates the conditional mark-used update matched no row.
	errAlreadyUsed = errors.New("card already used")
)

// Repository persists prepaid cards.
type Repository interface {
	CreateBatch(ctx context.Context, cards []Card) error
	FindUnused(ctx context.Context, number string) (Card, error)
	MarkUsed(ctx context.Context, id, userID int64, usedAt time.Time) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]Card, error)
}

// PostgresRepository stores cards in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed card repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreateBatch inserts a generated batch of cards.
func (r *PostgresRepository) CreateBatch(ctx context.Context, cards []Card) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	const query = `INSERT INTO cards (number, password_hash, face_value, points, sale_status, use_status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for _, card := range cards {
		if _, err := tx.Exec(ctx, query,
			card.Number, card.PasswordHash, card.FaceValue, card.Points,
			card.SaleStatus, card.UseStatus, card.CreatedAt.UTC()); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// FindUnused fetches the unused card with the given number, if any.
func (r *PostgresRepository) FindUnused(ctx context.Context, number string) (Card, error) {
	row := r.db.QueryRow(ctx, `SELECT id, number, password_hash, face_value, points, sale_status, use_status, created_at
        FROM cards WHERE number = $1 AND use_status = $2`, number, UseStatusUnused)
	var c Card
	if err := row.Scan(&c.ID, &c.Number, &c.PasswordHash, &c.FaceValue, &c.Points, &c.SaleStatus, &c.UseStatus, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Card{}, errNoUnusedCard
		}
		return Card{}, err
	}
	c.CreatedAt = c.CreatedAt.UTC()
	return c, nil
}

// MarkUsed flips the card to sold/used, recording the redeeming user and
// timestamp. The use_status guard makes the transition single-use even under
// concurrent redemptions.
func (r *PostgresRepository) MarkUsed(ctx context.Context, id, userID int64, usedAt time.Time) error {
	const query = `UPDATE cards
        SET sale_status = $3, use_status = $4, used_by = $2, used_at = $5
        WHERE id = $1 AND use_status = $6`
	cmd, err := r.db.Exec(ctx, query, id, userID, SaleStatusSold, UseStatusUsed, usedAt.UTC(), UseStatusUnused)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return errAlreadyUsed
	}
	return nil
}

// Delete removes a card in any state.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM cards WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrCardNotFound
	}
	return nil
}

// List returns all cards, newest batch first.
func (r *PostgresRepository) List(ctx context.Context) ([]Card, error) {
	rows, err := r.db.Query(ctx, `SELECT id, number, password_hash, face_value, points, sale_status, use_status,
        COALESCE(used_by, 0), COALESCE(used_at, 'epoch'::timestamptz), created_at
        FROM cards ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cards []Card
	for rows.Next() {
		var c Card
		if err := rows.Scan(&c.ID, &c.Number, &c.PasswordHash, &c.FaceValue, &c.Points,
			&c.SaleStatus, &c.UseStatus, &c.UsedBy, &c.UsedAt, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.CreatedAt = c.CreatedAt.UTC()
		c.UsedAt = c.UsedAt.UTC()
		cards = append(cards, c)
	}
	return cards, rows.Err()
}
