package wallet

import (
	"context"
	"log/slog"
	"time"

	"github.com/points-hub/points_hub/internal/ledger"
	"github.com/points-hub/points_hub/internal/user"
)

// Service is the only sanctioned mutation path for the balance columns. Each
// settlement applies a single conditional balance update and then appends the
// matching point log entry. A failed append after a successful balance write
// is logged and does not fail the settlement; the balance write is
// authoritative.
type Service struct {
	users  user.Repository
	log    ledger.Log
	logger *slog.Logger
}

// NewService builds a wallet service instance.
func NewService(users user.Repository, log ledger.Log, logger *slog.Logger) *Service {
	return &Service{users: users, log: log, logger: logger}
}

// CreditInput captures the data for a balance credit.
type CreditInput struct {
	UserID        int64
	Points        int64
	Type          ledger.EntryType
	RelatedUserID int64
	Remark        string
}

// Balance is a point-in-time view of both balance columns.
type Balance struct {
	UserID    int64
	Available int64
	Frozen    int64
	AsOf      time.Time
}

// Credit increases available points and appends an entry of the given type.
func (s *Service) Credit(ctx context.Context, input CreditInput) error {
	if input.Points <= 0 {
		return user.ErrInvalidPoints
	}
	if err := s.users.AddAvailable(ctx, input.UserID, input.Points); err != nil {
		return err
	}
	s.append(ctx, ledger.Entry{
		UserID:        input.UserID,
		RelatedUserID: input.RelatedUserID,
		Type:          input.Type,
		Points:        input.Points,
		Remark:        input.Remark,
	})
	return nil
}

// Freeze moves points from available to frozen without changing the total
// claim. Fails with user.ErrInsufficientBalance when available points are
// short; the wallet is left unchanged in that case.
func (s *Service) Freeze(ctx context.Context, userID, points int64) error {
	if points <= 0 {
		return user.ErrInvalidPoints
	}
	return s.users.MoveToFrozen(ctx, userID, points)
}

// Unfreeze reverses a Freeze, restoring points to available. Used only when a
// pending withdrawal is cancelled.
func (s *Service) Unfreeze(ctx context.Context, userID, points int64) error {
	if points <= 0 {
		return user.ErrInvalidPoints
	}
	return s.users.MoveToAvailable(ctx, userID, points)
}

// SettleFrozen removes points from the frozen pool after an audited
// withdrawal is paid out externally, then appends a withdrawal-settled entry.
func (s *Service) SettleFrozen(ctx context.Context, userID, points int64, remark string) error {
	if points <= 0 {
		return user.ErrInvalidPoints
	}
	if err := s.users.DeductFrozen(ctx, userID, points); err != nil {
		return err
	}
	s.append(ctx, ledger.Entry{
		UserID: userID,
		Type:   ledger.TypeWithdrawalSettled,
		Points: points,
		Remark: remark,
	})
	return nil
}

// Balance returns both balance columns for the user.
func (s *Service) Balance(ctx context.Context, userID int64) (Balance, error) {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return Balance{}, err
	}
	return Balance{
		UserID:    u.ID,
		Available: u.AvailablePoints,
		Frozen:    u.FrozenPoints,
		AsOf:      time.Now().UTC(),
	}, nil
}

func (s *Service) append(ctx context.Context, entry ledger.Entry) {
	if _, err := s.log.Append(ctx, entry); err != nil {
		s.logger.Warn("point log append failed after balance update",
			"user_id", entry.UserID,
			"entry_type", string(entry.Type),
			"points", entry.Points,
			"error", err)
	}
}
