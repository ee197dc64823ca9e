package cash

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/points-hub/points_hub/internal/notification"
	"github.com/points-hub/points_hub/internal/wallet"
)

var (
	// ErrInvalidInput indicates a missing user or payee detail.
	ErrInvalidInput = errors.New("user, amount and payee details are required")

	// ErrWithdrawalsDisabled indicates the feature is switched off by policy.
	ErrWithdrawalsDisabled = errors.New("withdrawals are disabled")

	// ErrBelowMinimum indicates the amount is under the configured floor.
	ErrBelowMinimum = errors.New("amount below withdrawal minimum")

	// ErrNotFound indicates the referenced withdrawal request does not exist.
	ErrNotFound = errors.New("withdrawal request not found")
)

// Policy carries the withdrawal business rules, resolved from configuration
// at wiring time rather than read from ambient state inside the service.
type Policy struct {
	Enabled       bool
	MinAmount     int64
	ExchangeRatio int64
}

// Service runs the withdrawal lifecycle: request freezes points, audit
// settles them, deleting a pending request restores them.
type Service struct {
	repo     Repository
	wallets  *wallet.Service
	policy   Policy
	notifier notification.Notifier
	logger   *slog.Logger
}

// NewService builds a cash service instance.
func NewService(repo Repository, wallets *wallet.Service, policy Policy, notifier notification.Notifier, logger *slog.Logger) *Service {
	return &Service{repo: repo, wallets: wallets, policy: policy, notifier: notifier, logger: logger}
}

// RequestInput captures a withdrawal request.
type RequestInput struct {
	UserID      int64
	Amount      int64
	BankName    string
	BankAccount string
	Payee       string
}

// Request freezes the required points and records a pending withdrawal.
//
// Points are frozen before the row is created so a pending request without
// frozen funds cannot exist; if row creation fails the freeze is compensated
// with an unfreeze.
func (s *Service) Request(ctx context.Context, input RequestInput) (Request, error) {
	if input.UserID == 0 || input.Amount <= 0 || input.BankName == "" || input.BankAccount == "" || input.Payee == "" {
		return Request{}, ErrInvalidInput
	}
	if !s.policy.Enabled {
		return Request{}, ErrWithdrawalsDisabled
	}
	if input.Amount < s.policy.MinAmount {
		return Request{}, ErrBelowMinimum
	}

	points := input.Amount * s.policy.ExchangeRatio

	if err := s.wallets.Freeze(ctx, input.UserID, points); err != nil {
		return Request{}, err
	}

	req := Request{
		UserID:      input.UserID,
		Status:      StatusPending,
		Amount:      input.Amount,
		Points:      points,
		BankName:    sanitize(input.BankName),
		BankAccount: sanitize(input.BankAccount),
		Payee:       sanitize(input.Payee),
		CreatedAt:   time.Now().UTC(),
	}
	id, err := s.repo.Create(ctx, req)
	if err != nil {
		if unfreezeErr := s.wallets.Unfreeze(ctx, input.UserID, points); unfreezeErr != nil {
			s.logger.Error("compensating unfreeze failed after request creation error",
				"user_id", input.UserID,
				"points", points,
				"create_error", err,
				"unfreeze_error", unfreezeErr)
		}
		return Request{}, err
	}
	req.ID = id
	return req, nil
}

// AuditResult reports the outcome for one request in an audit batch.
type AuditResult struct {
	RequestID int64
	Err       error
}

// Audit marks each pending request audited and settles its frozen points. A
// per-request failure is recorded and the batch keeps going.
func (s *Service) Audit(ctx context.Context, ids []int64) []AuditResult {
	results := make([]AuditResult, 0, len(ids))
	for _, id := range ids {
		results = append(results, AuditResult{RequestID: id, Err: s.auditOne(ctx, id)})
	}
	return results
}

func (s *Service) auditOne(ctx context.Context, id int64) error {
	req, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.MarkAudited(ctx, id, time.Now().UTC()); err != nil {
		if errors.Is(err, errNotPending) {
			return fmt.Errorf("request %d is not pending", id)
		}
		return err
	}

	if err := s.wallets.SettleFrozen(ctx, req.UserID, req.Points, fmt.Sprintf("withdrawal %d", id)); err != nil {
		// The request is already flagged audited; the frozen deduction did
		// not land. Surfaced for manual reconciliation.
		s.logger.Error("request audited but frozen settlement failed",
			"request_id", id,
			"user_id", req.UserID,
			"points", req.Points,
			"error", err)
		return err
	}

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindWithdrawalAudited,
			Destination: fmt.Sprintf("%d", req.UserID),
			Body:        fmt.Sprintf("Withdrawal of %d settled", req.Amount),
		})
	}
	return nil
}

// Delete removes a request. Deleting a pending request restores the frozen
// points to available; deleting an audited request leaves the wallet alone
// because the payout already left the frozen pool.
func (s *Service) Delete(ctx context.Context, id int64) error {
	req, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}

	if req.Status == StatusPending {
		if err := s.wallets.Unfreeze(ctx, req.UserID, req.Points); err != nil {
			s.logger.Error("pending request deleted but unfreeze failed",
				"request_id", id,
				"user_id", req.UserID,
				"points", req.Points,
				"error", err)
			return err
		}
	}
	return nil
}

// List returns requests filtered by status, or all when status is empty.
func (s *Service) List(ctx context.Context, status string) ([]Request, error) {
	return s.repo.List(ctx, status)
}

// sanitize strips control characters and surrounding whitespace from
// free-text payee fields before they are persisted.
func sanitize(value string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, value)
	return strings.TrimSpace(cleaned)
}
