package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/points-hub/points_hub/internal/ledger"
	"github.com/points-hub/points_hub/internal/notification"
	"github.com/points-hub/points_hub/internal/user"
	"github.com/points-hub/points_hub/internal/wallet"
)

var (
	// ErrInvalidInput indicates a missing order code or payment method.
	ErrInvalidInput = errors.New("order code and payment method are required")

	// ErrOrderNotFound indicates no order exists for the given code.
	ErrOrderNotFound = errors.New("order not found")

	// ErrOrderUpdateFailed indicates the order could not be flagged paid; the
	// wallet was not touched.
	ErrOrderUpdateFailed = errors.New("order update failed")

	// ErrWalletUpdateFailed indicates the order was flagged paid but the
	// wallet credit was rejected. A retried callback will hit the idempotency
	// gate and skip the credit, so this state needs manual reconciliation.
	ErrWalletUpdateFailed = errors.New("wallet update failed")

	// ErrGatewayRejected indicates the payment gateway refused the callback.
	ErrGatewayRejected = errors.New("payment gateway rejected notification")
)

// Service settles top-up orders from external payment callbacks.
type Service struct {
	repo     Repository
	users    user.Repository
	wallets  *wallet.Service
	gateway  Gateway
	notifier notification.Notifier
	logger   *slog.Logger
}

// NewService constructs an order service. A nil gateway falls back to the
// static connector.
func NewService(repo Repository, users user.Repository, wallets *wallet.Service, gateway Gateway, notifier notification.Notifier, logger *slog.Logger) *Service {
	if gateway == nil {
		gateway = StaticGateway{}
	}
	return &Service{repo: repo, users: users, wallets: wallets, gateway: gateway, notifier: notifier, logger: logger}
}

// CreateInput captures a top-up initiation.
type CreateInput struct {
	UserID int64
	Amount int64
	Points int64
}

// Create opens a new unpaid order with a fresh correlation code.
func (s *Service) Create(ctx context.Context, input CreateInput) (Order, error) {
	if input.UserID == 0 || input.Amount <= 0 || input.Points <= 0 {
		return Order{}, ErrInvalidInput
	}
	if _, err := s.users.Get(ctx, input.UserID); err != nil {
		return Order{}, err
	}

	o := Order{
		Code:      uuid.NewString(),
		UserID:    input.UserID,
		Status:    StatusUnpaid,
		Amount:    input.Amount,
		Points:    input.Points,
		CreatedAt: time.Now().UTC(),
	}
	id, err := s.repo.Create(ctx, o)
	if err != nil {
		return Order{}, err
	}
	o.ID = id
	return o, nil
}

// NotifyResult reports the outcome of a settlement notification.
type NotifyResult struct {
	AlreadyPaid bool
	Points      int64
}

// Notify settles a confirmed payment. Safe to retry or duplicate-deliver: an
// already paid order short-circuits to success without touching the wallet.
func (s *Service) Notify(ctx context.Context, code, payMethod string) (NotifyResult, error) {
	if code == "" || payMethod == "" {
		return NotifyResult{}, ErrInvalidInput
	}

	o, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return NotifyResult{}, err
	}

	// Idempotency gate: a duplicate callback for a settled order is a no-op
	// that still reports success.
	if o.Status == StatusPaid {
		return NotifyResult{AlreadyPaid: true, Points: o.Points}, nil
	}

	if _, err := s.users.Get(ctx, o.UserID); err != nil {
		return NotifyResult{}, err
	}

	decision, err := s.gateway.VerifyNotify(ctx, Notification{OrderCode: code, PayMethod: payMethod})
	if err != nil {
		return NotifyResult{}, fmt.Errorf("%w: %v", ErrGatewayRejected, err)
	}

	if err := s.repo.MarkPaid(ctx, o.ID, payMethod, time.Now().UTC()); err != nil {
		if errors.Is(err, errAlreadyPaid) {
			// Lost the race to a concurrent callback; the winner credits.
			return NotifyResult{AlreadyPaid: true, Points: o.Points}, nil
		}
		return NotifyResult{}, fmt.Errorf("%w: %v", ErrOrderUpdateFailed, err)
	}

	err = s.wallets.Credit(ctx, wallet.CreditInput{
		UserID: o.UserID,
		Points: o.Points,
		Type:   ledger.TypeTopUpPayment,
		Remark: fmt.Sprintf("order %s via %s", o.Code, payMethod),
	})
	if err != nil {
		// The order is already flagged paid, so a retried callback will hit
		// the idempotency gate and skip this credit. Surfaced, not hidden.
		s.logger.Error("order paid but wallet credit failed",
			"order_code", o.Code,
			"user_id", o.UserID,
			"points", o.Points,
			"gateway_ref", decision.Reference,
			"error", err)
		return NotifyResult{}, fmt.Errorf("%w: %v", ErrWalletUpdateFailed, err)
	}

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindTopUp,
			Destination: fmt.Sprintf("%d", o.UserID),
			Body:        fmt.Sprintf("Top-up of %d points settled for order %s", o.Points, o.Code),
		})
	}

	return NotifyResult{Points: o.Points}, nil
}
