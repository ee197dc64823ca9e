package card

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/points-hub/points_hub/internal/ledger"
	"github.com/points-hub/points_hub/internal/wallet"
)

const (
	numberLength   = 16
	passwordLength = 8
	maxBatchSize   = 1000
)

var (
	// ErrInvalidInput indicates a missing card number, password or user.
	ErrInvalidInput = errors.New("card number, password and user are required")

	// ErrCardNotFound covers a wrong number, a wrong password and an already
	// redeemed card alike, so redemption attempts cannot be used as a
	// password-guessing oracle.
	ErrCardNotFound = errors.New("card not found or already used")

	// ErrBalanceUpdateFailed indicates the wallet credit was rejected; the
	// card is still unused.
	ErrBalanceUpdateFailed = errors.New("balance update failed")

	// ErrCardStateUpdateFailed indicates the wallet was credited but the card
	// could not be flagged used. The card stays redeemable and needs manual
	// reconciliation.
	ErrCardStateUpdateFailed = errors.New("card state update failed")

	// ErrInvalidBatch rejects malformed generation requests.
	ErrInvalidBatch = errors.New("invalid card batch parameters")
)

// Service converts prepaid cards into wallet credits and manages card batches.
type Service struct {
	repo    Repository
	wallets *wallet.Service
	logger  *slog.Logger
}

// NewService builds a card service instance.
func NewService(repo Repository, wallets *wallet.Service, logger *slog.Logger) *Service {
	return &Service{repo: repo, wallets: wallets, logger: logger}
}

// RedeemInput captures a redemption attempt.
type RedeemInput struct {
	Number   string
	Password string
	UserID   int64
}

// RedeemResult reports the points granted by a successful redemption.
type RedeemResult struct {
	Points int64
}

// Redeem converts one prepaid card into a one-time wallet credit.
//
// Order of operations: credit first, then flag the card used. A credit
// failure leaves the card untouched; a flagging failure leaves the wallet
// credited and the card unused, which is surfaced as ErrCardStateUpdateFailed
// rather than rolled back.
func (s *Service) Redeem(ctx context.Context, input RedeemInput) (RedeemResult, error) {
	if input.Number == "" || input.Password == "" || input.UserID == 0 {
		return RedeemResult{}, ErrInvalidInput
	}

	c, err := s.repo.FindUnused(ctx, input.Number)
	if err != nil {
		if errors.Is(err, errNoUnusedCard) {
			return RedeemResult{}, ErrCardNotFound
		}
		return RedeemResult{}, err
	}
	if bcrypt.CompareHashAndPassword(c.PasswordHash, []byte(input.Password)) != nil {
		return RedeemResult{}, ErrCardNotFound
	}

	err = s.wallets.Credit(ctx, wallet.CreditInput{
		UserID: input.UserID,
		Points: c.Points,
		Type:   ledger.TypeTopUpCard,
		Remark: fmt.Sprintf("card %s", c.Number),
	})
	if err != nil {
		return RedeemResult{}, fmt.Errorf("%w: %v", ErrBalanceUpdateFailed, err)
	}

	if err := s.repo.MarkUsed(ctx, c.ID, input.UserID, time.Now().UTC()); err != nil {
		s.logger.Error("card credited but not flagged used",
			"card_id", c.ID,
			"user_id", input.UserID,
			"points", c.Points,
			"error", err)
		return RedeemResult{}, ErrCardStateUpdateFailed
	}

	return RedeemResult{Points: c.Points}, nil
}

// GenerateInput describes a card batch to create.
type GenerateInput struct {
	Count     int
	FaceValue int64
	Points    int64
}

// Generate creates a batch of cards with collision-free numbers and returns
// the plaintext credentials for distribution. Only the bcrypt hash of each
// password is persisted.
func (s *Service) Generate(ctx context.Context, input GenerateInput) ([]IssuedCard, error) {
	if input.Count <= 0 || input.Count > maxBatchSize || input.FaceValue <= 0 || input.Points <= 0 {
		return nil, ErrInvalidBatch
	}

	now := time.Now().UTC()
	issued := make([]IssuedCard, 0, input.Count)
	cards := make([]Card, 0, input.Count)
	seen := make(map[string]bool, input.Count)

	for len(cards) < input.Count {
		number, err := randomDigits(numberLength)
		if err != nil {
			return nil, err
		}
		if seen[number] {
			continue
		}
		seen[number] = true

		password, err := randomDigits(passwordLength)
		if err != nil {
			return nil, err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}

		cards = append(cards, Card{
			Number:       number,
			PasswordHash: hash,
			FaceValue:    input.FaceValue,
			Points:       input.Points,
			SaleStatus:   SaleStatusUnsold,
			UseStatus:    UseStatusUnused,
			CreatedAt:    now,
		})
		issued = append(issued, IssuedCard{
			Number:    number,
			Password:  password,
			FaceValue: input.FaceValue,
			Points:    input.Points,
		})
	}

	if err := s.repo.CreateBatch(ctx, cards); err != nil {
		return nil, err
	}
	return issued, nil
}

// Delete removes a card in any state. Redeemed credits are never rolled back.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// List returns all cards for admin auditing.
func (s *Service) List(ctx context.Context) ([]Card, error) {
	return s.repo.List(ctx)
}

func randomDigits(n int) (string, error) {
	ten := big.NewInt(10)
	out := make([]byte, n)
	for i := range out {
		d, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		out[i] = byte('0' + d.Int64())
	}
	return string(out), nil
}
