package cash

import (
	"context"
	"errors"
	"testing"

	"github.com/points-hub/points_hub/internal/ledger"
	"github.com/points-hub/points_hub/internal/logging"
	"github.com/points-hub/points_hub/internal/user"
	"github.com/points-hub/points_hub/internal/wallet"
)

var testPolicy = Policy{Enabled: true, MinAmount: 10, ExchangeRatio: 10}

type fixture struct {
	service *Service
	wallets *wallet.Service
	users   user.Repository
	log     ledger.Log
}

func newFixture(t *testing.T, policy Policy) fixture {
	t.Helper()
	users := user.NewMemoryRepository()
	log := ledger.NewInMemory()
	wallets := wallet.NewService(users, log, logging.Discard())
	svc := NewService(NewMemoryRepository(), wallets, policy, nil, logging.Discard())
	return fixture{service: svc, wallets: wallets, users: users, log: log}
}

func (f fixture) newUser(t *testing.T, available int64) int64 {
	t.Helper()
	id, err := f.users.Create(context.Background(), user.User{Username: "payee", AvailablePoints: available})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return id
}

func requestInput(userID, amount int64) RequestInput {
	return RequestInput{
		UserID:      userID,
		Amount:      amount,
		BankName:    "First Bank",
		BankAccount: "6222000011112222",
		Payee:       "A. Payee",
	}
}

func TestRequestFreezesPoints(t *testing.T) {
	f := newFixture(t, testPolicy)
	ctx := context.Background()
	userID := f.newUser(t, 1000)

	req, err := f.service.Request(ctx, requestInput(userID, 40))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if req.Points != 400 {
		t.Fatalf("expected 400 points at ratio 10, got %d", req.Points)
	}
	if req.Status != StatusPending {
		t.Fatalf("expected pending status, got %s", req.Status)
	}

	balance, _ := f.wallets.Balance(ctx, userID)
	if balance.Available != 600 || balance.Frozen != 400 {
		t.Fatalf("expected 600/400, got %d/%d", balance.Available, balance.Frozen)
	}
}

func TestRequestGates(t *testing.T) {
	ctx := context.Background()

	disabled := newFixture(t, Policy{Enabled: false, MinAmount: 10, ExchangeRatio: 10})
	userID := disabled.newUser(t, 1000)
	if _, err := disabled.service.Request(ctx, requestInput(userID, 40)); !errors.Is(err, ErrWithdrawalsDisabled) {
		t.Fatalf("expected ErrWithdrawalsDisabled, got %v", err)
	}

	f := newFixture(t, testPolicy)
	userID = f.newUser(t, 1000)

	if _, err := f.service.Request(ctx, requestInput(userID, 5)); !errors.Is(err, ErrBelowMinimum) {
		t.Fatalf("expected ErrBelowMinimum, got %v", err)
	}

	if _, err := f.service.Request(ctx, requestInput(userID, 200)); !errors.Is(err, user.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	// None of the failed gates may leave points frozen.
	balance, _ := f.wallets.Balance(ctx, userID)
	if balance.Available != 1000 || balance.Frozen != 0 {
		t.Fatalf("failed request mutated wallet: %d/%d", balance.Available, balance.Frozen)
	}

	missing := requestInput(userID, 40)
	missing.Payee = ""
	if _, err := f.service.Request(ctx, missing); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestRequestSanitizesPayeeFields(t *testing.T) {
	f := newFixture(t, testPolicy)
	ctx := context.Background()
	userID := f.newUser(t, 1000)

	input := requestInput(userID, 40)
	input.BankName = "  First\nBank\t "
	input.Payee = "A.\x00Payee"

	req, err := f.service.Request(ctx, input)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if req.BankName != "FirstBank" {
		t.Fatalf("bank name not sanitized: %q", req.BankName)
	}
	if req.Payee != "A.Payee" {
		t.Fatalf("payee not sanitized: %q", req.Payee)
	}
}

func TestAuditSettlesFrozenPoints(t *testing.T) {
	f := newFixture(t, testPolicy)
	ctx := context.Background()
	userID := f.newUser(t, 1000)

	req, err := f.service.Request(ctx, requestInput(userID, 40))
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	results := f.service.Audit(ctx, []int64{req.ID})
	if len(results) != 1 || results[0].Err != nil {
		t.Fatalf("audit failed: %+v", results)
	}

	balance, _ := f.wallets.Balance(ctx, userID)
	if balance.Available != 600 || balance.Frozen != 0 {
		t.Fatalf("expected 600/0, got %d/%d", balance.Available, balance.Frozen)
	}

	stored, _ := f.service.List(ctx, StatusAudited)
	if len(stored) != 1 || stored[0].ID != req.ID || stored[0].AuditedAt.IsZero() {
		t.Fatalf("request not audited: %+v", stored)
	}

	if n := ledger.CountByType(f.log, userID, ledger.TypeWithdrawalSettled); n != 1 {
		t.Fatalf("expected 1 withdrawal-settled entry of 400, got %d", n)
	}
}

func TestAuditIsSingleShotPerRequest(t *testing.T) {
	f := newFixture(t, testPolicy)
	ctx := context.Background()
	userID := f.newUser(t, 1000)

	req, _ := f.service.Request(ctx, requestInput(userID, 40))

	first := f.service.Audit(ctx, []int64{req.ID})
	if first[0].Err != nil {
		t.Fatalf("first audit: %v", first[0].Err)
	}

	second := f.service.Audit(ctx, []int64{req.ID})
	if second[0].Err == nil {
		t.Fatal("expected error auditing an already audited request")
	}

	balance, _ := f.wallets.Balance(ctx, userID)
	if balance.Available != 600 || balance.Frozen != 0 {
		t.Fatalf("double settlement: %d/%d", balance.Available, balance.Frozen)
	}
}

func TestAuditBatchContinuesPastFailures(t *testing.T) {
	f := newFixture(t, testPolicy)
	ctx := context.Background()
	userID := f.newUser(t, 1000)

	first, _ := f.service.Request(ctx, requestInput(userID, 30))
	second, _ := f.service.Request(ctx, requestInput(userID, 40))

	results := f.service.Audit(ctx, []int64{first.ID, 999, second.ID})
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Err != nil {
		t.Fatalf("first item failed: %v", results[0].Err)
	}
	if !errors.Is(results[1].Err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing id, got %v", results[1].Err)
	}
	if results[2].Err != nil {
		t.Fatalf("batch stopped after failure: %v", results[2].Err)
	}

	balance, _ := f.wallets.Balance(ctx, userID)
	if balance.Available != 300 || balance.Frozen != 0 {
		t.Fatalf("expected 300/0 after settling 300+400, got %d/%d", balance.Available, balance.Frozen)
	}
}

func TestDeletePendingRestoresBalance(t *testing.T) {
	f := newFixture(t, testPolicy)
	ctx := context.Background()
	userID := f.newUser(t, 1000)

	req, _ := f.service.Request(ctx, requestInput(userID, 40))

	if err := f.service.Delete(ctx, req.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	balance, _ := f.wallets.Balance(ctx, userID)
	if balance.Available != 1000 || balance.Frozen != 0 {
		t.Fatalf("expected exactly 1000/0 restored, got %d/%d", balance.Available, balance.Frozen)
	}

	if err := f.service.Delete(ctx, req.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on repeat delete, got %v", err)
	}
}

func TestDeleteAuditedLeavesWalletAlone(t *testing.T) {
	f := newFixture(t, testPolicy)
	ctx := context.Background()
	userID := f.newUser(t, 1000)

	req, _ := f.service.Request(ctx, requestInput(userID, 40))
	if results := f.service.Audit(ctx, []int64{req.ID}); results[0].Err != nil {
		t.Fatalf("audit: %v", results[0].Err)
	}

	if err := f.service.Delete(ctx, req.ID); err != nil {
		t.Fatalf("delete audited: %v", err)
	}

	balance, _ := f.wallets.Balance(ctx, userID)
	if balance.Available != 600 || balance.Frozen != 0 {
		t.Fatalf("audited delete touched wallet: %d/%d", balance.Available, balance.Frozen)
	}
}
