package wallet

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/points-hub/points_hub/internal/ledger"
	"github.com/points-hub/points_hub/internal/logging"
	"github.com/points-hub/points_hub/internal/user"
)

func newTestService(t *testing.T) (*Service, user.Repository, ledger.Log) {
	t.Helper()
	users := user.NewMemoryRepository()
	log := ledger.NewInMemory()
	return NewService(users, log, logging.Discard()), users, log
}

func seedUser(t *testing.T, users user.Repository, available int64) int64 {
	t.Helper()
	id, err := users.Create(context.Background(), user.User{Username: "tester", AvailablePoints: available})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return id
}

func TestCreditAppendsEntry(t *testing.T) {
	svc, users, log := newTestService(t)
	ctx := context.Background()
	id := seedUser(t, users, 0)

	err := svc.Credit(ctx, CreditInput{UserID: id, Points: 50, Type: ledger.TypeTopUpCard, Remark: "card 1111222233334444"})
	if err != nil {
		t.Fatalf("credit: %v", err)
	}

	balance, err := svc.Balance(ctx, id)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance.Available != 50 || balance.Frozen != 0 {
		t.Fatalf("expected 50/0, got %d/%d", balance.Available, balance.Frozen)
	}

	entries, err := log.ListByUser(ctx, id)
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != 1 || entries[0].Type != ledger.TypeTopUpCard || entries[0].Points != 50 {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestCreditRejectsNonPositivePoints(t *testing.T) {
	svc, users, log := newTestService(t)
	ctx := context.Background()
	id := seedUser(t, users, 100)

	for _, points := range []int64{0, -10} {
		err := svc.Credit(ctx, CreditInput{UserID: id, Points: points, Type: ledger.TypeTopUpCard})
		if !errors.Is(err, user.ErrInvalidPoints) {
			t.Fatalf("points=%d: expected ErrInvalidPoints, got %v", points, err)
		}
	}

	balance, _ := svc.Balance(ctx, id)
	if balance.Available != 100 {
		t.Fatalf("expected balance unchanged at 100, got %d", balance.Available)
	}
	if entries, _ := log.ListByUser(ctx, id); len(entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(entries))
	}
}

func TestFreezeMovesWithoutChangingTotal(t *testing.T) {
	svc, users, _ := newTestService(t)
	ctx := context.Background()
	id := seedUser(t, users, 1000)

	if err := svc.Freeze(ctx, id, 400); err != nil {
		t.Fatalf("freeze: %v", err)
	}

	balance, _ := svc.Balance(ctx, id)
	if balance.Available != 600 || balance.Frozen != 400 {
		t.Fatalf("expected 600/400, got %d/%d", balance.Available, balance.Frozen)
	}
	if balance.Available+balance.Frozen != 1000 {
		t.Fatalf("total claim changed: %d", balance.Available+balance.Frozen)
	}
}

func TestFreezeInsufficientLeavesWalletUnchanged(t *testing.T) {
	svc, users, _ := newTestService(t)
	ctx := context.Background()
	id := seedUser(t, users, 300)

	err := svc.Freeze(ctx, id, 400)
	if !errors.Is(err, user.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	balance, _ := svc.Balance(ctx, id)
	if balance.Available != 300 || balance.Frozen != 0 {
		t.Fatalf("wallet mutated on failed freeze: %d/%d", balance.Available, balance.Frozen)
	}
}

func TestUnfreezeRestoresAvailable(t *testing.T) {
	svc, users, _ := newTestService(t)
	ctx := context.Background()
	id := seedUser(t, users, 500)

	if err := svc.Freeze(ctx, id, 200); err != nil {
		t.Fatalf("freeze: %v", err)
	}
	if err := svc.Unfreeze(ctx, id, 200); err != nil {
		t.Fatalf("unfreeze: %v", err)
	}

	balance, _ := svc.Balance(ctx, id)
	if balance.Available != 500 || balance.Frozen != 0 {
		t.Fatalf("expected 500/0, got %d/%d", balance.Available, balance.Frozen)
	}

	if err := svc.Unfreeze(ctx, id, 1); !errors.Is(err, user.ErrInsufficientFrozen) {
		t.Fatalf("expected ErrInsufficientFrozen, got %v", err)
	}
}

func TestSettleFrozenReducesTotalAndLogs(t *testing.T) {
	svc, users, log := newTestService(t)
	ctx := context.Background()
	id := seedUser(t, users, 1000)

	if err := svc.Freeze(ctx, id, 400); err != nil {
		t.Fatalf("freeze: %v", err)
	}
	if err := svc.SettleFrozen(ctx, id, 400, "withdrawal 1"); err != nil {
		t.Fatalf("settle frozen: %v", err)
	}

	balance, _ := svc.Balance(ctx, id)
	if balance.Available != 600 || balance.Frozen != 0 {
		t.Fatalf("expected 600/0, got %d/%d", balance.Available, balance.Frozen)
	}

	if n := ledger.CountByType(log, id, ledger.TypeWithdrawalSettled); n != 1 {
		t.Fatalf("expected 1 withdrawal-settled entry, got %d", n)
	}
}

func TestConservationAcrossMixedSequence(t *testing.T) {
	svc, users, _ := newTestService(t)
	ctx := context.Background()
	id := seedUser(t, users, 250)

	// credits add 300, one settled withdrawal removes 100, the remaining
	// freeze/unfreeze pairs are net-zero moves.
	steps := []func() error{
		func() error { return svc.Credit(ctx, CreditInput{UserID: id, Points: 200, Type: ledger.TypeTopUpCard}) },
		func() error { return svc.Freeze(ctx, id, 150) },
		func() error { return svc.Unfreeze(ctx, id, 50) },
		func() error { return svc.Credit(ctx, CreditInput{UserID: id, Points: 100, Type: ledger.TypeTopUpPayment}) },
		func() error { return svc.SettleFrozen(ctx, id, 100, "payout") },
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	balance, _ := svc.Balance(ctx, id)
	total := balance.Available + balance.Frozen
	if want := int64(250 + 200 + 100 - 100); total != want {
		t.Fatalf("conservation violated: total %d, want %d", total, want)
	}
	if balance.Available < 0 || balance.Frozen < 0 {
		t.Fatalf("negative balance: %d/%d", balance.Available, balance.Frozen)
	}
}

func TestConcurrentFreezesNeverOverFreeze(t *testing.T) {
	svc, users, _ := newTestService(t)
	ctx := context.Background()
	id := seedUser(t, users, 1000)

	const workers = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := svc.Freeze(ctx, id, 100); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if succeeded != 10 {
		t.Fatalf("expected exactly 10 freezes of 100 against 1000 points, got %d", succeeded)
	}

	balance, _ := svc.Balance(ctx, id)
	if balance.Available != 0 || balance.Frozen != 1000 {
		t.Fatalf("expected 0/1000, got %d/%d", balance.Available, balance.Frozen)
	}
}
