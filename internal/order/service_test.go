package order

import (
	"context"
	"errors"
	"testing"

	"github.com/points-hub/points_hub/internal/ledger"
	"github.com/points-hub/points_hub/internal/logging"
	"github.com/points-hub/points_hub/internal/user"
	"github.com/points-hub/points_hub/internal/wallet"
)

type fixture struct {
	service *Service
	wallets *wallet.Service
	users   user.Repository
	log     ledger.Log
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	users := user.NewMemoryRepository()
	log := ledger.NewInMemory()
	wallets := wallet.NewService(users, log, logging.Discard())
	svc := NewService(NewMemoryRepository(), users, wallets, StaticGateway{}, nil, logging.Discard())
	return fixture{service: svc, wallets: wallets, users: users, log: log}
}

func (f fixture) newUser(t *testing.T) int64 {
	t.Helper()
	id, err := f.users.Create(context.Background(), user.User{Username: "buyer"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return id
}

func (f fixture) newOrder(t *testing.T, userID, amount, points int64) Order {
	t.Helper()
	o, err := f.service.Create(context.Background(), CreateInput{UserID: userID, Amount: amount, Points: points})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	return o
}

func TestNotifySettlesOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := f.newUser(t)
	o := f.newOrder(t, userID, 100, 1000)

	result, err := f.service.Notify(ctx, o.Code, "alipay")
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if result.AlreadyPaid || result.Points != 1000 {
		t.Fatalf("unexpected result: %+v", result)
	}

	balance, _ := f.wallets.Balance(ctx, userID)
	if balance.Available != 1000 {
		t.Fatalf("expected available 1000, got %d", balance.Available)
	}
	if n := ledger.CountByType(f.log, userID, ledger.TypeTopUpPayment); n != 1 {
		t.Fatalf("expected 1 top-up-payment entry, got %d", n)
	}
}

func TestNotifyIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := f.newUser(t)
	o := f.newOrder(t, userID, 100, 1000)

	if _, err := f.service.Notify(ctx, o.Code, "alipay"); err != nil {
		t.Fatalf("first notify: %v", err)
	}

	result, err := f.service.Notify(ctx, o.Code, "alipay")
	if err != nil {
		t.Fatalf("second notify: %v", err)
	}
	if !result.AlreadyPaid {
		t.Fatal("expected already-paid result on duplicate callback")
	}

	balance, _ := f.wallets.Balance(ctx, userID)
	if balance.Available != 1000 {
		t.Fatalf("wallet credited twice: %d", balance.Available)
	}
	if n := ledger.CountByType(f.log, userID, ledger.TypeTopUpPayment); n != 1 {
		t.Fatalf("expected exactly 1 entry, got %d", n)
	}
}

func TestNotifyValidatesInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.service.Notify(ctx, "", "alipay"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty code, got %v", err)
	}
	if _, err := f.service.Notify(ctx, "some-code", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty method, got %v", err)
	}
	if _, err := f.service.Notify(ctx, "missing-code", "alipay"); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestNotifyUnknownUserAbortsBeforeMarkingPaid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := f.newUser(t)
	o := f.newOrder(t, userID, 100, 1000)

	// Simulate the owning user disappearing between order creation and the
	// callback by pointing the order at a missing id.
	repo := f.service.repo.(*memoryRepository)
	repo.mu.Lock()
	stored := repo.orders[o.ID]
	stored.UserID = 999
	repo.orders[o.ID] = stored
	repo.mu.Unlock()

	if _, err := f.service.Notify(ctx, o.Code, "alipay"); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("expected user.ErrNotFound, got %v", err)
	}

	refetched, _ := f.service.repo.FindByCode(ctx, o.Code)
	if refetched.Status != StatusUnpaid {
		t.Fatalf("order mutated despite missing user: %s", refetched.Status)
	}
}

func TestCreateValidatesInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := f.newUser(t)

	cases := []CreateInput{
		{Amount: 100, Points: 1000},
		{UserID: userID, Points: 1000},
		{UserID: userID, Amount: 100},
	}
	for i, input := range cases {
		if _, err := f.service.Create(ctx, input); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("case %d: expected ErrInvalidInput, got %v", i, err)
		}
	}

	if _, err := f.service.Create(ctx, CreateInput{UserID: 999, Amount: 100, Points: 1000}); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("expected user.ErrNotFound, got %v", err)
	}
}
