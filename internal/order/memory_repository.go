package order

import (
	"context"
	"sync"
	"time"
)

type memoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	orders map[int64]Order
	byCode map[string]int64
}

// NewMemoryRepository constructs an in-memory order repository for tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{nextID: 1, orders: make(map[int64]Order), byCode: make(map[string]int64)}
}

func (r *memoryRepository) Create(_ context.Context, o Order) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o.ID = r.nextID
	r.nextID++
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	r.orders[o.ID] = o
	r.byCode[o.Code] = o.ID
	return o.ID, nil
}

func (r *memoryRepository) FindByCode(_ context.Context, code string) (Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byCode[code]
	if !ok {
		return Order{}, ErrOrderNotFound
	}
	return r.orders[id], nil
}

func (r *memoryRepository) MarkPaid(_ context.Context, id int64, method string, paidAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok || o.Status != StatusUnpaid {
		return errAlreadyPaid
	}
	o.Status = StatusPaid
	o.PayMethod = method
	o.PaidAt = paidAt.UTC()
	r.orders[id] = o
	return nil
}
