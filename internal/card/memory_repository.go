package card

import (
	"context"
	"sync"
	"time"
)

type memoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	cards  map[int64]Card
}

// NewMemoryRepository constructs an in-memory card repository for tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{nextID: 1, cards: make(map[int64]Card)}
}

func (r *memoryRepository) CreateBatch(_ context.Context, cards []Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range cards {
		c.ID = r.nextID
		r.nextID++
		r.cards[c.ID] = c
	}
	return nil
}

func (r *memoryRepository) FindUnused(_ context.Context, number string) (Card, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.cards {
		if c.Number == number && c.UseStatus == UseStatusUnused {
			return c, nil
		}
	}
	return Card{}, errNoUnusedCard
}

func (r *memoryRepository) MarkUsed(_ context.Context, id, userID int64, usedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.cards[id]
	if !ok || c.UseStatus != UseStatusUnused {
		return errAlreadyUsed
	}
	c.SaleStatus = SaleStatusSold
	c.UseStatus = UseStatusUsed
	c.UsedBy = userID
	c.UsedAt = usedAt.UTC()
	r.cards[id] = c
	return nil
}

func (r *memoryRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.cards[id]; !ok {
		return ErrCardNotFound
	}
	delete(r.cards, id)
	return nil
}

func (r *memoryRepository) List(_ context.Context) ([]Card, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Card, 0, len(r.cards))
	for id := r.nextID - 1; id >= 1; id-- {
		if c, ok := r.cards[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}
