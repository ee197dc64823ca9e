package user

import (
	"context"
	"sync"
	"time"
)

type memoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]User
}

// NewMemoryRepository constructs an in-memory repository for tests. Balance
// deltas are applied under the repository mutex so concurrent settlements
// observe the same guard semantics as the conditional SQL updates.
func NewMemoryRepository() Repository {
	return &memoryRepository{nextID: 1, users: make(map[int64]User)}
}

func (r *memoryRepository) Create(_ context.Context, u User) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u.ID = r.nextID
	r.nextID++
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	r.users[u.ID] = u
	return u.ID, nil
}

func (r *memoryRepository) Get(_ context.Context, id int64) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (r *memoryRepository) AddAvailable(_ context.Context, id, points int64) error {
	if points <= 0 {
		return ErrInvalidPoints
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	u.AvailablePoints += points
	r.users[id] = u
	return nil
}

func (r *memoryRepository) MoveToFrozen(_ context.Context, id, points int64) error {
	if points <= 0 {
		return ErrInvalidPoints
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	if u.AvailablePoints < points {
		return ErrInsufficientBalance
	}
	u.AvailablePoints -= points
	u.FrozenPoints += points
	r.users[id] = u
	return nil
}

func (r *memoryRepository) MoveToAvailable(_ context.Context, id, points int64) error {
	if points <= 0 {
		return ErrInvalidPoints
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	if u.FrozenPoints < points {
		return ErrInsufficientFrozen
	}
	u.FrozenPoints -= points
	u.AvailablePoints += points
	r.users[id] = u
	return nil
}

func (r *memoryRepository) DeductFrozen(_ context.Context, id, points int64) error {
	if points <= 0 {
		return ErrInvalidPoints
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	if u.FrozenPoints < points {
		return ErrInsufficientFrozen
	}
	u.FrozenPoints -= points
	r.users[id] = u
	return nil
}
