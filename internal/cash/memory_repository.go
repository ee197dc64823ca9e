package cash

import (
	"context"
	"sync"
	"time"
)

type memoryRepository struct {
	mu       sync.RWMutex
	nextID   int64
	requests map[int64]Request
}

// NewMemoryRepository constructs an in-memory cash repository for tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{nextID: 1, requests: make(map[int64]Request)}
}

func (r *memoryRepository) Create(_ context.Context, req Request) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req.ID = r.nextID
	r.nextID++
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}
	r.requests[req.ID] = req
	return req.ID, nil
}

func (r *memoryRepository) Get(_ context.Context, id int64) (Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	req, ok := r.requests[id]
	if !ok {
		return Request{}, ErrNotFound
	}
	return req, nil
}

func (r *memoryRepository) MarkAudited(_ context.Context, id int64, auditedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.requests[id]
	if !ok || req.Status != StatusPending {
		return errNotPending
	}
	req.Status = StatusAudited
	req.AuditedAt = auditedAt.UTC()
	r.requests[id] = req
	return nil
}

func (r *memoryRepository) Delete(_ context.Context, id int64) (Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.requests[id]
	if !ok {
		return Request{}, ErrNotFound
	}
	delete(r.requests, id)
	return req, nil
}

func (r *memoryRepository) List(_ context.Context, status string) ([]Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Request
	for id := int64(1); id < r.nextID; id++ {
		req, ok := r.requests[id]
		if !ok {
			continue
		}
		if status == "" || req.Status == status {
			out = append(out, req)
		}
	}
	return out, nil
}
