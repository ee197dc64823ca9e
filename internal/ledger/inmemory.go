package ledger

import (
	"context"
	"sync"
	"time"
)

type inMemoryLog struct {
	mu      sync.RWMutex
	nextID  int64
	entries []Entry
}

// NewInMemory creates a concurrency-safe in-memory point log useful for unit tests.
func NewInMemory() Log {
	return &inMemoryLog{nextID: 1}
}

func (l *inMemoryLog) Append(_ context.Context, entry Entry) (int64, error) {
	if entry.UserID == 0 || entry.Type == "" || entry.Points <= 0 {
		return 0, ErrInvalidEntry
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	entry.ID = l.nextID
	l.nextID++
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	l.entries = append(l.entries, entry)
	return entry.ID, nil
}

func (l *inMemoryLog) ListByUser(_ context.Context, userID int64) ([]Entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []Entry
	for i := len(l.entries) - 1; i >= 0; i-- {
		if l.entries[i].UserID == userID {
			out = append(out, l.entries[i])
		}
	}
	return out, nil
}

func (l *inMemoryLog) Delete(_ context.Context, id int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, e := range l.entries {
		if e.ID == id {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			return nil
		}
	}
	return ErrEntryNotFound
}
