// Package memory provides the in-memory event journal.
package memory

import (
	"context"
	"sync"

	"github.com/enrolld/enrolld/pkg/domain"
)

// Journal keeps the most recent events in a bounded slice. When full, each
// append drops the oldest entry.
type Journal struct {
	mu       sync.RWMutex
	capacity int
	events   []domain.Event
}

func NewJournal(capacity int) *Journal {
	if capacity < 1 {
		capacity = 1
	}
	return &Journal{
		capacity: capacity,
		events:   make([]domain.Event, 0, capacity),
	}
}

func (j *Journal) Append(ctx context.Context, event domain.Event) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if len(j.events) == j.capacity {
		copy(j.events, j.events[1:])
		j.events[len(j.events)-1] = event
		return nil
	}
	j.events = append(j.events, event)
	return nil
}

// Recent returns up to n events, newest first.
func (j *Journal) Recent(ctx context.Context, n int) ([]domain.Event, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if n > len(j.events) {
		n = len(j.events)
	}
	if n <= 0 {
		return nil, nil
	}
	out := make([]domain.Event, n)
	for i := 0; i < n; i++ {
		out[i] = j.events[len(j.events)-1-i]
	}
	return out, nil
}

func (j *Journal) Size(ctx context.Context) (int, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.events), nil
}
