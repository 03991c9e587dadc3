package workers

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	memoryevents "github.com/enrolld/enrolld/pkg/adapters/events/memory"
	memoryjournal "github.com/enrolld/enrolld/pkg/adapters/journal/memory"
	"github.com/enrolld/enrolld/pkg/domain"
)

type stubMetrics struct {
	mu        sync.Mutex
	processed map[string]int
}

func newStubMetrics() *stubMetrics {
	return &stubMetrics{processed: make(map[string]int)}
}

func (m *stubMetrics) RecordRegistration(placement string)                                 {}
func (m *stubMetrics) RecordRelease(outcome string)                                        {}
func (m *stubMetrics) RecordUndo(action string)                                            {}
func (m *stubMetrics) RecordRejection(kind string)                                         {}
func (m *stubMetrics) SetActivityDepths(activity string, admitted, pending, waitlist int)  {}
func (m *stubMetrics) RemoveActivity(activity string)                                      {}
func (m *stubMetrics) RecordWorkerPoolStatus(idle, busy, stopped int)                      {}
func (m *stubMetrics) ObserveHTTPRequest(method, path string, status int, d time.Duration) {}

func (m *stubMetrics) RecordEventProcessed(eventType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.processed[eventType]++
}

func (m *stubMetrics) processedTotal() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.processed {
		total += n
	}
	return total
}

func TestPoolJournalsPublishedEvents(t *testing.T) {
	bus := memoryevents.NewInMemoryEventBus()
	journal := memoryjournal.NewJournal(16)
	metrics := newStubMetrics()
	pool := NewPool(2, bus, journal, metrics, zap.NewNop(), time.Hour)
	ctx := context.Background()

	require.NoError(t, pool.Start())
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		require.NoError(t, pool.Shutdown(shutdownCtx))
	}()

	for i := 1; i <= 3; i++ {
		event := domain.Event{
			ID:   fmt.Sprintf("ev-%d", i),
			Type: domain.EventTypeRegistrationAdmitted,
		}
		require.NoError(t, bus.Publish(ctx, "enrollment.events", event))
	}

	require.Eventually(t, func() bool {
		size, err := journal.Size(ctx)
		return err == nil && size == 3
	}, 2*time.Second, 10*time.Millisecond)

	events, err := journal.Recent(ctx, 3)
	require.NoError(t, err)
	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	// Workers drain a shared queue, so journal order is not deterministic.
	require.ElementsMatch(t, []string{"ev-1", "ev-2", "ev-3"}, ids)

	require.Eventually(t, func() bool {
		return metrics.processedTotal() == 3
	}, 2*time.Second, 10*time.Millisecond)
}

func TestPoolJournalsEachEventOnce(t *testing.T) {
	bus := memoryevents.NewInMemoryEventBus()
	journal := memoryjournal.NewJournal(16)
	pool := NewPool(3, bus, journal, newStubMetrics(), zap.NewNop(), time.Hour)
	ctx := context.Background()

	require.NoError(t, pool.Start())
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		require.NoError(t, pool.Shutdown(shutdownCtx))
	}()

	require.NoError(t, bus.Publish(ctx, "enrollment.events", domain.Event{ID: "ev-1"}))

	require.Eventually(t, func() bool {
		size, err := journal.Size(ctx)
		return err == nil && size == 1
	}, 2*time.Second, 10*time.Millisecond)

	// Three workers share one subscription; the event must not be journaled
	// again by the other two.
	require.Never(t, func() bool {
		size, err := journal.Size(ctx)
		return err != nil || size != 1
	}, 200*time.Millisecond, 20*time.Millisecond)
}

func TestEnqueueDropsWhenQueueFull(t *testing.T) {
	bus := memoryevents.NewInMemoryEventBus()
	pool := NewPool(1, bus, memoryjournal.NewJournal(16), newStubMetrics(), zap.NewNop(), time.Hour)
	ctx := context.Background()

	// Workers are not started, so nothing drains the queue.
	for i := 0; i < cap(pool.jobs); i++ {
		require.NoError(t, pool.enqueue(ctx, domain.Event{ID: fmt.Sprintf("ev-%d", i)}))
	}

	err := pool.enqueue(ctx, domain.Event{ID: "overflow"})
	require.ErrorContains(t, err, "worker queue full")
}

func TestShutdownStopsAllWorkers(t *testing.T) {
	bus := memoryevents.NewInMemoryEventBus()
	pool := NewPool(2, bus, memoryjournal.NewJournal(16), newStubMetrics(), zap.NewNop(), time.Hour)

	require.NoError(t, pool.Start())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, pool.Shutdown(shutdownCtx))

	for id, status := range pool.GetStatus() {
		require.Equal(t, WorkerStatusStopped, status, "worker %s", id)
	}
}

func TestHealthStatusCountsWorkers(t *testing.T) {
	bus := memoryevents.NewInMemoryEventBus()
	pool := NewPool(2, bus, memoryjournal.NewJournal(16), newStubMetrics(), zap.NewNop(), time.Hour)

	require.NoError(t, pool.Start())

	status := pool.health.GetStatus()
	require.Equal(t, 2, status.TotalWorkers)
	require.Equal(t, 2, status.IdleWorkers)
	require.Equal(t, 0, status.StoppedWorkers)
	require.Equal(t, 0, status.QueueDepth)
	require.True(t, status.Healthy)
	require.True(t, pool.health.IsHealthy())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, pool.Shutdown(shutdownCtx))

	status = pool.health.GetStatus()
	require.Equal(t, 2, status.StoppedWorkers)
	require.False(t, status.Healthy)
}
