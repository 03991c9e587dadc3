// Package ports defines the interfaces between the enrollment core and its
// adapters:
//
//   - EventBus: publish/subscribe transport for enrollment events
//   - EntityStore: identity-keyed participant and activity records
//   - Journal: bounded record of observed events, for operators
//   - MetricsCollector: operational counters, gauges, and histograms
package ports

import (
	"context"
	"time"

	"github.com/enrolld/enrolld/pkg/domain"
)

// EventHandler processes a single event. Returning an error tells the bus
// the delivery failed; whether that is retried depends on the backend.
type EventHandler func(ctx context.Context, event domain.Event) error

// EventBus carries enrollment events from the manager to its observers.
type EventBus interface {
	// Publish sends an event to every subscriber of the topic.
	Publish(ctx context.Context, topic string, event domain.Event) error

	// Subscribe registers a handler for a topic. The subscription lives
	// until ctx is cancelled.
	Subscribe(ctx context.Context, topic string, handler EventHandler) error

	// Close releases bus resources.
	Close() error
}

// EntityStore keeps participant and activity records. Implementations hold
// everything in memory; enrollment state is never serialized.
type EntityStore interface {
	PutParticipant(ctx context.Context, p *domain.Participant) error
	Participant(ctx context.Context, id string) (*domain.Participant, error)
	Participants(ctx context.Context) ([]*domain.Participant, error)
	DeleteParticipant(ctx context.Context, id string) error

	PutActivity(ctx context.Context, a *domain.Activity) error
	Activity(ctx context.Context, title string) (*domain.Activity, error)
	Activities(ctx context.Context) ([]*domain.Activity, error)
	DeleteActivity(ctx context.Context, title string) error
}

// Journal keeps the most recent events for inspection. It is bounded and
// observational: nothing reads it back to rebuild enrollment state.
type Journal interface {
	Append(ctx context.Context, event domain.Event) error

	// Recent returns up to n events, newest first.
	Recent(ctx context.Context, n int) ([]domain.Event, error)

	Size(ctx context.Context) (int, error)
}

// MetricsCollector records operational metrics.
type MetricsCollector interface {
	RecordRegistration(placement string)
	RecordRelease(outcome string)
	RecordUndo(action string)
	RecordRejection(kind string)

	// SetActivityDepths updates the per-activity admitted, pending, and
	// waitlist gauges. RemoveActivity drops the gauges for an activity
	// whose creation was undone.
	SetActivityDepths(activity string, admitted, pending, waitlist int)
	RemoveActivity(activity string)

	RecordEventProcessed(eventType string)
	RecordWorkerPoolStatus(idle, busy, stopped int)
	ObserveHTTPRequest(method, path string, status int, duration time.Duration)
}
