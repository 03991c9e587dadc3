package registrar

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/enrolld/enrolld/pkg/domain"
	"github.com/enrolld/enrolld/pkg/domain/admission"
	"github.com/enrolld/enrolld/pkg/domain/prereq"
	"github.com/enrolld/enrolld/pkg/ports"
)

// Manager is the enrollment orchestrator. It owns the entity records, the
// per-activity admission units, the prerequisite graph, and the undo log,
// and serializes every operation behind one mutex so admission decisions
// always see settled state.
type Manager struct {
	store     ports.EntityStore
	eventBus  ports.EventBus
	metrics   ports.MetricsCollector
	validator *Validator
	logger    *zap.Logger

	mu    sync.Mutex
	graph *prereq.Graph
	undo  undoLog
}

// NewManager creates a manager with an empty graph and an empty undo log.
func NewManager(
	store ports.EntityStore,
	eventBus ports.EventBus,
	metrics ports.MetricsCollector,
	validator *Validator,
	logger *zap.Logger,
) *Manager {
	return &Manager{
		store:     store,
		eventBus:  eventBus,
		metrics:   metrics,
		validator: validator,
		logger:    logger,
		graph:     prereq.NewGraph(),
	}
}

// RegistrationResult reports where a registration landed.
type RegistrationResult struct {
	Participant string           `json:"participant"`
	Activity    string           `json:"activity"`
	Priority    int              `json:"priority"`
	Placement   domain.Placement `json:"placement"`
}

// ReleaseResult reports the outcome of a deregistration. Released is false
// when the participant held no slot; the call then changed nothing.
type ReleaseResult struct {
	Participant string `json:"participant"`
	Activity    string `json:"activity"`
	Released    bool   `json:"released"`
	Promoted    string `json:"promoted,omitempty"`
}

// ActivitySummary is the list form of an activity.
type ActivitySummary struct {
	Title         string `json:"title"`
	Capacity      int    `json:"capacity"`
	AdmittedCount int    `json:"admitted_count"`
	PendingCount  int    `json:"pending_count"`
	WaitlistDepth int    `json:"waitlist_depth"`
}

// ActivityDetail is a snapshot of one activity's admission state.
type ActivityDetail struct {
	Title    string                  `json:"title"`
	Capacity int                     `json:"capacity"`
	Admitted []string                `json:"admitted"`
	Pending  []admission.QueuedEntry `json:"pending"`
	Waitlist []string                `json:"waitlist"`
}

// Schedule is a prerequisite-consistent ordering of the activities that
// appear in the graph. Acyclic is false when the recorded edges contain a
// cycle, in which case Order is not a valid completion order.
type Schedule struct {
	Order   []string `json:"order"`
	Acyclic bool     `json:"acyclic"`
}

// CreateParticipant validates and stores a participant record. A second
// record under the same id replaces the first; undoing the replacement
// deletes the record outright.
func (m *Manager) CreateParticipant(ctx context.Context, id, name, address string) (*domain.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := &domain.Participant{ID: id, Name: name, Address: address}
	if err := m.validator.ValidateParticipant(p); err != nil {
		m.metrics.RecordRejection("validation")
		return nil, err
	}

	if err := m.store.PutParticipant(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to store participant: %w", err)
	}

	m.undo.push(undoRecord{action: actionCreateParticipant, participant: id})
	m.publish(ctx, domain.EventTypeParticipantCreated, id, "", nil)

	m.logger.Info("participant created",
		zap.String("participant_id", id),
		zap.String("name", name))

	return p, nil
}

// CreateActivity validates and stores an activity with an empty admission
// unit. A second record under the same title replaces the first, dropping
// that activity's enrollment state.
func (m *Manager) CreateActivity(ctx context.Context, title string, capacity int) (*domain.Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.validator.ValidateActivity(title, capacity); err != nil {
		m.metrics.RecordRejection("validation")
		return nil, err
	}

	a := domain.NewActivity(title, capacity)
	if err := m.store.PutActivity(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to store activity: %w", err)
	}

	m.undo.push(undoRecord{action: actionCreateActivity, activity: title})
	m.metrics.SetActivityDepths(title, 0, 0, 0)
	m.publish(ctx, domain.EventTypeActivityCreated, "", title, map[string]interface{}{
		"capacity": capacity,
	})

	m.logger.Info("activity created",
		zap.String("activity", title),
		zap.Int("capacity", capacity))

	return a, nil
}

// AddPrerequisite records that prerequisite must be completed before
// dependent. Both activities must exist at call time; the edge itself is
// never removed when one of them later disappears.
func (m *Manager) AddPrerequisite(ctx context.Context, prerequisite, dependent string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.store.Activity(ctx, prerequisite); err != nil {
		m.metrics.RecordRejection("activity_not_found")
		return err
	}
	if _, err := m.store.Activity(ctx, dependent); err != nil {
		m.metrics.RecordRejection("activity_not_found")
		return err
	}

	m.graph.AddEdge(prerequisite, dependent)
	m.undo.push(undoRecord{action: actionAddPrerequisite, prerequisite: prerequisite, dependent: dependent})
	m.publish(ctx, domain.EventTypePrerequisiteAdded, "", dependent, map[string]interface{}{
		"prerequisite": prerequisite,
		"dependent":    dependent,
	})

	m.logger.Info("prerequisite added",
		zap.String("prerequisite", prerequisite),
		zap.String("dependent", dependent))

	return nil
}

// Register submits a participant for an activity and settles the admission
// immediately. The prerequisite gate requires the participant to hold a slot
// in every activity recorded as a prerequisite of the target; a gate entry
// whose activity record is gone is reported as not found, never skipped.
func (m *Manager) Register(ctx context.Context, participantID, title string, priority int) (*RegistrationResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.store.Participant(ctx, participantID); err != nil {
		m.metrics.RecordRejection("participant_not_found")
		return nil, err
	}
	activity, err := m.store.Activity(ctx, title)
	if err != nil {
		m.metrics.RecordRejection("activity_not_found")
		return nil, err
	}

	for _, gate := range m.graph.Prerequisites(title) {
		gateActivity, err := m.store.Activity(ctx, gate)
		if err != nil {
			m.metrics.RecordRejection("activity_not_found")
			return nil, fmt.Errorf("prerequisite %q: %w", gate, err)
		}
		if !gateActivity.Unit.Holds(participantID) {
			m.metrics.RecordRejection("prerequisite_unmet")
			return nil, fmt.Errorf("%w: %q requires a slot in %q", domain.ErrPrerequisiteUnmet, title, gate)
		}
	}

	route := activity.Unit.Submit(participantID, priority)
	if route == admission.RouteDuplicate {
		m.metrics.RecordRejection("duplicate")
		return nil, fmt.Errorf("%w: %s in %q", domain.ErrDuplicateRegistration, participantID, title)
	}
	activity.Unit.Settle()

	placement := domain.PlacementWaitlisted
	if route == admission.RoutePending {
		placement = domain.PlacementPending
		if activity.Unit.Holds(participantID) {
			placement = domain.PlacementAdmitted
		}
	}

	m.undo.push(undoRecord{action: actionRegister, participant: participantID, activity: title})
	m.metrics.RecordRegistration(string(placement))
	m.syncDepths(activity)
	m.publish(ctx, placementEventType(placement), participantID, title, map[string]interface{}{
		"priority":  priority,
		"placement": string(placement),
	})

	m.logger.Info("registration processed",
		zap.String("participant_id", participantID),
		zap.String("activity", title),
		zap.Int("priority", priority),
		zap.String("placement", string(placement)))

	return &RegistrationResult{
		Participant: participantID,
		Activity:    title,
		Priority:    priority,
		Placement:   placement,
	}, nil
}

// Deregister releases the participant's slot and promotes the waitlist head
// into it. Releasing a participant who holds no slot is a reported no-op:
// the call succeeds with Released false, changes nothing, and is not
// recorded for undo.
func (m *Manager) Deregister(ctx context.Context, participantID, title string) (*ReleaseResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.store.Participant(ctx, participantID); err != nil {
		m.metrics.RecordRejection("participant_not_found")
		return nil, err
	}
	activity, err := m.store.Activity(ctx, title)
	if err != nil {
		m.metrics.RecordRejection("activity_not_found")
		return nil, err
	}

	promoted, released := activity.Unit.Release(participantID)
	result := &ReleaseResult{
		Participant: participantID,
		Activity:    title,
		Released:    released,
		Promoted:    promoted,
	}
	if !released {
		m.metrics.RecordRelease("not_admitted")
		m.logger.Info("deregistration was a no-op",
			zap.String("participant_id", participantID),
			zap.String("activity", title))
		return result, nil
	}

	m.undo.push(undoRecord{action: actionDeregister, participant: participantID, activity: title})
	m.metrics.RecordRelease("released")
	m.syncDepths(activity)
	m.publish(ctx, domain.EventTypeRegistrationReleased, participantID, title, nil)
	if promoted != "" {
		m.publish(ctx, domain.EventTypeRegistrationPromoted, promoted, title, nil)
	}

	m.logger.Info("registration released",
		zap.String("participant_id", participantID),
		zap.String("activity", title),
		zap.String("promoted", promoted))

	return result, nil
}

// GetParticipant returns the stored record for id.
func (m *Manager) GetParticipant(ctx context.Context, id string) (*domain.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Participant(ctx, id)
}

// ListParticipants returns all participant records sorted by id.
func (m *Manager) ListParticipants(ctx context.Context) ([]*domain.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Participants(ctx)
}

// ListActivities returns a summary of every activity, sorted by title.
func (m *Manager) ListActivities(ctx context.Context) ([]ActivitySummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	activities, err := m.store.Activities(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ActivitySummary, 0, len(activities))
	for _, a := range activities {
		out = append(out, ActivitySummary{
			Title:         a.Title,
			Capacity:      a.Capacity,
			AdmittedCount: a.Unit.AdmittedCount(),
			PendingCount:  a.Unit.PendingCount(),
			WaitlistDepth: a.Unit.WaitlistDepth(),
		})
	}
	return out, nil
}

// ActivityDetail returns the full admission state of one activity.
func (m *Manager) ActivityDetail(ctx context.Context, title string) (*ActivityDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, err := m.store.Activity(ctx, title)
	if err != nil {
		return nil, err
	}
	return &ActivityDetail{
		Title:    a.Title,
		Capacity: a.Capacity,
		Admitted: a.Unit.Admitted(),
		Pending:  a.Unit.PendingEntries(),
		Waitlist: a.Unit.Waitlist(),
	}, nil
}

// Prerequisites returns the activities that must be completed before title.
// The activity must exist; an existing activity with no recorded
// prerequisites yields an empty list.
func (m *Manager) Prerequisites(ctx context.Context, title string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.store.Activity(ctx, title); err != nil {
		return nil, err
	}
	return m.graph.Prerequisites(title), nil
}

// GetSchedule returns a completion order over the activities in the
// prerequisite graph.
func (m *Manager) GetSchedule(ctx context.Context) *Schedule {
	m.mu.Lock()
	defer m.mu.Unlock()

	return &Schedule{
		Order:   m.graph.TopologicalOrder(),
		Acyclic: !m.graph.HasCycle(),
	}
}

// UndoDepth returns how many recorded actions can currently be undone.
func (m *Manager) UndoDepth() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.undo.depth()
}

// publish sends an event on the enrollment topic. Publishing happens after
// the state change is committed, so a bus failure is logged and swallowed
// rather than failing the operation.
func (m *Manager) publish(ctx context.Context, eventType domain.EventType, participant, activity string, data map[string]interface{}) {
	event := domain.Event{
		ID:          uuid.New().String(),
		Type:        eventType,
		Participant: participant,
		Activity:    activity,
		Timestamp:   time.Now(),
		Data:        data,
	}
	if err := m.eventBus.Publish(ctx, "enrollment.events", event); err != nil {
		m.logger.Error("failed to publish event",
			zap.String("event_type", string(eventType)),
			zap.Error(err))
	}
}

func (m *Manager) syncDepths(a *domain.Activity) {
	m.metrics.SetActivityDepths(a.Title, a.Unit.AdmittedCount(), a.Unit.PendingCount(), a.Unit.WaitlistDepth())
}

func placementEventType(p domain.Placement) domain.EventType {
	switch p {
	case domain.PlacementAdmitted:
		return domain.EventTypeRegistrationAdmitted
	case domain.PlacementPending:
		return domain.EventTypeRegistrationPending
	default:
		return domain.EventTypeRegistrationWaitlisted
	}
}
