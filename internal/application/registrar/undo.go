package registrar

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/enrolld/enrolld/pkg/domain"
	"github.com/enrolld/enrolld/pkg/domain/admission"
)

type undoAction string

const (
	actionCreateParticipant undoAction = "create-participant"
	actionCreateActivity    undoAction = "create-activity"
	actionAddPrerequisite   undoAction = "add-prerequisite"
	actionRegister          undoAction = "register"
	actionDeregister        undoAction = "deregister"
)

// undoRecord names one committed action and the identifiers its inverse
// needs. Only committed calls push a record; rejected calls and reported
// no-ops push nothing.
type undoRecord struct {
	action       undoAction
	participant  string
	activity     string
	prerequisite string
	dependent    string
}

type undoLog struct {
	records []undoRecord
}

func (l *undoLog) push(rec undoRecord) {
	l.records = append(l.records, rec)
}

func (l *undoLog) pop() (undoRecord, bool) {
	if len(l.records) == 0 {
		return undoRecord{}, false
	}
	rec := l.records[len(l.records)-1]
	l.records = l.records[:len(l.records)-1]
	return rec, true
}

func (l *undoLog) depth() int {
	return len(l.records)
}

// UndoResult describes the inverse that was applied. Note carries the
// human-readable outcome, including when the inverse found nothing left to
// act on.
type UndoResult struct {
	Action       string `json:"action"`
	Participant  string `json:"participant,omitempty"`
	Activity     string `json:"activity,omitempty"`
	Prerequisite string `json:"prerequisite,omitempty"`
	Dependent    string `json:"dependent,omitempty"`
	Note         string `json:"note"`
}

// Undo pops the most recent recorded action and applies its inverse. The
// inverse is best-effort: records are identifiers, not snapshots, so if
// later operations already removed what the inverse would touch, the undo
// reports that in the Note instead of failing. An empty log is the only
// error case.
func (m *Manager) Undo(ctx context.Context) (*UndoResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.undo.pop()
	if !ok {
		m.metrics.RecordRejection("empty_undo_log")
		return nil, domain.ErrEmptyUndoLog
	}

	var result *UndoResult
	switch rec.action {
	case actionCreateParticipant:
		result = m.undoCreateParticipant(ctx, rec)
	case actionCreateActivity:
		result = m.undoCreateActivity(ctx, rec)
	case actionAddPrerequisite:
		result = m.undoAddPrerequisite(rec)
	case actionRegister:
		result = m.undoRegister(ctx, rec)
	case actionDeregister:
		result = m.undoDeregister(ctx, rec)
	default:
		result = &UndoResult{Action: string(rec.action), Note: "unknown action, nothing applied"}
	}

	m.metrics.RecordUndo(string(rec.action))
	m.publish(ctx, domain.EventTypeUndoApplied, rec.participant, rec.activity, map[string]interface{}{
		"action": string(rec.action),
		"note":   result.Note,
	})

	m.logger.Info("undo applied",
		zap.String("action", string(rec.action)),
		zap.String("note", result.Note))

	return result, nil
}

func (m *Manager) undoCreateParticipant(ctx context.Context, rec undoRecord) *UndoResult {
	result := &UndoResult{Action: string(rec.action), Participant: rec.participant}

	if _, err := m.store.Participant(ctx, rec.participant); err != nil {
		result.Note = "participant record was already gone"
		m.logger.Warn("undo target missing", zap.String("participant_id", rec.participant))
		return result
	}
	if err := m.store.DeleteParticipant(ctx, rec.participant); err != nil {
		result.Note = "failed to remove participant record"
		m.logger.Error("undo delete failed", zap.String("participant_id", rec.participant), zap.Error(err))
		return result
	}

	result.Note = "participant record removed"
	return result
}

func (m *Manager) undoCreateActivity(ctx context.Context, rec undoRecord) *UndoResult {
	result := &UndoResult{Action: string(rec.action), Activity: rec.activity}

	if _, err := m.store.Activity(ctx, rec.activity); err != nil {
		result.Note = "activity record was already gone"
		m.logger.Warn("undo target missing", zap.String("activity", rec.activity))
		return result
	}
	if err := m.store.DeleteActivity(ctx, rec.activity); err != nil {
		result.Note = "failed to remove activity record"
		m.logger.Error("undo delete failed", zap.String("activity", rec.activity), zap.Error(err))
		return result
	}

	m.metrics.RemoveActivity(rec.activity)
	result.Note = "activity removed; prerequisite edges naming it now resolve as not found"
	return result
}

func (m *Manager) undoAddPrerequisite(rec undoRecord) *UndoResult {
	result := &UndoResult{
		Action:       string(rec.action),
		Prerequisite: rec.prerequisite,
		Dependent:    rec.dependent,
	}

	if m.graph.RemoveEdge(rec.prerequisite, rec.dependent) {
		result.Note = "prerequisite edge removed"
	} else {
		result.Note = "prerequisite edge was already gone"
		m.logger.Warn("undo target missing",
			zap.String("prerequisite", rec.prerequisite),
			zap.String("dependent", rec.dependent))
	}
	return result
}

// undoRegister releases the slot the registration may hold. A registration
// that only reached the pending queue or the waitlist stays queued; the
// inverse is approximate by design.
func (m *Manager) undoRegister(ctx context.Context, rec undoRecord) *UndoResult {
	result := &UndoResult{
		Action:      string(rec.action),
		Participant: rec.participant,
		Activity:    rec.activity,
	}

	activity, err := m.store.Activity(ctx, rec.activity)
	if err != nil {
		result.Note = "activity record was already gone"
		m.logger.Warn("undo target missing", zap.String("activity", rec.activity))
		return result
	}

	promoted, released := activity.Unit.Release(rec.participant)
	if !released {
		result.Note = "participant held no slot; a queued submission keeps its place"
		return result
	}

	m.syncDepths(activity)
	m.publish(ctx, domain.EventTypeRegistrationReleased, rec.participant, rec.activity, nil)
	if promoted != "" {
		m.publish(ctx, domain.EventTypeRegistrationPromoted, promoted, rec.activity, nil)
		result.Note = fmt.Sprintf("slot released; %s promoted from the waitlist", promoted)
	} else {
		result.Note = "slot released"
	}
	return result
}

// undoDeregister re-submits the participant. The original priority was not
// recorded, so the submission re-enters at priority zero and settles under
// whatever the current occupancy allows.
func (m *Manager) undoDeregister(ctx context.Context, rec undoRecord) *UndoResult {
	result := &UndoResult{
		Action:      string(rec.action),
		Participant: rec.participant,
		Activity:    rec.activity,
	}

	activity, err := m.store.Activity(ctx, rec.activity)
	if err != nil {
		result.Note = "activity record was already gone"
		m.logger.Warn("undo target missing", zap.String("activity", rec.activity))
		return result
	}

	route := activity.Unit.Submit(rec.participant, 0)
	if route == admission.RouteDuplicate {
		result.Note = "participant already has a standing again"
		return result
	}
	activity.Unit.Settle()

	placement := domain.PlacementWaitlisted
	if route == admission.RoutePending {
		placement = domain.PlacementPending
		if activity.Unit.Holds(rec.participant) {
			placement = domain.PlacementAdmitted
		}
	}

	m.syncDepths(activity)
	m.publish(ctx, placementEventType(placement), rec.participant, rec.activity, map[string]interface{}{
		"priority":  0,
		"placement": string(placement),
	})

	result.Note = fmt.Sprintf("re-submitted at priority 0, placement: %s", placement)
	return result
}
