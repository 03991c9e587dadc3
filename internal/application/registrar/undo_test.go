package registrar

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/enrolld/enrolld/pkg/domain"
)

func TestUndoEmptyLog(t *testing.T) {
	m, _, metrics := newTestManager(t)

	_, err := m.Undo(context.Background())

	require.ErrorIs(t, err, domain.ErrEmptyUndoLog)
	require.Equal(t, 1, metrics.rejectionCount("empty_undo_log"))
}

func TestUndoReversesCreateParticipant(t *testing.T) {
	m, bus, metrics := newTestManager(t)
	ctx := context.Background()

	_, err := m.CreateParticipant(ctx, "u1", "Dana", "dana@example.com")
	require.NoError(t, err)

	result, err := m.Undo(ctx)
	require.NoError(t, err)
	require.Equal(t, "create-participant", result.Action)
	require.Equal(t, "u1", result.Participant)
	require.Equal(t, "participant record removed", result.Note)

	_, err = m.GetParticipant(ctx, "u1")
	require.ErrorIs(t, err, domain.ErrParticipantNotFound)

	last := bus.last()
	require.Equal(t, domain.EventTypeUndoApplied, last.Type)
	require.Equal(t, "create-participant", last.Data["action"])

	metrics.mu.Lock()
	defer metrics.mu.Unlock()
	require.Equal(t, 1, metrics.undos["create-participant"])
}

func TestUndoOverwrittenCreateReportsAlreadyGone(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	// Creating the same id twice overwrites the record and pushes two
	// undo entries pointing at the one surviving record.
	_, err := m.CreateParticipant(ctx, "u1", "Dana", "dana@example.com")
	require.NoError(t, err)
	_, err = m.CreateParticipant(ctx, "u1", "Dana Q", "danaq@example.com")
	require.NoError(t, err)

	first, err := m.Undo(ctx)
	require.NoError(t, err)
	require.Equal(t, "participant record removed", first.Note)

	second, err := m.Undo(ctx)
	require.NoError(t, err)
	require.Equal(t, "participant record was already gone", second.Note)
}

func TestUndoCreateActivityDropsGauges(t *testing.T) {
	m, _, metrics := newTestManager(t)
	ctx := context.Background()

	_, err := m.CreateActivity(ctx, "Pottery", 3)
	require.NoError(t, err)

	result, err := m.Undo(ctx)
	require.NoError(t, err)
	require.Equal(t, "create-activity", result.Action)
	require.Equal(t, "Pottery", result.Activity)

	_, err = m.ActivityDetail(ctx, "Pottery")
	require.ErrorIs(t, err, domain.ErrActivityNotFound)

	metrics.mu.Lock()
	defer metrics.mu.Unlock()
	require.Equal(t, []string{"Pottery"}, metrics.removed)
}

func TestUndoAddPrerequisiteRemovesOneOccurrence(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	_, err := m.CreateActivity(ctx, "Intro", 1)
	require.NoError(t, err)
	_, err = m.CreateActivity(ctx, "Advanced", 1)
	require.NoError(t, err)
	require.NoError(t, m.AddPrerequisite(ctx, "Intro", "Advanced"))
	require.NoError(t, m.AddPrerequisite(ctx, "Intro", "Advanced"))

	result, err := m.Undo(ctx)
	require.NoError(t, err)
	require.Equal(t, "prerequisite edge removed", result.Note)
	require.Equal(t, "Intro", result.Prerequisite)
	require.Equal(t, "Advanced", result.Dependent)

	gates, err := m.Prerequisites(ctx, "Intro")
	require.NoError(t, err)
	require.Equal(t, []string{"Advanced"}, gates)

	result, err = m.Undo(ctx)
	require.NoError(t, err)
	require.Equal(t, "prerequisite edge removed", result.Note)

	gates, err = m.Prerequisites(ctx, "Intro")
	require.NoError(t, err)
	require.Empty(t, gates)
}

func TestUndoRegisterKeepsQueuedStanding(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	_, err := m.CreateActivity(ctx, "Pottery", 1)
	require.NoError(t, err)
	_, err = m.CreateParticipant(ctx, "a", "A", "a@example.com")
	require.NoError(t, err)
	_, err = m.CreateParticipant(ctx, "b", "B", "b@example.com")
	require.NoError(t, err)
	_, err = m.Register(ctx, "a", "Pottery", 0)
	require.NoError(t, err)
	_, err = m.Register(ctx, "b", "Pottery", 0)
	require.NoError(t, err)

	// The most recent register only reached the waitlist; its inverse
	// releases nothing and the standing stays.
	result, err := m.Undo(ctx)
	require.NoError(t, err)
	require.Equal(t, "register", result.Action)
	require.Equal(t, "participant held no slot; a queued submission keeps its place", result.Note)

	detail, err := m.ActivityDetail(ctx, "Pottery")
	require.NoError(t, err)
	require.Equal(t, []string{"a"}, detail.Admitted)
	require.Equal(t, []string{"b"}, detail.Waitlist)

	// The next record is a's register; undoing it frees the slot and the
	// surviving waitlist standing is promoted into it.
	result, err = m.Undo(ctx)
	require.NoError(t, err)
	require.Equal(t, "slot released; b promoted from the waitlist", result.Note)

	detail, err = m.ActivityDetail(ctx, "Pottery")
	require.NoError(t, err)
	require.Equal(t, []string{"b"}, detail.Admitted)
	require.Empty(t, detail.Waitlist)
}

func TestUndoDeregisterReadmitsWhenRoomRemains(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	_, err := m.CreateActivity(ctx, "Pottery", 2)
	require.NoError(t, err)
	_, err = m.CreateParticipant(ctx, "a", "A", "a@example.com")
	require.NoError(t, err)
	_, err = m.Register(ctx, "a", "Pottery", 4)
	require.NoError(t, err)
	_, err = m.Deregister(ctx, "a", "Pottery")
	require.NoError(t, err)

	result, err := m.Undo(ctx)
	require.NoError(t, err)
	require.Equal(t, "deregister", result.Action)
	require.Equal(t, "re-submitted at priority 0, placement: admitted", result.Note)

	detail, err := m.ActivityDetail(ctx, "Pottery")
	require.NoError(t, err)
	require.Equal(t, []string{"a"}, detail.Admitted)
}

func TestUndoDeregisterFallsToWaitlistWhenFull(t *testing.T) {
	m, bus, _ := newTestManager(t)
	ctx := context.Background()

	_, err := m.CreateActivity(ctx, "Pottery", 2)
	require.NoError(t, err)
	for _, id := range []string{"c", "a", "b"} {
		_, err := m.CreateParticipant(ctx, id, "P "+id, id+"@example.com")
		require.NoError(t, err)
	}
	_, err = m.Register(ctx, "c", "Pottery", 0)
	require.NoError(t, err)
	_, err = m.Register(ctx, "a", "Pottery", 1)
	require.NoError(t, err)
	_, err = m.Register(ctx, "b", "Pottery", 2)
	require.NoError(t, err)

	release, err := m.Deregister(ctx, "a", "Pottery")
	require.NoError(t, err)
	require.Equal(t, "b", release.Promoted)

	// Both slots are taken again, so the re-submission lands on the
	// waitlist rather than reclaiming the original place.
	result, err := m.Undo(ctx)
	require.NoError(t, err)
	require.Equal(t, "re-submitted at priority 0, placement: waitlisted", result.Note)

	detail, err := m.ActivityDetail(ctx, "Pottery")
	require.NoError(t, err)
	require.Equal(t, []string{"c", "b"}, detail.Admitted)
	require.Equal(t, []string{"a"}, detail.Waitlist)

	types := bus.types()
	require.Equal(t, domain.EventTypeRegistrationWaitlisted, types[len(types)-2])
	require.Equal(t, domain.EventTypeUndoApplied, types[len(types)-1])
}

func TestUndoUnwindsWholeSession(t *testing.T) {
	m, _, metrics := newTestManager(t)
	ctx := context.Background()

	_, err := m.CreateParticipant(ctx, "u1", "Dana", "dana@example.com")
	require.NoError(t, err)
	_, err = m.CreateActivity(ctx, "Pottery", 1)
	require.NoError(t, err)
	_, err = m.Register(ctx, "u1", "Pottery", 0)
	require.NoError(t, err)
	require.Equal(t, 3, m.UndoDepth())

	for i := 0; i < 3; i++ {
		_, err := m.Undo(ctx)
		require.NoError(t, err)
	}
	_, err = m.Undo(ctx)
	require.ErrorIs(t, err, domain.ErrEmptyUndoLog)

	participants, err := m.ListParticipants(ctx)
	require.NoError(t, err)
	require.Empty(t, participants)
	activities, err := m.ListActivities(ctx)
	require.NoError(t, err)
	require.Empty(t, activities)

	metrics.mu.Lock()
	defer metrics.mu.Unlock()
	require.Equal(t, 1, metrics.undos["register"])
	require.Equal(t, 1, metrics.undos["create-activity"])
	require.Equal(t, 1, metrics.undos["create-participant"])
}
