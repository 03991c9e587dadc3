package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/enrolld/enrolld/pkg/domain"
)

func TestParticipantRoundTrip(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	p := &domain.Participant{ID: "u1", Name: "Dana", Address: "dana@example.com"}
	require.NoError(t, s.PutParticipant(ctx, p))

	got, err := s.Participant(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, p, got)

	_, err = s.Participant(ctx, "ghost")
	require.ErrorIs(t, err, domain.ErrParticipantNotFound)
}

func TestPutParticipantOverwrites(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	require.NoError(t, s.PutParticipant(ctx, &domain.Participant{ID: "u1", Name: "Dana"}))
	require.NoError(t, s.PutParticipant(ctx, &domain.Participant{ID: "u1", Name: "Dana Q"}))

	got, err := s.Participant(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, "Dana Q", got.Name)

	all, err := s.Participants(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestParticipantsSortedByID(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, s.PutParticipant(ctx, &domain.Participant{ID: id}))
	}

	all, err := s.Participants(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "a", all[0].ID)
	require.Equal(t, "b", all[1].ID)
	require.Equal(t, "c", all[2].ID)
}

func TestDeleteParticipantIdempotent(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	require.NoError(t, s.PutParticipant(ctx, &domain.Participant{ID: "u1"}))
	require.NoError(t, s.DeleteParticipant(ctx, "u1"))
	require.NoError(t, s.DeleteParticipant(ctx, "u1"))

	_, err := s.Participant(ctx, "u1")
	require.ErrorIs(t, err, domain.ErrParticipantNotFound)
}

func TestActivityRoundTrip(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	a := domain.NewActivity("Pottery", 2)
	require.NoError(t, s.PutActivity(ctx, a))

	got, err := s.Activity(ctx, "Pottery")
	require.NoError(t, err)
	// Records are held by reference; the returned unit is the live one.
	require.Same(t, a.Unit, got.Unit)

	_, err = s.Activity(ctx, "ghost")
	require.ErrorIs(t, err, domain.ErrActivityNotFound)
}

func TestActivitiesSortedByTitle(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	for _, title := range []string{"Weaving", "Archery", "Pottery"} {
		require.NoError(t, s.PutActivity(ctx, domain.NewActivity(title, 1)))
	}

	all, err := s.Activities(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "Archery", all[0].Title)
	require.Equal(t, "Pottery", all[1].Title)
	require.Equal(t, "Weaving", all[2].Title)
}

func TestDeleteActivityIdempotent(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	require.NoError(t, s.PutActivity(ctx, domain.NewActivity("Pottery", 1)))
	require.NoError(t, s.DeleteActivity(ctx, "Pottery"))
	require.NoError(t, s.DeleteActivity(ctx, "Pottery"))

	_, err := s.Activity(ctx, "Pottery")
	require.ErrorIs(t, err, domain.ErrActivityNotFound)
}
