package memory

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/enrolld/enrolld/pkg/domain"
)

func TestRecentReturnsNewestFirst(t *testing.T) {
	j := NewJournal(10)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		err := j.Append(ctx, domain.Event{ID: fmt.Sprintf("ev-%d", i)})
		require.NoError(t, err)
	}

	events, err := j.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, "ev-3", events[0].ID)
	require.Equal(t, "ev-2", events[1].ID)

	size, err := j.Size(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, size)
}

func TestRecentClampsToSize(t *testing.T) {
	j := NewJournal(10)
	ctx := context.Background()

	require.NoError(t, j.Append(ctx, domain.Event{ID: "ev-1"}))

	events, err := j.Recent(ctx, 100)
	require.NoError(t, err)
	require.Len(t, events, 1)

	events, err = j.Recent(ctx, 0)
	require.NoError(t, err)
	require.Empty(t, events)
}

func TestAppendEvictsOldestAtCapacity(t *testing.T) {
	j := NewJournal(3)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		err := j.Append(ctx, domain.Event{ID: fmt.Sprintf("ev-%d", i)})
		require.NoError(t, err)
	}

	size, err := j.Size(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, size)

	events, err := j.Recent(ctx, 3)
	require.NoError(t, err)
	require.Equal(t, "ev-5", events[0].ID)
	require.Equal(t, "ev-4", events[1].ID)
	require.Equal(t, "ev-3", events[2].ID)
}

func TestNewJournalClampsCapacity(t *testing.T) {
	j := NewJournal(0)
	ctx := context.Background()

	require.NoError(t, j.Append(ctx, domain.Event{ID: "ev-1"}))
	require.NoError(t, j.Append(ctx, domain.Event{ID: "ev-2"}))

	size, err := j.Size(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, size)

	events, err := j.Recent(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "ev-2", events[0].ID)
}
