// Package memory provides the in-memory entity store. All enrollment state
// lives here for the life of the process; there is no persistence layer.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/enrolld/enrolld/pkg/domain"
)

// Store implements ports.EntityStore with two mutex-guarded maps. Records
// are stored by reference: the activity admission units held here are the
// live ones the manager mutates.
type Store struct {
	mu           sync.RWMutex
	participants map[string]*domain.Participant
	activities   map[string]*domain.Activity
}

func NewStore() *Store {
	return &Store{
		participants: make(map[string]*domain.Participant),
		activities:   make(map[string]*domain.Activity),
	}
}

// PutParticipant writes the record, replacing any record under the same id.
func (s *Store) PutParticipant(ctx context.Context, p *domain.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.participants[p.ID] = p
	return nil
}

func (s *Store) Participant(ctx context.Context, id string) (*domain.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.participants[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrParticipantNotFound, id)
	}
	return p, nil
}

// Participants returns all records sorted by id.
func (s *Store) Participants(ctx context.Context) ([]*domain.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Participant, 0, len(s.participants))
	for _, p := range s.participants {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// DeleteParticipant removes the record. Deleting an absent id is a no-op.
func (s *Store) DeleteParticipant(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.participants, id)
	return nil
}

// PutActivity writes the record, replacing any record under the same title.
func (s *Store) PutActivity(ctx context.Context, a *domain.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activities[a.Title] = a
	return nil
}

func (s *Store) Activity(ctx context.Context, title string) (*domain.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.activities[title]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrActivityNotFound, title)
	}
	return a, nil
}

// Activities returns all records sorted by title.
func (s *Store) Activities(ctx context.Context) ([]*domain.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Activity, 0, len(s.activities))
	for _, a := range s.activities {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

// DeleteActivity removes the record. Prerequisite edges pointing at the
// title are left in place; a registration that walks into one reports the
// activity as not found. Deleting an absent title is a no-op.
func (s *Store) DeleteActivity(ctx context.Context, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.activities, title)
	return nil
}
