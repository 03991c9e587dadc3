package domain

import "time"

// EventType identifies what happened.
type EventType string

const (
	EventTypeParticipantCreated     EventType = "participant.created"
	EventTypeActivityCreated        EventType = "activity.created"
	EventTypePrerequisiteAdded      EventType = "prerequisite.added"
	EventTypeRegistrationAdmitted   EventType = "registration.admitted"
	EventTypeRegistrationPending    EventType = "registration.pending"
	EventTypeRegistrationWaitlisted EventType = "registration.waitlisted"
	EventTypeRegistrationReleased   EventType = "registration.released"
	EventTypeRegistrationPromoted   EventType = "registration.promoted"
	EventTypeUndoApplied            EventType = "undo.applied"
)

// Event is one observed change, published on the enrollment topic after the
// change is committed. Events are observational: nothing replays them to
// rebuild state.
type Event struct {
	ID          string                 `json:"id"`
	Type        EventType              `json:"type"`
	Participant string                 `json:"participant,omitempty"`
	Activity    string                 `json:"activity,omitempty"`
	Timestamp   time.Time              `json:"timestamp"`
	Data        map[string]interface{} `json:"data,omitempty"`
}
