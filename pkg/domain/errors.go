package domain

import "errors"

// Sentinel errors for the enrollment core. Callers match them with errors.Is;
// wrapped forms carry the offending identifiers.
var (
	// ErrInvalidInput indicates a malformed field, such as an address
	// without the '@' marker or a negative capacity.
	ErrInvalidInput = errors.New("invalid input")

	// ErrParticipantNotFound indicates the referenced participant id is not
	// registered.
	ErrParticipantNotFound = errors.New("participant not found")

	// ErrActivityNotFound indicates the referenced activity title is not
	// registered. It also surfaces when a prerequisite edge points at an
	// activity whose creation was undone.
	ErrActivityNotFound = errors.New("activity not found")

	// ErrDuplicateRegistration indicates the participant already holds a
	// slot or is already queued for the activity. The rejected call changes
	// nothing.
	ErrDuplicateRegistration = errors.New("participant already registered or queued")

	// ErrPrerequisiteUnmet indicates at least one activity listed as a
	// prerequisite does not have the participant in its admitted set.
	ErrPrerequisiteUnmet = errors.New("prerequisite not satisfied")

	// ErrEmptyUndoLog indicates there is no recorded action left to undo.
	ErrEmptyUndoLog = errors.New("nothing to undo")
)
