// Package registrar implements the enrollment core.
//
// The Manager coordinates:
//   - Participant and activity records in the entity store
//   - Per-activity admission units (slots, pending queue, waitlist)
//   - The prerequisite graph gating registrations
//   - The undo log of committed actions
//   - Event publication after each committed change
//
// Every operation runs under one mutex, so admission decisions always see
// settled state.
package registrar
