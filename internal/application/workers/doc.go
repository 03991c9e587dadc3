// Package workers implements the pool that drains enrollment events into
// the journal.
//
// The pool subscribes to the event bus once and feeds a fixed number of
// goroutines that:
//   - Append each event to the journal
//   - Record processed-event metrics
//
// The health monitor tracks worker status and exports the pool gauges.
package workers
