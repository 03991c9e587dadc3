// Package admission implements the slot allocator behind each activity: a
// bounded admitted set fed by a priority-ordered pending queue, with an
// arrival-ordered overflow queue for submissions that arrive once the
// admitted set is full.
package admission

import (
	"container/heap"
	"container/list"
	"sort"
)

// Route says which queue a submission entered.
type Route string

const (
	// RoutePending means the submission joined the priority queue and will
	// compete for a slot at the next Settle.
	RoutePending Route = "pending"

	// RouteOverflow means the admitted set was already full and the
	// submission was appended to the overflow queue.
	RouteOverflow Route = "overflow"

	// RouteDuplicate means the participant already has a standing here.
	// Nothing was changed.
	RouteDuplicate Route = "duplicate"
)

// QueuedEntry is one pending submission as seen from outside.
type QueuedEntry struct {
	ID       string `json:"id"`
	Priority int    `json:"priority"`
}

type pendingEntry struct {
	id       string
	priority int
	seq      uint64
}

// pendingHeap orders entries by priority, lowest first. Equal priorities
// settle in arrival order via the sequence number.
type pendingHeap []pendingEntry

func (h pendingHeap) Len() int { return len(h) }

func (h pendingHeap) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority < h[j].priority
	}
	return h[i].seq < h[j].seq
}

func (h pendingHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *pendingHeap) Push(x interface{}) {
	*h = append(*h, x.(pendingEntry))
}

func (h *pendingHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// Unit allocates an activity's slots. It is not safe for concurrent use;
// callers serialize access.
type Unit struct {
	capacity int
	nextSeq  uint64

	pending    pendingHeap
	pendingIDs map[string]struct{}

	admitted    []string
	admittedIDs map[string]struct{}

	overflow    *list.List
	overflowIDs map[string]struct{}
}

// NewUnit builds an empty unit with the given number of slots. A negative
// capacity is treated as zero.
func NewUnit(capacity int) *Unit {
	if capacity < 0 {
		capacity = 0
	}
	return &Unit{
		capacity:    capacity,
		pendingIDs:  make(map[string]struct{}),
		admittedIDs: make(map[string]struct{}),
		overflow:    list.New(),
		overflowIDs: make(map[string]struct{}),
	}
}

// Submit queues a participant for a slot. The routing decision looks only at
// the admitted set: while it has room the submission joins the pending queue
// at the given priority, otherwise it is appended to overflow. A participant
// who is already admitted, pending, or overflowed keeps their current
// standing and the call reports RouteDuplicate.
func (u *Unit) Submit(id string, priority int) Route {
	if u.Contains(id) {
		return RouteDuplicate
	}
	if len(u.admitted) < u.capacity {
		heap.Push(&u.pending, pendingEntry{id: id, priority: priority, seq: u.nextSeq})
		u.nextSeq++
		u.pendingIDs[id] = struct{}{}
		return RoutePending
	}
	u.overflow.PushBack(id)
	u.overflowIDs[id] = struct{}{}
	return RouteOverflow
}

// Settle drains the pending queue into free slots, lowest priority value
// first, arrival order breaking ties. It returns the newly admitted ids in
// admission order and stops when the slots are full or the queue is empty.
// Entries left pending keep their place for the next Settle.
func (u *Unit) Settle() []string {
	var settled []string
	for len(u.admitted) < u.capacity && u.pending.Len() > 0 {
		e := heap.Pop(&u.pending).(pendingEntry)
		delete(u.pendingIDs, e.id)
		u.admitted = append(u.admitted, e.id)
		u.admittedIDs[e.id] = struct{}{}
		settled = append(settled, e.id)
	}
	return settled
}

// Release frees the slot held by id. When the overflow queue is non-empty
// its head takes the freed slot immediately; promotion is strictly arrival
// order and ignores any priorities still sitting in the pending queue. The
// second return reports whether id held a slot at all. Releasing a pending
// or overflowed participant changes nothing.
func (u *Unit) Release(id string) (promoted string, released bool) {
	if _, ok := u.admittedIDs[id]; !ok {
		return "", false
	}
	delete(u.admittedIDs, id)
	for i, held := range u.admitted {
		if held == id {
			u.admitted = append(u.admitted[:i], u.admitted[i+1:]...)
			break
		}
	}
	if front := u.overflow.Front(); front != nil {
		promoted = u.overflow.Remove(front).(string)
		delete(u.overflowIDs, promoted)
		u.admitted = append(u.admitted, promoted)
		u.admittedIDs[promoted] = struct{}{}
	}
	return promoted, true
}

// Holds reports whether id currently occupies a slot.
func (u *Unit) Holds(id string) bool {
	_, ok := u.admittedIDs[id]
	return ok
}

// Contains reports whether id has any standing here: a slot, a pending
// submission, or a place on the waitlist.
func (u *Unit) Contains(id string) bool {
	if _, ok := u.admittedIDs[id]; ok {
		return true
	}
	if _, ok := u.pendingIDs[id]; ok {
		return true
	}
	_, ok := u.overflowIDs[id]
	return ok
}

func (u *Unit) Capacity() int { return u.capacity }

func (u *Unit) AdmittedCount() int { return len(u.admitted) }

func (u *Unit) PendingCount() int { return u.pending.Len() }

func (u *Unit) WaitlistDepth() int { return u.overflow.Len() }

// Admitted returns the slot holders in admission order.
func (u *Unit) Admitted() []string {
	out := make([]string, len(u.admitted))
	copy(out, u.admitted)
	return out
}

// Waitlist returns the overflow queue in arrival order, head first.
func (u *Unit) Waitlist() []string {
	out := make([]string, 0, u.overflow.Len())
	for e := u.overflow.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(string))
	}
	return out
}

// PendingEntries returns a snapshot of the pending queue in settle order
// without disturbing it.
func (u *Unit) PendingEntries() []QueuedEntry {
	snapshot := make(pendingHeap, len(u.pending))
	copy(snapshot, u.pending)
	sort.Sort(snapshot)
	out := make([]QueuedEntry, len(snapshot))
	for i, e := range snapshot {
		out[i] = QueuedEntry{ID: e.id, Priority: e.priority}
	}
	return out
}
