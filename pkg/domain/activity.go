package domain

import "github.com/enrolld/enrolld/pkg/domain/admission"

// Activity is a capacity-constrained offering, keyed by title. Its admission
// unit holds the live enrollment state: who is admitted, who is queued, who
// overflowed onto the waitlist.
type Activity struct {
	Title    string
	Capacity int
	Unit     *admission.Unit
}

// NewActivity builds an activity with an empty admission unit sized to
// capacity. Capacity zero is legal; every registration then lands on the
// waitlist.
func NewActivity(title string, capacity int) *Activity {
	return &Activity{
		Title:    title,
		Capacity: capacity,
		Unit:     admission.NewUnit(capacity),
	}
}

// Placement says where a registration ended up.
type Placement string

const (
	PlacementAdmitted   Placement = "admitted"
	PlacementPending    Placement = "pending"
	PlacementWaitlisted Placement = "waitlisted"
)
