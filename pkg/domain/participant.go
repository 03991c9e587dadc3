package domain

import "fmt"

// Participant is a person who can register for activities. The record is
// keyed by ID; writing a second record under the same id replaces the first.
type Participant struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

func (p *Participant) String() string {
	return fmt.Sprintf("%s (%s)", p.Name, p.ID)
}
