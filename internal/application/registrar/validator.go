package registrar

import (
	"fmt"
	"strings"

	"github.com/enrolld/enrolld/pkg/domain"
)

// Validator checks operation inputs before they touch any state.
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// ValidateParticipant checks a participant record. The address must carry
// the '@' marker; ids and names are accepted as given.
func (v *Validator) ValidateParticipant(p *domain.Participant) error {
	if p == nil {
		return fmt.Errorf("%w: participant is nil", domain.ErrInvalidInput)
	}
	if !strings.Contains(p.Address, "@") {
		return fmt.Errorf("%w: address %q must contain '@'", domain.ErrInvalidInput, p.Address)
	}
	return nil
}

// ValidateActivity checks an activity's fields. Capacity zero is legal;
// negative is not.
func (v *Validator) ValidateActivity(title string, capacity int) error {
	if capacity < 0 {
		return fmt.Errorf("%w: capacity must be non-negative, got %d", domain.ErrInvalidInput, capacity)
	}
	return nil
}
