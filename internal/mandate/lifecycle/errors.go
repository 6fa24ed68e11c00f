package lifecycle

import (
	"errors"
	"fmt"

	"mandate/internal/mandate/models"
	dErrors "mandate/pkg/domain-errors"
)

// ErrInvalidTransition matches every TransitionError via errors.Is.
var ErrInvalidTransition = errors.New("invalid transition")

// TransitionError identifies the attempted transition and the status that
// refused it.
type TransitionError struct {
	Transition Transition
	Status     models.Status
	Reason     string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s mandate in status %s: %s", e.Transition, e.Status, e.Reason)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

func invalid(t Transition, status models.Status, reason string) error {
	te := &TransitionError{Transition: t, Status: status, Reason: reason}
	return dErrors.Wrap(te, dErrors.CodeInvalidTransition, te.Error())
}

// AsTransitionError extracts the TransitionError from err's chain.
func AsTransitionError(err error) (*TransitionError, bool) {
	var te *TransitionError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}
