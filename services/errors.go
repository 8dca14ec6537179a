package services

import (
	"errors"
	"fmt"

	"github.com/Dosada05/chess-tournament/brackets"
	"github.com/Dosada05/chess-tournament/models"
)

// Error kinds reported by the services. Callers match them with errors.Is.
var (
	ErrNotFound          = errors.New("requested resource not found")
	ErrDuplicateEntry    = errors.New("duplicate entry")
	ErrCapacityExceeded  = errors.New("capacity exceeded")
	ErrInvalidTransition = errors.New("invalid tournament status transition")
	ErrInvalidRosterSize = brackets.ErrInvalidRosterSize
	ErrDuplicateInRoster = brackets.ErrDuplicateParticipant
	ErrValidationFailed  = errors.New("validation failed")

	ErrNoRoundsYet      = errors.New("no rounds have been scheduled yet")
	ErrRoundNotPlayable = errors.New("round is not open for results")
	ErrRoundIncomplete  = errors.New("round still has undecided matches")

	ErrAuthenticationFailed = errors.New("authentication failed")
)

// TransitionError explains why a status change was refused.
type TransitionError struct {
	From   models.TournamentStatus
	To     models.TournamentStatus
	Reason string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: cannot change status from %q to %q: %s", ErrInvalidTransition, e.From, e.To, e.Reason)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidationFailed, fmt.Sprintf(format, args...))
}
