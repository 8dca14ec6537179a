package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dosada05/chess-tournament/models"
	"github.com/Dosada05/chess-tournament/repositories"
)

const dateLayout = "2006-01-02"

// allowedTransitions is the tournament state machine. Completed is terminal.
var allowedTransitions = map[models.TournamentStatus][]models.TournamentStatus{
	models.StatusCreated:    {models.StatusInProgress},
	models.StatusInProgress: {models.StatusCompleted},
	models.StatusCompleted:  {},
}

func isValidStatusTransition(current, next models.TournamentStatus) bool {
	for _, allowedNextStatus := range allowedTransitions[current] {
		if next == allowedNextStatus {
			return true
		}
	}
	return false
}

// transitionRefusal explains a transition missing from allowedTransitions.
func transitionRefusal(current, next models.TournamentStatus) string {
	switch {
	case !next.Valid():
		return "unknown target status"
	case current == next:
		return fmt.Sprintf("tournament is already %q", current)
	case current == models.StatusCompleted:
		return "tournament is completed and can no longer change status"
	case current == models.StatusCreated && next == models.StatusCompleted:
		return "tournament has not started yet"
	default:
		return "transition is not permitted"
	}
}

// handleRepositoryError folds repository lookups misses into ErrNotFound.
func handleRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrTournamentNotFound),
		errors.Is(err, repositories.ErrRoundNotFound),
		errors.Is(err, repositories.ErrPlayerNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, repositories.ErrTournamentIDConflict),
		errors.Is(err, repositories.ErrPlayerIDConflict):
		return fmt.Errorf("%w: %v", ErrDuplicateEntry, err)
	}
	return err
}

// validateTournamentDates requires both dates; when both are ISO dates the end
// must not precede the start.
func validateTournamentDates(start, end string) error {
	if strings.TrimSpace(start) == "" || strings.TrimSpace(end) == "" {
		return validationError("start_date and end_date are required")
	}
	s, errStart := time.Parse(dateLayout, start)
	e, errEnd := time.Parse(dateLayout, end)
	if errStart == nil && errEnd == nil && e.Before(s) {
		return validationError("end date (%s) must not be before start date (%s)", end, start)
	}
	return nil
}
