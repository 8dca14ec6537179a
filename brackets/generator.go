package brackets

import "context"

type GenerateScheduleParams struct {
	TournamentID string
	PlayerIDs    []string
}

// Pairing is one scheduled match. Outcomes are not part of the schedule.
type Pairing struct {
	OrderInRound int
	Player1ID    string
	Player2ID    string
}

type ScheduledRound struct {
	Number   int
	Pairings []Pairing
}

type ScheduleGenerator interface {
	GenerateSchedule(ctx context.Context, params GenerateScheduleParams) ([]*ScheduledRound, error)

	GetName() string
}
