package brackets

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/chess-tournament/models"
)

var (
	ErrInvalidRosterSize    = errors.New("invalid roster size")
	ErrDuplicateParticipant = errors.New("duplicate participant in roster")
)

// pairingTable holds roster indexes per round. Every pair of the four entrants
// meets exactly once.
var pairingTable = [models.NRounds][models.NMatchesPerRound][2]int{
	{{0, 1}, {2, 3}},
	{{0, 2}, {1, 3}},
	{{0, 3}, {1, 2}},
}

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() ScheduleGenerator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) GetName() string {
	return "RoundRobin"
}

// GenerateSchedule builds the fixed three-round schedule for exactly four
// players. Pairings depend only on roster order.
func (g *RoundRobinGenerator) GenerateSchedule(ctx context.Context, params GenerateScheduleParams) ([]*ScheduledRound, error) {
	players := params.PlayerIDs
	if len(players) != models.NPlayers {
		return nil, fmt.Errorf("%w: round robin needs exactly %d players, got %d", ErrInvalidRosterSize, models.NPlayers, len(players))
	}

	seen := make(map[string]struct{}, len(players))
	for _, id := range players {
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateParticipant, id)
		}
		seen[id] = struct{}{}
	}

	rounds := make([]*ScheduledRound, 0, models.NRounds)
	for r, table := range pairingTable {
		round := &ScheduledRound{
			Number:   r,
			Pairings: make([]Pairing, 0, models.NMatchesPerRound),
		}
		for m, pair := range table {
			round.Pairings = append(round.Pairings, Pairing{
				OrderInRound: m,
				Player1ID:    players[pair[0]],
				Player2ID:    players[pair[1]],
			})
		}
		rounds = append(rounds, round)
	}
	return rounds, nil
}

// ToRound converts a scheduled round into a Round with undetermined outcomes.
func (sr *ScheduledRound) ToRound(tournamentID string) *models.Round {
	round := &models.Round{
		RoundID:     models.RoundID(tournamentID, sr.Number),
		RoundNumber: sr.Number,
		Matches:     make([]models.Match, 0, len(sr.Pairings)),
	}
	for _, p := range sr.Pairings {
		round.Matches = append(round.Matches, models.NewMatch(p.Player1ID, p.Player2ID))
	}
	return round
}
