package models

import "fmt"

// MatchResult is the outcome entered for a played match.
type MatchResult string

const (
	ResultFirstWins  MatchResult = "first_wins"
	ResultSecondWins MatchResult = "second_wins"
	ResultDraw       MatchResult = "draw"
)

const (
	WinPoints  = 1.0
	DrawPoints = 0.5
	LossPoints = 0.0
)

// Scores returns the points awarded to the first and second competitor.
func (r MatchResult) Scores() (first, second float64, err error) {
	switch r {
	case ResultFirstWins:
		return WinPoints, LossPoints, nil
	case ResultSecondWins:
		return LossPoints, WinPoints, nil
	case ResultDraw:
		return DrawPoints, DrawPoints, nil
	}
	return 0, 0, fmt.Errorf("unknown match result %q", r)
}

// MatchEntry is one competitor's side of a match. A nil Score means the match
// has not been played yet.
type MatchEntry struct {
	PlayerID string   `json:"player_id"`
	Score    *float64 `json:"score"`
}

// Match pairs two competitors.
type Match [2]MatchEntry

// NewMatch creates a match with undetermined outcomes.
func NewMatch(player1ID, player2ID string) Match {
	return Match{{PlayerID: player1ID}, {PlayerID: player2ID}}
}

// Decided reports whether both sides carry a score.
func (m Match) Decided() bool {
	return m[0].Score != nil && m[1].Score != nil
}

// Involves reports whether playerID plays in this match.
func (m Match) Involves(playerID string) bool {
	return m[0].PlayerID == playerID || m[1].PlayerID == playerID
}

// Round is one round of a tournament.
type Round struct {
	RoundID     string  `json:"round_id"`
	RoundNumber int     `json:"round_number"`
	Matches     []Match `json:"matches"`
}

// RoundID derives the identifier of round number n of a tournament.
func RoundID(tournamentID string, n int) string {
	return fmt.Sprintf("%s_round_%d", tournamentID, n)
}

// Complete reports whether every match of the round has been decided.
func (r *Round) Complete() bool {
	for _, m := range r.Matches {
		if !m.Decided() {
			return false
		}
	}
	return true
}
