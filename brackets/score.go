package brackets

import (
	"sort"

	"github.com/Dosada05/chess-tournament/models"
)

// TotalScore sums the recorded outcomes of playerID over every match of rounds.
// Nil rounds, empty match lists and undetermined scores contribute nothing.
// It never mutates its input.
func TotalScore(playerID string, rounds []*models.Round) float64 {
	total := 0.0
	for _, round := range rounds {
		if round == nil {
			continue
		}
		for _, match := range round.Matches {
			if !match.Involves(playerID) {
				continue
			}
			for _, entry := range match {
				if entry.PlayerID == playerID && entry.Score != nil {
					total += *entry.Score
				}
			}
		}
	}
	return total
}

// ComputeStandings builds the score table for the roster. Lines are ordered by
// points, ties keep roster order and share a rank.
func ComputeStandings(playerIDs []string, rounds []*models.Round) []*models.TournamentStanding {
	standings := make([]*models.TournamentStanding, 0, len(playerIDs))
	byPlayer := make(map[string]*models.TournamentStanding, len(playerIDs))
	for _, id := range playerIDs {
		s := &models.TournamentStanding{PlayerID: id}
		standings = append(standings, s)
		byPlayer[id] = s
	}

	for _, round := range rounds {
		if round == nil {
			continue
		}
		for _, match := range round.Matches {
			if !match.Decided() {
				continue
			}
			for side, entry := range match {
				s, ok := byPlayer[entry.PlayerID]
				if !ok {
					continue
				}
				own, opp := *entry.Score, *match[1-side].Score
				s.Points += own
				s.GamesPlayed++
				switch {
				case own > opp:
					s.Wins++
				case own < opp:
					s.Losses++
				default:
					s.Draws++
				}
			}
		}
	}

	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].Points > standings[j].Points
	})
	for i, s := range standings {
		if i > 0 && s.Points == standings[i-1].Points {
			s.Rank = standings[i-1].Rank
		} else {
			s.Rank = i + 1
		}
	}
	return standings
}
