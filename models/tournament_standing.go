package models

// TournamentStanding is one line of a tournament's score table.
type TournamentStanding struct {
	PlayerID    string  `json:"player_id"`
	Points      float64 `json:"points"`
	GamesPlayed int     `json:"games_played"`
	Wins        int     `json:"wins"`
	Draws       int     `json:"draws"`
	Losses      int     `json:"losses"`
	Rank        int     `json:"rank"`

	Player *Player `json:"player,omitempty"`
}
