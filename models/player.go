package models

// DefaultBirthDate is used when a player is registered without one.
const DefaultBirthDate = "1970-01-01"

// Player is an entry in the player directory.
type Player struct {
	ID        string `json:"player_id"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	BirthDate string `json:"birthdate"`
}

// DisplayName returns "Firstname LASTNAME".
func (p *Player) DisplayName() string {
	if p == nil {
		return "Unknown Player"
	}
	if p.FirstName == "" {
		return p.LastName
	}
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}
