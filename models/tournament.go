package models

import (
	"encoding/json"
	"fmt"
)

// TournamentStatus is the coarse-grained phase of a tournament.
type TournamentStatus string

const (
	StatusCreated    TournamentStatus = "Created"
	StatusInProgress TournamentStatus = "In Progress"
	StatusCompleted  TournamentStatus = "Completed"
)

const (
	NPlayers         = 4
	NRounds          = 3
	NMatchesPerRound = 2
	NoRoundScheduled = -1
)

// Valid reports whether s is one of the known statuses.
func (s TournamentStatus) Valid() bool {
	switch s {
	case StatusCreated, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Locations is a list of places. It decodes from either a single JSON string or a list.
type Locations []string

func (l *Locations) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*l = nil
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*l = Locations{}
		} else {
			*l = Locations{single}
		}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("location must be a string or a list of strings")
	}
	*l = list
	return nil
}

// UnmarshalYAML accepts the same two shapes in seed fixtures.
func (l *Locations) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var single string
	if err := unmarshal(&single); err == nil {
		if single == "" {
			*l = Locations{}
		} else {
			*l = Locations{single}
		}
		return nil
	}
	var list []string
	if err := unmarshal(&list); err != nil {
		return fmt.Errorf("location must be a string or a list of strings")
	}
	*l = list
	return nil
}

// Tournament is a four-player round-robin chess tournament.
type Tournament struct {
	ID                 string           `json:"id"`
	Name               string           `json:"name"`
	StartDate          string           `json:"start_date"`
	EndDate            string           `json:"end_date"`
	Description        string           `json:"description"`
	Location           Locations        `json:"location"`
	PlayerIDs          []string         `json:"player_ids"`
	RoundIDs           []string         `json:"round_ids"`
	CurrentRoundNumber int              `json:"current_round_number"`
	Status             TournamentStatus `json:"status"`

	// Populated by the service for detail views, never persisted.
	Rounds    []*Round              `json:"rounds,omitempty"`
	Standings []*TournamentStanding `json:"standings,omitempty"`
}

// HasPlayer reports whether playerID is on the roster.
func (t *Tournament) HasPlayer(playerID string) bool {
	for _, id := range t.PlayerIDs {
		if id == playerID {
			return true
		}
	}
	return false
}

// RosterFull reports whether no more players can be registered.
func (t *Tournament) RosterFull() bool {
	return len(t.PlayerIDs) >= NPlayers
}

// Clone returns a deep copy of the persisted fields.
func (t *Tournament) Clone() *Tournament {
	c := *t
	c.Location = append(make(Locations, 0, len(t.Location)), t.Location...)
	c.PlayerIDs = append(make([]string, 0, len(t.PlayerIDs)), t.PlayerIDs...)
	c.RoundIDs = append(make([]string, 0, len(t.RoundIDs)), t.RoundIDs...)
	c.Rounds = nil
	c.Standings = nil
	return &c
}
