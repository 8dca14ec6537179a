package repositories

import (
	"encoding/json"
	"fmt"

	"github.com/Dosada05/chess-tournament/models"
)

// Persisted shapes. Field names here are the storage contract; models may change
// freely as long as these conversions keep producing the same documents.
const recordSchemaVersion = 1

type tournamentRecord struct {
	SchemaVersion      int      `json:"schema_version"`
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	StartDate          string   `json:"start_date"`
	EndDate            string   `json:"end_date"`
	Description        string   `json:"description"`
	Location           []string `json:"location"`
	PlayerIDs          []string `json:"player_ids"`
	RoundIDs           []string `json:"round_ids"`
	CurrentRoundNumber int      `json:"current_round_number"`
	Status             string   `json:"status"`
}

type matchEntryRecord struct {
	PlayerID string   `json:"player_id"`
	Score    *float64 `json:"score"`
}

type roundRecord struct {
	SchemaVersion int                   `json:"schema_version"`
	RoundID       string                `json:"round_id"`
	RoundNumber   int                   `json:"round_number"`
	Matches       [][2]matchEntryRecord `json:"matches"`
}

type playerRecord struct {
	SchemaVersion int    `json:"schema_version"`
	PlayerID      string `json:"player_id"`
	FirstName     string `json:"firstname"`
	LastName      string `json:"lastname"`
	BirthDate     string `json:"birthdate"`
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return append([]string(nil), s...)
}

// checkSchema accepts version 0 as documents written before versioning existed.
func checkSchema(kind string, version int) error {
	if version != 0 && version != recordSchemaVersion {
		return fmt.Errorf("%w: %s record version %d", ErrUnsupportedSchema, kind, version)
	}
	return nil
}

func encodeTournament(t *models.Tournament) ([]byte, error) {
	rec := tournamentRecord{
		SchemaVersion:      recordSchemaVersion,
		ID:                 t.ID,
		Name:               t.Name,
		StartDate:          t.StartDate,
		EndDate:            t.EndDate,
		Description:        t.Description,
		Location:           nonNil(t.Location),
		PlayerIDs:          nonNil(t.PlayerIDs),
		RoundIDs:           nonNil(t.RoundIDs),
		CurrentRoundNumber: t.CurrentRoundNumber,
		Status:             string(t.Status),
	}
	return json.Marshal(rec)
}

func decodeTournament(raw json.RawMessage) (*models.Tournament, error) {
	var rec tournamentRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode tournament record: %w", err)
	}
	if err := checkSchema("tournament", rec.SchemaVersion); err != nil {
		return nil, err
	}
	return &models.Tournament{
		ID:                 rec.ID,
		Name:               rec.Name,
		StartDate:          rec.StartDate,
		EndDate:            rec.EndDate,
		Description:        rec.Description,
		Location:           models.Locations(nonNil(rec.Location)),
		PlayerIDs:          nonNil(rec.PlayerIDs),
		RoundIDs:           nonNil(rec.RoundIDs),
		CurrentRoundNumber: rec.CurrentRoundNumber,
		Status:             models.TournamentStatus(rec.Status),
	}, nil
}

func encodeRound(r *models.Round) ([]byte, error) {
	rec := roundRecord{
		SchemaVersion: recordSchemaVersion,
		RoundID:       r.RoundID,
		RoundNumber:   r.RoundNumber,
		Matches:       make([][2]matchEntryRecord, 0, len(r.Matches)),
	}
	for _, m := range r.Matches {
		rec.Matches = append(rec.Matches, [2]matchEntryRecord{
			{PlayerID: m[0].PlayerID, Score: m[0].Score},
			{PlayerID: m[1].PlayerID, Score: m[1].Score},
		})
	}
	return json.Marshal(rec)
}

func decodeRound(raw json.RawMessage) (*models.Round, error) {
	var rec roundRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode round record: %w", err)
	}
	if err := checkSchema("round", rec.SchemaVersion); err != nil {
		return nil, err
	}
	round := &models.Round{
		RoundID:     rec.RoundID,
		RoundNumber: rec.RoundNumber,
		Matches:     make([]models.Match, 0, len(rec.Matches)),
	}
	for _, m := range rec.Matches {
		round.Matches = append(round.Matches, models.Match{
			{PlayerID: m[0].PlayerID, Score: m[0].Score},
			{PlayerID: m[1].PlayerID, Score: m[1].Score},
		})
	}
	return round, nil
}

func encodePlayer(p *models.Player) ([]byte, error) {
	return json.Marshal(playerRecord{
		SchemaVersion: recordSchemaVersion,
		PlayerID:      p.ID,
		FirstName:     p.FirstName,
		LastName:      p.LastName,
		BirthDate:     p.BirthDate,
	})
}

func decodePlayer(raw json.RawMessage) (*models.Player, error) {
	var rec playerRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode player record: %w", err)
	}
	if err := checkSchema("player", rec.SchemaVersion); err != nil {
		return nil, err
	}
	return &models.Player{
		ID:        rec.PlayerID,
		FirstName: rec.FirstName,
		LastName:  rec.LastName,
		BirthDate: rec.BirthDate,
	}, nil
}
