package repositories

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/Dosada05/chess-tournament/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTournament(id string, status models.TournamentStatus) *models.Tournament {
	return &models.Tournament{
		ID:                 id,
		Name:               "Tournament " + id,
		StartDate:          "2024-01-01",
		EndDate:            "2024-12-31",
		Location:           models.Locations{"Paris"},
		PlayerIDs:          []string{},
		RoundIDs:           []string{},
		CurrentRoundNumber: models.NoRoundScheduled,
		Status:             status,
	}
}

func TestTournamentRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewTournamentRepository(NewMemoryDocumentStore())

	require.NoError(t, repo.Create(ctx, newTournament("t1", models.StatusCreated)))
	require.NoError(t, repo.Create(ctx, newTournament("t2", models.StatusInProgress)))
	assert.ErrorIs(t, repo.Create(ctx, newTournament("t1", models.StatusCreated)), ErrTournamentIDConflict)

	got, err := repo.GetByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, newTournament("t1", models.StatusCreated), got)

	_, err = repo.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, ErrTournamentNotFound)

	all, err := repo.List(ctx, ListTournamentsFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	status := models.StatusInProgress
	running, err := repo.List(ctx, ListTournamentsFilter{Status: &status})
	require.NoError(t, err)
	require.Len(t, running, 1)
	assert.Equal(t, "t2", running[0].ID)

	got.PlayerIDs = append(got.PlayerIDs, "p1")
	require.NoError(t, repo.Update(ctx, got))
	byName, err := repo.SearchBy(ctx, "player_ids", []string{"p1"})
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "t1", byName[0].ID)

	assert.ErrorIs(t, repo.Update(ctx, newTournament("ghost", models.StatusCreated)), ErrTournamentNotFound)

	require.NoError(t, repo.DeleteAll(ctx))
	all, err = repo.List(ctx, ListTournamentsFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestRoundRepository_SaveIsUpsert(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryDocumentStore()
	repo := NewRoundRepository(store)

	round := &models.Round{RoundID: "t1_round_0", RoundNumber: 0, Matches: []models.Match{models.NewMatch("a", "b")}}
	require.NoError(t, repo.Save(ctx, round))
	require.NoError(t, repo.Save(ctx, round))

	all, err := store.Collection(CollectionRounds).All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	half := 0.5
	round.Matches[0][0].Score, round.Matches[0][1].Score = &half, &half
	require.NoError(t, repo.Save(ctx, round))

	got, err := repo.GetByID(ctx, "t1_round_0")
	require.NoError(t, err)
	assert.Equal(t, round, got)

	_, err = repo.GetByID(ctx, "t1_round_9")
	assert.ErrorIs(t, err, ErrRoundNotFound)
}

func TestPlayerRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewPlayerRepository(NewMemoryDocumentStore())

	p := &models.Player{ID: "p1", FirstName: "Magnus", LastName: "CARLSEN", BirthDate: "1990-11-30"}
	require.NoError(t, repo.Create(ctx, p))
	assert.ErrorIs(t, repo.Create(ctx, p), ErrPlayerIDConflict)

	got, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, p, got)

	found, err := repo.SearchBy(ctx, "lastname", "CARLSEN")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	_, err = repo.GetByID(ctx, "p2")
	assert.ErrorIs(t, err, ErrPlayerNotFound)

	require.NoError(t, repo.DeleteAll(ctx))
	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestRecords_SchemaVersion(t *testing.T) {
	doc, err := encodeTournament(newTournament("t1", models.StatusCreated))
	require.NoError(t, err)

	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(doc, &fields))
	assert.JSONEq(t, "1", string(fields["schema_version"]))
	assert.JSONEq(t, `[]`, string(fields["round_ids"]))

	_, err = decodeTournament([]byte(`{"schema_version":7,"id":"t1"}`))
	assert.ErrorIs(t, err, ErrUnsupportedSchema)

	legacy, err := decodeTournament([]byte(`{"id":"t1","status":"Created","current_round_number":-1}`))
	require.NoError(t, err)
	assert.Equal(t, []string{}, legacy.PlayerIDs)
	assert.Equal(t, models.StatusCreated, legacy.Status)
}

func TestRecords_RoundKeepsUndeterminedScores(t *testing.T) {
	round := &models.Round{RoundID: "r", Matches: []models.Match{models.NewMatch("a", "b")}}
	doc, err := encodeRound(round)
	require.NoError(t, err)
	assert.Contains(t, string(doc), `"score":null`)

	decoded, err := decodeRound(doc)
	require.NoError(t, err)
	assert.Nil(t, decoded.Matches[0][0].Score)
}
