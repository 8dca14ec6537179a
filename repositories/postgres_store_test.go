package repositories_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/Dosada05/chess-tournament/db"
	"github.com/Dosada05/chess-tournament/models"
	"github.com/Dosada05/chess-tournament/repositories"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

// setupPostgres starts a disposable Postgres, applies the migrations and
// returns a connection to it.
func setupPostgres(tb testing.TB) *sql.DB {
	tb.Helper()
	if testing.Short() {
		tb.Skip("skipping Postgres integration test in -short mode")
	}
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("chess"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		tb.Skipf("postgres container unavailable: %v", err)
	}
	tb.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			tb.Logf("terminating postgres container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(tb, err)

	conn, err := sql.Open("postgres", dsn)
	require.NoError(tb, err)
	tb.Cleanup(func() { conn.Close() })

	require.NoError(tb, db.RunMigrations(ctx, conn))
	return conn
}

func TestPostgresDocumentStore(t *testing.T) {
	conn := setupPostgres(t)
	store := repositories.NewPostgresDocumentStore(conn)
	ctx := context.Background()

	tournaments := repositories.NewTournamentRepository(store)
	rounds := repositories.NewRoundRepository(store)

	tour := &models.Tournament{
		ID:                 "pg1",
		Name:               "Open",
		StartDate:          "2025-01-01",
		EndDate:            "2025-12-31",
		Location:           models.Locations{"Paris"},
		PlayerIDs:          []string{"a", "b", "c", "d"},
		CurrentRoundNumber: models.NoRoundScheduled,
		Status:             models.StatusCreated,
	}
	require.NoError(t, tournaments.Create(ctx, tour))
	assert.ErrorIs(t, tournaments.Create(ctx, tour), repositories.ErrTournamentIDConflict)

	round := &models.Round{RoundID: models.RoundID("pg1", 0), Matches: []models.Match{models.NewMatch("a", "b")}}
	require.NoError(t, rounds.Save(ctx, round))
	one, zero := 1.0, 0.0
	round.Matches[0][0].Score, round.Matches[0][1].Score = &one, &zero
	require.NoError(t, rounds.Save(ctx, round))

	got, err := rounds.GetByID(ctx, round.RoundID)
	require.NoError(t, err)
	require.NotNil(t, got.Matches[0][0].Score)
	assert.Equal(t, 1.0, *got.Matches[0][0].Score)

	tour.Status = models.StatusInProgress
	tour.RoundIDs = []string{round.RoundID}
	require.NoError(t, tournaments.Update(ctx, tour))

	status := models.StatusInProgress
	listed, err := tournaments.List(ctx, repositories.ListTournamentsFilter{Status: &status})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, []string{round.RoundID}, listed[0].RoundIDs)

	require.NoError(t, tournaments.DeleteAll(ctx))
	_, err = tournaments.GetByID(ctx, "pg1")
	assert.ErrorIs(t, err, repositories.ErrTournamentNotFound)

	// Rounds live in their own collection.
	_, err = rounds.GetByID(ctx, round.RoundID)
	assert.NoError(t, err)
}

func TestPostgresDocumentStore_NotMigrated(t *testing.T) {
	conn := setupPostgres(t)
	_, err := conn.Exec(`DROP TABLE documents`)
	require.NoError(t, err)

	_, err = repositories.NewPostgresDocumentStore(conn).Collection(repositories.CollectionPlayers).All(context.Background())
	assert.ErrorIs(t, err, repositories.ErrStoreNotMigrated)
}
