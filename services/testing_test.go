package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/Dosada05/chess-tournament/brackets"
	"github.com/Dosada05/chess-tournament/models"
	"github.com/Dosada05/chess-tournament/repositories"
	"github.com/Dosada05/chess-tournament/storage"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	mu      sync.Mutex
	objects map[string][]byte
	err     error
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{objects: map[string][]byte{}}
}

func (u *fakeUploader) Upload(ctx context.Context, key, contentType string, r io.Reader) (*storage.UploadResult, error) {
	if u.err != nil {
		return nil, u.err
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.objects[key] = body
	return &storage.UploadResult{Key: key, Location: u.GetPublicURL(key)}, nil
}

func (u *fakeUploader) GetPublicURL(key string) string {
	return "https://archive.test/" + key
}

type recordedEvent struct {
	Room    string
	Message brackets.WebSocketMessage
}

type fakeBroadcaster struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (b *fakeBroadcaster) BroadcastToRoom(roomID string, message interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, recordedEvent{Room: roomID, Message: message.(brackets.WebSocketMessage)})
}

func (b *fakeBroadcaster) types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.events))
	for _, e := range b.events {
		out = append(out, e.Message.Type)
	}
	return out
}

// failingScheduler always refuses to build a schedule.
type failingScheduler struct{}

func (failingScheduler) GenerateSchedule(ctx context.Context, params brackets.GenerateScheduleParams) ([]*brackets.ScheduledRound, error) {
	return nil, errors.New("scheduler unavailable")
}

func (failingScheduler) GetName() string { return "failing" }

// flakyRoundRepository fails the failOn-th call to Save, counting from 1.
type flakyRoundRepository struct {
	repositories.RoundRepository
	mu     sync.Mutex
	saves  int
	failOn int
}

func (r *flakyRoundRepository) Save(ctx context.Context, round *models.Round) error {
	r.mu.Lock()
	r.saves++
	fail := r.saves == r.failOn
	r.mu.Unlock()
	if fail {
		return errors.New("disk full")
	}
	return r.RoundRepository.Save(ctx, round)
}

type fixture struct {
	store       repositories.DocumentStore
	tournaments repositories.TournamentRepository
	rounds      repositories.RoundRepository
	playerRepo  repositories.PlayerRepository
	players     PlayerService
	svc         TournamentService
	uploader    *fakeUploader
	hub         *fakeBroadcaster
}

type fixtureOption func(*fixtureConfig)

type fixtureConfig struct {
	scheduler brackets.ScheduleGenerator
	directory bool
	wrapRound func(repositories.RoundRepository) repositories.RoundRepository
}

func withScheduler(s brackets.ScheduleGenerator) fixtureOption {
	return func(c *fixtureConfig) { c.scheduler = s }
}

func withRoundRepository(wrap func(repositories.RoundRepository) repositories.RoundRepository) fixtureOption {
	return func(c *fixtureConfig) { c.wrapRound = wrap }
}

func withPlayerDirectory() fixtureOption {
	return func(c *fixtureConfig) { c.directory = true }
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()
	cfg := fixtureConfig{scheduler: brackets.NewRoundRobinGenerator()}
	for _, opt := range opts {
		opt(&cfg)
	}

	store := repositories.NewMemoryDocumentStore()
	f := &fixture{
		store:       store,
		tournaments: repositories.NewTournamentRepository(store),
		rounds:      repositories.NewRoundRepository(store),
		playerRepo:  repositories.NewPlayerRepository(store),
		uploader:    newFakeUploader(),
		hub:         &fakeBroadcaster{},
	}
	f.players = NewPlayerService(f.playerRepo, nil)

	var directory PlayerDirectory
	if cfg.directory {
		directory = f.players
	}
	roundRepo := f.rounds
	if cfg.wrapRound != nil {
		roundRepo = cfg.wrapRound(roundRepo)
	}
	f.svc = NewTournamentService(f.tournaments, roundRepo, cfg.scheduler, directory, f.uploader, f.hub, nil)
	return f
}

func (f *fixture) createTournament(t *testing.T, id string) *models.Tournament {
	t.Helper()
	tour, err := f.svc.CreateTournament(context.Background(), CreateTournamentInput{
		ID:        id,
		Name:      "Spring Open",
		StartDate: "2025-03-01",
		EndDate:   "2025-03-03",
		Location:  models.Locations{"Paris"},
	})
	require.NoError(t, err)
	return tour
}

// startedTournament returns a tournament with players p1..p4 in progress.
func (f *fixture) startedTournament(t *testing.T, id string) *models.Tournament {
	t.Helper()
	ctx := context.Background()
	f.createTournament(t, id)
	for i := 1; i <= models.NPlayers; i++ {
		_, err := f.svc.AddPlayer(ctx, id, fmt.Sprintf("p%d", i))
		require.NoError(t, err)
	}
	tour, err := f.svc.AdvanceStatus(ctx, id, models.StatusInProgress)
	require.NoError(t, err)
	return tour
}

func (f *fixture) playRound(t *testing.T, id string, roundNumber int, results ...models.MatchResult) {
	t.Helper()
	for i, r := range results {
		_, err := f.svc.RecordMatchResult(context.Background(), id, roundNumber, i, r)
		require.NoError(t, err)
	}
}
