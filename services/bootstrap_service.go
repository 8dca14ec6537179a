package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	mrand "math/rand/v2"

	"github.com/Dosada05/chess-tournament/models"
	"github.com/Dosada05/chess-tournament/repositories"
	"gopkg.in/yaml.v3"
)

// Fixture is a YAML description of players and tournaments to load.
type Fixture struct {
	Players     []FixturePlayer     `yaml:"players"`
	Tournaments []FixtureTournament `yaml:"tournaments"`
}

type FixturePlayer struct {
	ID        string `yaml:"player_id"`
	FirstName string `yaml:"firstname"`
	LastName  string `yaml:"lastname"`
	BirthDate string `yaml:"birthdate"`
}

// FixtureTournament optionally carries a roster, per-round results and a
// target status. The tournament is driven through the lifecycle to reach it.
type FixtureTournament struct {
	ID          string                  `yaml:"id"`
	Name        string                  `yaml:"name"`
	StartDate   string                  `yaml:"start_date"`
	EndDate     string                  `yaml:"end_date"`
	Description string                  `yaml:"description"`
	Location    models.Locations        `yaml:"location"`
	Players     []string                `yaml:"players"`
	Results     [][]models.MatchResult  `yaml:"results"`
	Status      models.TournamentStatus `yaml:"status"`
}

// ParseFixture decodes a YAML fixture document.
func ParseFixture(r io.Reader) (*Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return &f, nil
		}
		return nil, fmt.Errorf("failed to decode fixture: %w", err)
	}
	return &f, nil
}

type SeedSummary struct {
	Players     int
	Tournaments int
}

type BootstrapService interface {
	Reset(ctx context.Context) error
	SeedRandom(ctx context.Context, players, tournaments int) (*SeedSummary, error)
	LoadFixture(ctx context.Context, fixture *Fixture) (*SeedSummary, error)
}

type bootstrapService struct {
	tournamentRepo repositories.TournamentRepository
	roundRepo      repositories.RoundRepository
	playerRepo     repositories.PlayerRepository
	tournaments    TournamentService
	players        PlayerService
	logger         *slog.Logger
}

func NewBootstrapService(
	tournamentRepo repositories.TournamentRepository,
	roundRepo repositories.RoundRepository,
	playerRepo repositories.PlayerRepository,
	tournaments TournamentService,
	players PlayerService,
	logger *slog.Logger,
) BootstrapService {
	if logger == nil {
		logger = slog.Default()
	}
	return &bootstrapService{
		tournamentRepo: tournamentRepo,
		roundRepo:      roundRepo,
		playerRepo:     playerRepo,
		tournaments:    tournaments,
		players:        players,
		logger:         logger,
	}
}

// Reset removes every tournament, round and player.
func (s *bootstrapService) Reset(ctx context.Context) error {
	if err := s.tournamentRepo.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to clear tournaments: %w", err)
	}
	if err := s.roundRepo.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to clear rounds: %w", err)
	}
	if err := s.playerRepo.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to clear players: %w", err)
	}
	s.logger.Info("store reset")
	return nil
}

// SeedRandom creates throwaway players and tournaments in the Created status.
func (s *bootstrapService) SeedRandom(ctx context.Context, players, tournaments int) (*SeedSummary, error) {
	if players < 0 || tournaments < 0 {
		return nil, validationError("seed counts must not be negative")
	}
	summary := &SeedSummary{}

	for i := 0; i < players; i++ {
		_, err := s.players.CreatePlayer(ctx, CreatePlayerInput{
			FirstName: "test" + tokenHex(4),
			LastName:  "test" + tokenHex(4),
			BirthDate: fmt.Sprintf("%d-01-01", 1970+mrand.IntN(31)),
		})
		if err != nil {
			return summary, fmt.Errorf("failed to seed player %d: %w", i, err)
		}
		summary.Players++
	}

	for i := 0; i < tournaments; i++ {
		locations := make(models.Locations, 3+mrand.IntN(3))
		for j := range locations {
			locations[j] = fmt.Sprintf("Location%d", j)
		}
		_, err := s.tournaments.CreateTournament(ctx, CreateTournamentInput{
			ID:        "boot_" + tokenHex(4),
			Name:      "Tournament" + tokenHex(4),
			StartDate: fmt.Sprintf("%d-01-01", 2023+mrand.IntN(3)),
			EndDate:   fmt.Sprintf("%d-12-31", 2025+mrand.IntN(3)),
			Location:  locations,
		})
		if err != nil {
			return summary, fmt.Errorf("failed to seed tournament %d: %w", i, err)
		}
		summary.Tournaments++
	}

	s.logger.Info("random data seeded", slog.Int("players", summary.Players), slog.Int("tournaments", summary.Tournaments))
	return summary, nil
}

func (s *bootstrapService) LoadFixture(ctx context.Context, fixture *Fixture) (*SeedSummary, error) {
	summary := &SeedSummary{}
	if fixture == nil {
		return summary, nil
	}

	for _, p := range fixture.Players {
		_, err := s.players.CreatePlayer(ctx, CreatePlayerInput{
			ID:        p.ID,
			FirstName: p.FirstName,
			LastName:  p.LastName,
			BirthDate: p.BirthDate,
		})
		if err != nil {
			return summary, fmt.Errorf("failed to load player %q: %w", p.ID, err)
		}
		summary.Players++
	}

	for _, ft := range fixture.Tournaments {
		if err := s.loadTournament(ctx, ft); err != nil {
			return summary, fmt.Errorf("failed to load tournament %q: %w", ft.Name, err)
		}
		summary.Tournaments++
	}

	s.logger.Info("fixture loaded", slog.Int("players", summary.Players), slog.Int("tournaments", summary.Tournaments))
	return summary, nil
}

func (s *bootstrapService) loadTournament(ctx context.Context, ft FixtureTournament) error {
	target := ft.Status
	if target == "" {
		target = models.StatusCreated
	}
	if !target.Valid() {
		return validationError("unknown status %q", target)
	}
	if len(ft.Results) > 0 && target == models.StatusCreated {
		return validationError("results need a started tournament")
	}

	t, err := s.tournaments.CreateTournament(ctx, CreateTournamentInput{
		ID:          ft.ID,
		Name:        ft.Name,
		StartDate:   ft.StartDate,
		EndDate:     ft.EndDate,
		Description: ft.Description,
		Location:    ft.Location,
	})
	if err != nil {
		return err
	}
	for _, playerID := range ft.Players {
		if _, err := s.tournaments.AddPlayer(ctx, t.ID, playerID); err != nil {
			return err
		}
	}
	if target == models.StatusCreated {
		return nil
	}

	if _, err := s.tournaments.AdvanceStatus(ctx, t.ID, models.StatusInProgress); err != nil {
		return err
	}
	for roundNumber, results := range ft.Results {
		for matchIndex, result := range results {
			if _, err := s.tournaments.RecordMatchResult(ctx, t.ID, roundNumber, matchIndex, result); err != nil {
				return err
			}
		}
		if len(results) < models.NMatchesPerRound {
			break
		}
		current, err := s.tournaments.FinishRound(ctx, t.ID)
		if err != nil {
			return err
		}
		if current.Status == models.StatusCompleted {
			break
		}
	}

	if target == models.StatusCompleted {
		current, err := s.tournaments.GetTournamentByID(ctx, t.ID)
		if err != nil {
			return err
		}
		if current.Status != models.StatusCompleted {
			if _, err := s.tournaments.AdvanceStatus(ctx, t.ID, models.StatusCompleted); err != nil {
				return err
			}
		}
	}
	return nil
}

func tokenHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}
