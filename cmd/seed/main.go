package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/Dosada05/chess-tournament/brackets"
	"github.com/Dosada05/chess-tournament/config"
	"github.com/Dosada05/chess-tournament/db"
	"github.com/Dosada05/chess-tournament/repositories"
	"github.com/Dosada05/chess-tournament/services"
	"github.com/Dosada05/chess-tournament/utils"
)

func main() {
	var (
		reset        = flag.Bool("reset", false, "delete every tournament, round and player first")
		players      = flag.Int("players", 0, "number of random players to create")
		tournaments  = flag.Int("tournaments", 0, "number of random tournaments to create")
		fixturePath  = flag.String("fixture", "", "YAML fixture file to load")
		hashPassword = flag.String("hash-password", "", "print the bcrypt hash of a password for ORGANIZER_PASSWORD_HASH and exit")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *hashPassword != "" {
		hash, err := utils.HashPassword(*hashPassword)
		if err != nil {
			logger.Error("failed to hash password", slog.Any("error", err))
			os.Exit(1)
		}
		fmt.Println(hash)
		return
	}

	if !*reset && *players == 0 && *tournaments == 0 && *fixturePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(context.Background(), logger, *reset, *players, *tournaments, *fixturePath); err != nil {
		logger.Error("seed failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, reset bool, players, tournaments int, fixturePath string) error {
	var fixture *services.Fixture
	if fixturePath != "" {
		f, err := os.Open(fixturePath)
		if err != nil {
			return fmt.Errorf("failed to open fixture: %w", err)
		}
		fixture, err = services.ParseFixture(f)
		f.Close()
		if err != nil {
			return err
		}
	}

	cfg, err := config.LoadStore()
	if err != nil {
		return err
	}
	store, closeStore, err := db.OpenDocumentStore(ctx, cfg.Driver, cfg.DatabaseURL, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	tournamentRepo := repositories.NewTournamentRepository(store)
	roundRepo := repositories.NewRoundRepository(store)
	playerRepo := repositories.NewPlayerRepository(store)
	playerService := services.NewPlayerService(playerRepo, logger)
	tournamentService := services.NewTournamentService(tournamentRepo, roundRepo, brackets.NewRoundRobinGenerator(), playerService, nil, nil, logger)
	bootstrap := services.NewBootstrapService(tournamentRepo, roundRepo, playerRepo, tournamentService, playerService, logger)

	if reset {
		if err := bootstrap.Reset(ctx); err != nil {
			return err
		}
	}
	if players > 0 || tournaments > 0 {
		if _, err := bootstrap.SeedRandom(ctx, players, tournaments); err != nil {
			return err
		}
	}
	if fixture != nil {
		if _, err := bootstrap.LoadFixture(ctx, fixture); err != nil {
			return err
		}
	}
	return nil
}
