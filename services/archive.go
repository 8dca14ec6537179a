package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/chess-tournament/brackets"
	"github.com/Dosada05/chess-tournament/models"
)

const archiveContentType = "application/json"

// ArchiveKey is the object key a completed tournament is archived under.
func ArchiveKey(tournamentID string) string {
	return fmt.Sprintf("tournaments/%s/final.json", tournamentID)
}

type tournamentArchive struct {
	Tournament *models.Tournament           `json:"tournament"`
	Rounds     []*models.Round              `json:"rounds"`
	Standings  []*models.TournamentStanding `json:"standings"`
	ArchivedAt time.Time                    `json:"archived_at"`
}

// archive uploads the final state of t. Failures are logged; the status
// change that triggered it has already been persisted.
func (s *tournamentService) archive(ctx context.Context, t *models.Tournament) {
	if s.uploader == nil {
		return
	}
	logger := s.logger.With(slog.String("tournament_id", t.ID))

	rounds, err := s.loadRounds(ctx, t, true)
	if err != nil {
		logger.Error("failed to load rounds for archive", slog.Any("error", err))
		return
	}
	body, err := json.Marshal(tournamentArchive{
		Tournament: t,
		Rounds:     rounds,
		Standings:  brackets.ComputeStandings(t.PlayerIDs, rounds),
		ArchivedAt: time.Now().UTC(),
	})
	if err != nil {
		logger.Error("failed to encode archive", slog.Any("error", err))
		return
	}

	result, err := s.uploader.Upload(ctx, ArchiveKey(t.ID), archiveContentType, bytes.NewReader(body))
	if err != nil {
		logger.Error("failed to upload archive", slog.Any("error", err))
		return
	}
	logger.Info("tournament archived", slog.String("key", result.Key), slog.String("location", result.Location))
}
