package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/chess-tournament/brackets"
	"github.com/Dosada05/chess-tournament/models"
	"github.com/Dosada05/chess-tournament/repositories"
	"github.com/Dosada05/chess-tournament/storage"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Event types broadcast to a tournament's websocket room.
const (
	EventPlayerAdded   = "PLAYER_ADDED"
	EventStatusChanged = "STATUS_CHANGED"
	EventMatchUpdated  = "MATCH_UPDATED"
	EventRoundFinished = "ROUND_FINISHED"
)

type CreateTournamentInput struct {
	ID          string           `json:"id,omitempty"`
	Name        string           `json:"name"`
	StartDate   string           `json:"start_date"`
	EndDate     string           `json:"end_date"`
	Description string           `json:"description"`
	Location    models.Locations `json:"location"`
}

type ListTournamentsFilter struct {
	Status *models.TournamentStatus
}

// PlayerDirectory resolves player identifiers. A miss is reported as ErrNotFound.
type PlayerDirectory interface {
	GetPlayer(ctx context.Context, id string) (*models.Player, error)
}

type EventBroadcaster interface {
	BroadcastToRoom(roomID string, message interface{})
}

type TournamentService interface {
	CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	GetTournamentByID(ctx context.Context, id string) (*models.Tournament, error)
	GetTournamentDetails(ctx context.Context, id string) (*models.Tournament, error)
	ListTournaments(ctx context.Context, filter ListTournamentsFilter) ([]*models.Tournament, error)

	AddPlayer(ctx context.Context, tournamentID, playerID string) (*models.Tournament, error)
	AdvanceStatus(ctx context.Context, tournamentID string, target models.TournamentStatus) (*models.Tournament, error)

	GetScore(ctx context.Context, tournamentID, playerID string) (float64, error)
	GetStandings(ctx context.Context, tournamentID string) ([]*models.TournamentStanding, error)

	GetCurrentRound(ctx context.Context, tournamentID string) (*models.Round, error)
	GetRound(ctx context.Context, tournamentID string, roundNumber int) (*models.Round, error)
	ListRounds(ctx context.Context, tournamentID string) ([]*models.Round, error)
	RecordMatchResult(ctx context.Context, tournamentID string, roundNumber, matchIndex int, result models.MatchResult) (*models.Round, error)
	FinishRound(ctx context.Context, tournamentID string) (*models.Tournament, error)
}

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
	roundRepo      repositories.RoundRepository
	scheduler      brackets.ScheduleGenerator
	players        PlayerDirectory
	uploader       storage.FileUploader
	hub            EventBroadcaster
	logger         *slog.Logger
	locks          *keyedMutex
}

// NewTournamentService wires the lifecycle. players, uploader and hub are
// optional: a nil players skips roster membership checks, a nil uploader
// disables archiving and a nil hub disables event broadcasts.
func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	roundRepo repositories.RoundRepository,
	scheduler brackets.ScheduleGenerator,
	players PlayerDirectory,
	uploader storage.FileUploader,
	hub EventBroadcaster,
	logger *slog.Logger,
) TournamentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &tournamentService{
		tournamentRepo: tournamentRepo,
		roundRepo:      roundRepo,
		scheduler:      scheduler,
		players:        players,
		uploader:       uploader,
		hub:            hub,
		logger:         logger,
		locks:          newKeyedMutex(),
	}
}

func (s *tournamentService) CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, validationError("tournament name is required")
	}
	if err := validateTournamentDates(input.StartDate, input.EndDate); err != nil {
		return nil, err
	}

	id := strings.TrimSpace(input.ID)
	if id == "" {
		id = uuid.NewString()
	}
	location := input.Location
	if location == nil {
		location = models.Locations{}
	}

	tournament := &models.Tournament{
		ID:                 id,
		Name:               name,
		StartDate:          input.StartDate,
		EndDate:            input.EndDate,
		Description:        input.Description,
		Location:           location,
		PlayerIDs:          []string{},
		RoundIDs:           []string{},
		CurrentRoundNumber: models.NoRoundScheduled,
		Status:             models.StatusCreated,
	}
	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		return nil, handleRepositoryError(err)
	}
	s.logger.Info("tournament created", slog.String("tournament_id", id), slog.String("name", name))
	return tournament, nil
}

func (s *tournamentService) GetTournamentByID(ctx context.Context, id string) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	return t, nil
}

// GetTournamentDetails returns the tournament with its rounds and standings.
func (s *tournamentService) GetTournamentDetails(ctx context.Context, id string) (*models.Tournament, error) {
	t, err := s.GetTournamentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	rounds, err := s.loadRounds(ctx, t, false)
	if err != nil {
		return nil, err
	}
	t.Rounds = rounds
	t.Standings = brackets.ComputeStandings(t.PlayerIDs, rounds)
	s.attachPlayers(ctx, t.Standings)
	return t, nil
}

func (s *tournamentService) ListTournaments(ctx context.Context, filter ListTournamentsFilter) ([]*models.Tournament, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, validationError("unknown status %q", *filter.Status)
	}
	tournaments, err := s.tournamentRepo.List(ctx, repositories.ListTournamentsFilter{Status: filter.Status})
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	return tournaments, nil
}

// AddPlayer registers playerID. Duplicates and a full roster are rejected
// before anything is written.
func (s *tournamentService) AddPlayer(ctx context.Context, tournamentID, playerID string) (*models.Tournament, error) {
	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return nil, validationError("player_id is required")
	}

	unlock := s.locks.Lock(tournamentID)
	defer unlock()

	t, err := s.GetTournamentByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if t.HasPlayer(playerID) {
		return nil, fmt.Errorf("%w: player %s is already registered in tournament %s", ErrDuplicateEntry, playerID, t.ID)
	}
	if t.RosterFull() {
		return nil, fmt.Errorf("%w: tournament %s already has %d players", ErrCapacityExceeded, t.ID, models.NPlayers)
	}
	if s.players != nil {
		if _, err := s.players.GetPlayer(ctx, playerID); err != nil {
			return nil, fmt.Errorf("failed to resolve player %s: %w", playerID, err)
		}
	}

	next := t.Clone()
	next.PlayerIDs = append(next.PlayerIDs, playerID)
	if err := s.tournamentRepo.Update(ctx, next); err != nil {
		return nil, fmt.Errorf("failed to save roster of tournament %s: %w", t.ID, handleRepositoryError(err))
	}

	s.logger.Info("player added", slog.String("tournament_id", t.ID), slog.String("player_id", playerID), slog.Int("roster_size", len(next.PlayerIDs)))
	s.broadcast(next.ID, EventPlayerAdded, map[string]interface{}{"player_id": playerID, "player_ids": next.PlayerIDs})
	return next, nil
}

func (s *tournamentService) AdvanceStatus(ctx context.Context, tournamentID string, target models.TournamentStatus) (*models.Tournament, error) {
	unlock := s.locks.Lock(tournamentID)
	defer unlock()

	t, err := s.GetTournamentByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if !isValidStatusTransition(t.Status, target) {
		return nil, &TransitionError{From: t.Status, To: target, Reason: transitionRefusal(t.Status, target)}
	}

	switch target {
	case models.StatusInProgress:
		return s.startLocked(ctx, t)
	case models.StatusCompleted:
		return s.completeLocked(ctx, t)
	}
	return nil, &TransitionError{From: t.Status, To: target, Reason: "transition is not permitted"}
}

// startLocked schedules and persists every round before the status flips, so
// a failure leaves the tournament in Created with an empty round list.
func (s *tournamentService) startLocked(ctx context.Context, t *models.Tournament) (*models.Tournament, error) {
	if len(t.PlayerIDs) != models.NPlayers {
		return nil, &TransitionError{
			From:   t.Status,
			To:     models.StatusInProgress,
			Reason: fmt.Sprintf("tournament needs exactly %d players, has %d", models.NPlayers, len(t.PlayerIDs)),
		}
	}

	schedule, err := s.scheduler.GenerateSchedule(ctx, brackets.GenerateScheduleParams{
		TournamentID: t.ID,
		PlayerIDs:    t.PlayerIDs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate %s schedule for tournament %s: %w", s.scheduler.GetName(), t.ID, err)
	}

	roundIDs := make([]string, 0, len(schedule))
	for _, scheduled := range schedule {
		round := scheduled.ToRound(t.ID)
		if err := s.roundRepo.Save(ctx, round); err != nil {
			return nil, fmt.Errorf("failed to persist round %s: %w", round.RoundID, err)
		}
		s.logger.Debug("round persisted", slog.String("tournament_id", t.ID), slog.String("round_id", round.RoundID))
		roundIDs = append(roundIDs, round.RoundID)
	}

	next := t.Clone()
	next.RoundIDs = roundIDs
	next.CurrentRoundNumber = 0
	next.Status = models.StatusInProgress
	if err := s.tournamentRepo.Update(ctx, next); err != nil {
		return nil, fmt.Errorf("failed to save status of tournament %s: %w", t.ID, handleRepositoryError(err))
	}

	s.logger.Info("tournament started", slog.String("tournament_id", t.ID), slog.Int("rounds", len(roundIDs)))
	s.broadcast(next.ID, EventStatusChanged, map[string]interface{}{"status": next.Status, "round_ids": next.RoundIDs})
	return next, nil
}

func (s *tournamentService) completeLocked(ctx context.Context, t *models.Tournament) (*models.Tournament, error) {
	if len(t.RoundIDs) < models.NRounds {
		return nil, &TransitionError{
			From:   t.Status,
			To:     models.StatusCompleted,
			Reason: fmt.Sprintf("only %d of %d rounds exist", len(t.RoundIDs), models.NRounds),
		}
	}

	next := t.Clone()
	next.Status = models.StatusCompleted
	if err := s.tournamentRepo.Update(ctx, next); err != nil {
		return nil, fmt.Errorf("failed to save status of tournament %s: %w", t.ID, handleRepositoryError(err))
	}

	s.logger.Info("tournament completed", slog.String("tournament_id", t.ID))
	s.broadcast(next.ID, EventStatusChanged, map[string]interface{}{"status": next.Status})
	s.archive(ctx, next)
	return next, nil
}

// GetScore sums the player's recorded outcomes across the persisted rounds.
// Players without recorded matches score 0.
func (s *tournamentService) GetScore(ctx context.Context, tournamentID, playerID string) (float64, error) {
	t, err := s.GetTournamentByID(ctx, tournamentID)
	if err != nil {
		return 0, err
	}
	rounds, err := s.loadRounds(ctx, t, true)
	if err != nil {
		return 0, err
	}
	return brackets.TotalScore(playerID, rounds), nil
}

func (s *tournamentService) GetStandings(ctx context.Context, tournamentID string) ([]*models.TournamentStanding, error) {
	t, err := s.GetTournamentByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	rounds, err := s.loadRounds(ctx, t, true)
	if err != nil {
		return nil, err
	}
	standings := brackets.ComputeStandings(t.PlayerIDs, rounds)
	s.attachPlayers(ctx, standings)
	return standings, nil
}

// GetCurrentRound returns the round referenced by the last entry of round_ids.
func (s *tournamentService) GetCurrentRound(ctx context.Context, tournamentID string) (*models.Round, error) {
	t, err := s.GetTournamentByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if len(t.RoundIDs) == 0 {
		return nil, fmt.Errorf("%w: tournament %s", ErrNoRoundsYet, t.ID)
	}
	round, err := s.roundRepo.GetByID(ctx, t.RoundIDs[len(t.RoundIDs)-1])
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	return round, nil
}

func (s *tournamentService) GetRound(ctx context.Context, tournamentID string, roundNumber int) (*models.Round, error) {
	t, err := s.GetTournamentByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	return s.roundAt(ctx, t, roundNumber)
}

func (s *tournamentService) ListRounds(ctx context.Context, tournamentID string) ([]*models.Round, error) {
	t, err := s.GetTournamentByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	return s.loadRounds(ctx, t, false)
}

func (s *tournamentService) RecordMatchResult(ctx context.Context, tournamentID string, roundNumber, matchIndex int, result models.MatchResult) (*models.Round, error) {
	first, second, err := result.Scores()
	if err != nil {
		return nil, validationError("%v", err)
	}

	unlock := s.locks.Lock(tournamentID)
	defer unlock()

	t, err := s.GetTournamentByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if t.Status != models.StatusInProgress {
		return nil, fmt.Errorf("%w: tournament %s is %q", ErrRoundNotPlayable, t.ID, t.Status)
	}
	round, err := s.roundAt(ctx, t, roundNumber)
	if err != nil {
		return nil, err
	}
	if roundNumber > t.CurrentRoundNumber {
		return nil, fmt.Errorf("%w: round %d has not started (current round is %d)", ErrRoundNotPlayable, roundNumber, t.CurrentRoundNumber)
	}
	if matchIndex < 0 || matchIndex >= len(round.Matches) {
		return nil, fmt.Errorf("%w: match %d in round %s", ErrNotFound, matchIndex, round.RoundID)
	}

	round.Matches[matchIndex][0].Score = &first
	round.Matches[matchIndex][1].Score = &second
	if err := s.roundRepo.Save(ctx, round); err != nil {
		return nil, fmt.Errorf("failed to save result in round %s: %w", round.RoundID, err)
	}

	s.logger.Info("match result recorded",
		slog.String("tournament_id", t.ID),
		slog.String("round_id", round.RoundID),
		slog.Int("match", matchIndex),
		slog.String("result", string(result)),
	)
	s.broadcast(t.ID, EventMatchUpdated, map[string]interface{}{
		"round_number": roundNumber,
		"match_index":  matchIndex,
		"match":        round.Matches[matchIndex],
	})
	return round, nil
}

// FinishRound closes the round in play. After the last round the tournament
// moves to Completed through the same guard as AdvanceStatus.
func (s *tournamentService) FinishRound(ctx context.Context, tournamentID string) (*models.Tournament, error) {
	unlock := s.locks.Lock(tournamentID)
	defer unlock()

	t, err := s.GetTournamentByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if t.Status != models.StatusInProgress {
		return nil, fmt.Errorf("%w: tournament %s is %q", ErrRoundNotPlayable, t.ID, t.Status)
	}
	round, err := s.roundAt(ctx, t, t.CurrentRoundNumber)
	if err != nil {
		return nil, err
	}
	if !round.Complete() {
		return nil, fmt.Errorf("%w: round %s", ErrRoundIncomplete, round.RoundID)
	}

	if t.CurrentRoundNumber+1 >= len(t.RoundIDs) {
		return s.completeLocked(ctx, t)
	}

	next := t.Clone()
	next.CurrentRoundNumber++
	if err := s.tournamentRepo.Update(ctx, next); err != nil {
		return nil, fmt.Errorf("failed to advance round of tournament %s: %w", t.ID, handleRepositoryError(err))
	}
	s.logger.Info("round finished", slog.String("tournament_id", t.ID), slog.Int("finished_round", t.CurrentRoundNumber))
	s.broadcast(t.ID, EventRoundFinished, map[string]interface{}{
		"finished_round":       t.CurrentRoundNumber,
		"current_round_number": next.CurrentRoundNumber,
	})
	return next, nil
}

func (s *tournamentService) roundAt(ctx context.Context, t *models.Tournament, roundNumber int) (*models.Round, error) {
	if len(t.RoundIDs) == 0 {
		return nil, fmt.Errorf("%w: tournament %s", ErrNoRoundsYet, t.ID)
	}
	if roundNumber < 0 || roundNumber >= len(t.RoundIDs) {
		return nil, fmt.Errorf("%w: round %d of tournament %s", ErrNotFound, roundNumber, t.ID)
	}
	round, err := s.roundRepo.GetByID(ctx, t.RoundIDs[roundNumber])
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	return round, nil
}

// loadRounds fetches the tournament's rounds concurrently, in play order. With
// skipMissing, rounds absent from the store are left out instead of failing.
func (s *tournamentService) loadRounds(ctx context.Context, t *models.Tournament, skipMissing bool) ([]*models.Round, error) {
	loaded := make([]*models.Round, len(t.RoundIDs))

	g, gCtx := errgroup.WithContext(ctx)
	for i, roundID := range t.RoundIDs {
		g.Go(func() error {
			round, err := s.roundRepo.GetByID(gCtx, roundID)
			if err != nil {
				if skipMissing && errors.Is(err, repositories.ErrRoundNotFound) {
					s.logger.Warn("round referenced by tournament is missing", slog.String("tournament_id", t.ID), slog.String("round_id", roundID))
					return nil
				}
				return fmt.Errorf("failed to load round %s: %w", roundID, handleRepositoryError(err))
			}
			loaded[i] = round
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rounds := make([]*models.Round, 0, len(loaded))
	for _, r := range loaded {
		if r != nil {
			rounds = append(rounds, r)
		}
	}
	return rounds, nil
}

func (s *tournamentService) attachPlayers(ctx context.Context, standings []*models.TournamentStanding) {
	if s.players == nil {
		return
	}
	for _, line := range standings {
		p, err := s.players.GetPlayer(ctx, line.PlayerID)
		if err != nil {
			continue
		}
		line.Player = p
	}
}

func (s *tournamentService) broadcast(tournamentID, eventType string, payload interface{}) {
	if s.hub == nil {
		return
	}
	room := brackets.RoomForTournament(tournamentID)
	s.hub.BroadcastToRoom(room, brackets.WebSocketMessage{Type: eventType, Payload: payload, RoomID: room})
}
