package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Dosada05/chess-tournament/models"
)

var (
	ErrTournamentNotFound   = errors.New("tournament not found")
	ErrTournamentIDConflict = errors.New("tournament id already exists")
)

const tournamentIDField = "id"

type ListTournamentsFilter struct {
	Status *models.TournamentStatus
}

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, id string) (*models.Tournament, error)
	List(ctx context.Context, filter ListTournamentsFilter) ([]*models.Tournament, error)
	SearchBy(ctx context.Context, field string, value interface{}) ([]*models.Tournament, error)
	Update(ctx context.Context, tournament *models.Tournament) error
	DeleteAll(ctx context.Context) error
}

type documentTournamentRepository struct {
	docs Collection
}

func NewTournamentRepository(store DocumentStore) TournamentRepository {
	return &documentTournamentRepository{docs: store.Collection(CollectionTournaments)}
}

func (r *documentTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	existing, err := r.docs.FindBy(ctx, tournamentIDField, t.ID)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return fmt.Errorf("%w: %s", ErrTournamentIDConflict, t.ID)
	}
	doc, err := encodeTournament(t)
	if err != nil {
		return fmt.Errorf("failed to encode tournament %s: %w", t.ID, err)
	}
	return r.docs.Insert(ctx, doc)
}

func (r *documentTournamentRepository) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	docs, err := r.docs.FindBy(ctx, tournamentIDField, id)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrTournamentNotFound
	}
	return decodeTournament(docs[0])
}

func (r *documentTournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]*models.Tournament, error) {
	if filter.Status != nil {
		return r.SearchBy(ctx, "status", string(*filter.Status))
	}
	docs, err := r.docs.All(ctx)
	if err != nil {
		return nil, err
	}
	return decodeTournaments(docs)
}

func (r *documentTournamentRepository) SearchBy(ctx context.Context, field string, value interface{}) ([]*models.Tournament, error) {
	docs, err := r.docs.FindBy(ctx, field, value)
	if err != nil {
		return nil, err
	}
	return decodeTournaments(docs)
}

func (r *documentTournamentRepository) Update(ctx context.Context, t *models.Tournament) error {
	doc, err := encodeTournament(t)
	if err != nil {
		return fmt.Errorf("failed to encode tournament %s: %w", t.ID, err)
	}
	n, err := r.docs.Update(ctx, doc, tournamentIDField, t.ID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTournamentNotFound
	}
	return nil
}

func (r *documentTournamentRepository) DeleteAll(ctx context.Context) error {
	return r.docs.Truncate(ctx)
}

func decodeTournaments(docs []json.RawMessage) ([]*models.Tournament, error) {
	tournaments := make([]*models.Tournament, 0, len(docs))
	for _, doc := range docs {
		t, err := decodeTournament(doc)
		if err != nil {
			return nil, err
		}
		tournaments = append(tournaments, t)
	}
	return tournaments, nil
}
