package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Dosada05/chess-tournament/models"
)

var (
	ErrPlayerNotFound   = errors.New("player not found")
	ErrPlayerIDConflict = errors.New("player id already exists")
)

const playerIDField = "player_id"

type PlayerRepository interface {
	Create(ctx context.Context, player *models.Player) error
	GetByID(ctx context.Context, id string) (*models.Player, error)
	List(ctx context.Context) ([]*models.Player, error)
	SearchBy(ctx context.Context, field string, value interface{}) ([]*models.Player, error)
	DeleteAll(ctx context.Context) error
}

type documentPlayerRepository struct {
	docs Collection
}

func NewPlayerRepository(store DocumentStore) PlayerRepository {
	return &documentPlayerRepository{docs: store.Collection(CollectionPlayers)}
}

func (r *documentPlayerRepository) Create(ctx context.Context, p *models.Player) error {
	existing, err := r.docs.FindBy(ctx, playerIDField, p.ID)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return fmt.Errorf("%w: %s", ErrPlayerIDConflict, p.ID)
	}
	doc, err := encodePlayer(p)
	if err != nil {
		return fmt.Errorf("failed to encode player %s: %w", p.ID, err)
	}
	return r.docs.Insert(ctx, doc)
}

func (r *documentPlayerRepository) GetByID(ctx context.Context, id string) (*models.Player, error) {
	docs, err := r.docs.FindBy(ctx, playerIDField, id)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrPlayerNotFound
	}
	return decodePlayer(docs[0])
}

func (r *documentPlayerRepository) List(ctx context.Context) ([]*models.Player, error) {
	docs, err := r.docs.All(ctx)
	if err != nil {
		return nil, err
	}
	return decodePlayers(docs)
}

func (r *documentPlayerRepository) SearchBy(ctx context.Context, field string, value interface{}) ([]*models.Player, error) {
	docs, err := r.docs.FindBy(ctx, field, value)
	if err != nil {
		return nil, err
	}
	return decodePlayers(docs)
}

func (r *documentPlayerRepository) DeleteAll(ctx context.Context) error {
	return r.docs.Truncate(ctx)
}

func decodePlayers(docs []json.RawMessage) ([]*models.Player, error) {
	players := make([]*models.Player, 0, len(docs))
	for _, doc := range docs {
		p, err := decodePlayer(doc)
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, nil
}
