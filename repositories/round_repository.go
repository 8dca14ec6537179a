package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/chess-tournament/models"
)

var ErrRoundNotFound = errors.New("round not found")

const roundIDField = "round_id"

type RoundRepository interface {
	// Save replaces the round with the same round id, or inserts it if none exists.
	Save(ctx context.Context, round *models.Round) error
	GetByID(ctx context.Context, roundID string) (*models.Round, error)
	DeleteAll(ctx context.Context) error
}

type documentRoundRepository struct {
	docs Collection
}

func NewRoundRepository(store DocumentStore) RoundRepository {
	return &documentRoundRepository{docs: store.Collection(CollectionRounds)}
}

func (r *documentRoundRepository) Save(ctx context.Context, round *models.Round) error {
	doc, err := encodeRound(round)
	if err != nil {
		return fmt.Errorf("failed to encode round %s: %w", round.RoundID, err)
	}
	n, err := r.docs.Update(ctx, doc, roundIDField, round.RoundID)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	return r.docs.Insert(ctx, doc)
}

func (r *documentRoundRepository) GetByID(ctx context.Context, roundID string) (*models.Round, error) {
	docs, err := r.docs.FindBy(ctx, roundIDField, roundID)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrRoundNotFound
	}
	return decodeRound(docs[0])
}

func (r *documentRoundRepository) DeleteAll(ctx context.Context) error {
	return r.docs.Truncate(ctx)
}
