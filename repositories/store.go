package repositories

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

const (
	CollectionTournaments = "tournaments"
	CollectionRounds      = "rounds"
	CollectionPlayers     = "players"
)

var (
	ErrStoreNotMigrated  = errors.New("record store schema is missing (run migrations)")
	ErrUnsupportedSchema = errors.New("record has an unsupported schema version")
)

// Collection is a set of JSON documents of one kind.
type Collection interface {
	// Insert appends doc. Uniqueness is the caller's concern.
	Insert(ctx context.Context, doc []byte) error
	// FindBy returns every document whose top-level field equals value, in insertion order.
	FindBy(ctx context.Context, field string, value interface{}) ([]json.RawMessage, error)
	All(ctx context.Context) ([]json.RawMessage, error)
	// Update replaces every document whose field equals value and reports how many were replaced.
	Update(ctx context.Context, doc []byte, field string, value interface{}) (int64, error)
	Truncate(ctx context.Context) error
}

// DocumentStore hands out named collections.
type DocumentStore interface {
	Collection(name string) Collection
}

func encodeMatchValue(value interface{}) ([]byte, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to encode match value for field lookup: %w", err)
	}
	return raw, nil
}

func compactJSON(raw []byte) []byte {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return raw
	}
	return buf.Bytes()
}
