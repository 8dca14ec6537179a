package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

type postgresDocumentStore struct {
	db *sql.DB
}

// NewPostgresDocumentStore stores every collection in the documents table
// created by the migrations in db/migrations.
func NewPostgresDocumentStore(db *sql.DB) DocumentStore {
	return &postgresDocumentStore{db: db}
}

func (s *postgresDocumentStore) Collection(name string) Collection {
	return &postgresCollection{db: s.db, name: name}
}

type postgresCollection struct {
	db   *sql.DB
	name string
}

func (c *postgresCollection) Insert(ctx context.Context, doc []byte) error {
	query := `INSERT INTO documents (collection, body) VALUES ($1, $2::jsonb)`
	if _, err := c.db.ExecContext(ctx, query, c.name, string(doc)); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", c.name, handleStoreError(err))
	}
	return nil
}

func (c *postgresCollection) FindBy(ctx context.Context, field string, value interface{}) ([]json.RawMessage, error) {
	want, err := encodeMatchValue(value)
	if err != nil {
		return nil, err
	}
	query := `
		SELECT body
		FROM documents
		WHERE collection = $1 AND body -> $2::text = $3::jsonb
		ORDER BY seq`
	return c.queryBodies(ctx, query, c.name, field, string(want))
}

func (c *postgresCollection) All(ctx context.Context) ([]json.RawMessage, error) {
	query := `SELECT body FROM documents WHERE collection = $1 ORDER BY seq`
	return c.queryBodies(ctx, query, c.name)
}

func (c *postgresCollection) Update(ctx context.Context, doc []byte, field string, value interface{}) (int64, error) {
	want, err := encodeMatchValue(value)
	if err != nil {
		return 0, err
	}
	query := `
		UPDATE documents SET
			body = $1::jsonb,
			updated_at = NOW()
		WHERE collection = $2 AND body -> $3::text = $4::jsonb`
	result, err := c.db.ExecContext(ctx, query, string(doc), c.name, field, string(want))
	if err != nil {
		return 0, fmt.Errorf("failed to update %s by %s: %w", c.name, field, handleStoreError(err))
	}
	return affectedRows(result)
}

func (c *postgresCollection) Truncate(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM documents WHERE collection = $1`, c.name); err != nil {
		return fmt.Errorf("failed to truncate %s: %w", c.name, handleStoreError(err))
	}
	return nil
}

func (c *postgresCollection) queryBodies(ctx context.Context, query string, args ...interface{}) ([]json.RawMessage, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", c.name, handleStoreError(err))
	}
	defer rows.Close()

	docs := make([]json.RawMessage, 0)
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("failed to scan %s document: %w", c.name, err)
		}
		docs = append(docs, json.RawMessage(body))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during %s rows iteration: %w", c.name, err)
	}
	return docs, nil
}
