package repositories

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

type memoryDocumentStore struct {
	mu          sync.Mutex
	collections map[string]*memoryCollection
}

// NewMemoryDocumentStore returns a process-local store. Each call yields an
// isolated store, so tests never share state.
func NewMemoryDocumentStore() DocumentStore {
	return &memoryDocumentStore{collections: make(map[string]*memoryCollection)}
}

func (s *memoryDocumentStore) Collection(name string) Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[name]
	if !ok {
		c = &memoryCollection{}
		s.collections[name] = c
	}
	return c
}

type memoryCollection struct {
	mu   sync.RWMutex
	docs []json.RawMessage
}

func (c *memoryCollection) Insert(ctx context.Context, doc []byte) error {
	if !json.Valid(doc) {
		return fmt.Errorf("memory collection: document is not valid JSON")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs = append(c.docs, append(json.RawMessage(nil), doc...))
	return nil
}

func (c *memoryCollection) FindBy(ctx context.Context, field string, value interface{}) ([]json.RawMessage, error) {
	want, err := encodeMatchValue(value)
	if err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	found := make([]json.RawMessage, 0)
	for _, doc := range c.docs {
		ok, err := fieldEquals(doc, field, want)
		if err != nil {
			return nil, err
		}
		if ok {
			found = append(found, append(json.RawMessage(nil), doc...))
		}
	}
	return found, nil
}

func (c *memoryCollection) All(ctx context.Context) ([]json.RawMessage, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	all := make([]json.RawMessage, 0, len(c.docs))
	for _, doc := range c.docs {
		all = append(all, append(json.RawMessage(nil), doc...))
	}
	return all, nil
}

func (c *memoryCollection) Update(ctx context.Context, doc []byte, field string, value interface{}) (int64, error) {
	if !json.Valid(doc) {
		return 0, fmt.Errorf("memory collection: document is not valid JSON")
	}
	want, err := encodeMatchValue(value)
	if err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	var n int64
	for i, existing := range c.docs {
		ok, err := fieldEquals(existing, field, want)
		if err != nil {
			return n, err
		}
		if ok {
			c.docs[i] = append(json.RawMessage(nil), doc...)
			n++
		}
	}
	return n, nil
}

func (c *memoryCollection) Truncate(ctx context.Context) error {
	c.mu.Lock()
	c.docs = nil
	c.mu.Unlock()
	return nil
}

func fieldEquals(doc json.RawMessage, field string, want []byte) (bool, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(doc, &fields); err != nil {
		return false, fmt.Errorf("memory collection: stored document is not an object: %w", err)
	}
	got, ok := fields[field]
	if !ok {
		return false, nil
	}
	return bytes.Equal(compactJSON(got), compactJSON(want)), nil
}
