// Package memstore provides an in-process document store. Documents are
// normalized through JSON on every write so callers observe the same value
// shapes a remote store would hand back.
package memstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rpggio/officina/internal/repository"
)

type collection struct {
	order []string
	docs  map[string][]byte
}

// Store implements repository.DocumentStore in memory.
type Store struct {
	mu          sync.RWMutex
	collections map[string]*collection
	newID       func() string
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		collections: make(map[string]*collection),
		newID:       uuid.NewString,
	}
}

// WithIDGenerator overrides identifier generation. Intended for tests that need
// predictable ids.
func (s *Store) WithIDGenerator(fn func() string) *Store {
	s.newID = fn
	return s
}

func (s *Store) coll(name string) *collection {
	c, ok := s.collections[name]
	if !ok {
		c = &collection{docs: make(map[string][]byte)}
		s.collections[name] = c
	}
	return c
}

// List returns documents in insertion order.
func (s *Store) List(_ context.Context, name string) ([]repository.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[name]
	if !ok {
		return []repository.Document{}, nil
	}
	docs := make([]repository.Document, 0, len(c.order))
	for _, id := range c.order {
		doc, err := decode(id, c.docs[id])
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Get returns a document by id.
func (s *Store) Get(_ context.Context, name, id string) (repository.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[name]
	if !ok {
		return repository.Document{}, repository.ErrNotFound
	}
	data, ok := c.docs[id]
	if !ok {
		return repository.Document{}, repository.ErrNotFound
	}
	return decode(id, data)
}

// Create inserts a document under a freshly generated id.
func (s *Store) Create(_ context.Context, name string, fields repository.Fields) (string, error) {
	data, err := encode(fields)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.coll(name)
	id := s.newID()
	if _, exists := c.docs[id]; exists {
		return "", fmt.Errorf("%w: duplicate id %s", repository.ErrUnavailable, id)
	}
	c.docs[id] = data
	c.order = append(c.order, id)
	return id, nil
}

// Update merges the given top-level fields into an existing document.
func (s *Store) Update(_ context.Context, name, id string, fields repository.Fields) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[name]
	if !ok {
		return repository.ErrNotFound
	}
	data, ok := c.docs[id]
	if !ok {
		return repository.ErrNotFound
	}

	var current repository.Fields
	if err := json.Unmarshal(data, &current); err != nil {
		return fmt.Errorf("%w: corrupt document %s: %v", repository.ErrUnavailable, id, err)
	}
	if current == nil {
		current = repository.Fields{}
	}
	for k, v := range fields {
		current[k] = v
	}

	merged, err := encode(current)
	if err != nil {
		return err
	}
	c.docs[id] = merged
	return nil
}

// Delete removes a document.
func (s *Store) Delete(_ context.Context, name, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[name]
	if !ok {
		return repository.ErrNotFound
	}
	if _, ok := c.docs[id]; !ok {
		return repository.ErrNotFound
	}
	delete(c.docs, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

func encode(fields repository.Fields) ([]byte, error) {
	if fields == nil {
		fields = repository.Fields{}
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrInvalidInput, err)
	}
	return data, nil
}

func decode(id string, data []byte) (repository.Document, error) {
	var fields repository.Fields
	if err := json.Unmarshal(data, &fields); err != nil {
		return repository.Document{}, fmt.Errorf("%w: corrupt document %s: %v", repository.ErrUnavailable, id, err)
	}
	if fields == nil {
		fields = repository.Fields{}
	}
	return repository.Document{ID: id, Fields: fields}, nil
}
