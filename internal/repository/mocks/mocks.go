package mocks

import (
	"context"

	"github.com/rpggio/officina/internal/repository"
	"github.com/stretchr/testify/mock"
)

// DocumentStore is a mock for repository.DocumentStore.
type DocumentStore struct {
	mock.Mock
}

func (m *DocumentStore) List(ctx context.Context, collection string) ([]repository.Document, error) {
	args := m.Called(ctx, collection)
	if docs, ok := args.Get(0).([]repository.Document); ok {
		return docs, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *DocumentStore) Get(ctx context.Context, collection, id string) (repository.Document, error) {
	args := m.Called(ctx, collection, id)
	if doc, ok := args.Get(0).(repository.Document); ok {
		return doc, args.Error(1)
	}
	return repository.Document{}, args.Error(1)
}

func (m *DocumentStore) Create(ctx context.Context, collection string, fields repository.Fields) (string, error) {
	args := m.Called(ctx, collection, fields)
	return args.String(0), args.Error(1)
}

func (m *DocumentStore) Update(ctx context.Context, collection, id string, fields repository.Fields) error {
	args := m.Called(ctx, collection, id, fields)
	return args.Error(0)
}

func (m *DocumentStore) Delete(ctx context.Context, collection, id string) error {
	args := m.Called(ctx, collection, id)
	return args.Error(0)
}
