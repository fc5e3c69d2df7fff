// Package firestore stores documents in Google Cloud Firestore collections.
package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/rpggio/officina/internal/repository"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Store implements repository.DocumentStore on top of a Firestore client.
type Store struct {
	client *firestore.Client
}

// New connects to Firestore. When FIRESTORE_EMULATOR_HOST is set the client
// talks to the emulator instead.
func New(ctx context.Context, projectID string) (*Store, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("create firestore client: %w", err)
	}
	return &Store{client: client}, nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

// List returns every document in the collection.
func (s *Store) List(ctx context.Context, collection string) ([]repository.Document, error) {
	snaps, err := s.client.Collection(collection).Documents(ctx).GetAll()
	if err != nil {
		return nil, classify("list "+collection, err)
	}

	docs := make([]repository.Document, 0, len(snaps))
	for _, snap := range snaps {
		docs = append(docs, toDocument(snap))
	}
	return docs, nil
}

// Get reads a single document.
func (s *Store) Get(ctx context.Context, collection, id string) (repository.Document, error) {
	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		return repository.Document{}, classify("get "+collection+"/"+id, err)
	}
	return toDocument(snap), nil
}

// Create adds a document with a Firestore-assigned id.
func (s *Store) Create(ctx context.Context, collection string, fields repository.Fields) (string, error) {
	if fields == nil {
		fields = repository.Fields{}
	}
	ref, _, err := s.client.Collection(collection).Add(ctx, map[string]any(fields))
	if err != nil {
		return "", classify("create in "+collection, err)
	}
	return ref.ID, nil
}

// Update replaces the given top-level fields. The document must exist.
func (s *Store) Update(ctx context.Context, collection, id string, fields repository.Fields) error {
	ref := s.client.Collection(collection).Doc(id)

	if len(fields) == 0 {
		if _, err := ref.Get(ctx); err != nil {
			return classify("update "+collection+"/"+id, err)
		}
		return nil
	}

	updates := make([]firestore.Update, 0, len(fields))
	for key, value := range fields {
		updates = append(updates, firestore.Update{FieldPath: firestore.FieldPath{key}, Value: value})
	}
	if _, err := ref.Update(ctx, updates); err != nil {
		return classify("update "+collection+"/"+id, err)
	}
	return nil
}

// Delete removes a document. A missing document reports repository.ErrNotFound.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.client.Collection(collection).Doc(id).Delete(ctx, firestore.Exists); err != nil {
		return classify("delete "+collection+"/"+id, err)
	}
	return nil
}

func toDocument(snap *firestore.DocumentSnapshot) repository.Document {
	fields := repository.Fields(snap.Data())
	if fields == nil {
		fields = repository.Fields{}
	}
	return repository.Document{ID: snap.Ref.ID, Fields: fields}
}

func classify(op string, err error) error {
	switch status.Code(err) {
	case codes.NotFound:
		return repository.ErrNotFound
	case codes.InvalidArgument:
		return fmt.Errorf("%s: %w: %w", op, repository.ErrInvalidInput, err)
	default:
		return fmt.Errorf("%s: %w: %w", op, repository.ErrUnavailable, err)
	}
}
