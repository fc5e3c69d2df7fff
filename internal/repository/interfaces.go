package repository

import "context"

// Collection names used by the application.
const (
	CollectionProjects  = "projects"
	CollectionQuotes    = "quotes"
	CollectionContracts = "contracts"
	CollectionSnippets  = "snippets"
)

// Fields holds the top-level fields of a stored document.
type Fields map[string]any

// Document is a stored document together with its store-assigned identifier.
type Document struct {
	ID     string
	Fields Fields
}

// DocumentStore provides collection-scoped CRUD over a document database.
//
// There are no transactions spanning calls: two writes are two independent
// round trips, and the first persists even if the second fails.
type DocumentStore interface {
	// List returns every document in the collection in fetch order.
	List(ctx context.Context, collection string) ([]Document, error)
	// Get returns a single document or ErrNotFound.
	Get(ctx context.Context, collection, id string) (Document, error)
	// Create inserts a document and returns the identifier assigned by the store.
	Create(ctx context.Context, collection string, fields Fields) (string, error)
	// Update replaces the given top-level fields of an existing document.
	Update(ctx context.Context, collection, id string, fields Fields) error
	// Delete removes a document permanently.
	Delete(ctx context.Context, collection, id string) error
}
