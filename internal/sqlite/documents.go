package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/officina/internal/repository"
)

// DocumentRepository implements repository.DocumentStore for SQLite
type DocumentRepository struct {
	db    *DB
	newID func() string
}

// NewDocumentRepository creates a new DocumentRepository
func NewDocumentRepository(db *DB) *DocumentRepository {
	return &DocumentRepository{db: db, newID: uuid.NewString}
}

// List returns every document of a collection in insertion order
func (r *DocumentRepository) List(ctx context.Context, collection string) ([]repository.Document, error) {
	query := `
		SELECT id, data
		FROM documents
		WHERE collection = ?
		ORDER BY seq ASC
	`

	rows, err := r.db.QueryContext(ctx, query, collection)
	if err != nil {
		return nil, unavailable("failed to list documents", err)
	}
	defer rows.Close()

	docs := []repository.Document{}
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, unavailable("failed to scan document", err)
		}
		doc, err := decodeRow(id, data)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	if err = rows.Err(); err != nil {
		return nil, unavailable("error iterating document rows", err)
	}

	return docs, nil
}

// Get retrieves a document by ID
func (r *DocumentRepository) Get(ctx context.Context, collection, id string) (repository.Document, error) {
	query := `
		SELECT data
		FROM documents
		WHERE collection = ? AND id = ?
	`

	var data string
	err := r.db.QueryRowContext(ctx, query, collection, id).Scan(&data)
	if err == sql.ErrNoRows {
		return repository.Document{}, repository.ErrNotFound
	}
	if err != nil {
		return repository.Document{}, unavailable("failed to get document", err)
	}

	return decodeRow(id, data)
}

// Create inserts a document under a new UUID
func (r *DocumentRepository) Create(ctx context.Context, collection string, fields repository.Fields) (string, error) {
	data, err := encodeFields(fields)
	if err != nil {
		return "", err
	}

	query := `
		INSERT INTO documents (collection, id, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`

	id := r.newID()
	now := time.Now().UTC()
	if _, err := r.db.ExecContext(ctx, query, collection, id, data, now, now); err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("document id collision %s: %w", id, repository.ErrUnavailable)
		}
		return "", unavailable("failed to create document", err)
	}

	return id, nil
}

// Update merges the given top-level fields into the stored document
func (r *DocumentRepository) Update(ctx context.Context, collection, id string, fields repository.Fields) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("failed to begin transaction", err)
	}
	defer tx.Rollback()

	var data string
	err = tx.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE collection = ? AND id = ?`,
		collection, id,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return repository.ErrNotFound
	}
	if err != nil {
		return unavailable("failed to load document", err)
	}

	current, err := decodeRow(id, data)
	if err != nil {
		return err
	}
	for k, v := range fields {
		current.Fields[k] = v
	}

	merged, err := encodeFields(current.Fields)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE documents SET data = ?, updated_at = ? WHERE collection = ? AND id = ?`,
		merged, time.Now().UTC(), collection, id,
	)
	if err != nil {
		return unavailable("failed to update document", err)
	}

	if err = tx.Commit(); err != nil {
		return unavailable("failed to commit transaction", err)
	}

	return nil
}

// Delete removes a document
func (r *DocumentRepository) Delete(ctx context.Context, collection, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND id = ?`,
		collection, id,
	)
	if err != nil {
		return unavailable("failed to delete document", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return unavailable("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func encodeFields(fields repository.Fields) (string, error) {
	if fields == nil {
		fields = repository.Fields{}
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("%w: %v", repository.ErrInvalidInput, err)
	}
	return string(data), nil
}

func decodeRow(id, data string) (repository.Document, error) {
	var fields repository.Fields
	if err := json.Unmarshal([]byte(data), &fields); err != nil {
		return repository.Document{}, unavailable("failed to decode document "+id, err)
	}
	if fields == nil {
		fields = repository.Fields{}
	}
	return repository.Document{ID: id, Fields: fields}, nil
}
