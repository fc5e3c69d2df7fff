package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rpggio/officina/internal/repository"
)

// DefaultTable is the table used when no prefix is configured.
const DefaultTable = "documents"

// DocumentRepository implements repository.DocumentStore on a JSONB table.
type DocumentRepository struct {
	pool *pgxpool.Pool
	// table is the quoted identifier, safe to splice into statements.
	table string
	newID func() string
}

// NewDocumentRepository creates a repository over the given table.
func NewDocumentRepository(pool *pgxpool.Pool, table string) *DocumentRepository {
	if table == "" {
		table = DefaultTable
	}
	return &DocumentRepository{pool: pool, table: quoteIdent(table), newID: uuid.NewString}
}

func quoteIdent(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

// List returns every document of a collection in insertion order.
func (r *DocumentRepository) List(ctx context.Context, collection string) ([]repository.Document, error) {
	query := fmt.Sprintf(`SELECT id, data FROM %s WHERE collection = $1 ORDER BY seq ASC`, r.table)

	rows, err := r.pool.Query(ctx, query, collection)
	if err != nil {
		return nil, unavailable("list documents", err)
	}
	defer rows.Close()

	docs := []repository.Document{}
	for rows.Next() {
		var id string
		var data []byte
		if err := rows.Scan(&id, &data); err != nil {
			return nil, unavailable("scan document", err)
		}
		doc, err := decodeRow(id, data)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate documents", err)
	}
	return docs, nil
}

// Get retrieves a document by id.
func (r *DocumentRepository) Get(ctx context.Context, collection, id string) (repository.Document, error) {
	query := fmt.Sprintf(`SELECT data FROM %s WHERE collection = $1 AND id = $2`, r.table)

	var data []byte
	err := r.pool.QueryRow(ctx, query, collection, id).Scan(&data)
	if IsPgNoRowsError(err) {
		return repository.Document{}, repository.ErrNotFound
	}
	if err != nil {
		return repository.Document{}, unavailable("get document", err)
	}
	return decodeRow(id, data)
}

// Create inserts a document under a new UUID.
func (r *DocumentRepository) Create(ctx context.Context, collection string, fields repository.Fields) (string, error) {
	data, err := encodeFields(fields)
	if err != nil {
		return "", err
	}

	query := fmt.Sprintf(`INSERT INTO %s (collection, id, data) VALUES ($1, $2, $3::jsonb)`, r.table)

	id := r.newID()
	if _, err := r.pool.Exec(ctx, query, collection, id, data); err != nil {
		if IsPgDuplicateError(err) {
			return "", fmt.Errorf("document id collision %s: %w", id, repository.ErrUnavailable)
		}
		return "", unavailable("create document", err)
	}
	return id, nil
}

// Update merges the given top-level fields into the stored JSONB object.
func (r *DocumentRepository) Update(ctx context.Context, collection, id string, fields repository.Fields) error {
	patch, err := encodeFields(fields)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(
		`UPDATE %s SET data = data || $3::jsonb, updated_at = now() WHERE collection = $1 AND id = $2`,
		r.table,
	)

	tag, err := r.pool.Exec(ctx, query, collection, id, patch)
	if err != nil {
		return unavailable("update document", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a document.
func (r *DocumentRepository) Delete(ctx context.Context, collection, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE collection = $1 AND id = $2`, r.table)

	tag, err := r.pool.Exec(ctx, query, collection, id)
	if err != nil {
		return unavailable("delete document", err)
	}
	if tag.RowsAffected() == 0 {
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

func decodeRow(id string, data []byte) (repository.Document, error) {
	var fields repository.Fields
	if err := json.Unmarshal(data, &fields); err != nil {
		return repository.Document{}, unavailable("decode document "+id, err)
	}
	if fields == nil {
		fields = repository.Fields{}
	}
	return repository.Document{ID: id, Fields: fields}, nil
}
