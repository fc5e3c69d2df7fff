package snippet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rpggio/officina/internal/repository"
)

// Service handles snippet operations.
type Service struct {
	store  repository.DocumentStore
	logger *slog.Logger
}

// NewService creates a new snippet service.
func NewService(store repository.DocumentStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{store: store, logger: logger}
}

// List returns all snippets in store order.
func (s *Service) List(ctx context.Context) ([]Snippet, error) {
	docs, err := s.store.List(ctx, repository.CollectionSnippets)
	if err != nil {
		return nil, fmt.Errorf("listing snippets: %w", err)
	}
	snippets := make([]Snippet, 0, len(docs))
	for _, doc := range docs {
		sn, err := decode(doc)
		if err != nil {
			s.logger.Warn("skipping undecodable snippet", "id", doc.ID, "error", err)
			continue
		}
		snippets = append(snippets, sn)
	}
	return snippets, nil
}

// Count returns the number of stored snippets.
func (s *Service) Count(ctx context.Context) (int, error) {
	docs, err := s.store.List(ctx, repository.CollectionSnippets)
	if err != nil {
		return 0, fmt.Errorf("counting snippets: %w", err)
	}
	return len(docs), nil
}

// Get fetches a snippet by ID.
func (s *Service) Get(ctx context.Context, id ID) (*Snippet, error) {
	doc, err := s.store.Get(ctx, repository.CollectionSnippets, string(id))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSnippetNotFound
		}
		return nil, fmt.Errorf("getting snippet: %w", err)
	}
	sn, err := decode(doc)
	if err != nil {
		return nil, err
	}
	return &sn, nil
}

// Save creates a snippet when id is empty and replaces it otherwise.
func (s *Service) Save(ctx context.Context, id ID, in Input) (*Snippet, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Language = strings.ToLower(strings.TrimSpace(in.Language))
	if in.Language == "" {
		in.Language = JavaScript
	}

	err := validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required.Error("il nome è obbligatorio")),
		validation.Field(&in.Language, validation.In(JavaScript, Python, HTML, CSS).Error("linguaggio non supportato")),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	fields, err := repository.EncodeFields(document(in))
	if err != nil {
		return nil, fmt.Errorf("encoding snippet: %w", err)
	}

	if id == "" {
		newID, err := s.store.Create(ctx, repository.CollectionSnippets, fields)
		if err != nil {
			return nil, fmt.Errorf("creating snippet: %w", err)
		}
		id = ID(newID)
	} else if err := s.store.Update(ctx, repository.CollectionSnippets, string(id), fields); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSnippetNotFound
		}
		return nil, fmt.Errorf("updating snippet: %w", err)
	}

	return &Snippet{ID: id, Name: in.Name, Code: in.Code, Language: in.Language}, nil
}

// Delete removes a snippet.
func (s *Service) Delete(ctx context.Context, id ID) error {
	if err := s.store.Delete(ctx, repository.CollectionSnippets, string(id)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSnippetNotFound
		}
		return fmt.Errorf("deleting snippet: %w", err)
	}
	return nil
}

func decode(doc repository.Document) (Snippet, error) {
	var d document
	if err := repository.DecodeDocument(doc, &d); err != nil {
		return Snippet{}, fmt.Errorf("decoding snippet: %w", err)
	}
	if d.Language == "" {
		d.Language = JavaScript
	}
	return Snippet{ID: ID(doc.ID), Name: d.Name, Code: d.Code, Language: d.Language}, nil
}
