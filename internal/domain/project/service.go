package project

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/rpggio/officina/internal/repository"
)

// timestampLayout matches JavaScript's Date.toISOString output.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Service handles project operations.
type Service struct {
	store  repository.DocumentStore
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new project service.
func NewService(store repository.DocumentStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{store: store, logger: logger, now: time.Now}
}

// WithClock overrides the time source used for timestamps.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) timestamp() string {
	return s.now().UTC().Format(timestampLayout)
}

// Create validates and stores a new project.
func (s *Service) Create(ctx context.Context, in Input) (*Project, error) {
	in = normalize(in)
	if err := validateInput(&in); err != nil {
		return nil, err
	}

	ts := s.timestamp()
	proj := fromInput(in)
	proj.CreatedAt = ts
	proj.LastModified = ts

	fields, err := repository.EncodeFields(toDocument(proj))
	if err != nil {
		return nil, fmt.Errorf("encoding project: %w", err)
	}

	id, err := s.store.Create(ctx, repository.CollectionProjects, fields)
	if err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}
	proj.ID = ID(id)

	s.logger.Debug("project created", "id", id, "name", proj.Name)
	return &proj, nil
}

// Get fetches a project by ID.
func (s *Service) Get(ctx context.Context, id ID) (*Project, error) {
	doc, err := s.store.Get(ctx, repository.CollectionProjects, string(id))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("getting project: %w", err)
	}
	proj, err := decode(doc)
	if err != nil {
		return nil, err
	}
	return &proj, nil
}

// List returns every project in store order.
func (s *Service) List(ctx context.Context) ([]Project, error) {
	docs, err := s.store.List(ctx, repository.CollectionProjects)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}

	projects := make([]Project, 0, len(docs))
	for _, doc := range docs {
		proj, err := decode(doc)
		if err != nil {
			s.logger.Warn("skipping undecodable project", "id", doc.ID, "error", err)
			continue
		}
		projects = append(projects, proj)
	}
	return projects, nil
}

// Update replaces the editable fields of a project. Back-references and
// createdAt are carried over from the stored document.
func (s *Service) Update(ctx context.Context, id ID, in Input) (*Project, error) {
	in = normalize(in)
	if err := validateInput(&in); err != nil {
		return nil, err
	}

	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	proj := fromInput(in)
	proj.ID = id
	proj.QuoteID = existing.QuoteID
	proj.ContractID = existing.ContractID
	proj.CreatedAt = existing.CreatedAt
	proj.LastModified = s.timestamp()
	if in.Active == nil {
		proj.Active = existing.Active
	}

	fields, err := repository.EncodeFields(toDocument(proj))
	if err != nil {
		return nil, fmt.Errorf("encoding project: %w", err)
	}

	if err := s.store.Update(ctx, repository.CollectionProjects, string(id), fields); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("updating project: %w", err)
	}
	return &proj, nil
}

// Delete removes a project. Quotes and contracts pointing at it are left as is.
func (s *Service) Delete(ctx context.Context, id ID) error {
	if err := s.store.Delete(ctx, repository.CollectionProjects, string(id)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("deleting project: %w", err)
	}
	s.logger.Debug("project deleted", "id", id)
	return nil
}

// SetReference patches a single back-reference field. lastModified is not touched.
func (s *Service) SetReference(ctx context.Context, id ID, field RefField, value string) error {
	if field != QuoteRef && field != ContractRef {
		return fmt.Errorf("%w: %q", ErrInvalidReference, field)
	}
	err := s.store.Update(ctx, repository.CollectionProjects, string(id), repository.Fields{string(field): value})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("setting %s on project %s: %w", field, id, err)
	}
	return nil
}

func fromInput(in Input) Project {
	active := true
	if in.Active != nil {
		active = *in.Active
	}
	return Project{
		Name:           in.Name,
		URL:            in.URL,
		Client:         in.Client,
		Active:         active,
		Notes:          in.Notes,
		Tags:           in.Tags,
		ContractPeriod: in.ContractPeriod,
	}
}

func decode(doc repository.Document) (Project, error) {
	var d document
	if err := repository.DecodeDocument(doc, &d); err != nil {
		return Project{}, fmt.Errorf("decoding project: %w", err)
	}
	return d.project(ID(doc.ID)), nil
}
