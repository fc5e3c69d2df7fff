package dependent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rpggio/officina/internal/attachment"
	"github.com/rpggio/officina/internal/domain/project"
	"github.com/rpggio/officina/internal/repository"
)

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Service manages one kind of dependent record and keeps the owning project's
// back-reference in step with it.
type Service struct {
	kind     Kind
	store    repository.DocumentStore
	projects Projects
	opts     Options
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a new dependent record service.
func NewService(kind Kind, store repository.DocumentStore, projects Projects, opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		kind:     kind,
		store:    store,
		projects: projects,
		opts:     opts,
		logger:   logger.With("collection", kind.Collection),
		now:      time.Now,
	}
}

// WithClock overrides the time source used for createdAt.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Kind returns the record kind served.
func (s *Service) Kind() Kind {
	return s.kind
}

// List returns all records in store order.
func (s *Service) List(ctx context.Context) ([]Record, error) {
	docs, err := s.store.List(ctx, s.kind.Collection)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", s.kind.Collection, err)
	}

	records := make([]Record, 0, len(docs))
	for _, doc := range docs {
		rec, err := decode(doc)
		if err != nil {
			s.logger.Warn("skipping undecodable record", "id", doc.ID, "error", err)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// ListWithProjects returns every record joined with its project's name.
func (s *Service) ListWithProjects(ctx context.Context) ([]Listing, error) {
	records, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	projects, err := s.projects.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}

	names := make(map[project.ID]string, len(projects))
	for _, p := range projects {
		names[p.ID] = p.Name
	}

	listings := make([]Listing, 0, len(records))
	for _, rec := range records {
		name := names[rec.ProjectID]
		if name == "" {
			name = NoProject
		}
		listings = append(listings, Listing{
			ID:          rec.ID,
			Name:        rec.Name,
			ProjectID:   rec.ProjectID,
			ProjectName: name,
			FileName:    rec.FileName,
			CreatedAt:   rec.CreatedAt,
		})
	}
	return listings, nil
}

// Get fetches a record by ID.
func (s *Service) Get(ctx context.Context, id ID) (*Record, error) {
	doc, err := s.store.Get(ctx, s.kind.Collection, string(id))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("getting %s: %w", s.kind.Singular, err)
	}
	rec, err := decode(doc)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Download decodes the record's attachment. A malformed attachment yields
// attachment.ErrMalformed.
func (s *Service) Download(ctx context.Context, id ID) (attachment.Blob, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return attachment.Blob{}, err
	}
	blob, err := attachment.Download(rec.FileContent, rec.FileName, s.kind.FallbackFile)
	if err != nil {
		return attachment.Blob{}, fmt.Errorf("decoding %s %s: %w", s.kind.Singular, id, err)
	}
	return blob, nil
}

// Create inserts a record and, when it names a project, points that project's
// back-reference at it. If the second write fails the record is returned
// together with ErrPartialReferenceUpdate, unless compensation removed it.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Record, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.ProjectID = project.ID(strings.TrimSpace(string(req.ProjectID)))
	if err := validateCreate(&req); err != nil {
		return nil, err
	}

	if s.opts.StrictLinking && req.ProjectID != "" {
		if err := s.checkUnlinked(ctx, req.ProjectID); err != nil {
			return nil, err
		}
	}

	rec := Record{
		Name:        req.Name,
		ProjectID:   req.ProjectID,
		FileName:    req.FileName,
		FileContent: req.FileContent,
		CreatedAt:   s.now().UTC().Format(timestampLayout),
	}

	fields, err := repository.EncodeFields(document{
		Name:        rec.Name,
		ProjectID:   string(rec.ProjectID),
		FileName:    rec.FileName,
		FileContent: rec.FileContent,
		CreatedAt:   rec.CreatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", s.kind.Singular, err)
	}

	id, err := s.store.Create(ctx, s.kind.Collection, fields)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", s.kind.Singular, err)
	}
	rec.ID = ID(id)

	if rec.ProjectID == "" {
		return &rec, nil
	}

	if err := s.projects.SetReference(ctx, rec.ProjectID, s.kind.Ref, id); err != nil {
		s.logger.Warn("back-reference not written",
			"id", id,
			"project_id", rec.ProjectID,
			"error", err,
		)
		if s.opts.CompensateOnLinkFailure {
			if delErr := s.store.Delete(ctx, s.kind.Collection, id); delErr != nil {
				s.logger.Error("compensating delete failed", "id", id, "error", delErr)
				return &rec, fmt.Errorf("%w: %w", ErrPartialReferenceUpdate, errors.Join(err, delErr))
			}
			return nil, fmt.Errorf("%w: %w", ErrPartialReferenceUpdate, err)
		}
		return &rec, fmt.Errorf("%w: %w", ErrPartialReferenceUpdate, err)
	}

	return &rec, nil
}

// Delete removes a record and clears the first project whose back-reference
// names it. A record that is already gone still has its reference cleared, so
// retrying after a partial failure repairs the project; ErrRecordNotFound is
// returned only when nothing referenced it.
func (s *Service) Delete(ctx context.Context, id ID) error {
	gone := false
	if err := s.store.Delete(ctx, s.kind.Collection, string(id)); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("deleting %s: %w", s.kind.Singular, err)
		}
		gone = true
	}

	projects, err := s.projects.List(ctx)
	if err != nil {
		if gone {
			return fmt.Errorf("listing projects: %w", err)
		}
		return fmt.Errorf("%w: %w", ErrPartialReferenceUpdate, err)
	}

	for _, p := range projects {
		if p.Reference(s.kind.Ref) != string(id) {
			continue
		}
		if err := s.projects.SetReference(ctx, p.ID, s.kind.Ref, ""); err != nil {
			s.logger.Warn("back-reference not cleared", "id", id, "project_id", p.ID, "error", err)
			return fmt.Errorf("%w: %w", ErrPartialReferenceUpdate, err)
		}
		if gone {
			s.logger.Info("stale back-reference cleared", "id", id, "project_id", p.ID)
		}
		return nil
	}

	if gone {
		return ErrRecordNotFound
	}
	return nil
}

// Resolve checks a back-reference value against the store. Empty values
// resolve to nil.
func (s *Service) Resolve(ctx context.Context, ref string) (*Link, error) {
	if ref == "" {
		return nil, nil
	}
	rec, err := s.Get(ctx, ID(ref))
	if errors.Is(err, ErrRecordNotFound) {
		return &Link{ID: ID(ref), Missing: true}, nil
	}
	if err != nil {
		return nil, err
	}
	return &Link{ID: rec.ID, Name: rec.Name}, nil
}

// ResolveLinks resolves a project's quote and contract references.
func ResolveLinks(ctx context.Context, p project.Project, quotes, contracts *Service) (Links, error) {
	var links Links
	var err error
	if links.Quote, err = quotes.Resolve(ctx, p.QuoteID); err != nil {
		return Links{}, fmt.Errorf("resolving quote: %w", err)
	}
	if links.Contract, err = contracts.Resolve(ctx, p.ContractID); err != nil {
		return Links{}, fmt.Errorf("resolving contract: %w", err)
	}
	return links, nil
}

func (s *Service) checkUnlinked(ctx context.Context, projectID project.ID) error {
	p, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return err
	}
	current := p.Reference(s.kind.Ref)
	if current == "" {
		return nil
	}
	_, err = s.Get(ctx, ID(current))
	if errors.Is(err, ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: project %s already has %s %s", ErrProjectAlreadyLinked, projectID, s.kind.Singular, current)
}

func validateCreate(req *CreateRequest) error {
	err := validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required.Error("il nome è obbligatorio")),
		validation.Field(&req.FileContent,
			validation.Required.Error("il file è obbligatorio"),
			validation.By(decodable),
		),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return nil
}

func decodable(value interface{}) error {
	content, _ := value.(string)
	if content == "" {
		return nil
	}
	if _, err := attachment.Decode(content); err != nil {
		return errors.New("file non leggibile")
	}
	return nil
}

func decode(doc repository.Document) (Record, error) {
	var d document
	if err := repository.DecodeDocument(doc, &d); err != nil {
		return Record{}, fmt.Errorf("decoding record: %w", err)
	}
	return Record{
		ID:          ID(doc.ID),
		Name:        d.Name,
		ProjectID:   project.ID(d.ProjectID),
		FileName:    d.FileName,
		FileContent: d.FileContent,
		CreatedAt:   d.CreatedAt,
	}, nil
}
