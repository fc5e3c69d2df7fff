// Package dashboard summarizes the workspace for the landing view.
package dashboard

import (
	"context"
	"fmt"

	"github.com/rpggio/officina/internal/domain/project"
)

// RecentLimit is the number of recently modified projects shown.
const RecentLimit = 5

// Summary is the dashboard payload.
type Summary struct {
	ProjectCount   int               `json:"projectCount"`
	SnippetCount   int               `json:"snippetCount"`
	RecentProjects []project.Project `json:"recentProjects"`
}

// ProjectLister lists projects.
type ProjectLister interface {
	List(ctx context.Context) ([]project.Project, error)
}

// SnippetCounter counts snippets.
type SnippetCounter interface {
	Count(ctx context.Context) (int, error)
}

// Service builds dashboard summaries.
type Service struct {
	projects ProjectLister
	snippets SnippetCounter
}

// NewService creates a new dashboard service.
func NewService(projects ProjectLister, snippets SnippetCounter) *Service {
	return &Service{projects: projects, snippets: snippets}
}

// Summary counts projects and snippets and picks the most recently modified projects.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	projects, err := s.projects.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading projects: %w", err)
	}
	snippets, err := s.snippets.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading snippets: %w", err)
	}
	return &Summary{
		ProjectCount:   len(projects),
		SnippetCount:   snippets,
		RecentProjects: project.Recent(projects, RecentLimit),
	}, nil
}
