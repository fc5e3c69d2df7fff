package mcp

import (
	"github.com/rpggio/officina/internal/domain/dependent"
	"github.com/rpggio/officina/internal/domain/project"
	"github.com/rpggio/officina/internal/domain/snippet"
)

type emptyParams struct{}

type ListProjectsParams struct {
	Search string   `json:"search,omitempty" jsonschema:"case-insensitive text matched against name, client and notes"`
	Tags   []string `json:"tags,omitempty" jsonschema:"every tag must be present on the project"`
}

type GetProjectParams struct {
	ID string `json:"id" jsonschema:"project id"`
}

type CreateProjectParams struct {
	Name          string   `json:"name" jsonschema:"project name, required"`
	URL           string   `json:"url,omitempty" jsonschema:"project URL"`
	Client        string   `json:"client,omitempty" jsonschema:"client name"`
	Active        *bool    `json:"active,omitempty" jsonschema:"defaults to true"`
	Notes         string   `json:"notes,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	ContractStart string   `json:"contract_start,omitempty" jsonschema:"YYYY-MM-DD"`
	ContractEnd   string   `json:"contract_end,omitempty" jsonschema:"YYYY-MM-DD, not before contract_start"`
}

type CreateRecordParams struct {
	Name        string `json:"name" jsonschema:"record name, required"`
	ProjectID   string `json:"project_id,omitempty" jsonschema:"project to link; its back-reference is overwritten"`
	FileName    string `json:"file_name,omitempty"`
	FileContent string `json:"file_content" jsonschema:"attachment as a base64 data URI"`
}

type DeleteRecordParams struct {
	ID string `json:"id" jsonschema:"record id"`
}

// ProjectView is a project as returned by tools. Tags is never null.
type ProjectView struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	URL           string   `json:"url"`
	Client        string   `json:"client"`
	Active        bool     `json:"active"`
	Notes         string   `json:"notes"`
	Tags          []string `json:"tags"`
	ContractStart string   `json:"contract_start"`
	ContractEnd   string   `json:"contract_end"`
	QuoteID       string   `json:"quote_id"`
	ContractID    string   `json:"contract_id"`
	CreatedAt     string   `json:"created_at"`
	LastModified  string   `json:"last_modified"`
}

// LinkView is a resolved back-reference. ID is empty when the project has none.
type LinkView struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Missing bool   `json:"missing"`
}

type RecordView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ProjectID string `json:"project_id"`
	FileName  string `json:"file_name"`
	CreatedAt string `json:"created_at"`
}

type SnippetView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Language string `json:"language"`
	Code     string `json:"code"`
}

type ListProjectsResult struct {
	Projects []ProjectView `json:"projects"`
	Tags     []string      `json:"tags"`
}

type GetProjectResult struct {
	Project  ProjectView `json:"project"`
	Quote    LinkView    `json:"quote"`
	Contract LinkView    `json:"contract"`
}

type TagsResult struct {
	Tags []string `json:"tags"`
}

type DeleteRecordResult struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

type ListSnippetsResult struct {
	Snippets []SnippetView `json:"snippets"`
}

type DashboardResult struct {
	ProjectCount   int           `json:"project_count"`
	SnippetCount   int           `json:"snippet_count"`
	RecentProjects []ProjectView `json:"recent_projects"`
}

func toProjectView(p project.Project) ProjectView {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return ProjectView{
		ID:            string(p.ID),
		Name:          p.Name,
		URL:           p.URL,
		Client:        p.Client,
		Active:        p.Active,
		Notes:         p.Notes,
		Tags:          tags,
		ContractStart: p.ContractPeriod.Start,
		ContractEnd:   p.ContractPeriod.End,
		QuoteID:       p.QuoteID,
		ContractID:    p.ContractID,
		CreatedAt:     p.CreatedAt,
		LastModified:  p.LastModified,
	}
}

func toProjectViews(projects []project.Project) []ProjectView {
	views := make([]ProjectView, 0, len(projects))
	for _, p := range projects {
		views = append(views, toProjectView(p))
	}
	return views
}

func toLinkView(link *dependent.Link) LinkView {
	if link == nil {
		return LinkView{}
	}
	return LinkView{ID: string(link.ID), Name: link.Name, Missing: link.Missing}
}

func toRecordView(rec *dependent.Record) RecordView {
	return RecordView{
		ID:        string(rec.ID),
		Name:      rec.Name,
		ProjectID: string(rec.ProjectID),
		FileName:  rec.FileName,
		CreatedAt: rec.CreatedAt,
	}
}

func toSnippetViews(snippets []snippet.Snippet) []SnippetView {
	views := make([]SnippetView, 0, len(snippets))
	for _, s := range snippets {
		views = append(views, SnippetView{ID: string(s.ID), Name: s.Name, Language: s.Language, Code: s.Code})
	}
	return views
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
