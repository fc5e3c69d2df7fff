package mcp

import (
	"context"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/officina/internal/domain/dependent"
	"github.com/rpggio/officina/internal/domain/project"
)

func registerTools(server *sdkmcp.Server, svc Services) {
	registerProjectTools(server, svc)
	registerRecordTools(server, "quote", svc.Quotes)
	registerRecordTools(server, "contract", svc.Contracts)

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_snippets",
		Description: "List saved code snippets",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ emptyParams) (*sdkmcp.CallToolResult, ListSnippetsResult, error) {
		snippets, err := svc.Snippets.List(ctx)
		if err != nil {
			return nil, ListSnippetsResult{}, MapError(err)
		}
		out := ListSnippetsResult{Snippets: toSnippetViews(snippets)}
		return textResult(fmt.Sprintf("%d snippets", len(out.Snippets))), out, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "dashboard",
		Description: "Project and snippet counts plus the five most recently modified projects",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ emptyParams) (*sdkmcp.CallToolResult, DashboardResult, error) {
		summary, err := svc.Dashboard.Summary(ctx)
		if err != nil {
			return nil, DashboardResult{}, MapError(err)
		}
		out := DashboardResult{
			ProjectCount:   summary.ProjectCount,
			SnippetCount:   summary.SnippetCount,
			RecentProjects: toProjectViews(summary.RecentProjects),
		}
		return textResult(fmt.Sprintf("%d projects, %d snippets", out.ProjectCount, out.SnippetCount)), out, nil
	})
}

func registerProjectTools(server *sdkmcp.Server, svc Services) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_projects",
		Description: "List projects, optionally filtered by search text and tags",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args ListProjectsParams) (*sdkmcp.CallToolResult, ListProjectsResult, error) {
		projects, err := svc.Projects.List(ctx)
		if err != nil {
			return nil, ListProjectsResult{}, MapError(err)
		}
		filtered := project.Filter(projects, project.Query{Search: args.Search, Tags: args.Tags})
		out := ListProjectsResult{
			Projects: toProjectViews(filtered),
			Tags:     nonNil(project.TagUniverse(projects)),
		}
		return textResult(fmt.Sprintf("%d of %d projects", len(filtered), len(projects))), out, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_project",
		Description: "Get a project with its quote and contract links resolved",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args GetProjectParams) (*sdkmcp.CallToolResult, GetProjectResult, error) {
		proj, err := svc.Projects.Get(ctx, project.ID(args.ID))
		if err != nil {
			return nil, GetProjectResult{}, MapError(err)
		}
		links, err := dependent.ResolveLinks(ctx, *proj, svc.Quotes, svc.Contracts)
		if err != nil {
			return nil, GetProjectResult{}, MapError(err)
		}
		out := GetProjectResult{
			Project:  toProjectView(*proj),
			Quote:    toLinkView(links.Quote),
			Contract: toLinkView(links.Contract),
		}
		return textResult(proj.Name), out, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "create_project",
		Description: "Create a project",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args CreateProjectParams) (*sdkmcp.CallToolResult, ProjectView, error) {
		proj, err := svc.Projects.Create(ctx, project.Input{
			Name:   args.Name,
			URL:    args.URL,
			Client: args.Client,
			Active: args.Active,
			Notes:  args.Notes,
			Tags:   args.Tags,
			ContractPeriod: project.ContractPeriod{
				Start: args.ContractStart,
				End:   args.ContractEnd,
			},
		})
		if err != nil {
			return nil, ProjectView{}, MapError(err)
		}
		return textResult("created project " + string(proj.ID)), toProjectView(*proj), nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_tags",
		Description: "List every tag used by any project, in first-seen order",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ emptyParams) (*sdkmcp.CallToolResult, TagsResult, error) {
		projects, err := svc.Projects.List(ctx)
		if err != nil {
			return nil, TagsResult{}, MapError(err)
		}
		out := TagsResult{Tags: nonNil(project.TagUniverse(projects))}
		return textResult(fmt.Sprintf("%d tags", len(out.Tags))), out, nil
	})
}

// registerRecordTools adds create_<name> and delete_<name> for one record kind.
func registerRecordTools(server *sdkmcp.Server, name string, svc *dependent.Service) {
	plural := svc.Kind().Collection

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "create_" + name,
		Description: fmt.Sprintf("Create a %s and link it to a project", name),
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args CreateRecordParams) (*sdkmcp.CallToolResult, RecordView, error) {
		rec, err := svc.Create(ctx, dependent.CreateRequest{
			Name:        args.Name,
			ProjectID:   project.ID(args.ProjectID),
			FileName:    args.FileName,
			FileContent: args.FileContent,
		})
		if err != nil {
			return nil, RecordView{}, MapError(err)
		}
		return textResult(fmt.Sprintf("created %s %s", name, rec.ID)), toRecordView(rec), nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "delete_" + name,
		Description: fmt.Sprintf("Delete a %s and clear the project reference to it", name),
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args DeleteRecordParams) (*sdkmcp.CallToolResult, DeleteRecordResult, error) {
		if err := svc.Delete(ctx, dependent.ID(args.ID)); err != nil {
			return nil, DeleteRecordResult{}, MapError(err)
		}
		return textResult(fmt.Sprintf("deleted from %s: %s", plural, args.ID)), DeleteRecordResult{ID: args.ID, Deleted: true}, nil
	})
}

func textResult(text string) *sdkmcp.CallToolResult {
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: text}},
	}
}
