package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `officina manages projects, quotes, contracts and code snippets for a small studio.

Core concepts:
- Project: client engagement with tags, notes, optional contract period and two back-references (quote_id, contract_id).
- Quote / Contract: a named PDF attachment, optionally pointing at one project via project_id.
- Snippet: saved code (javascript, python, html, css). Never executed.

Rules of engagement:
1) Orient: call dashboard, then list_projects (search and tags narrow the list; list_tags shows every tag).
2) Creating a quote or contract with project_id also stamps that project's back-reference. Last writer wins.
3) Deleting a quote or contract clears the back-reference of the project that pointed at it.
4) A PARTIAL_REFERENCE_UPDATE error means the record write happened but the project was not updated; re-read before retrying.

Docs:
- officina://docs/index
- officina://docs/references
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "officina://docs/index",
		Name:        "docs_index",
		Title:       "officina docs index",
		Description: "Entry point: entities, tools and error codes.",
		Content: `# officina

## Tools

| Tool | Purpose |
|---|---|
| dashboard | project and snippet counts, five most recently modified projects |
| list_projects | filter by case-insensitive search over name, client, notes and by tags (all must match) |
| get_project | project plus resolved quote/contract links |
| create_project | new project; name required |
| list_tags | every tag in use, first-seen order |
| create_quote / create_contract | new record with a data URI attachment |
| delete_quote / delete_contract | remove a record and clear the project back-reference |
| list_snippets | saved snippets |

## Error codes

- PROJECT_NOT_FOUND, RECORD_NOT_FOUND, SNIPPET_NOT_FOUND
- INVALID_INPUT: see details for field messages
- PROJECT_ALREADY_LINKED: strict linking is enabled and the project already has a live record
- PARTIAL_REFERENCE_UPDATE: first write succeeded, project back-reference did not
- STORE_UNAVAILABLE: the document store failed; nothing is retried automatically
`,
	},
	{
		URI:         "officina://docs/references",
		Name:        "docs_references",
		Title:       "Project references",
		Description: "How projects, quotes and contracts point at each other.",
		Content: `# References

A quote or contract names its project through project_id. The project mirrors the
relation in quote_id or contract_id, and can hold only one of each.

- Create: the record is stored first, then the project back-reference is set.
- Delete: the record is removed first, then the first project whose back-reference
  matches is cleared.
- The two writes are independent. If the second fails the first is kept unless the
  server runs with compensation enabled.
- Deleting a project never touches its quotes or contracts; their project_id may dangle.
- get_project reports a link as missing when the referenced record no longer exists.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
