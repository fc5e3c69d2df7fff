package dependent

import "github.com/rpggio/officina/internal/domain/project"

// ID identifies a quote or contract document.
type ID string

// Record is a quote or a contract with its encoded attachment.
type Record struct {
	ID          ID         `json:"id"`
	Name        string     `json:"name"`
	ProjectID   project.ID `json:"projectId"`
	FileName    string     `json:"fileName"`
	FileContent string     `json:"fileContent"`
	CreatedAt   string     `json:"createdAt"`
}

// Listing is a record joined with the name of its project, without the
// attachment payload.
type Listing struct {
	ID          ID         `json:"id"`
	Name        string     `json:"name"`
	ProjectID   project.ID `json:"projectId"`
	ProjectName string     `json:"projectName"`
	FileName    string     `json:"fileName"`
	CreatedAt   string     `json:"createdAt"`
}

// NoProject is shown for records without a resolvable project.
const NoProject = "Nessun progetto associato"

// CreateRequest defines record creation inputs. FileContent is a data URI.
type CreateRequest struct {
	Name        string     `json:"name"`
	ProjectID   project.ID `json:"projectId"`
	FileName    string     `json:"fileName"`
	FileContent string     `json:"fileContent"`
}

// Link is a resolved back-reference from a project.
type Link struct {
	ID      ID     `json:"id"`
	Name    string `json:"name,omitempty"`
	Missing bool   `json:"missing"`
}

// Links holds a project's resolved quote and contract references.
type Links struct {
	Quote    *Link `json:"quote,omitempty"`
	Contract *Link `json:"contract,omitempty"`
}

type document struct {
	Name        string `json:"name"`
	ProjectID   string `json:"projectId"`
	FileName    string `json:"fileName"`
	FileContent string `json:"fileContent"`
	CreatedAt   string `json:"createdAt"`
}
