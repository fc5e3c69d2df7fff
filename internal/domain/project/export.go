package project

import (
	"encoding/json"
	"fmt"
)

// ExportFileName is the suggested name of an export download.
const ExportFileName = "projects.json"

// Export serializes a project snapshot as two-space indented JSON.
func Export(projects []Project) ([]byte, error) {
	if projects == nil {
		projects = []Project{}
	}
	data, err := json.MarshalIndent(projects, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("exporting projects: %w", err)
	}
	return data, nil
}
