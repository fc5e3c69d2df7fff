package transport

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rpggio/officina/internal/domain/dependent"
	"github.com/rpggio/officina/internal/domain/project"
)

type projectListResponse struct {
	Projects []project.Project `json:"projects"`
	Tags     []string          `json:"tags"`
}

type projectResponse struct {
	Project *project.Project `json:"project"`
	Links   dependent.Links  `json:"links"`
}

type toggleTagRequest struct {
	Selected []string `json:"selected"`
	Tag      string   `json:"tag"`
}

type toggleTagResponse struct {
	Selected []string `json:"selected"`
}

// handleListProjects answers GET /api/projects?q=term&tag=a&tag=b.
func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.svc.Projects.List(r.Context())
	if err != nil {
		respondError(w, s.logger, err, projectListMsgs)
		return
	}

	query := project.Query{
		Search: r.URL.Query().Get("q"),
		Tags:   r.URL.Query()["tag"],
	}
	writeJSON(w, http.StatusOK, projectListResponse{
		Projects: project.Filter(projects, query),
		Tags:     project.TagUniverse(projects),
	})
}

func (s *Server) handleToggleTag(w http.ResponseWriter, r *http.Request) {
	var req toggleTagRequest
	if err := decodeJSON(r, &req); err != nil || req.Tag == "" {
		writeError(w, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	writeJSON(w, http.StatusOK, toggleTagResponse{Selected: project.ToggleTag(req.Selected, req.Tag)})
}

func (s *Server) handleExportProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.svc.Projects.List(r.Context())
	if err != nil {
		respondError(w, s.logger, err, projectListMsgs)
		return
	}
	data, err := project.Export(projects)
	if err != nil {
		respondError(w, s.logger, err, projectListMsgs)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", project.ExportFileName))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var in project.Input
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	proj, err := s.svc.Projects.Create(r.Context(), in)
	if err != nil {
		respondError(w, s.logger, err, projectSaveMsgs)
		return
	}
	writeJSON(w, http.StatusCreated, proj)
}

// handleGetProject returns the project with its quote and contract references
// checked against the store.
func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	proj, err := s.svc.Projects.Get(r.Context(), project.ID(chi.URLParam(r, "id")))
	if err != nil {
		respondError(w, s.logger, err, projectGetMsgs)
		return
	}
	links, err := dependent.ResolveLinks(r.Context(), *proj, s.svc.Quotes, s.svc.Contracts)
	if err != nil {
		respondError(w, s.logger, err, projectGetMsgs)
		return
	}
	writeJSON(w, http.StatusOK, projectResponse{Project: proj, Links: links})
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	var in project.Input
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	proj, err := s.svc.Projects.Update(r.Context(), project.ID(chi.URLParam(r, "id")), in)
	if err != nil {
		respondError(w, s.logger, err, projectSaveMsgs)
		return
	}
	writeJSON(w, http.StatusOK, proj)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Projects.Delete(r.Context(), project.ID(chi.URLParam(r, "id"))); err != nil {
		respondError(w, s.logger, err, projectDeleteMsgs)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
