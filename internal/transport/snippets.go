package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rpggio/officina/internal/domain/snippet"
)

func (s *Server) handleListSnippets(w http.ResponseWriter, r *http.Request) {
	snippets, err := s.svc.Snippets.List(r.Context())
	if err != nil {
		respondError(w, s.logger, err, snippetListMsgs)
		return
	}
	writeJSON(w, http.StatusOK, snippets)
}

func (s *Server) handleGetSnippet(w http.ResponseWriter, r *http.Request) {
	sn, err := s.svc.Snippets.Get(r.Context(), snippet.ID(chi.URLParam(r, "id")))
	if err != nil {
		respondError(w, s.logger, err, snippetGetMsgs)
		return
	}
	writeJSON(w, http.StatusOK, sn)
}

func (s *Server) handleCreateSnippet(w http.ResponseWriter, r *http.Request) {
	s.saveSnippet(w, r, "", http.StatusCreated)
}

func (s *Server) handleUpdateSnippet(w http.ResponseWriter, r *http.Request) {
	s.saveSnippet(w, r, snippet.ID(chi.URLParam(r, "id")), http.StatusOK)
}

func (s *Server) saveSnippet(w http.ResponseWriter, r *http.Request, id snippet.ID, status int) {
	var in snippet.Input
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	sn, err := s.svc.Snippets.Save(r.Context(), id, in)
	if err != nil {
		respondError(w, s.logger, err, snippetSaveMsgs)
		return
	}
	writeJSON(w, status, sn)
}

func (s *Server) handleDeleteSnippet(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Snippets.Delete(r.Context(), snippet.ID(chi.URLParam(r, "id"))); err != nil {
		respondError(w, s.logger, err, snippetDeleteMsgs)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
