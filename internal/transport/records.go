package transport

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rpggio/officina/internal/attachment"
	"github.com/rpggio/officina/internal/domain/dependent"
	"github.com/rpggio/officina/internal/domain/project"
)

// multipartMemory bounds the in-memory part of a parsed multipart form; the
// rest spills to temporary files.
const multipartMemory = 8 << 20

// formOverhead is the body allowance on top of the attachment for the other
// form fields and the multipart or JSON framing.
const formOverhead = 64 << 10

func (s *Server) recordRoutes(svc *dependent.Service) func(chi.Router) {
	h := &recordHandler{server: s, svc: svc, kind: svc.Kind()}
	return func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/{id}", h.get)
		r.Delete("/{id}", h.delete)
		r.Get("/{id}/download", h.download)
	}
}

type recordHandler struct {
	server *Server
	svc    *dependent.Service
	kind   dependent.Kind
}

func (h *recordHandler) list(w http.ResponseWriter, r *http.Request) {
	listings, err := h.svc.ListWithProjects(r.Context())
	if err != nil {
		respondError(w, h.server.logger, err, recordListMsgs(h.kind))
		return
	}
	writeJSON(w, http.StatusOK, listings)
}

func (h *recordHandler) get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.Get(r.Context(), dependent.ID(chi.URLParam(r, "id")))
	if err != nil {
		respondError(w, h.server.logger, err, recordGetMsgs(h.kind))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// create accepts either a JSON body with a data-URI fileContent or a multipart
// form with name, projectId and file fields.
func (h *recordHandler) create(w http.ResponseWriter, r *http.Request) {
	var req dependent.CreateRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if h.server.maxUpload > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, h.server.maxUpload+formOverhead)
		}
		parsed, err := h.readMultipart(r)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.Is(err, attachment.ErrTooLarge) || errors.As(err, &tooLarge) {
				writeError(w, http.StatusRequestEntityTooLarge, msgTooLarge, nil)
				return
			}
			writeError(w, http.StatusBadRequest, msgInvalidRequest, nil)
			return
		}
		req = parsed
	} else {
		if h.server.maxUpload > 0 {
			// base64 inflates payloads by a third.
			r.Body = http.MaxBytesReader(w, r.Body, h.server.maxUpload*4/3+formOverhead)
		}
		if err := decodeJSON(r, &req); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeError(w, http.StatusRequestEntityTooLarge, msgTooLarge, nil)
				return
			}
			writeError(w, http.StatusBadRequest, msgInvalidRequest, nil)
			return
		}
	}

	rec, err := h.svc.Create(r.Context(), req)
	if err != nil {
		respondError(w, h.server.logger, err, recordCreateMsgs(h.kind))
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (h *recordHandler) readMultipart(r *http.Request) (dependent.CreateRequest, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return dependent.CreateRequest{}, fmt.Errorf("parse multipart form: %w", err)
	}

	req := dependent.CreateRequest{
		Name:      r.FormValue("name"),
		ProjectID: project.ID(r.FormValue("projectId")),
	}

	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		// Left empty so validation reports the missing file.
		return req, nil
	}
	if err != nil {
		return dependent.CreateRequest{}, fmt.Errorf("read upload: %w", err)
	}
	defer file.Close()

	content, err := attachment.EncodeReader(header.Header.Get("Content-Type"), file, h.server.maxUpload)
	if err != nil {
		return dependent.CreateRequest{}, err
	}
	req.FileName = header.Filename
	req.FileContent = content
	return req, nil
}

func (h *recordHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), dependent.ID(chi.URLParam(r, "id"))); err != nil {
		respondError(w, h.server.logger, err, recordDeleteMsgs(h.kind))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// download serves the attachment as a PDF. An undecodable attachment is
// answered with 204 and no body.
func (h *recordHandler) download(w http.ResponseWriter, r *http.Request) {
	id := dependent.ID(chi.URLParam(r, "id"))
	blob, err := h.svc.Download(r.Context(), id)
	if errors.Is(err, attachment.ErrMalformed) {
		h.server.logger.Warn("attachment not downloadable", "collection", h.kind.Collection, "id", id, "error", err)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		respondError(w, h.server.logger, err, recordGetMsgs(h.kind))
		return
	}

	w.Header().Set("Content-Type", blob.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": blob.FileName}))
	w.Header().Set("Content-Length", strconv.Itoa(len(blob.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(blob.Data)
}
