package server

import (
	"encoding/json"
	"io"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/kurate/kurate/ingest"
)

// maxUploadBytes caps the whole multipart request. The per-file limit is
// enforced again by the parse pipeline against the spooled file size.
const maxUploadBytes = 50 << 20

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+(1<<20))
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	tmp, err := os.CreateTemp("", "kurate-upload-*")
	if err != nil {
		s.logger.Error("create temp file", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		writeError(w, http.StatusBadRequest, "upload truncated")
		return
	}
	tmp.Close()

	receipt, err := s.ingest.SubmitUpload(r.Context(), owner,
		header.Filename, header.Header.Get("Content-Type"), tmp.Name())
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, receipt)
}

func (s *Server) handleSubmitURL(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}

	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	receipt, err := s.ingest.SubmitURL(r.Context(), owner, req.URL)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, receipt)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}
	docs, err := s.ingest.List(r.Context(), owner)
	if err != nil {
		s.fail(w, err)
		return
	}
	if docs == nil {
		docs = []*ingest.Document{}
	}
	writeJSON(w, http.StatusOK, docs)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}
	doc, err := s.ingest.Get(r.Context(), owner, chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}
	if err := s.ingest.Delete(r.Context(), owner, chi.URLParam(r, "id")); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
