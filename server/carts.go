package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kurate/kurate/cart"
)

type cartRequest struct {
	DocumentID string         `json:"documentId"`
	Name       string         `json:"name"`
	Snippets   []cart.Snippet `json:"snippets"`
}

func (s *Server) handleCreateCart(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}
	var req cartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	c, err := s.carts.Create(r.Context(), owner, req.DocumentID, req.Name, req.Snippets)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleListCarts(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}
	carts, err := s.carts.List(r.Context(), owner)
	if err != nil {
		s.fail(w, err)
		return
	}
	if carts == nil {
		carts = []*cart.Cart{}
	}
	// Optional filter by source document.
	if docID := r.URL.Query().Get("documentId"); docID != "" {
		filtered := carts[:0]
		for _, c := range carts {
			if c.DocumentID == docID {
				filtered = append(filtered, c)
			}
		}
		carts = filtered
	}
	writeJSON(w, http.StatusOK, carts)
}

func (s *Server) handleGetCart(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}
	c, err := s.carts.Get(r.Context(), owner, chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleUpdateCart(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}
	var req struct {
		Snippets []cart.Snippet `json:"snippets"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	c, err := s.carts.UpdateSnippets(r.Context(), owner, chi.URLParam(r, "id"), req.Snippets)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteCart(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}
	if err := s.carts.Delete(r.Context(), owner, chi.URLParam(r, "id")); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleExportCart(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}
	c, err := s.carts.Get(r.Context(), owner, chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	md := c.ExportMarkdown()
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", c.Name+".md"))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(md))
}
