package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dgallion1/secpolicy/internal/store"
	"github.com/go-chi/chi/v5"
)

// handleListDocuments lists stored file outcomes, newest first.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	st := s.orchestrator.Store()
	if st == nil {
		jsonError(w, "document store unavailable", http.StatusServiceUnavailable)
		return
	}

	opts := store.ListOptions{Status: r.URL.Query().Get("status"), Limit: 200}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			jsonError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		opts.Limit = n
	}

	docs, err := st.ListFiles(r.Context(), opts)
	if err != nil {
		jsonError(w, "failed to list documents: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if docs == nil {
		docs = []store.FileRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	st := s.orchestrator.Store()
	if st == nil {
		jsonError(w, "document store unavailable", http.StatusServiceUnavailable)
		return
	}

	rec, err := st.GetFile(r.Context(), chi.URLParam(r, "docID"))
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, "failed to read document: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
