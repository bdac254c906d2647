package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dbarrow/outliner/internal/store"
)

// handleListDocuments lists all stored documents for a session.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		jsonError(w, "session_id query parameter is required", http.StatusBadRequest)
		return
	}

	recs, err := s.store.ListSession(r.Context(), sessionID)
	if err != nil {
		jsonError(w, "failed to list documents: "+err.Error(), http.StatusInternalServerError)
		return
	}

	docs := make([]map[string]any, 0, len(recs))
	for _, rec := range recs {
		docs = append(docs, map[string]any{
			"doc_id":     rec.DocID,
			"filename":   rec.Filename,
			"title":      rec.Title,
			"created_at": rec.CreatedAt.Format(time.RFC3339),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"session_id": sessionID,
		"documents":  docs,
	})
}

// handleGetDocument returns one stored outline result.
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	rec, err := s.store.Get(r.Context(), docID)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, "failed to load document: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"doc_id":     rec.DocID,
		"session_id": rec.SessionID,
		"filename":   rec.Filename,
		"created_at": rec.CreatedAt.Format(time.RFC3339),
		"result":     json.RawMessage(rec.ResultJSON),
	})
}

// handleCleanup deletes a session's stored results and recommendation state.
func (s *Server) handleCleanup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SessionID == "" {
		jsonError(w, "session_id is required", http.StatusBadRequest)
		return
	}

	deleted, err := s.store.DeleteSession(r.Context(), req.SessionID)
	if err != nil {
		jsonError(w, "failed to delete session: "+err.Error(), http.StatusInternalServerError)
		return
	}
	deindexed := s.engine.RemoveSession(req.SessionID)
	s.orchestrator.ForgetSession(req.SessionID)

	s.log.Info("session cleaned up", "session_id", req.SessionID, "deleted", deleted, "deindexed", deindexed)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"session_id": req.SessionID,
		"deleted":    deleted,
		"deindexed":  deindexed,
	})
}
