package api

import (
	"encoding/json"
	"net/http"

	"github.com/dbarrow/outliner/internal/recommend"
)

// handleAnalyze recommends related library documents for a section of one
// document.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DocID   string `json:"doc_id"`
		Section string `json:"section"`
		Persona string `json:"persona"`
		Job     string `json:"job"`
		Page    *int   `json:"page"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.DocID == "" && req.Section == "" {
		jsonError(w, "doc_id or section is required", http.StatusBadRequest)
		return
	}

	page := -1
	if req.Page != nil {
		page = *req.Page
	}
	recs := s.engine.SectionRecommendations(req.Section, req.Persona, req.Job, req.DocID, page)
	if recs == nil {
		recs = []recommend.Recommendation{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"doc_id":          req.DocID,
		"recommendations": recs,
	})
}

// handleInsights summarizes a session's library and ranks its documents
// against the caller's persona and job.
func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
		Persona   string `json:"persona"`
		Job       string `json:"job"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SessionID == "" {
		jsonError(w, "session_id is required", http.StatusBadRequest)
		return
	}

	resp := s.sessionInsights(req.SessionID, req.Persona, req.Job)
	resp["session_id"] = req.SessionID

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// sessionInsights summarizes a session's indexed documents and ranks them
// against the caller's persona and job to be done. Shared by the insights
// endpoint and the batch upload response.
func (s *Server) sessionInsights(sessionID, persona, job string) map[string]any {
	docs := s.engine.ForSession(sessionID)
	inSession := make(map[string]bool, len(docs))
	headings := 0
	for _, d := range docs {
		inSession[d.DocID] = true
		headings += len(d.Outline)
	}

	recs := s.engine.Recommendations(persona, job, "")
	sessionRecs := make([]recommend.Recommendation, 0, len(recs))
	for _, rec := range recs {
		if inSession[rec.DocumentID] {
			sessionRecs = append(sessionRecs, rec)
		}
	}

	return map[string]any{
		"documents":       len(docs),
		"headings":        headings,
		"recommendations": sessionRecs,
	}
}
