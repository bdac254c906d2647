package api

import (
	"encoding/json"
	"net/http"
)

// handleStats exposes pipeline counters and recent latency percentiles.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"pipeline":    s.orchestrator.Stats(),
		"queue_depth": s.orchestrator.QueueDepth(),
		"indexed":     s.engine.Size(),
	})
}
