package api

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleSplitterStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"queue_depth": s.orchestrator.QueueDepth(),
		"stats": map[string]any{
			"split": s.orchestrator.SplitStats().Snapshot(),
			"store": s.orchestrator.StoreStats().Snapshot(),
		},
	})
}
