package api

import (
	"net/http"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"runs":        s.orchestrator.Stats().Snapshot(),
		"queue_depth": s.orchestrator.QueueDepth(),
	}
	if st := s.orchestrator.Store(); st != nil {
		counts, err := st.CountByStatus(r.Context())
		if err != nil {
			jsonError(w, "failed to count documents: "+err.Error(), http.StatusInternalServerError)
			return
		}
		resp["documents"] = counts
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleSchema returns the active section and table schema as YAML.
func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	data, err := s.schema.Marshal()
	if err != nil {
		jsonError(w, "failed to encode schema: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.Write(data)
}
