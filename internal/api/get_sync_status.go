package api

import (
	"net/http"

	"github.com/vajra-io/vajra/internal/sync"
)

// handleSyncStatus handles GET /api/v1/sync/status.
// Returns the sync state machine snapshot: current mode, run metadata, and
// per-entity record counts from the last full sync.
func (s *Server) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	if s.syncState == nil {
		s.writeJSON(w, r, sync.Status{Mode: s.mode().String()})

		return
	}

	s.writeJSON(w, r, s.syncState.Status())
}
