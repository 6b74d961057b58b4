package api

import (
	"net/http"
)

// handleRevenue handles GET /api/v1/dashboard/revenue.
// Returns revenue/cost/profit KPIs, the monthly series, and a per-product
// profit breakdown honoring the active filters.
func (s *Server) handleRevenue(w http.ResponseWriter, r *http.Request) {
	filters, err := parseFilters(r)
	if err != nil {
		WriteErrorResponse(w, r, s.logger, BadRequest(err.Error()))

		return
	}

	limit, err := parseLimit(r)
	if err != nil {
		WriteErrorResponse(w, r, s.logger, BadRequest(err.Error()))

		return
	}

	result, err := s.engine.Revenue(r.Context(), s.mode(), filters, limit)
	if err != nil {
		s.writeEngineError(w, r, err)

		return
	}

	s.writeJSON(w, r, result)
}
