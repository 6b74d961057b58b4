package api

import (
	"net/http"
)

// handleSales handles GET /api/v1/dashboard/sales.
// Returns the daily revenue trend plus category, brand, and department
// breakdowns honoring the active filters.
func (s *Server) handleSales(w http.ResponseWriter, r *http.Request) {
	filters, err := parseFilters(r)
	if err != nil {
		WriteErrorResponse(w, r, s.logger, BadRequest(err.Error()))

		return
	}

	result, err := s.engine.Sales(r.Context(), s.mode(), filters)
	if err != nil {
		s.writeEngineError(w, r, err)

		return
	}

	s.writeJSON(w, r, result)
}
