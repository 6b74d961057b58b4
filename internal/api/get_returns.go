package api

import (
	"net/http"
)

// handleReturns handles GET /api/v1/dashboard/returns.
// Returns the returns dashboard: total count, average refund and pickup
// delays, and the monthly return counts. Date filters apply to the return
// date, not the order date.
func (s *Server) handleReturns(w http.ResponseWriter, r *http.Request) {
	filters, err := parseFilters(r)
	if err != nil {
		WriteErrorResponse(w, r, s.logger, BadRequest(err.Error()))

		return
	}

	result, err := s.engine.Returns(r.Context(), s.mode(), filters)
	if err != nil {
		s.writeEngineError(w, r, err)

		return
	}

	s.writeJSON(w, r, result)
}
