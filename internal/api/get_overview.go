package api

import (
	"net/http"

	"github.com/vajra-io/vajra/internal/analytics"
)

// handleOverview handles GET /api/v1/dashboard/overview.
// Returns the main dashboard: KPIs, monthly revenue series, status breakdown,
// and top-N products and customers.
//
// Default-filter requests are served from the warm result recomputed on every
// data-source mode transition; filtered requests run a fresh aggregation pass.
func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
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

	if filters == analytics.DefaultFilters() && limit == defaultLimit {
		if cached, ok := s.warmOverview.Latest(); ok && cached.Mode == s.mode().String() {
			s.writeJSON(w, r, cached)

			return
		}
	}

	result, err := s.engine.Overview(r.Context(), s.mode(), filters, limit)
	if err != nil {
		s.writeEngineError(w, r, err)

		return
	}

	s.writeJSON(w, r, result)
}
