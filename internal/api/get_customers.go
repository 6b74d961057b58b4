package api

import (
	"net/http"
)

// handleCustomers handles GET /api/v1/dashboard/customers.
// Returns lifetime-value rows sorted descending by spend. Cancelled and
// returned orders never count toward spend. limit=0 returns all customers
// with at least one qualifying order.
func (s *Server) handleCustomers(w http.ResponseWriter, r *http.Request) {
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

	result, err := s.engine.Customers(r.Context(), s.mode(), filters, limit)
	if err != nil {
		s.writeEngineError(w, r, err)

		return
	}

	s.writeJSON(w, r, result)
}
