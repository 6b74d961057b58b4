package api

import (
	"net/http"
)

// handleProducts handles GET /api/v1/dashboard/products.
// Returns the product catalog filtered by search, dimension, status,
// price-range, and margin-range parameters, sorted per sort_by/sort_desc.
func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	query, err := parseProductQuery(r)
	if err != nil {
		WriteErrorResponse(w, r, s.logger, BadRequest(err.Error()))

		return
	}

	result, err := s.engine.Products(r.Context(), s.mode(), query)
	if err != nil {
		s.writeEngineError(w, r, err)

		return
	}

	s.writeJSON(w, r, result)
}
