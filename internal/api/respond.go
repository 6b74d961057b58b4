// Package api provides the HTTP API server for the admin analytics service.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/vajra-io/vajra/internal/api/middleware"
	"github.com/vajra-io/vajra/internal/storage"
)

// writeJSON marshals payload and writes it with a 200 status. Marshal failures
// turn into RFC 7807 500 responses; write failures after headers are sent are
// only logged.
func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, payload any) {
	correlationID := middleware.GetCorrelationID(r.Context())

	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("Failed to marshal response",
			slog.String("correlation_id", correlationID),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		WriteErrorResponse(w, r, s.logger, InternalServerError("Failed to encode response"))

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(data); err != nil {
		s.logger.Error("Failed to write response",
			slog.String("correlation_id", correlationID),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}
}

// writeEngineError maps aggregation errors to RFC 7807 responses. A store that
// has not finished its first snapshot load yields 503 so probes and clients
// know to retry shortly.
func (s *Server) writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	correlationID := middleware.GetCorrelationID(r.Context())

	if errors.Is(err, storage.ErrStoreNotReady) {
		WriteErrorResponse(w, r, s.logger, ServiceUnavailable("Data snapshot is still loading, retry shortly"))

		return
	}

	s.logger.ErrorContext(r.Context(), "Aggregation pass failed",
		"correlation_id", correlationID,
		"path", r.URL.Path,
		"error", err.Error(),
	)

	WriteErrorResponse(w, r, s.logger, InternalServerError("Failed to compute dashboard"))
}
