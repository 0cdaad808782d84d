package api

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/adlytics/funnel-api/internal/analytics"
	"github.com/adlytics/funnel-api/internal/warehouse"
)

// respondServiceError maps service errors to problem documents. Internal
// details never reach the client; the full error is logged here and a
// generic message goes out.
func (h *Handlers) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var br *badRequest
	switch {
	case errors.As(err, &br):
		respondProblem(w, http.StatusBadRequest, "Bad Request", br.detail)

	case errors.Is(err, analytics.ErrNotFound):
		respondProblem(w, http.StatusNotFound, "Not Found", "no rows match the requested resource")

	case errors.Is(err, warehouse.ErrTimeout):
		h.logError(r, err)
		respondProblem(w, http.StatusGatewayTimeout, "Timeout", "the warehouse query did not finish in time")

	case errors.Is(err, warehouse.ErrUnavailable):
		h.logError(r, err)
		respondProblem(w, http.StatusServiceUnavailable, "Unavailable", "the warehouse is temporarily unreachable")

	default:
		h.logError(r, err)
		respondProblem(w, http.StatusInternalServerError, "Internal Error", "an internal error occurred")
	}
}

func (h *Handlers) logError(r *http.Request, err error) {
	h.log.WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
		"query":  r.URL.RawQuery,
	}).WithError(err).Error("request failed")
}
