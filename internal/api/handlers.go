package api

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/adlytics/funnel-api/internal/analytics"
	"github.com/adlytics/funnel-api/internal/config"
	"github.com/adlytics/funnel-api/internal/warehouse"
)

// Handlers holds the dependencies shared by all endpoint handlers.
type Handlers struct {
	svc          *analytics.Service
	wh           *warehouse.Adapter
	reco         config.RecoConfig
	queryTimeout time.Duration
	log          *logrus.Logger
}

// NewHandlers creates the handler set.
func NewHandlers(svc *analytics.Service, wh *warehouse.Adapter, cfg *config.Config, log *logrus.Logger) *Handlers {
	return &Handlers{
		svc:          svc,
		wh:           wh,
		reco:         cfg.Reco,
		queryTimeout: cfg.Warehouse.QueryTimeout(),
		log:          log,
	}
}

// requestCtx bounds every warehouse call with the configured query deadline.
func (h *Handlers) requestCtx(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), h.queryTimeout)
}

// commonParams parses the parameters shared by most analytics endpoints.
func commonParams(r *http.Request) (analytics.Request, error) {
	var req analytics.Request
	w, err := parseWindow(r)
	if err != nil {
		return req, err
	}
	platforms, err := parsePlatforms(r)
	if err != nil {
		return req, err
	}
	req.Window = w
	req.Platforms = platforms
	return req, nil
}

// HealthCheck reports process liveness and warehouse reachability.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	warehouseStatus := "ok"
	status := http.StatusOK
	if err := h.wh.Ping(ctx); err != nil {
		warehouseStatus = "unreachable"
		status = http.StatusServiceUnavailable
	}

	respondJSON(w, status, map[string]string{
		"status":    "ok",
		"warehouse": warehouseStatus,
		"time":      time.Now().UTC().Format(time.RFC3339),
	})
}
