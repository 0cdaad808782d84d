package api

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/adlytics/funnel-api/internal/analytics"
	"github.com/adlytics/funnel-api/internal/auth"
	"github.com/adlytics/funnel-api/internal/config"
	"github.com/adlytics/funnel-api/internal/warehouse"
)

// Server wraps the router and HTTP server lifecycle.
type Server struct {
	handler http.Handler
	server  *http.Server
}

// NewServer wires the handlers, auth boundary and router.
func NewServer(cfg *config.Config, wh *warehouse.Adapter, log *logrus.Logger) *Server {
	svc := analytics.NewService(wh, log, cfg.Anomaly, cfg.Server.WeekStartDay())
	handlers := NewHandlers(svc, wh, cfg, log)

	var verifier auth.Verifier
	if cfg.Auth.Enabled {
		verifier = &auth.StaticVerifier{Token: cfg.Auth.StaticToken}
	}

	return &Server{handler: SetupRoutes(handlers, verifier, cfg, log)}
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.handler
}
