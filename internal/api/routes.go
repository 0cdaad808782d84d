package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/adlytics/funnel-api/internal/auth"
	"github.com/adlytics/funnel-api/internal/config"
)

// SetupRoutes configures the router. Health and Prometheus metrics stay
// outside the auth boundary; every analytics route sits behind it.
func SetupRoutes(h *Handlers, verifier auth.Verifier, cfg *config.Config, log *logrus.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Tenant-ID"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", h.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if cfg.Auth.Enabled && verifier != nil {
			r.Use(auth.Middleware(verifier))
		}

		r.Route("/v5", func(r chi.Router) {
			r.Get("/kpi", h.GetKPI)
			r.Get("/kpi/compare", h.GetKPICompare)

			r.Get("/trend/leads", h.GetLeadsTrend)
			r.Get("/trend/leads/compare", h.GetLeadsTrendCompare)
			r.Get("/trend/spend", h.GetSpendTrend)
			r.Get("/trend/spend/compare", h.GetSpendTrendCompare)

			r.Route("/campaigns", func(r chi.Router) {
				r.Get("/", h.GetCampaigns)
				r.Get("/wow", h.GetCampaignsWoW)
				r.Get("/compare", h.GetCampaignsCompare)
				r.Get("/scatter-matrix", h.GetScatterMatrix)
				r.Get("/anomalies", h.GetAnomalies)
				r.Get("/top-movers", h.GetTopMovers)
			})

			r.Get("/share/platforms", h.GetPlatformShare)
			r.Get("/share/platforms/compare", h.GetPlatformShareCompare)
			r.Get("/utm-sources", h.GetUTMSources)
		})

		r.Route("/v6", func(r chi.Router) {
			r.Get("/reco/budget", h.GetBudgetRecommendations)
			r.Get("/leads/paid-split/platforms", h.GetPaidSplitPlatforms)
			r.Get("/leads/paid-split/campaigns", h.GetPaidSplitCampaigns)
			r.Get("/creatives", h.GetCreatives)
			r.Get("/creatives/by-campaign/{campaignID}", h.GetCreativesByCampaign)
		})

		r.Route("/v7", func(r chi.Router) {
			r.Get("/insights/campaign-performance", h.GetCampaignInsights)
			r.Get("/metrics/trend", h.GetMetricsTrend)
		})

		r.Route("/v8/contracts", func(r chi.Router) {
			r.Get("/attribution-summary", h.GetAttributionSummary)
			r.Get("/timeline", h.GetContractsTimeline)
			r.Get("/by-platform", h.GetContractsByPlatform)
			r.Get("/by-source", h.GetContractsBySource)
		})

		r.Get("/sales/v6/funnel", h.GetFunnel)
		r.Get("/sales/v6/products/performance", h.GetProducts)
		r.Get("/contracts/v6/attribution/coverage", h.GetAttributionCoverage)
	})

	return r
}
