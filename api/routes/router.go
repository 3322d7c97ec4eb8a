package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/diskleads/leadmarket-backend/api/controllers"
	webhookcontrollers "github.com/diskleads/leadmarket-backend/api/controllers/webhooks"
	"github.com/diskleads/leadmarket-backend/api/middleware"
	checkoutsvc "github.com/diskleads/leadmarket-backend/internal/checkout"
	"github.com/diskleads/leadmarket-backend/internal/leads"
	"github.com/diskleads/leadmarket-backend/internal/orders"
	mpwebhook "github.com/diskleads/leadmarket-backend/internal/webhooks/mercadopago"
	"github.com/diskleads/leadmarket-backend/pkg/config"
	"github.com/diskleads/leadmarket-backend/pkg/logger"
)

// Params aggregates everything the router mounts. Pingers may be nil when
// the corresponding dependency was not wired.
type Params struct {
	Config *config.Config
	Logger *logger.Logger

	DB       controllers.Pinger
	Redis    controllers.Pinger
	GCS      controllers.Pinger
	Payments controllers.Pinger

	Leads    leads.Service
	Checkout checkoutsvc.Service
	Orders   orders.Service
	Webhooks mpwebhook.Service

	MetricsRegistry *prometheus.Registry
}

func NewRouter(params Params) http.Handler {
	cfg := params.Config
	logg := params.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, params.DB, params.Redis, params.GCS, params.Payments))
	})

	if params.MetricsRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(params.MetricsRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/mercadopago", webhookcontrollers.MercadoPagoWebhook(params.Webhooks, logg))
	})

	r.Route("/api/v1/leads", func(r chi.Router) {
		r.Get("/", controllers.LeadsList(params.Leads, logg))
		r.Get("/facets", controllers.LeadsFacets(params.Leads, logg))
		r.Get("/summary", controllers.LeadsSummary(params.Leads, logg))
	})

	r.Post("/api/v1/quotes", controllers.QuotePreview(params.Checkout, logg))

	r.Route("/api/v1/checkout", func(r chi.Router) {
		r.Post("/", controllers.CheckoutCommit(params.Checkout, logg))
		r.Post("/{reference}/refresh-link", controllers.CheckoutRefreshLink(params.Checkout, logg))
		r.Post("/{reference}/await", controllers.CheckoutAwait(params.Checkout, logg))
	})

	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Get("/{reference}", controllers.OrderStatus(params.Orders, logg))
		r.Get("/{reference}/download", controllers.OrderDownload(params.Orders, logg))
	})

	return r
}
