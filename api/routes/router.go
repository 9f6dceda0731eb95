package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/veridian-genomics/revenue-tracker/api/controllers"
	"github.com/veridian-genomics/revenue-tracker/api/middleware"
	"github.com/veridian-genomics/revenue-tracker/internal/customers"
	"github.com/veridian-genomics/revenue-tracker/internal/pricing"
	"github.com/veridian-genomics/revenue-tracker/internal/reports"
	"github.com/veridian-genomics/revenue-tracker/internal/transactions"
	"github.com/veridian-genomics/revenue-tracker/pkg/config"
	"github.com/veridian-genomics/revenue-tracker/pkg/db"
	"github.com/veridian-genomics/revenue-tracker/pkg/logger"
	"github.com/veridian-genomics/revenue-tracker/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	transactionService transactions.Service,
	pricingService pricing.Service,
	reportService reports.Service,
	customerService customers.Service,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/reports", func(r chi.Router) {
			r.Get("/royalties", controllers.RoyaltiesReport(reportService, logg))
			r.Get("/quarters", controllers.ActiveQuarters(reportService, logg))
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", controllers.TransactionList(transactionService, reportService, logg))
			r.Post("/", controllers.TransactionCreate(transactionService, logg))
			r.Get("/outstanding", controllers.TransactionOutstanding(transactionService, logg))
			r.Get("/{transactionId}", controllers.TransactionDetail(transactionService, logg))
			r.Put("/{transactionId}", controllers.TransactionUpdate(transactionService, logg))
		})

		r.Route("/price-tiers", func(r chi.Router) {
			r.Get("/", controllers.PriceTierPeriods(pricingService, logg))
			r.Post("/", controllers.PriceTierCreate(pricingService, logg))
			r.Delete("/{tierId}", controllers.PriceTierDelete(pricingService, logg))
		})

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", controllers.CustomerList(customerService, logg))
			r.Get("/{customerId}", controllers.CustomerDetail(customerService, logg))
		})

		r.Get("/vendors", controllers.VendorList(customerService, logg))
	})

	return r
}
