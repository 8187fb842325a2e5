package handler

import (
	"net/http"
	"time"

	"github.com/boddenberg/pix-gateway-proxy/internal/domain"
	"github.com/boddenberg/pix-gateway-proxy/internal/infra/observability"
	"github.com/boddenberg/pix-gateway-proxy/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// HealthMessage is returned by GET /health.
const HealthMessage = "PIX gateway proxy is available"

// Options configures the inbound edge of the router.
type Options struct {
	AllowedOrigins   []string
	RateLimitRPS     float64
	RateLimitBurst   int
	RateLimitIdleTTL time.Duration
}

// NewRouter creates the HTTP router with all routes and middleware.
// A nil proxy keeps the operational endpoints up and answers 503 on the
// transaction routes.
func NewRouter(proxy *service.TransactionProxy, opts Options, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.RequestLogMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(cors.Handler(corsOptions(opts.AllowedOrigins)))

	// --- Operational endpoints ---
	r.Get("/health", healthHandler())
	r.Get("/healthz", healthzHandler(proxy))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	r.Get("/v1/metrics/gateway", gatewayMetricsHandler(metrics))

	// --- Gateway proxy ---
	r.Group(func(r chi.Router) {
		r.Use(RateLimitMiddleware(opts.RateLimitRPS, opts.RateLimitBurst, opts.RateLimitIdleTTL, metrics, logger))

		// Raw pass-through: gateway status and body verbatim.
		r.Post("/transactions", createTransactionHandler(proxy, logger))
		r.Get("/transactions/", transactionStatusHandler(proxy, logger))
		r.Get("/transactions/{id}", transactionStatusHandler(proxy, logger))

		// Operator charges: {transaction, gateway} envelope.
		r.Post("/v1/charges", createChargeHandler(proxy, logger))
		r.Get("/v1/charges/{id}", chargeStatusHandler(proxy, logger))
	})

	return r
}

func corsOptions(origins []string) cors.Options {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{HeaderTransactionID, HeaderTransactionStatus, HeaderCopyPasteCode},
		MaxAge:         300,
	}
}

// ============================================================
// Operational endpoints
// ============================================================

func healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, domain.Health{OK: true, Message: HealthMessage})
	}
}

func healthzHandler(proxy *service.TransactionProxy) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().UTC().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "pix-gateway-proxy", Status: "healthy", LastChecked: now},
		}
		if proxy != nil {
			services = append(services, proxy.GatewayHealth())
		}

		overallStatus := "healthy"
		for _, s := range services {
			if s.Status == "unhealthy" {
				overallStatus = "unhealthy"
				break
			}
			if s.Status == "degraded" {
				overallStatus = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overallStatus,
			Services: services,
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func gatewayMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetGatewaySnapshot())
	}
}
