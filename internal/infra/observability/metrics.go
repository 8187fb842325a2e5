package observability

import (
	"fmt"
	"time"

	"github.com/boddenberg/pix-gateway-proxy/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Gateway operations used as metric labels.
const (
	OpCreate = "create"
	OpGet    = "get"
)

var (
	gatewayOps     = []string{OpCreate, OpGet}
	statusClasses  = []string{"1xx", "2xx", "3xx", "4xx", "5xx"}
	upstreamFaults = []string{"4xx", "5xx"}
)

// Metrics holds all Prometheus metrics for the proxy.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	gatewayDuration  *prometheus.HistogramVec
	gatewayResponses *prometheus.CounterVec
	transportErrors  *prometheus.CounterVec
	proxyRequests    *prometheus.CounterVec
	rateLimited      prometheus.Counter
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		gatewayDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pixproxy_gateway_request_duration_seconds",
				Help:    "Duration of gateway calls by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		gatewayResponses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pixproxy_gateway_responses_total",
				Help: "Gateway responses by operation and HTTP status class.",
			},
			[]string{"operation", "class"},
		),
		transportErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pixproxy_gateway_transport_errors_total",
				Help: "Gateway calls that received no response at all.",
			},
			[]string{"operation"},
		),
		proxyRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pixproxy_requests_total",
				Help: "Proxy requests by outcome.",
			},
			[]string{"outcome"},
		),
		rateLimited: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "pixproxy_rate_limited_total",
				Help: "Inbound requests rejected by the rate limiter.",
			},
		),
	}
}

// RecordGatewayDuration records the duration of a gateway call.
func (m *Metrics) RecordGatewayDuration(operation string, d time.Duration) {
	m.gatewayDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrGatewayResponse counts a response received from the gateway.
func (m *Metrics) IncrGatewayResponse(operation string, statusCode int) {
	m.gatewayResponses.WithLabelValues(operation, StatusClass(statusCode)).Inc()
}

// IncrTransportError counts a gateway call that got no response.
func (m *Metrics) IncrTransportError(operation string) {
	m.transportErrors.WithLabelValues(operation).Inc()
}

// IncrProxyRequest counts a proxy request by outcome.
func (m *Metrics) IncrProxyRequest(outcome string) {
	m.proxyRequests.WithLabelValues(outcome).Inc()
}

// IncrRateLimited counts a request rejected by the rate limiter.
func (m *Metrics) IncrRateLimited() {
	m.rateLimited.Inc()
}

// StatusClass maps an HTTP status to its class label, e.g. 404 → "4xx".
func StatusClass(code int) string {
	return fmt.Sprintf("%dxx", code/100)
}

// GetGatewaySnapshot returns cumulative gateway counters suitable for the
// GET /v1/metrics/gateway endpoint.
func (m *Metrics) GetGatewaySnapshot() *domain.GatewayMetrics {
	var responses, successes, upstream, transport float64
	for _, op := range gatewayOps {
		for _, class := range statusClasses {
			responses += counterValue(m.gatewayResponses.WithLabelValues(op, class))
		}
		successes += counterValue(m.gatewayResponses.WithLabelValues(op, "2xx"))
		for _, class := range upstreamFaults {
			upstream += counterValue(m.gatewayResponses.WithLabelValues(op, class))
		}
		transport += counterValue(m.transportErrors.WithLabelValues(op))
	}

	total := responses + transport
	errorRate := float64(0)
	if total > 0 {
		errorRate = (upstream + transport) / total
	}

	return &domain.GatewayMetrics{
		TotalCalls:      int64(total),
		SuccessfulCalls: int64(successes),
		UpstreamErrors:  int64(upstream),
		TransportErrors: int64(transport),
		ErrorRate:       errorRate,
		RateLimited:     int64(counterValue(m.rateLimited)),
		Period:          "all_time",
	}
}

// counterValue extracts the current float64 value from a counter.
func counterValue(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
