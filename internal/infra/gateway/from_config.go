package gateway

import (
	"net/http"

	"github.com/boddenberg/pix-gateway-proxy/internal/config"
	"github.com/boddenberg/pix-gateway-proxy/internal/infra/observability"
	"github.com/boddenberg/pix-gateway-proxy/internal/infra/resilience"

	"go.uber.org/zap"
)

// NewFromConfig wires a Client with its HTTP client, circuit breaker and
// bulkhead taken from cfg.
func NewFromConfig(cfg *config.Config, metrics *observability.Metrics, logger *zap.Logger) *Client {
	maxRequests := cfg.BreakerMaxRequests
	if maxRequests < 0 {
		maxRequests = 0
	}
	cb := resilience.NewCircuitBreaker("payment-gateway", resilience.BreakerConfig{
		MaxRequests: uint32(maxRequests),
		Interval:    cfg.BreakerInterval,
		Timeout:     cfg.BreakerTimeout,
	})

	return NewClient(
		&http.Client{Timeout: cfg.HTTPTimeout},
		cfg.GatewayBaseURL,
		cfg.Credentials(),
		cb,
		resilience.NewBulkhead(cfg.MaxConcurrency),
		metrics,
		logger,
	)
}
