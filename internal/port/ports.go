// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the service layer
// from concrete implementations.
package port

import (
	"context"
	"encoding/json"

	"github.com/boddenberg/pix-gateway-proxy/internal/domain"
)

// GatewayClient performs authenticated calls against the payment gateway.
// A response from the gateway is returned whatever its HTTP status; errors are
// reserved for calls that could not be made or got no response.
type GatewayClient interface {
	CreateTransaction(ctx context.Context, req *domain.ChargeRequest) (*domain.GatewayResponse, error)
	ForwardTransaction(ctx context.Context, body json.RawMessage) (*domain.GatewayResponse, error)
	GetTransaction(ctx context.Context, id string) (*domain.GatewayResponse, error)

	// Configured reports whether credentials are present.
	Configured() bool
	// CircuitState is "closed", "half-open" or "open".
	CircuitState() string
}

// Cache provides generic keyed storage with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	GetOrSet(key string, create func() T) T
	Delete(key string)
}
