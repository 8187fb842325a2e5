// Package service provides the business logic layer (use cases).
// TransactionProxy relays transaction calls to the payment gateway and
// normalizes what comes back.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/boddenberg/pix-gateway-proxy/internal/domain"
	"github.com/boddenberg/pix-gateway-proxy/internal/infra/observability"
	"github.com/boddenberg/pix-gateway-proxy/internal/normalizer"
	"github.com/boddenberg/pix-gateway-proxy/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var proxyTracer = otel.Tracer("service/proxy")

// Proxy outcomes, used as metric labels.
const (
	OutcomeForwarded     = "forwarded"
	OutcomeInvalid       = "invalid"
	OutcomeUnconfigured  = "unconfigured"
	OutcomeNetworkError  = "network_error"
	OutcomeInternalError = "internal_error"
)

// TransactionProxy orchestrates the create and status use cases.
type TransactionProxy struct {
	gateway port.GatewayClient
	metrics *observability.Metrics
	logger  *zap.Logger

	newRef func() string
}

// NewTransactionProxy creates a new transaction proxy.
func NewTransactionProxy(gateway port.GatewayClient, metrics *observability.Metrics, logger *zap.Logger) *TransactionProxy {
	return &TransactionProxy{
		gateway: gateway,
		metrics: metrics,
		logger:  logger,
		newRef:  func() string { return "app_" + uuid.NewString() },
	}
}

// WithExternalRefGenerator replaces the externalRef generator used by
// CreateCharge.
func (p *TransactionProxy) WithExternalRefGenerator(gen func() string) *TransactionProxy {
	p.newRef = gen
	return p
}

// ============================================================
// Create
// ============================================================

// Create forwards a raw JSON body to the gateway unchanged. The body must be
// syntactically valid JSON; its shape is the gateway's business.
func (p *TransactionProxy) Create(ctx context.Context, body []byte) (*domain.ProxyResult, error) {
	ctx, span := proxyTracer.Start(ctx, "TransactionProxy.Create")
	defer span.End()

	if !json.Valid(body) {
		p.metrics.IncrProxyRequest(OutcomeInvalid)
		return nil, &domain.ErrValidation{Field: "body", Message: "Invalid JSON body"}
	}

	resp, err := p.gateway.ForwardTransaction(ctx, json.RawMessage(body))
	return p.finish(resp, err)
}

// CreateCharge builds a gateway charge from an operator form and creates it.
func (p *TransactionProxy) CreateCharge(ctx context.Context, form *domain.ChargeForm) (*domain.ProxyResult, error) {
	ctx, span := proxyTracer.Start(ctx, "TransactionProxy.CreateCharge")
	defer span.End()

	req, err := domain.NewChargeRequest(form, p.newRef())
	if err != nil {
		p.metrics.IncrProxyRequest(OutcomeInvalid)
		return nil, err
	}
	span.SetAttributes(
		attribute.Int64("charge.amount", req.Amount),
		attribute.String("charge.external_ref", req.ExternalRef),
	)

	resp, err := p.gateway.CreateTransaction(ctx, req)
	return p.finish(resp, err)
}

// ============================================================
// Status
// ============================================================

// Status looks a transaction up by id. An empty id never reaches the gateway.
func (p *TransactionProxy) Status(ctx context.Context, id string) (*domain.ProxyResult, error) {
	ctx, span := proxyTracer.Start(ctx, "TransactionProxy.Status")
	defer span.End()
	span.SetAttributes(attribute.String("transaction.id", id))

	if id == "" {
		p.metrics.IncrProxyRequest(OutcomeInvalid)
		return nil, &domain.ErrValidation{Field: "id", Message: "Missing transaction id in path"}
	}

	resp, err := p.gateway.GetTransaction(ctx, id)
	return p.finish(resp, err)
}

// GatewayHealth reports the gateway dependency for /healthz. Missing
// credentials make it unhealthy; an open circuit makes it degraded.
func (p *TransactionProxy) GatewayHealth() domain.ServiceHealth {
	h := domain.ServiceHealth{
		Name:        "payment-gateway",
		Status:      "healthy",
		LastChecked: time.Now().UTC().Format(time.RFC3339),
	}

	state := p.gateway.CircuitState()
	switch {
	case !p.gateway.Configured():
		h.Status = "unhealthy"
		h.Detail = "credentials not configured"
	case state != "closed":
		h.Status = "degraded"
		h.Detail = "circuit " + state
	}
	return h
}

// finish normalizes a gateway response or classifies the failure.
func (p *TransactionProxy) finish(resp *domain.GatewayResponse, err error) (*domain.ProxyResult, error) {
	if err != nil {
		p.metrics.IncrProxyRequest(outcomeOf(err))
		return nil, err
	}

	p.metrics.IncrProxyRequest(OutcomeForwarded)
	tx := normalizer.Normalize(resp.Body)
	if tx.ID == nil {
		p.logger.Debug("proxy: gateway response carried no transaction id",
			zap.Int("status", resp.StatusCode),
		)
	}
	return &domain.ProxyResult{
		StatusCode:  resp.StatusCode,
		Body:        resp.Body,
		Transaction: tx,
	}, nil
}

func outcomeOf(err error) string {
	var valErr *domain.ErrValidation
	var cfgErr *domain.ErrConfiguration
	var netErr *domain.ErrNetwork

	switch {
	case errors.As(err, &valErr):
		return OutcomeInvalid
	case errors.As(err, &cfgErr):
		return OutcomeUnconfigured
	case errors.As(err, &netErr):
		return OutcomeNetworkError
	default:
		return OutcomeInternalError
	}
}
