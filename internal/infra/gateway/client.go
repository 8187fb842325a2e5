// Package gateway is the HTTP client for the PIX payment gateway's
// transactions API.
package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/boddenberg/pix-gateway-proxy/internal/domain"
	"github.com/boddenberg/pix-gateway-proxy/internal/infra/observability"
	"github.com/boddenberg/pix-gateway-proxy/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("gateway")

const transactionsPath = "/v1/transactions"

// MaxResponseBytes caps how much of a gateway body is read. Longer bodies
// come back as {"raw": <first MaxResponseBytes>, "truncated": true}.
const MaxResponseBytes = 4 << 20

// Client calls the gateway's transactions API. It never retries; an open
// circuit or a full bulkhead fails the call as a network error.
type Client struct {
	httpClient *http.Client
	baseURL    string
	creds      domain.Credentials
	cb         *gobreaker.CircuitBreaker
	bulkhead   *resilience.Bulkhead
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewClient creates a gateway client. baseURL is the gateway root, without
// the /v1/transactions suffix.
func NewClient(
	httpClient *http.Client,
	baseURL string,
	creds domain.Credentials,
	cb *gobreaker.CircuitBreaker,
	bulkhead *resilience.Bulkhead,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		creds:      creds,
		cb:         cb,
		bulkhead:   bulkhead,
		metrics:    metrics,
		logger:     logger,
	}
}

// CreateTransaction serializes req and creates a transaction with it.
func (c *Client) CreateTransaction(ctx context.Context, req *domain.ChargeRequest) (*domain.GatewayResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal charge request: %w", err)
	}
	return c.ForwardTransaction(ctx, body)
}

// ForwardTransaction creates a transaction with an already serialized body.
func (c *Client) ForwardTransaction(ctx context.Context, body json.RawMessage) (*domain.GatewayResponse, error) {
	return c.do(ctx, observability.OpCreate, http.MethodPost, c.baseURL+transactionsPath, body)
}

// GetTransaction fetches a transaction by id.
func (c *Client) GetTransaction(ctx context.Context, id string) (*domain.GatewayResponse, error) {
	if id == "" {
		return nil, &domain.ErrValidation{Field: "id", Message: "Missing transaction id in path"}
	}
	target := c.baseURL + transactionsPath + "/" + url.PathEscape(id)
	return c.do(ctx, observability.OpGet, http.MethodGet, target, nil)
}

// Configured reports whether both credentials are present.
func (c *Client) Configured() bool {
	return c.creds.Complete()
}

// CircuitState reports the breaker state.
func (c *Client) CircuitState() string {
	return c.cb.State().String()
}

func (c *Client) do(ctx context.Context, operation, method, target string, body []byte) (*domain.GatewayResponse, error) {
	ctx, span := tracer.Start(ctx, "GatewayClient."+operation)
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("gateway.operation", operation),
	)

	log := c.logger.With(
		zap.String("operation", operation),
		zap.String("method", method),
		zap.String("url", target),
	)

	// Checked before anything touches the network.
	if !c.creds.Complete() {
		err := &domain.ErrConfiguration{
			Message: "Server misconfiguration: missing gateway keys (set GATEWAY_PUBLIC_KEY and GATEWAY_SECRET_KEY)",
		}
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := c.bulkhead.Acquire(ctx); err != nil {
		c.metrics.IncrTransportError(operation)
		log.Warn("gateway: no slot available", zap.Error(err))
		return nil, &domain.ErrNetwork{Operation: operation, Details: err.Error(), Err: err}
	}
	defer c.bulkhead.Release()

	start := time.Now()
	result, err := c.cb.Execute(func() (any, error) {
		resp, err := c.roundTrip(ctx, method, target, body)
		if err != nil && ctx.Err() != nil {
			// The caller went away; the gateway is not at fault.
			return nil, resilience.CallerAborted(err)
		}
		return resp, err
	})
	latency := time.Since(start)
	c.metrics.RecordGatewayDuration(operation, latency)

	if err != nil {
		if resilience.IsCallerAborted(err) {
			span.RecordError(err)
			log.Debug("gateway: caller aborted request",
				zap.Duration("latency", latency),
				zap.Error(err),
			)
			return nil, &domain.ErrNetwork{Operation: operation, Details: err.Error(), Err: err}
		}

		details := err.Error()
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			details = "circuit breaker open: " + details
		}
		c.metrics.IncrTransportError(operation)
		span.RecordError(err)
		span.SetStatus(codes.Error, details)
		log.Warn("gateway: request failed",
			zap.Duration("latency", latency),
			zap.Error(err),
		)
		return nil, &domain.ErrNetwork{Operation: operation, Details: details, Err: err}
	}

	resp := result.(*domain.GatewayResponse)
	c.metrics.IncrGatewayResponse(operation, resp.StatusCode)
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	fields := []zap.Field{
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", latency),
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Warn("gateway: non-2xx response", fields...)
	} else {
		log.Debug("gateway: request OK", fields...)
	}

	return resp, nil
}

// roundTrip performs one HTTP exchange. Only failures to get a response at
// all are returned as errors, so only those count against the breaker.
func (c *Client) roundTrip(ctx context.Context, method, target string, body []byte) (*domain.GatewayResponse, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", basicAuth(c.creds))
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return &domain.GatewayResponse{
		StatusCode: resp.StatusCode,
		Body:       c.readBody(resp),
	}, nil
}

// readBody decodes the response body. The status line already arrived, so a
// body that cannot be read in full is reported in the document instead of
// failing the call.
func (c *Client) readBody(resp *http.Response) domain.Document {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBytes+1))
	if err != nil {
		c.logger.Warn("gateway: failed to read response body",
			zap.Int("status", resp.StatusCode),
			zap.Int("bytes_read", len(raw)),
			zap.Error(err),
		)
		return domain.Document{
			"message": UnreadableBodyMessage,
			"details": err.Error(),
		}
	}

	if len(raw) > MaxResponseBytes {
		c.logger.Warn("gateway: response body truncated",
			zap.Int("status", resp.StatusCode),
			zap.Int("limit_bytes", MaxResponseBytes),
		)
		return domain.Document{
			"raw":       string(raw[:MaxResponseBytes]),
			"truncated": true,
		}
	}

	return DecodeBody(raw)
}

func basicAuth(creds domain.Credentials) string {
	token := base64.StdEncoding.EncodeToString([]byte(creds.PublicKey + ":" + creds.SecretKey))
	return "Basic " + token
}
