package handler

import (
	"encoding/json"
	"net/http"

	"github.com/boddenberg/pix-gateway-proxy/internal/domain"
	"github.com/boddenberg/pix-gateway-proxy/internal/service"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// POST /v1/charges
// ============================================================

func createChargeHandler(proxy *service.TransactionProxy, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/charges")
		defer span.End()

		if proxy == nil {
			writeError(w, http.StatusServiceUnavailable, "transaction proxy not configured")
			return
		}

		var form domain.ChargeForm
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)).Decode(&form); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}

		result, err := proxy.CreateCharge(ctx, &form)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		span.SetAttributes(attribute.Int("gateway.status_code", result.StatusCode))
		writeChargeView(w, result)
	}
}

// ============================================================
// GET /v1/charges/{id}
// ============================================================

func chargeStatusHandler(proxy *service.TransactionProxy, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/charges/{id}")
		defer span.End()

		if proxy == nil {
			writeError(w, http.StatusServiceUnavailable, "transaction proxy not configured")
			return
		}

		id, err := pathID(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid transaction id in path")
			return
		}
		span.SetAttributes(attribute.String("transaction.id", id))

		result, err := proxy.Status(ctx, id)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeChargeView(w, result)
	}
}

func writeChargeView(w http.ResponseWriter, result *domain.ProxyResult) {
	writeJSON(w, result.StatusCode, domain.ChargeView{
		Transaction: result.Transaction,
		Gateway:     result.Body,
	})
}
