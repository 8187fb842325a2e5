package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/boddenberg/pix-gateway-proxy/internal/domain"
	"github.com/boddenberg/pix-gateway-proxy/internal/service"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Headers carrying the normalized transaction on pass-through responses.
const (
	HeaderTransactionID     = domain.HeaderTransactionID
	HeaderTransactionStatus = domain.HeaderTransactionStatus
	HeaderCopyPasteCode     = domain.HeaderCopyPasteCode
)

const maxRequestBodyBytes = 1 << 20

// ============================================================
// POST /transactions
// ============================================================

func createTransactionHandler(proxy *service.TransactionProxy, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /transactions")
		defer span.End()

		if proxy == nil {
			writeError(w, http.StatusServiceUnavailable, "transaction proxy not configured")
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}
			writeError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}

		result, err := proxy.Create(ctx, body)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		span.SetAttributes(attribute.Int("gateway.status_code", result.StatusCode))
		writePassThrough(w, result)
	}
}

// ============================================================
// GET /transactions/{id}
// ============================================================

func transactionStatusHandler(proxy *service.TransactionProxy, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /transactions/{id}")
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

		span.SetAttributes(attribute.Int("gateway.status_code", result.StatusCode))
		writePassThrough(w, result)
	}
}

// writePassThrough answers with the gateway's status and decoded body, plus
// the normalized fields as headers.
func writePassThrough(w http.ResponseWriter, result *domain.ProxyResult) {
	tx := result.Transaction
	h := w.Header()
	if tx.ID != nil {
		h.Set(HeaderTransactionID, *tx.ID)
	}
	h.Set(HeaderTransactionStatus, tx.Status)
	if tx.CopyPasteCode != nil {
		h.Set(HeaderCopyPasteCode, *tx.CopyPasteCode)
	}
	writeJSON(w, result.StatusCode, result.Body)
}
