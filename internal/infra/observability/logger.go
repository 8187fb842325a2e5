package observability

import (
	"net/http"
	"time"

	"github.com/boddenberg/pix-gateway-proxy/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the process logger. Unknown levels fall back to info.
// "debug" switches to the colored console encoder for local runs.
func NewLogger(level string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true

	if lvl, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	if level == "debug" {
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	logger, err := cfg.Build()
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	return logger.With(zap.String("service", "pix-gateway-proxy"))
}

// RequestLogMiddleware writes one access line per request. Proxy answers
// also carry the normalized transaction id and status the handler put in
// the response headers, so a payment can be followed across log lines
// without logging the gateway body.
//
// 502 is logged at Error: it means the gateway could not be reached.
// Other 5xx are the gateway's own answers passed through and log at Warn
// like 4xx.
func RequestLogMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				status := ww.Status()
				fields := []zap.Field{
					zap.String("method", r.Method),
					zap.String("route", routePattern(r)),
					zap.Int("status", status),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("latency", time.Since(start)),
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.String("remote_addr", r.RemoteAddr),
				}
				fields = append(fields, transactionFields(ww.Header())...)

				switch {
				case status == http.StatusBadGateway:
					logger.Error("request served", fields...)
				case status >= 400:
					logger.Warn("request served", fields...)
				default:
					logger.Info("request served", fields...)
				}
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

func transactionFields(h http.Header) []zap.Field {
	var fields []zap.Field
	if id := h.Get(domain.HeaderTransactionID); id != "" {
		fields = append(fields, zap.String("transaction_id", id))
	}
	if status := h.Get(domain.HeaderTransactionStatus); status != "" {
		fields = append(fields, zap.String("transaction_status", status))
	}
	return fields
}

// routePattern prefers the chi pattern so ids in the path stay out of the
// log. Unmatched requests fall back to the raw path.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

// TracingMiddleware continues a W3C trace started by the caller.
func TracingMiddleware(next http.Handler) http.Handler {
	propagator := otel.GetTextMapPropagator()
	if propagator == nil {
		propagator = propagation.TraceContext{}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
