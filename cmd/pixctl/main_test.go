package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/boddenberg/pix-gateway-proxy/internal/domain"
	"github.com/boddenberg/pix-gateway-proxy/internal/infra/gateway"
	"github.com/boddenberg/pix-gateway-proxy/internal/infra/observability"
	"github.com/boddenberg/pix-gateway-proxy/internal/infra/resilience"
	"github.com/boddenberg/pix-gateway-proxy/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testFactory(baseURL string) proxyFactory {
	return func(string) (*service.TransactionProxy, error) {
		metrics := observability.NewMetrics()
		client := gateway.NewClient(
			&http.Client{Timeout: 2 * time.Second},
			baseURL,
			domain.Credentials{PublicKey: "pk", SecretKey: "sk"},
			resilience.NewCircuitBreaker("pixctl-test", resilience.BreakerConfig{}),
			resilience.NewBulkhead(1),
			metrics,
			zap.NewNop(),
		)
		return service.NewTransactionProxy(client, metrics, zap.NewNop()), nil
	}
}

func run(t *testing.T, baseURL string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(testFactory(baseURL))
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCreateCommand(t *testing.T) {
	var sent map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&sent)
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":"tx_1","status":"waiting_payment","pix":{"qrcode":"000201"}}`)
	}))
	defer srv.Close()

	out, err := run(t, srv.URL, "create", "--amount", "25,90", "--name", "Ana", "--document", "12345678901")
	require.NoError(t, err)

	var view struct {
		Transaction domain.NormalizedTransaction `json:"transaction"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, "tx_1", *view.Transaction.ID)
	assert.Equal(t, "000201", *view.Transaction.CopyPasteCode)
	assert.Equal(t, float64(2590), sent["amount"])
}

func TestCreateCommand_RequiresAmount(t *testing.T) {
	_, err := run(t, "http://127.0.0.1:1", "create", "--name", "Ana")
	assert.Error(t, err)
}

func TestStatusCommand_Non2xxFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":"not found"}`)
	}))
	defer srv.Close()

	out, err := run(t, srv.URL, "status", "tx_missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, out, `"not found"`)
}

func TestStatusCommand_RequiresID(t *testing.T) {
	_, err := run(t, "http://127.0.0.1:1", "status")
	assert.Error(t, err)
}
