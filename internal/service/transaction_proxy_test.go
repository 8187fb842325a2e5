package service_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/boddenberg/pix-gateway-proxy/internal/domain"
	"github.com/boddenberg/pix-gateway-proxy/internal/infra/observability"
	"github.com/boddenberg/pix-gateway-proxy/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// --- Mocks ---

type mockGateway struct {
	resp       *domain.GatewayResponse
	err        error
	configured bool
	state      string

	calls      int
	lastBody   json.RawMessage
	lastCharge *domain.ChargeRequest
	lastID     string
}

func (m *mockGateway) CreateTransaction(_ context.Context, req *domain.ChargeRequest) (*domain.GatewayResponse, error) {
	m.calls++
	m.lastCharge = req
	return m.resp, m.err
}

func (m *mockGateway) ForwardTransaction(_ context.Context, body json.RawMessage) (*domain.GatewayResponse, error) {
	m.calls++
	m.lastBody = body
	return m.resp, m.err
}

func (m *mockGateway) GetTransaction(_ context.Context, id string) (*domain.GatewayResponse, error) {
	m.calls++
	m.lastID = id
	return m.resp, m.err
}

func (m *mockGateway) Configured() bool     { return m.configured }
func (m *mockGateway) CircuitState() string { return m.state }

func newProxy(gw *mockGateway) *service.TransactionProxy {
	return service.NewTransactionProxy(gw, observability.NewMetrics(), zap.NewNop())
}

// --- Tests ---

func TestCreate_ForwardsBodyAndNormalizes(t *testing.T) {
	gw := &mockGateway{resp: &domain.GatewayResponse{
		StatusCode: 200,
		Body: domain.Document{
			"id":     "tx_1",
			"status": "waiting_payment",
			"pix":    map[string]any{"qrcode": "00020126..."},
		},
	}}

	body := []byte(`{"amount":1000,"currency":"BRL","paymentMethod":"pix"}`)
	res, err := newProxy(gw).Create(context.Background(), body)
	require.NoError(t, err)

	assert.Equal(t, 1, gw.calls)
	assert.JSONEq(t, string(body), string(gw.lastBody))
	assert.Equal(t, 200, res.StatusCode)
	assert.Equal(t, gw.resp.Body, res.Body)
	require.NotNil(t, res.Transaction.ID)
	assert.Equal(t, "tx_1", *res.Transaction.ID)
	assert.Equal(t, "waiting_payment", res.Transaction.Status)
	require.NotNil(t, res.Transaction.CopyPasteCode)
	assert.Equal(t, "00020126...", *res.Transaction.CopyPasteCode)
}

func TestCreate_InvalidJSON(t *testing.T) {
	for _, body := range []string{"", "{", "amount=10", `{"a":}`} {
		gw := &mockGateway{}
		_, err := newProxy(gw).Create(context.Background(), []byte(body))

		var valErr *domain.ErrValidation
		require.ErrorAs(t, err, &valErr, "body %q", body)
		assert.Equal(t, "Invalid JSON body", valErr.Message)
		assert.Equal(t, 0, gw.calls)
	}
}

func TestCreate_UpstreamErrorPassesThrough(t *testing.T) {
	gw := &mockGateway{resp: &domain.GatewayResponse{
		StatusCode: 400,
		Body:       domain.Document{"error": "amount must be positive"},
	}}

	res, err := newProxy(gw).Create(context.Background(), []byte(`{"amount":-1}`))
	require.NoError(t, err)
	assert.Equal(t, 400, res.StatusCode)
	assert.Equal(t, "amount must be positive", res.Body["error"])
	assert.Nil(t, res.Transaction.ID)
	assert.Equal(t, "pending", res.Transaction.Status)
}

func TestCreate_ErrorsPropagate(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"configuration", &domain.ErrConfiguration{Message: "missing keys"}},
		{"network", &domain.ErrNetwork{Operation: "create", Details: "connection refused"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &mockGateway{err: tt.err}
			res, err := newProxy(gw).Create(context.Background(), []byte(`{}`))
			assert.Nil(t, res)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestCreateCharge_BuildsRequest(t *testing.T) {
	gw := &mockGateway{resp: &domain.GatewayResponse{
		StatusCode: 201,
		Body:       domain.Document{"id": "tx_9", "status": "waiting_payment"},
	}}
	proxy := newProxy(gw).WithExternalRefGenerator(func() string { return "app_fixed" })

	form := &domain.ChargeForm{
		Amount:   "10,00",
		Name:     "Empresa XPTO",
		Email:    "fin@xpto.com",
		Document: "12345678000190",
		Phone:    "11999990000",
	}
	res, err := proxy.CreateCharge(context.Background(), form)
	require.NoError(t, err)

	require.NotNil(t, gw.lastCharge)
	assert.Equal(t, int64(1000), gw.lastCharge.Amount)
	assert.Equal(t, domain.CurrencyBRL, gw.lastCharge.Currency)
	assert.Equal(t, domain.DocumentTypeCNPJ, gw.lastCharge.Customer.DocumentType)
	assert.Equal(t, "app_fixed", gw.lastCharge.ExternalRef)
	assert.Equal(t, "tx_9", *res.Transaction.ID)
}

func TestCreateCharge_DefaultExternalRef(t *testing.T) {
	gw := &mockGateway{resp: &domain.GatewayResponse{StatusCode: 201, Body: domain.Document{}}}

	_, err := newProxy(gw).CreateCharge(context.Background(), &domain.ChargeForm{
		Amount: "5", Name: "Ana", Email: "ana@example.com", Document: "12345678901",
	})
	require.NoError(t, err)
	assert.Regexp(t, `^app_[0-9a-f-]{36}$`, gw.lastCharge.ExternalRef)
}

func TestCreateCharge_InvalidFormNeverCallsGateway(t *testing.T) {
	gw := &mockGateway{}
	_, err := newProxy(gw).CreateCharge(context.Background(), &domain.ChargeForm{Amount: "abc"})

	var valErr *domain.ErrValidation
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, 0, gw.calls)
}

func TestStatus_EmptyIDNeverCallsGateway(t *testing.T) {
	gw := &mockGateway{}
	_, err := newProxy(gw).Status(context.Background(), "")

	var valErr *domain.ErrValidation
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "Missing transaction id in path", valErr.Message)
	assert.Equal(t, 0, gw.calls)
}

func TestStatus_RawBodyIsWrapped(t *testing.T) {
	gw := &mockGateway{resp: &domain.GatewayResponse{StatusCode: 200, Body: domain.Document{"raw": "OK"}}}

	res, err := newProxy(gw).Status(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", gw.lastID)
	assert.Equal(t, domain.Document{"raw": "OK"}, res.Body)
	assert.Nil(t, res.Transaction.ID)
	assert.Equal(t, "pending", res.Transaction.Status)
}

func TestGatewayHealth(t *testing.T) {
	tests := []struct {
		name       string
		configured bool
		state      string
		want       string
	}{
		{"healthy", true, "closed", "healthy"},
		{"open circuit", true, "open", "degraded"},
		{"no credentials", false, "closed", "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newProxy(&mockGateway{configured: tt.configured, state: tt.state}).GatewayHealth()
			assert.Equal(t, tt.want, h.Status)
			assert.Equal(t, "payment-gateway", h.Name)
		})
	}
}
