package domain_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/boddenberg/pix-gateway-proxy/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmountToCents(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"10.00", 1000},
		{"10,50", 1050},
		{" 0.01 ", 1},
		{"19.999", 2000},
		{"0.005", 1},
		{"1e2", 10000},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := domain.ParseAmountToCents(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAmountToCents_Invalid(t *testing.T) {
	for _, in := range []string{"", "abc", "0", "-5", "0.001"} {
		t.Run(in, func(t *testing.T) {
			_, err := domain.ParseAmountToCents(in)
			var validation *domain.ErrValidation
			require.True(t, errors.As(err, &validation), "expected validation error, got %v", err)
			assert.Equal(t, "amount", validation.Field)
		})
	}
}

func TestDetectDocumentType(t *testing.T) {
	assert.Equal(t, domain.DocumentTypeCPF, domain.DetectDocumentType("12345678901"))
	assert.Equal(t, domain.DocumentTypeCNPJ, domain.DetectDocumentType("12345678000190"))
	assert.Equal(t, domain.DocumentTypeCNPJ, domain.DetectDocumentType("123.456.789-01"))
	assert.Equal(t, domain.DocumentTypeCPF, domain.DetectDocumentType(""))
}

func TestNewChargeRequest(t *testing.T) {
	form := &domain.ChargeForm{
		Amount:   "10,00",
		Name:     "Maria Silva",
		Email:    "maria@example.com",
		Document: "12345678901",
		Phone:    "11999998888",
	}

	req, err := domain.NewChargeRequest(form, "app_ref-1")
	require.NoError(t, err)

	assert.Equal(t, int64(1000), req.Amount)
	assert.Equal(t, domain.CurrencyBRL, req.Currency)
	assert.Equal(t, domain.PaymentMethodPix, req.PaymentMethod)
	require.NotNil(t, req.Pix)
	assert.Equal(t, 1, req.Pix.ExpiresInDays)
	require.Len(t, req.Items, 1)
	assert.Equal(t, domain.ChargeItem{Name: "Pagamento via site", Quantity: 1, Price: 1000}, req.Items[0])
	assert.Equal(t, domain.DocumentTypeCPF, req.Customer.DocumentType)
	assert.Equal(t, "app_ref-1", req.ExternalRef)
}

func TestNewChargeRequest_RejectsBadAmount(t *testing.T) {
	_, err := domain.NewChargeRequest(&domain.ChargeForm{Amount: "0"}, "ref")
	var validation *domain.ErrValidation
	assert.True(t, errors.As(err, &validation))
}

func TestChargeRequest_WireFormat(t *testing.T) {
	req, err := domain.NewChargeRequest(&domain.ChargeForm{Amount: "25.5", Document: "12345678000190", ExpiresInDays: 3}, "app_x")
	require.NoError(t, err)

	raw, err := json.Marshal(req)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, float64(2550), doc["amount"])
	assert.Equal(t, "app_x", doc["externalRef"])
	assert.Equal(t, map[string]any{"expiresInDays": float64(3)}, doc["pix"])
	assert.Equal(t, "cnpj", doc["customer"].(map[string]any)["documentType"])
}

func TestChargeRequest_Validate(t *testing.T) {
	base := domain.ChargeRequest{
		Amount:   100,
		Currency: "BRL",
		Customer: domain.Customer{DocumentType: "cpf"},
	}
	require.NoError(t, base.Validate())

	noPix := base
	noPix.Pix = &domain.PixOptions{ExpiresInDays: 0}
	assert.Error(t, noPix.Validate())

	badDoc := base
	badDoc.Customer.DocumentType = "passport"
	assert.Error(t, badDoc.Validate())

	noCurrency := base
	noCurrency.Currency = ""
	assert.Error(t, noCurrency.Validate())
}

func TestFlexibleAmount_UnmarshalJSON(t *testing.T) {
	var form domain.ChargeForm
	require.NoError(t, json.Unmarshal([]byte(`{"amount": 12.34}`), &form))
	assert.Equal(t, domain.FlexibleAmount("12.34"), form.Amount)

	require.NoError(t, json.Unmarshal([]byte(`{"amount": "12,34"}`), &form))
	assert.Equal(t, domain.FlexibleAmount("12,34"), form.Amount)

	assert.Error(t, json.Unmarshal([]byte(`{"amount": true}`), &form))
}
