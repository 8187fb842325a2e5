package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ============================================================
// Charge creation
// ============================================================

const (
	CurrencyBRL      = "BRL"
	PaymentMethodPix = "pix"

	DocumentTypeCPF  = "cpf"
	DocumentTypeCNPJ = "cnpj"

	defaultItemName      = "Pagamento via site"
	defaultExpiresInDays = 1
)

// ChargeRequest is the body sent to the gateway to create a PIX charge.
// Amount is always an integer count of cents.
type ChargeRequest struct {
	Amount        int64        `json:"amount"`
	Currency      string       `json:"currency"`
	PaymentMethod string       `json:"paymentMethod,omitempty"`
	Pix           *PixOptions  `json:"pix,omitempty"`
	Items         []ChargeItem `json:"items,omitempty"`
	Customer      Customer     `json:"customer"`
	ExternalRef   string       `json:"externalRef"`
}

// PixOptions carries the PIX-specific charge settings.
type PixOptions struct {
	ExpiresInDays int `json:"expiresInDays,omitempty"`
}

// ChargeItem is a line item; the gateway treats it as optional.
type ChargeItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
}

// Customer identifies the payer.
type Customer struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Document     string `json:"document"`
	DocumentType string `json:"documentType"`
	Phone        string `json:"phone"`
}

// Validate checks the invariants the gateway relies on.
func (r *ChargeRequest) Validate() error {
	if r.Amount <= 0 {
		return &ErrValidation{Field: "amount", Message: "amount must be a positive number of cents"}
	}
	if r.Currency == "" {
		return &ErrValidation{Field: "currency", Message: "currency is required"}
	}
	if r.Pix != nil && r.Pix.ExpiresInDays < 1 {
		return &ErrValidation{Field: "pix.expiresInDays", Message: "expiresInDays must be at least 1"}
	}
	switch r.Customer.DocumentType {
	case DocumentTypeCPF, DocumentTypeCNPJ:
	default:
		return &ErrValidation{Field: "customer.documentType", Message: "documentType must be cpf or cnpj"}
	}
	return nil
}

// ChargeForm is the operator-facing input for a new charge. Amount is a
// decimal in reais, "10,50" and "10.50" are both accepted.
type ChargeForm struct {
	Amount        FlexibleAmount `json:"amount"`
	Name          string         `json:"name"`
	Email         string         `json:"email"`
	Document      string         `json:"document"`
	Phone         string         `json:"phone"`
	ExpiresInDays int            `json:"expiresInDays,omitempty"`
	Description   string         `json:"description,omitempty"`
}

// FlexibleAmount accepts either a JSON string or a JSON number.
type FlexibleAmount string

func (a *FlexibleAmount) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*a = FlexibleAmount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("amount must be a string or a number")
	}
	*a = FlexibleAmount(n.String())
	return nil
}

// ParseAmountToCents converts a decimal amount in reais to cents, rounding
// half up. A comma is accepted as the decimal separator.
func ParseAmountToCents(value string) (int64, error) {
	normalized := strings.Replace(strings.TrimSpace(value), ",", ".", 1)
	d, err := decimal.NewFromString(normalized)
	if err != nil || !d.IsPositive() {
		return 0, &ErrValidation{Field: "amount", Message: "informe um valor válido maior que 0"}
	}
	cents := d.Shift(2).Round(0)
	if !cents.IsPositive() {
		return 0, &ErrValidation{Field: "amount", Message: "informe um valor válido maior que 0"}
	}
	return cents.IntPart(), nil
}

// DetectDocumentType returns cnpj for documents longer than a CPF, cpf otherwise.
func DetectDocumentType(document string) string {
	if len(document) > 11 {
		return DocumentTypeCNPJ
	}
	return DocumentTypeCPF
}

// NewChargeRequest builds a gateway charge from operator input.
func NewChargeRequest(form *ChargeForm, externalRef string) (*ChargeRequest, error) {
	if form == nil {
		return nil, &ErrValidation{Field: "body", Message: "request body is required"}
	}

	cents, err := ParseAmountToCents(string(form.Amount))
	if err != nil {
		return nil, err
	}

	expires := form.ExpiresInDays
	if expires <= 0 {
		expires = defaultExpiresInDays
	}

	itemName := form.Description
	if itemName == "" {
		itemName = defaultItemName
	}

	req := &ChargeRequest{
		Amount:        cents,
		Currency:      CurrencyBRL,
		PaymentMethod: PaymentMethodPix,
		Pix:           &PixOptions{ExpiresInDays: expires},
		Items: []ChargeItem{
			{Name: itemName, Quantity: 1, Price: cents},
		},
		Customer: Customer{
			Name:         form.Name,
			Email:        form.Email,
			Document:     form.Document,
			DocumentType: DetectDocumentType(form.Document),
			Phone:        form.Phone,
		},
		ExternalRef: externalRef,
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}
