package domain

// Document is an untyped JSON object as returned by the payment gateway.
// No schema is guaranteed: fields are probed, never bound to a struct, and
// unknown fields are passed through untouched.
type Document map[string]any

// GatewayResponse is the decoded outcome of one gateway call.
type GatewayResponse struct {
	StatusCode int
	Body       Document
}

// NormalizedTransaction is the canonical view of a gateway transaction.
// ID and CopyPasteCode encode as JSON null when the gateway did not carry them.
type NormalizedTransaction struct {
	ID            *string `json:"id"`
	Status        string  `json:"status"`
	CopyPasteCode *string `json:"copyPasteCode"`
}

// ProxyResult is what the proxy hands back to the boundary for a call that
// reached the gateway, whatever status the gateway answered with.
type ProxyResult struct {
	StatusCode  int
	Body        Document
	Transaction NormalizedTransaction
}

// ChargeView is the body of the /v1/charges routes.
type ChargeView struct {
	Transaction NormalizedTransaction `json:"transaction"`
	Gateway     Document              `json:"gateway"`
}

// Credentials authenticate the proxy against the gateway.
type Credentials struct {
	PublicKey string
	SecretKey string
}

// Complete reports whether both keys are present.
func (c Credentials) Complete() bool {
	return c.PublicKey != "" && c.SecretKey != ""
}

// Response headers that carry the normalized tuple next to a pass-through body.
const (
	HeaderTransactionID     = "X-Transaction-Id"
	HeaderTransactionStatus = "X-Transaction-Status"
	HeaderCopyPasteCode     = "X-Copy-Paste-Code"
)
