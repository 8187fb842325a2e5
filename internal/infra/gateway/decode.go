package gateway

import (
	"bytes"
	"encoding/json"

	"github.com/boddenberg/pix-gateway-proxy/internal/domain"
)

// NoContentMessage is reported when the gateway answers with an empty body.
const NoContentMessage = "No content from gateway"

// UnreadableBodyMessage is reported when the body could not be read in full.
const UnreadableBodyMessage = "Unreadable response body from gateway"

// DecodeBody turns a gateway body into a Document without ever failing:
//   - empty body or JSON null → {"message": NoContentMessage}
//   - invalid JSON → {"raw": <text>}
//   - a JSON value that is not an object → {"raw": <value>}
//
// Numbers are kept as json.Number so they re-encode exactly as received.
func DecodeBody(raw []byte) domain.Document {
	if len(bytes.TrimSpace(raw)) == 0 {
		return domain.Document{"message": NoContentMessage}
	}
	if !json.Valid(raw) {
		return domain.Document{"raw": string(raw)}
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return domain.Document{"raw": string(raw)}
	}

	switch val := v.(type) {
	case nil:
		return domain.Document{"message": NoContentMessage}
	case map[string]any:
		return domain.Document(val)
	default:
		return domain.Document{"raw": val}
	}
}
