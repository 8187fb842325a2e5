// Package normalizer reduces gateway documents of unknown shape to a
// domain.NormalizedTransaction.
//
// The gateway has renamed and moved its fields over time, so every field is
// found by probing an ordered list of candidate locations. The first candidate
// that carries a usable value wins; candidates are never merged. Newer field
// names come first so they win when legacy ones are also present.
package normalizer

import (
	"encoding/json"
	"strconv"

	"github.com/boddenberg/pix-gateway-proxy/internal/domain"
)

// DefaultStatus is reported when the document carries no recognizable status.
const DefaultStatus = "pending"

var (
	idPaths = [][]string{
		{"id"},
		{"transaction", "id"},
		{"data", "id"},
	}
	flatIDKeys = []string{"id", "_id", "transactionId", "transaction_id"}

	// paymentScopes are tried in order; the root is used when none is an object.
	paymentScopes = []string{"payment", "pix"}

	scopeCodeKeys = []string{"payload", "payment_payload", "copyPaste", "copiaECola", "copia_e_cola", "copy", "qrcode"}
	rootCodeKeys  = []string{"payload", "emv", "qr_code"}

	statusPaths = [][]string{
		{"status"},
		{"transaction", "status"},
		{"data", "status"},
		{"payment", "status"},
	}
)

// Normalize extracts the canonical transaction fields from doc.
// It never fails and never modifies doc.
func Normalize(doc domain.Document) domain.NormalizedTransaction {
	root := map[string]any(doc)

	tx := domain.NormalizedTransaction{
		ID:            extractID(root),
		Status:        DefaultStatus,
		CopyPasteCode: extractCopyPasteCode(root),
	}
	if status, ok := firstScalar(root, statusPaths); ok {
		tx.Status = status
	}
	return tx
}

func extractID(root map[string]any) *string {
	if id, ok := firstScalar(root, idPaths); ok {
		return &id
	}
	for _, key := range flatIDKeys {
		if id, ok := scalarString(root[key]); ok {
			return &id
		}
	}
	return nil
}

func extractCopyPasteCode(root map[string]any) *string {
	if code, ok := firstString(paymentScope(root), scopeCodeKeys); ok {
		return &code
	}
	if code, ok := firstString(root, rootCodeKeys); ok {
		return &code
	}
	return nil
}

// paymentScope returns the sub-document holding the payment fields:
// doc.payment, else doc.pix, else the root itself.
func paymentScope(root map[string]any) map[string]any {
	for _, key := range paymentScopes {
		if scope, ok := asObject(root[key]); ok {
			return scope
		}
	}
	return root
}

func firstScalar(root map[string]any, paths [][]string) (string, bool) {
	for _, path := range paths {
		if s, ok := scalarString(lookup(root, path)); ok {
			return s, true
		}
	}
	return "", false
}

func firstString(scope map[string]any, keys []string) (string, bool) {
	for _, key := range keys {
		if s, ok := scope[key].(string); ok && s != "" {
			return s, true
		}
	}
	return "", false
}

func lookup(root map[string]any, path []string) any {
	var cur any = root
	for _, key := range path {
		obj, ok := asObject(cur)
		if !ok {
			return nil
		}
		cur = obj[key]
	}
	return cur
}

func asObject(v any) (map[string]any, bool) {
	switch obj := v.(type) {
	case map[string]any:
		return obj, true
	case domain.Document:
		return obj, true
	}
	return nil, false
}

// scalarString renders a JSON scalar as a string. Missing values, empty
// strings, objects and arrays are not usable.
func scalarString(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, val != ""
	case json.Number:
		return val.String(), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case bool:
		return strconv.FormatBool(val), true
	}
	return "", false
}
