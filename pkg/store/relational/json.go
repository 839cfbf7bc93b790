package relational

import (
	"encoding/json"
	"strings"

	"github.com/shashiranjanraj/polystore/pkg/store"
)

// encodeValue prepares a document field for storage: nested mappings and
// sequences are serialized to JSON text (spec §4.6); everything else is
// passed through for the driver to bind natively.
func encodeValue(v any) (any, error) {
	switch v.(type) {
	case map[string]any, []any, store.Document:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return string(b), nil
	default:
		return v, nil
	}
}

// decodeValue reverses encodeValue: a stored TEXT value that parses as a
// JSON object or array is returned as the parsed structure, per spec
// §4.6 ("a value whose stored text parses as a JSON object or array is
// returned as the parsed structure").
func decodeValue(raw any) any {
	s, ok := asString(raw)
	if !ok {
		return raw
	}
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || (trimmed[0] != '{' && trimmed[0] != '[') {
		return raw
	}

	var asMap map[string]any
	if err := json.Unmarshal([]byte(trimmed), &asMap); err == nil {
		return store.Document(asMap)
	}
	var asSlice []any
	if err := json.Unmarshal([]byte(trimmed), &asSlice); err == nil {
		return asSlice
	}
	return raw
}

func asString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case []byte:
		return string(s), true
	default:
		return "", false
	}
}
