package instrument

import (
	"encoding/json"
	"strings"
)

// Masked is the replacement written for masked values.
const Masked = "***"

// Masker hides the values of sensitive keys in decoded JSON-like data.
// Key matching is case-insensitive.
type Masker map[string]struct{}

// NewMasker builds a Masker for fields, ignoring blanks.
func NewMasker(fields []string) Masker {
	m := make(Masker, len(fields))
	for _, f := range fields {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			m[f] = struct{}{}
		}
	}
	return m
}

// Has reports whether key is sensitive.
func (m Masker) Has(key string) bool {
	_, ok := m[strings.ToLower(key)]
	return ok
}

// Mask returns a copy of v with sensitive map values replaced.
// Only map[string]any, map[string]string and []any are walked.
func (m Masker) Mask(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			if m.Has(k) {
				out[k] = Masked
				continue
			}
			out[k] = m.Mask(inner)
		}
		return out
	case map[string]string:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			if m.Has(k) {
				out[k] = Masked
				continue
			}
			out[k] = inner
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = m.Mask(inner)
		}
		return out
	default:
		return v
	}
}

// MaskJSON masks a JSON document. ok is false when payload is not a JSON
// object or array.
func (m Masker) MaskJSON(payload []byte) (masked string, ok bool) {
	if len(payload) == 0 || (payload[0] != '{' && payload[0] != '[') {
		return "", false
	}

	var doc any
	if err := json.Unmarshal(payload, &doc); err != nil {
		return "", false
	}

	out, err := json.Marshal(m.Mask(doc))
	if err != nil {
		return "", false
	}

	return string(out), true
}
