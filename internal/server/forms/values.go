package forms

import (
	"net/url"
	"strings"
)

// Values wraps parsed form data with the lookups the diary forms need.
type Values url.Values

// Has reports whether key was submitted at all.
func (v Values) Has(key string) bool {
	_, ok := v[key]
	return ok
}

// String returns the first value for key, or "".
func (v Values) String(key string) string {
	return url.Values(v).Get(key)
}

// Bool follows checkbox semantics: an absent key is false.
func (v Values) Bool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(v.String(key))) {
	case "on", "true", "1", "yes":
		return true
	default:
		return false
	}
}

// List returns every value submitted under any of keys, in key order.
func (v Values) List(keys ...string) []string {
	var out []string
	for _, k := range keys {
		out = append(out, v[k]...)
	}
	return out
}

// Flat returns the first value of every key.
func (v Values) Flat() map[string]string {
	out := make(map[string]string, len(v))
	for k, vals := range v {
		if len(vals) > 0 {
			out[k] = vals[0]
		}
	}
	return out
}
