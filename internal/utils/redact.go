package utils

import "strings"

// Redacted replaces sensitive values in logged field maps.
const Redacted = "***REDACTED***"

var sensitiveKeyParts = []string{"password", "token", "secret", "key"}

// IsSensitiveKey reports whether a field named key must never be logged in
// clear text. Matching is case-insensitive and by substring, so
// "access_token", "apiKey" and "X-CSRF-Token" are all sensitive.
func IsSensitiveKey(key string) bool {
	k := strings.ToLower(key)
	for _, part := range sensitiveKeyParts {
		if strings.Contains(k, part) {
			return true
		}
	}
	return false
}

// Redact returns a copy of fields with sensitive values replaced by
// [Redacted]. Nested map[string]any values are redacted recursively; the
// input is never modified.
func Redact(fields map[string]any) map[string]any {
	if fields == nil {
		return nil
	}

	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if IsSensitiveKey(k) {
			out[k] = Redacted
			continue
		}
		if nested, ok := v.(map[string]any); ok {
			out[k] = Redact(nested)
			continue
		}
		out[k] = v
	}
	return out
}

// RedactHeaders returns a flat copy of header values with sensitive headers
// (Authorization, X-CSRF-Token, apikey) masked.
func RedactHeaders(h map[string][]string) map[string]any {
	out := make(map[string]any, len(h))
	for k, v := range h {
		if IsSensitiveKey(k) || strings.EqualFold(k, "Authorization") {
			out[k] = Redacted
			continue
		}
		out[k] = strings.Join(v, ",")
	}
	return out
}
