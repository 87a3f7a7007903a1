// Package utils provides general-purpose helper utilities
// used across different parts of the client core.
// Includes tools for working with context, type-safe keys, the resty HTTP
// client, JWT parsing, request identifiers, the process CSRF token and log
// field redaction.
package utils

import (
	"context"
)

// contextKey is a private type for context keys.
// Using a dedicated type instead of a plain string prevents key collisions
// with other packages that may use string-based keys in the context.
type contextKey string

// String returns the string representation of the context key.
// Implements the fmt.Stringer interface.
func (c contextKey) String() string {
	return string(c)
}

// RequestIDCtxKey is the key used to carry a caller-chosen X-Request-ID.
// When present, the dispatcher sends it instead of generating a new one,
// which lets UI code correlate its own logs with backend logs.
//
// Example of writing a value to the context:
//
//	ctx = utils.WithRequestID(ctx, "load-dashboard-1")
var RequestIDCtxKey = contextKey("requestID")

// WithRequestID returns a copy of ctx carrying requestID.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDCtxKey, requestID)
}

// GetRequestIDFromContext retrieves the request identifier from the context.
//
// Returns the id and an ok flag:
//   - ok == true  — value is found, is a string and is not empty
//   - ok == false — value is missing, empty or has an unexpected type
func GetRequestIDFromContext(ctx context.Context) (string, bool) {
	requestID, ok := ctx.Value(RequestIDCtxKey).(string)
	return requestID, ok && requestID != ""
}
