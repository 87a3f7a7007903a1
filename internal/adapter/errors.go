package adapter

import "errors"

// Sentinel errors mapped from HTTP status codes by mapHTTPError. They are
// wrapped together with the backend's message, so callers match them with
// [errors.Is].
var (
	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("client unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrTooManyRequests     = errors.New("too many requests")
	ErrInternalServerError = errors.New("internal server error")
	ErrBadGateway          = errors.New("bad gateway")
	ErrServiceUnavailable  = errors.New("service unavailable")

	// ErrIdentityUnconfigured is returned by NewHTTPIdentityAdapter when no
	// identity backend address is configured.
	ErrIdentityUnconfigured = errors.New("identity backend is not configured")

	// ErrProfileNotFound is returned by Profile when the profile table has no
	// row for the user.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrChannelUnconfigured is returned by NewWebsocketDialer when no
	// websocket address is configured.
	ErrChannelUnconfigured = errors.New("real-time channel is not configured")

	// ErrMalformedMessage is returned by ChannelConn.ReadMessage for a frame
	// that does not decode as an envelope. The connection is still open.
	ErrMalformedMessage = errors.New("malformed channel message")
)
