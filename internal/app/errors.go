package app

import (
	"errors"
	"fmt"
)

// Kind classifies an [Error]. Callers branch on the kind, never on the
// message text.
type Kind string

const (
	KindInvalidCredentials     Kind = "invalid_credentials"
	KindProfileMissing         Kind = "profile_missing"
	KindUnconfigured           Kind = "unconfigured"
	KindSessionExpired         Kind = "session_expired"
	KindAuthenticationRequired Kind = "authentication_required"
	KindAuthorizationDenied    Kind = "authorization_denied"
	KindNotFound               Kind = "not_found"
	KindRateLimited            Kind = "rate_limited"
	KindServerError            Kind = "server_error"
	KindTimeout                Kind = "timeout"
	KindInvalidUpload          Kind = "invalid_upload"
	KindTransportFailure       Kind = "transport_failure"
	KindCanceled               Kind = "canceled"
	KindBadRequest             Kind = "bad_request"
	KindConflict               Kind = "conflict"
	KindRequestFailed          Kind = "request_failed"
)

// Error is the error type crossing the core's boundary. Message is safe to
// show to a user; it never contains tokens or passwords.
type Error struct {
	Kind    Kind
	Message string
	// Status is the HTTP status that produced the error, 0 if none.
	Status int
	Cause  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Kind, e.Message)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap implements error unwrapping for errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error of the same kind, so the Err* sentinels below can be
// used with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is checks.
var (
	ErrInvalidCredentials     = &Error{Kind: KindInvalidCredentials, Message: MsgInvalidCredentials}
	ErrProfileMissing         = &Error{Kind: KindProfileMissing, Message: MsgProfileMissing}
	ErrUnconfigured           = &Error{Kind: KindUnconfigured, Message: MsgUnconfigured}
	ErrSessionExpired         = &Error{Kind: KindSessionExpired, Message: MsgSessionExpired}
	ErrAuthenticationRequired = &Error{Kind: KindAuthenticationRequired, Message: MsgAuthenticationRequired}
	ErrAuthorizationDenied    = &Error{Kind: KindAuthorizationDenied, Message: MsgAuthorizationDenied}
	ErrNotFound               = &Error{Kind: KindNotFound, Message: MsgNotFound}
	ErrRateLimited            = &Error{Kind: KindRateLimited, Message: MsgRateLimited}
	ErrServerError            = &Error{Kind: KindServerError, Message: MsgServerError}
	ErrTimeout                = &Error{Kind: KindTimeout, Message: MsgTimeout}
	ErrInvalidUpload          = &Error{Kind: KindInvalidUpload, Message: MsgInvalidUpload}
	ErrTransportFailure       = &Error{Kind: KindTransportFailure, Message: MsgTransportFailure}
	ErrCanceled               = &Error{Kind: KindCanceled, Message: MsgCanceled}
)

// New creates an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an Error of the given kind wrapping cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// KindOf returns the kind of the first *Error in err's chain, or "" when err
// carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Retryable reports whether err may be retried by the dispatcher's transport
// retry loop. Only transport failures, timeouts and 5xx qualify.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindTransportFailure, KindTimeout, KindServerError:
		return true
	}
	return false
}
