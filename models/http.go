package models

import (
	"io"
	"net/http"
	"net/url"
)

// Request describes one logical call routed through the dispatcher. Retries
// and the refresh-on-401 replay reuse the same Request.
type Request struct {
	// Method is the HTTP method, e.g. http.MethodGet.
	Method string

	// Path is resolved against the configured REST base URL.
	Path string

	// Query is appended to the URL when non-empty.
	Query url.Values

	// Body is JSON-encoded when non-nil.
	Body any

	// Header carries extra headers. The auth, CSRF, X-Requested-With and
	// Content-Type headers are always set by the dispatcher and win over
	// values provided here.
	Header http.Header

	// Result, when non-nil, receives the JSON-decoded success body.
	Result any
}

// Response is the outcome of a successful dispatch.
type Response struct {
	Status int
	Header http.Header
	Body   []byte

	// Data is the decoded JSON value when the response declared a JSON
	// content type, otherwise the body as a string.
	Data any
}

// UploadFile is a file handed to the dispatcher's upload variant. Size and
// ContentType are the declared values and are validated before any network
// call.
type UploadFile struct {
	Name        string
	ContentType string
	Size        int64
	Reader      io.Reader
}
