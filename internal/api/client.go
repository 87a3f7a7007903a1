// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package api is the thin REST surface the dashboard uses for its domain
// resources (fields, drones, missions, tasks, media). Every call goes through
// the dispatcher and so inherits its headers, retry budget and
// re-authentication.
//
// [Client] works with raw paths and untyped results; [Resource] wraps it for
// a single resource with a concrete Go type.
package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/MKhiriev/farmlink/models"
)

// DefaultPrefix is prepended to every resource path.
const DefaultPrefix = "/api"

// Dispatcher is the part of the request dispatcher the client needs.
type Dispatcher interface {
	Dispatch(ctx context.Context, req models.Request) (*models.Response, error)
	Upload(ctx context.Context, path string, file models.UploadFile, fields map[string]string) (*models.Response, error)
}

// Client issues CRUD calls against "<prefix>/<resource>[/<id>]".
type Client struct {
	dispatcher Dispatcher
	prefix     string
}

// NewClient creates a Client with [DefaultPrefix].
func NewClient(dispatcher Dispatcher) *Client {
	return &Client{dispatcher: dispatcher, prefix: DefaultPrefix}
}

// WithPrefix returns a copy of c using prefix instead of [DefaultPrefix].
func (c *Client) WithPrefix(prefix string) *Client {
	return &Client{dispatcher: c.dispatcher, prefix: "/" + strings.Trim(prefix, "/")}
}

// List GETs the collection, optionally filtered by query, decoding into out
// when it is non-nil.
func (c *Client) List(ctx context.Context, resource string, query url.Values, out any) (*models.Response, error) {
	return c.dispatcher.Dispatch(ctx, models.Request{
		Method: http.MethodGet,
		Path:   c.path(resource),
		Query:  query,
		Result: out,
	})
}

// Get GETs one item.
func (c *Client) Get(ctx context.Context, resource, id string, out any) (*models.Response, error) {
	return c.dispatcher.Dispatch(ctx, models.Request{
		Method: http.MethodGet,
		Path:   c.path(resource, id),
		Result: out,
	})
}

// Create POSTs body to the collection.
func (c *Client) Create(ctx context.Context, resource string, body, out any) (*models.Response, error) {
	return c.dispatcher.Dispatch(ctx, models.Request{
		Method: http.MethodPost,
		Path:   c.path(resource),
		Body:   body,
		Result: out,
	})
}

// Update PUTs body, replacing the item.
func (c *Client) Update(ctx context.Context, resource, id string, body, out any) (*models.Response, error) {
	return c.dispatcher.Dispatch(ctx, models.Request{
		Method: http.MethodPut,
		Path:   c.path(resource, id),
		Body:   body,
		Result: out,
	})
}

// Patch PATCHes the given fields of the item.
func (c *Client) Patch(ctx context.Context, resource, id string, body, out any) (*models.Response, error) {
	return c.dispatcher.Dispatch(ctx, models.Request{
		Method: http.MethodPatch,
		Path:   c.path(resource, id),
		Body:   body,
		Result: out,
	})
}

// Delete DELETEs the item.
func (c *Client) Delete(ctx context.Context, resource, id string) error {
	_, err := c.dispatcher.Dispatch(ctx, models.Request{
		Method: http.MethodDelete,
		Path:   c.path(resource, id),
	})
	return err
}

// Action POSTs body to "<resource>/<id>/<action>", e.g. a mission's
// "execute" or "cancel".
func (c *Client) Action(ctx context.Context, resource, id, action string, body, out any) (*models.Response, error) {
	return c.dispatcher.Dispatch(ctx, models.Request{
		Method: http.MethodPost,
		Path:   c.path(resource, id, action),
		Body:   body,
		Result: out,
	})
}

// Upload sends file as multipart/form-data to the resource collection.
func (c *Client) Upload(ctx context.Context, resource string, file models.UploadFile, fields map[string]string) (*models.Response, error) {
	return c.dispatcher.Upload(ctx, c.path(resource), file, fields)
}

func (c *Client) path(segments ...string) string {
	var b strings.Builder
	b.WriteString(c.prefix)
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(strings.Trim(s, "/")))
	}
	return b.String()
}
