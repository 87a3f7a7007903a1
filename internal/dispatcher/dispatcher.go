// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package dispatcher sends outbound REST requests on behalf of the API
// client. Every dispatch carries the session's bearer token and the fixed
// anti-forgery headers, runs each attempt under its own deadline, retries
// transport failures, timeouts and 5xx responses with exponential backoff,
// and on a 401 refreshes the session once and replays the request.
//
// Errors returned by the dispatcher are always *app.Error values; callers
// branch on [app.KindOf].
package dispatcher

import (
	"context"
	"errors"
	"time"

	"github.com/MKhiriev/farmlink/internal/app"
	"github.com/MKhiriev/farmlink/internal/config"
	"github.com/MKhiriev/farmlink/internal/logger"
	"github.com/MKhiriev/farmlink/internal/utils"
	"github.com/MKhiriev/farmlink/models"
	"github.com/go-resty/resty/v2"
)

const (
	defaultRequestTimeout   = 30 * time.Second
	defaultMaxAttempts      = 3
	defaultRetryBaseDelay   = 500 * time.Millisecond
	defaultBatchConcurrency = 8

	headerAuthorization = "Authorization"
	headerCSRFToken     = "X-CSRF-Token"
	headerRequestedWith = "X-Requested-With"
	headerRequestID     = "X-Request-ID"
	headerContentType   = "Content-Type"
	headerAccept        = "Accept"
	requestedWithXHR    = "XMLHttpRequest"
	contentTypeJSON     = "application/json"
	multipartFileField  = "file"
)

// SessionProvider is the part of the session manager the dispatcher needs.
type SessionProvider interface {
	AccessToken() string
	RefreshIfStale(ctx context.Context, usedToken string) (models.Session, error)
	ClearSession()
}

// Dispatcher is safe for concurrent use. Retries within one dispatch are
// strictly sequential; separate dispatches are independent.
type Dispatcher struct {
	client   *utils.HTTPClient
	sessions SessionProvider
	ids      *utils.UUIDGenerator

	requestTimeout   time.Duration
	maxAttempts      int
	baseDelay        time.Duration
	batchConcurrency int
	upload           config.Upload

	sleep func(ctx context.Context, d time.Duration) error

	logger *logger.Logger
}

// New creates a Dispatcher for the REST backend at adapterCfg.HTTPAddress.
// sessions may be nil for anonymous use; 401 responses then surface as the
// authentication-required kind directly.
func New(adapterCfg config.Adapter, uploadCfg config.Upload, sessions SessionProvider, log *logger.Logger) (*Dispatcher, error) {
	client, err := utils.NewHTTPClient(adapterCfg.HTTPAddress)
	if err != nil {
		return nil, err
	}

	d := &Dispatcher{
		client:           client,
		sessions:         sessions,
		ids:              utils.NewUUIDGenerator(),
		requestTimeout:   adapterCfg.RequestTimeout,
		maxAttempts:      adapterCfg.MaxAttempts,
		baseDelay:        adapterCfg.RetryBaseDelay,
		batchConcurrency: adapterCfg.BatchConcurrency,
		upload:           uploadCfg,
		sleep:            sleepContext,
		logger:           log.WithComponent("dispatcher"),
	}
	if d.requestTimeout <= 0 {
		d.requestTimeout = defaultRequestTimeout
	}
	if d.maxAttempts <= 0 {
		d.maxAttempts = defaultMaxAttempts
	}
	if d.baseDelay <= 0 {
		d.baseDelay = defaultRetryBaseDelay
	}
	if d.batchConcurrency <= 0 {
		d.batchConcurrency = defaultBatchConcurrency
	}

	return d, nil
}

// call is one logical request: everything needed to build a fresh resty
// request for every attempt.
type call struct {
	req       models.Request
	requestID string

	// multipart is set for uploads; the payload is buffered so each attempt
	// can replay it.
	multipart *multipartBody
}

// Dispatch sends req and returns the decoded response.
func (d *Dispatcher) Dispatch(ctx context.Context, req models.Request) (*models.Response, error) {
	return d.execute(ctx, call{req: req, requestID: d.requestID(ctx)})
}

func (d *Dispatcher) requestID(ctx context.Context) string {
	if id, ok := utils.GetRequestIDFromContext(ctx); ok {
		return id
	}
	return d.ids.Generate()
}

// execute runs the retry loop and, on a 401, one refresh followed by one
// replay of the whole loop with the new token. A 401 on the replay clears
// the session.
func (d *Dispatcher) execute(ctx context.Context, c call) (*models.Response, error) {
	token := d.accessToken()

	resp, err := d.withRetry(ctx, c, token)
	if app.KindOf(err) != app.KindAuthenticationRequired || d.sessions == nil {
		return resp, err
	}

	d.logger.Debug().Str("request_id", c.requestID).Msg("401 received, refreshing session")

	if _, refreshErr := d.sessions.RefreshIfStale(ctx, token); refreshErr != nil {
		if app.KindOf(refreshErr) == app.KindCanceled {
			return nil, refreshErr
		}
		d.sessions.ClearSession()
		return nil, app.Wrap(app.KindAuthenticationRequired, app.MsgAuthenticationRequired, refreshErr)
	}

	resp, err = d.withRetry(ctx, c, d.accessToken())
	if app.KindOf(err) == app.KindAuthenticationRequired {
		// the backend rejects even the fresh token
		d.logger.Warn().Str("request_id", c.requestID).Msg("replay unauthorized, clearing session")
		d.sessions.ClearSession()
	}
	return resp, err
}

func (d *Dispatcher) accessToken() string {
	if d.sessions == nil {
		return ""
	}
	return d.sessions.AccessToken()
}

// withRetry makes up to maxAttempts attempts. The delay before attempt n+1
// is baseDelay * 2^(n-1).
func (d *Dispatcher) withRetry(ctx context.Context, c call, token string) (*models.Response, error) {
	for attempt := 1; ; attempt++ {
		resp, err := d.attempt(ctx, c, token, attempt)
		if err == nil {
			return resp, nil
		}
		if !app.Retryable(err) || attempt >= d.maxAttempts || ctx.Err() != nil {
			return nil, err
		}

		delay := d.backoff(attempt)
		d.logger.Warn().
			Str("request_id", c.requestID).
			Int("attempt", attempt).
			Dur("delay", delay).
			Str("kind", string(app.KindOf(err))).
			Msg("request attempt failed, retrying")

		if sleepErr := d.sleep(ctx, delay); sleepErr != nil {
			return nil, app.Wrap(app.KindCanceled, app.MsgCanceled, sleepErr)
		}
	}
}

func (d *Dispatcher) backoff(attempt int) time.Duration {
	return d.baseDelay << (attempt - 1)
}

func (d *Dispatcher) attempt(ctx context.Context, c call, token string, n int) (*models.Response, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, d.requestTimeout)
	defer cancel()

	r := d.newRequest(attemptCtx, c, token)

	d.logger.Debug().
		Str("request_id", c.requestID).
		Str("method", c.req.Method).
		Str("path", c.req.Path).
		Int("attempt", n).
		Interface("headers", utils.RedactHeaders(r.Header)).
		Msg("dispatching request")

	resp, err := r.Execute(c.req.Method, c.req.Path)
	if err != nil {
		return nil, d.transportError(ctx, attemptCtx, err)
	}

	return d.decode(resp, c)
}

func (d *Dispatcher) newRequest(ctx context.Context, c call, token string) *resty.Request {
	r := d.client.R().
		SetContext(ctx).
		SetHeader(headerCSRFToken, utils.CSRFToken()).
		SetHeader(headerRequestedWith, requestedWithXHR).
		SetHeader(headerRequestID, c.requestID).
		SetHeader(headerAccept, contentTypeJSON)

	if token != "" {
		r.SetHeader(headerAuthorization, "Bearer "+token)
	}
	if len(c.req.Query) > 0 {
		r.SetQueryParamsFromValues(c.req.Query)
	}

	if c.multipart != nil {
		c.multipart.apply(r)
	} else {
		r.SetHeader(headerContentType, contentTypeJSON)
		if c.req.Body != nil {
			r.SetBody(c.req.Body)
		}
	}

	for key, values := range c.req.Header {
		for _, v := range values {
			r.Header.Add(key, v)
		}
	}
	return r
}

// transportError classifies a failed round trip. Caller cancellation wins
// over the attempt deadline.
func (d *Dispatcher) transportError(ctx, attemptCtx context.Context, err error) error {
	switch {
	case errors.Is(ctx.Err(), context.Canceled):
		return app.Wrap(app.KindCanceled, app.MsgCanceled, err)
	case errors.Is(attemptCtx.Err(), context.DeadlineExceeded):
		return app.Wrap(app.KindTimeout, app.MsgTimeout, err)
	}
	return app.Wrap(app.KindTransportFailure, app.MsgTransportFailure, err)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
