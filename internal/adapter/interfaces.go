// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides transport-layer abstractions for communicating with
// the farm platform's identity and real-time backends.
//
// [IdentityBackend] decouples the session manager from the identity
// provider's wire protocol; the package ships a resty-based HTTP
// implementation ([NewHTTPIdentityAdapter]) speaking a Supabase-style token
// API. [ChannelDialer] and [ChannelConn] decouple the real-time channel from
// the websocket library ([NewWebsocketDialer]).
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic error
// handling (e.g. [ErrUnauthorized] for 401, [ErrNotFound] for 404).
package adapter

import (
	"context"

	"github.com/MKhiriev/farmlink/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/adapter_mock.go -package=mock

// IdentityBackend defines the identity provider operations the session
// manager relies on. Implementations never retain tokens between calls; the
// session manager owns them.
type IdentityBackend interface {
	// SignIn exchanges e-mail and password for a token bundle. Returns
	// [ErrBadRequest] or [ErrUnauthorized] (wrapped) when the backend
	// rejects the credentials.
	SignIn(ctx context.Context, credentials models.Credentials) (models.AuthTokens, error)

	// Refresh exchanges refreshToken for a new token bundle.
	Refresh(ctx context.Context, refreshToken string) (models.AuthTokens, error)

	// SignOut revokes the session identified by accessToken on the backend.
	SignOut(ctx context.Context, accessToken string) error

	// Profile loads the profile row of userID. Returns [ErrProfileNotFound]
	// when no row exists.
	Profile(ctx context.Context, accessToken, userID string) (models.Identity, error)
}

// ChannelConn is one open real-time connection.
type ChannelConn interface {
	// ReadMessage blocks until the next inbound envelope arrives or the
	// connection fails. It must return an error once Close was called.
	// An undecodable frame yields ErrMalformedMessage and the connection
	// can still be read.
	ReadMessage() (models.Message, error)

	// WriteMessage sends one envelope. Safe for concurrent use.
	WriteMessage(ctx context.Context, msg models.Message) error

	// Close closes the connection and unblocks a pending ReadMessage.
	Close() error
}

// ChannelDialer opens real-time connections.
type ChannelDialer interface {
	// Dial opens a connection authenticated with accessToken (may be empty).
	Dial(ctx context.Context, accessToken string) (ChannelConn, error)
}
