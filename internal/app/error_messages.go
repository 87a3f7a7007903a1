// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package app contains the error taxonomy shared by every layer of the
// session and connectivity core.
//
// All Msg* constants are the default human-readable messages attached to
// [Error] values when a more specific message (for example one parsed from a
// backend error body) is not available. Keeping them in one place ensures
// consistent wording for the UI layer.
package app

const (
	// MsgInvalidCredentials is used when the identity backend rejects the
	// supplied credentials or they fail local shape validation.
	MsgInvalidCredentials = "invalid email or password"

	// MsgProfileMissing is used when authentication succeeded but no profile
	// record exists for the user.
	MsgProfileMissing = "access denied: no profile for this account"

	// MsgUnconfigured is used when the identity backend is not configured or
	// cannot be reached.
	MsgUnconfigured = "identity service unavailable"

	// MsgSessionExpired is used when the refresh token exchange fails.
	MsgSessionExpired = "session expired, please sign in again"

	// MsgAuthenticationRequired is used when a request got 401 and the
	// follow-up refresh failed as well.
	MsgAuthenticationRequired = "authentication required"

	// MsgAuthorizationDenied is used for 403 responses and failed local
	// permission checks.
	MsgAuthorizationDenied = "you do not have permission to perform this action"

	// MsgNotFound is used for 404 responses.
	MsgNotFound = "resource not found"

	// MsgRateLimited is used for 429 responses.
	MsgRateLimited = "too many requests, try again later"

	// MsgServerError is used for 5xx responses.
	MsgServerError = "server error"

	// MsgTimeout is used when a request attempt exceeds its deadline.
	MsgTimeout = "request timed out"

	// MsgCanceled is used when the caller cancelled the request.
	MsgCanceled = "request canceled"

	// MsgTransportFailure is used when the network call itself failed.
	MsgTransportFailure = "network error"

	// MsgInvalidUpload is the generic upload validation message.
	MsgInvalidUpload = "invalid upload"

	// MsgFileTooLarge is used when an upload exceeds the size limit.
	MsgFileTooLarge = "file is too large"

	// MsgFileTypeNotAllowed is used when an upload's declared type is not on
	// the allow-list.
	MsgFileTypeNotAllowed = "file type is not allowed"

	// MsgBadRequest is used for 400 responses without a usable body.
	MsgBadRequest = "the request was rejected as invalid"

	// MsgConflict is used for 409 responses without a usable body.
	MsgConflict = "the resource was changed by someone else"

	// MsgRequestFailed is used for other 4xx responses.
	MsgRequestFailed = "request failed"

	// MsgUnexpectedResponse is used when a 2xx body cannot be decoded into
	// the caller's result.
	MsgUnexpectedResponse = "unexpected response from server"
)
