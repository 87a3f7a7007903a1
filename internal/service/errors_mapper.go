// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"

	"github.com/MKhiriev/farmlink/internal/adapter"
	"github.com/MKhiriev/farmlink/internal/app"
)

// mapSignInError translates an identity adapter error raised while signing
// in. A rejection by the backend means bad credentials; anything else means
// the backend could not be used at all.
func mapSignInError(err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return app.Wrap(app.KindCanceled, app.MsgCanceled, err)
	case errors.Is(err, adapter.ErrBadRequest),
		errors.Is(err, adapter.ErrUnauthorized),
		errors.Is(err, adapter.ErrForbidden):
		return app.Wrap(app.KindInvalidCredentials, app.MsgInvalidCredentials, err)
	case errors.Is(err, adapter.ErrTooManyRequests):
		return app.Wrap(app.KindRateLimited, app.MsgRateLimited, err)
	}
	return app.Wrap(app.KindUnconfigured, app.MsgUnconfigured, err)
}

// mapRefreshError translates an identity adapter error raised while
// refreshing. Every failure ends the session.
func mapRefreshError(err error) error {
	return app.Wrap(app.KindSessionExpired, app.MsgSessionExpired, err)
}
