// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import (
	"context"

	"github.com/MKhiriev/farmlink/models"
)

// Client defines the minimal lifecycle contract for runnable client
// applications.
type Client interface {
	// Run signs in with credentials and blocks until ctx is done.
	Run(ctx context.Context, credentials models.Credentials) error
}
