// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client assembles the session and connectivity core into a single
// runtime.
//
// It wires configuration, the credential store, the session manager, the
// request dispatcher and API client, the real-time channel with its status
// observer, and the background workers into one process lifecycle.
package client
