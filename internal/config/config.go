// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"os"
	"time"
)

// StructuredConfig is the top-level configuration container for the farmlink
// client core. It aggregates all sub-configurations and is populated by
// merging values from environment variables, command-line flags, and an
// optional JSON or YAML file.
//
// Struct tags:
//   - envPrefix  — prefix applied to all nested env tag lookups (caarlos0/env).
//   - env        — direct environment variable name for scalar fields.
//   - envDefault — value used when the variable is unset.
type StructuredConfig struct {
	// App holds process-level settings such as the version and log target.
	App App `envPrefix:"APP_"`

	// Adapter holds backend addresses and the dispatcher's timeout and
	// retry budget.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Upload holds the local file validation rules applied before uploads.
	Upload Upload `envPrefix:"UPLOAD_"`

	// Channel holds the real-time connection's reconnect policy.
	Channel Channel `envPrefix:"CHANNEL_"`

	// Workers holds configuration for background jobs (proactive token
	// refresh).
	Workers Workers `envPrefix:"WORKERS_"`

	// ConfigFilePath is the optional path to a JSON or YAML configuration
	// file. When non-empty, the file is parsed and merged on top of the
	// values already loaded from environment variables and flags.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	ConfigFilePath string `env:"CONFIG"`
}

// App holds process-level settings.
type App struct {
	// Version is the semantic version string of the host application.
	// Env: APP_VERSION
	Version string `env:"VERSION"`

	// LogRole is the "role" field stamped on every log entry.
	// Env: APP_LOG_ROLE
	LogRole string `env:"LOG_ROLE" envDefault:"farmlink"`

	// LogFile is the file the client logger appends to. Empty means a
	// "logs" file next to the executable.
	// Env: APP_LOG_FILE
	LogFile string `env:"LOG_FILE"`
}

// Adapter holds backend endpoints and outbound request policy.
type Adapter struct {
	// HTTPAddress is the REST backend base URL (e.g. "https://api.farm.local").
	// Env: ADAPTER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// IdentityAddress is the identity backend base URL. When empty, login
	// fails with the unconfigured error kind.
	// Env: ADAPTER_IDENTITY_ADDRESS
	IdentityAddress string `env:"IDENTITY_ADDRESS"`

	// IdentityAPIKey is the public API key sent as the "apikey" header to
	// the identity backend. Never logged.
	// Env: ADAPTER_IDENTITY_API_KEY
	IdentityAPIKey string `env:"IDENTITY_API_KEY"`

	// WSAddress is the real-time backend websocket URL
	// (e.g. "wss://api.farm.local/ws"). Empty disables the channel.
	// Env: ADAPTER_WS_ADDRESS
	WSAddress string `env:"WS_ADDRESS"`

	// RequestTimeout is the deadline of a single request attempt.
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`

	// MaxAttempts is the total number of attempts per dispatch, including
	// the first one.
	// Env: ADAPTER_MAX_ATTEMPTS
	MaxAttempts int `env:"MAX_ATTEMPTS" envDefault:"3"`

	// RetryBaseDelay is the delay before the second attempt; it doubles
	// for every following attempt.
	// Env: ADAPTER_RETRY_BASE_DELAY
	RetryBaseDelay time.Duration `env:"RETRY_BASE_DELAY" envDefault:"500ms"`

	// RefreshTimeout bounds a single token refresh exchange.
	// Env: ADAPTER_REFRESH_TIMEOUT
	RefreshTimeout time.Duration `env:"REFRESH_TIMEOUT" envDefault:"10s"`

	// BatchConcurrency limits the number of in-flight requests of a batch.
	// Env: ADAPTER_BATCH_CONCURRENCY
	BatchConcurrency int `env:"BATCH_CONCURRENCY" envDefault:"8"`
}

// Upload holds the rules checked locally before a file upload.
type Upload struct {
	// MaxSize is the largest accepted file, in bytes.
	// Env: UPLOAD_MAX_SIZE
	MaxSize int64 `env:"MAX_SIZE" envDefault:"10485760"`

	// AllowedTypes is the MIME type allow-list.
	// Env: UPLOAD_ALLOWED_TYPES (comma separated)
	AllowedTypes []string `env:"ALLOWED_TYPES" envSeparator:"," envDefault:"image/jpeg,image/png,image/gif,image/webp,application/pdf"`
}

// Channel holds the real-time connection's reconnect policy.
type Channel struct {
	// ReconnectInterval is the delay before a reconnect attempt. With
	// Exponential set it is the initial delay.
	// Env: CHANNEL_RECONNECT_INTERVAL
	ReconnectInterval time.Duration `env:"RECONNECT_INTERVAL" envDefault:"5s"`

	// Exponential switches from a fixed interval to exponential backoff.
	// Env: CHANNEL_EXPONENTIAL
	Exponential bool `env:"EXPONENTIAL"`

	// MaxReconnectInterval caps the exponential backoff.
	// Env: CHANNEL_MAX_RECONNECT_INTERVAL
	MaxReconnectInterval time.Duration `env:"MAX_RECONNECT_INTERVAL" envDefault:"1m"`
}

// Workers holds configuration for background jobs.
type Workers struct {
	// RefreshLeeway is how long before expiry the session is refreshed.
	// Env: WORKERS_REFRESH_LEEWAY
	RefreshLeeway time.Duration `env:"REFRESH_LEEWAY" envDefault:"1m"`

	// RefreshCheckInterval is how often the refresh job looks at the
	// session expiry.
	// Env: WORKERS_REFRESH_CHECK_INTERVAL
	RefreshCheckInterval time.Duration `env:"REFRESH_CHECK_INTERVAL" envDefault:"15s"`
}

// GetStructuredConfig loads, merges, and validates the configuration from
// all available sources in the following priority order (later sources
// override non-zero fields of earlier ones):
//  1. Environment variables (with envDefault defaults)
//  2. Command-line flags from os.Args
//  3. JSON/YAML file (path resolved from sources 1 and 2)
//
// Returns a fully populated *StructuredConfig or an error if any source
// fails to load or the final config fails validation.
func GetStructuredConfig() (*StructuredConfig, error) {
	return Load(os.Args[1:])
}

// Load is GetStructuredConfig with explicit command-line arguments.
func Load(args []string) (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags(args).
		withFile().
		build()
}

// Defaults returns a config holding only the envDefault values, ignoring the
// process environment. Library hosts that configure the core in code start
// from here.
func Defaults() StructuredConfig {
	var cfg StructuredConfig
	_ = parseEnvFrom(&cfg, map[string]string{})
	return cfg
}
