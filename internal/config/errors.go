package config

import "errors"

// Validation errors returned by [StructuredConfig.validate] when required
// configuration groups are incomplete or invalid.
var (
	// ErrInvalidAdapterConfigs indicates invalid adapter settings
	// (for example, missing REST address or a zero attempt budget).
	ErrInvalidAdapterConfigs = errors.New("invalid adapter configuration")
	// ErrInvalidUploadConfigs indicates invalid upload validation rules
	// (for example, a non-positive size limit or an empty allow-list).
	ErrInvalidUploadConfigs = errors.New("invalid upload configuration")
	// ErrInvalidChannelConfigs indicates an invalid reconnect policy.
	ErrInvalidChannelConfigs = errors.New("invalid channel configuration")
	// ErrInvalidWorkerConfigs indicates invalid background worker settings
	// (for example, zero refresh check interval).
	ErrInvalidWorkerConfigs = errors.New("invalid worker configuration")
)
