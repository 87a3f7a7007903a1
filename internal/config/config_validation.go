// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

// validate checks that the final merged [StructuredConfig] satisfies all
// invariants before it is used at startup.
//
// The identity and websocket addresses may be empty: login then reports the
// unconfigured error kind and the real-time channel stays disconnected.
func (cfg *StructuredConfig) validate() error {
	if cfg.Adapter.HTTPAddress == "" ||
		cfg.Adapter.RequestTimeout <= 0 ||
		cfg.Adapter.MaxAttempts < 1 ||
		cfg.Adapter.RetryBaseDelay < 0 ||
		cfg.Adapter.RefreshTimeout <= 0 ||
		cfg.Adapter.BatchConcurrency < 1 {
		return ErrInvalidAdapterConfigs
	}

	if cfg.Upload.MaxSize <= 0 || len(cfg.Upload.AllowedTypes) == 0 {
		return ErrInvalidUploadConfigs
	}

	if cfg.Channel.ReconnectInterval <= 0 ||
		(cfg.Channel.Exponential && cfg.Channel.MaxReconnectInterval < cfg.Channel.ReconnectInterval) {
		return ErrInvalidChannelConfigs
	}

	if cfg.Workers.RefreshLeeway < 0 || cfg.Workers.RefreshCheckInterval <= 0 {
		return ErrInvalidWorkerConfigs
	}

	return nil
}
