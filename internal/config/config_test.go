// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── helpers ───────────────────────────────────────────────────────────────────

func writeTempConfig(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

// ── Defaults ──────────────────────────────────────────────────────────────────

func TestDefaults(t *testing.T) {
	t.Setenv("ADAPTER_MAX_ATTEMPTS", "9")

	cfg := Defaults()

	assert.Equal(t, 30*time.Second, cfg.Adapter.RequestTimeout)
	assert.Equal(t, 3, cfg.Adapter.MaxAttempts, "process env must be ignored")
	assert.Equal(t, 500*time.Millisecond, cfg.Adapter.RetryBaseDelay)
	assert.Equal(t, int64(10*1024*1024), cfg.Upload.MaxSize)
	assert.ElementsMatch(t,
		[]string{"image/jpeg", "image/png", "image/gif", "image/webp", "application/pdf"},
		cfg.Upload.AllowedTypes)
	assert.Equal(t, 5*time.Second, cfg.Channel.ReconnectInterval)
	assert.Equal(t, "farmlink", cfg.App.LogRole)
}

// ── parseEnv ──────────────────────────────────────────────────────────────────

func TestParseEnv_AllFields(t *testing.T) {
	t.Setenv("CONFIG", "/path/to/config.yaml")
	t.Setenv("APP_VERSION", "1.4.0")
	t.Setenv("ADAPTER_ADDRESS", "https://api.farm.local")
	t.Setenv("ADAPTER_IDENTITY_ADDRESS", "https://id.farm.local")
	t.Setenv("ADAPTER_IDENTITY_API_KEY", "anon-key")
	t.Setenv("ADAPTER_WS_ADDRESS", "wss://api.farm.local/ws")
	t.Setenv("ADAPTER_REQUEST_TIMEOUT", "10s")
	t.Setenv("ADAPTER_MAX_ATTEMPTS", "5")
	t.Setenv("UPLOAD_ALLOWED_TYPES", "image/png,application/pdf")
	t.Setenv("CHANNEL_EXPONENTIAL", "true")

	cfg := &StructuredConfig{}
	require.NoError(t, parseEnv(cfg))

	assert.Equal(t, "/path/to/config.yaml", cfg.ConfigFilePath)
	assert.Equal(t, "1.4.0", cfg.App.Version)
	assert.Equal(t, "https://api.farm.local", cfg.Adapter.HTTPAddress)
	assert.Equal(t, "https://id.farm.local", cfg.Adapter.IdentityAddress)
	assert.Equal(t, "anon-key", cfg.Adapter.IdentityAPIKey)
	assert.Equal(t, "wss://api.farm.local/ws", cfg.Adapter.WSAddress)
	assert.Equal(t, 10*time.Second, cfg.Adapter.RequestTimeout)
	assert.Equal(t, 5, cfg.Adapter.MaxAttempts)
	assert.Equal(t, []string{"image/png", "application/pdf"}, cfg.Upload.AllowedTypes)
	assert.True(t, cfg.Channel.Exponential)
}

func TestParseEnv_InvalidDuration(t *testing.T) {
	t.Setenv("ADAPTER_REQUEST_TIMEOUT", "soon")

	err := parseEnv(&StructuredConfig{})
	assert.Error(t, err)
}

// ── ParseFlags ────────────────────────────────────────────────────────────────

func TestParseFlags_AllFlags(t *testing.T) {
	cfg, err := ParseFlags([]string{
		"-a", "api.farm.local:8080",
		"-identity", "id.farm.local",
		"-ws", "ws://api.farm.local:8080/ws",
		"-config", "/etc/farmlink.json",
		"-request-timeout", "5s",
		"-max-attempts", "4",
		"-retry-base-delay", "250ms",
		"-reconnect-interval", "2s",
		"-log-file", "/tmp/farmlink.log",
	})
	require.NoError(t, err)

	assert.Equal(t, "api.farm.local:8080", cfg.Adapter.HTTPAddress)
	assert.Equal(t, "id.farm.local", cfg.Adapter.IdentityAddress)
	assert.Equal(t, "ws://api.farm.local:8080/ws", cfg.Adapter.WSAddress)
	assert.Equal(t, "/etc/farmlink.json", cfg.ConfigFilePath)
	assert.Equal(t, 5*time.Second, cfg.Adapter.RequestTimeout)
	assert.Equal(t, 4, cfg.Adapter.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.Adapter.RetryBaseDelay)
	assert.Equal(t, 2*time.Second, cfg.Channel.ReconnectInterval)
	assert.Equal(t, "/tmp/farmlink.log", cfg.App.LogFile)
}

func TestParseFlags_NoArgsLeavesZeroValues(t *testing.T) {
	cfg, err := ParseFlags(nil)
	require.NoError(t, err)
	assert.Equal(t, &StructuredConfig{}, cfg)
}

func TestParseFlags_UnknownFlag(t *testing.T) {
	_, err := ParseFlags([]string{"-nope"})
	assert.Error(t, err)
}

// ── parseFile ─────────────────────────────────────────────────────────────────

func TestParseFile_JSON(t *testing.T) {
	p := writeTempConfig(t, "config.json", `{
		"adapter": {
			"http_address": "https://api.farm.local",
			"request_timeout": "12s",
			"max_attempts": 2,
			"retry_base_delay": 1000000
		},
		"upload": {"max_size": 2048, "allowed_types": ["image/png"]},
		"channel": {"reconnect_interval": "3s", "exponential": true, "max_reconnect_interval": "30s"},
		"workers": {"refresh_leeway": "2m"}
	}`)

	cfg, err := parseFile(p)
	require.NoError(t, err)

	assert.Equal(t, "https://api.farm.local", cfg.Adapter.HTTPAddress)
	assert.Equal(t, 12*time.Second, cfg.Adapter.RequestTimeout)
	assert.Equal(t, 2, cfg.Adapter.MaxAttempts)
	assert.Equal(t, time.Millisecond, cfg.Adapter.RetryBaseDelay)
	assert.Equal(t, int64(2048), cfg.Upload.MaxSize)
	assert.Equal(t, []string{"image/png"}, cfg.Upload.AllowedTypes)
	assert.Equal(t, 3*time.Second, cfg.Channel.ReconnectInterval)
	assert.True(t, cfg.Channel.Exponential)
	assert.Equal(t, 30*time.Second, cfg.Channel.MaxReconnectInterval)
	assert.Equal(t, 2*time.Minute, cfg.Workers.RefreshLeeway)
	assert.Empty(t, cfg.ConfigFilePath)
}

func TestParseFile_YAML(t *testing.T) {
	p := writeTempConfig(t, "config.yaml", `
adapter:
  http_address: https://api.farm.local
  ws_address: wss://api.farm.local/ws
  request_timeout: 7s
upload:
  allowed_types:
    - application/pdf
channel:
  reconnect_interval: 1500000000
`)

	cfg, err := parseFile(p)
	require.NoError(t, err)

	assert.Equal(t, "https://api.farm.local", cfg.Adapter.HTTPAddress)
	assert.Equal(t, "wss://api.farm.local/ws", cfg.Adapter.WSAddress)
	assert.Equal(t, 7*time.Second, cfg.Adapter.RequestTimeout)
	assert.Equal(t, []string{"application/pdf"}, cfg.Upload.AllowedTypes)
	assert.Equal(t, 1500*time.Millisecond, cfg.Channel.ReconnectInterval)
}

func TestParseFile_Missing(t *testing.T) {
	_, err := parseFile("/nonexistent/config.json")
	assert.Error(t, err)
}

func TestParseFile_Malformed(t *testing.T) {
	p := writeTempConfig(t, "bad.json", "{not valid json")
	_, err := parseFile(p)
	assert.Error(t, err)
}

func TestParseFile_BadDuration(t *testing.T) {
	p := writeTempConfig(t, "bad.yaml", "adapter:\n  request_timeout: later\n")
	_, err := parseFile(p)
	assert.Error(t, err)
}

// ── builder ───────────────────────────────────────────────────────────────────

func TestNewConfigBuilder_InitialState(t *testing.T) {
	b := newConfigBuilder()
	require.NotNil(t, b)
	assert.NoError(t, b.err)
	assert.Empty(t, b.configs)
}

func TestBuild_PropagatesBuilderError(t *testing.T) {
	b := newConfigBuilder()
	b.err = assert.AnError

	cfg, err := b.build()
	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestBuild_LaterSourcesOverride(t *testing.T) {
	base := Defaults()
	base.Adapter.HTTPAddress = "http://env"

	b := newConfigBuilder()
	b.configs = append(b.configs,
		&base,
		&StructuredConfig{Adapter: Adapter{HTTPAddress: "http://flag", MaxAttempts: 5}},
		&StructuredConfig{Adapter: Adapter{RequestTimeout: time.Second}},
	)

	cfg, err := b.build()
	require.NoError(t, err)
	assert.Equal(t, "http://flag", cfg.Adapter.HTTPAddress)
	assert.Equal(t, 5, cfg.Adapter.MaxAttempts)
	assert.Equal(t, time.Second, cfg.Adapter.RequestTimeout)
	assert.Equal(t, 5*time.Second, cfg.Channel.ReconnectInterval, "zero values must not override")
}

func TestWithFile_UsesLastPath(t *testing.T) {
	p := writeTempConfig(t, "c.json", `{"app": {"version": "last-wins"}}`)

	b := newConfigBuilder()
	b.configs = append(b.configs,
		&StructuredConfig{ConfigFilePath: "/first/ignored.json"},
		&StructuredConfig{ConfigFilePath: p},
	)
	b.withFile()

	require.NoError(t, b.err)
	require.Len(t, b.configs, 3)
	assert.Equal(t, "last-wins", b.configs[2].App.Version)
}

func TestWithFile_NoOpWithoutPath(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs, &StructuredConfig{})
	b.withFile()

	assert.Len(t, b.configs, 1)
	assert.NoError(t, b.err)
}

func TestLoad_EnvFlagsAndFile(t *testing.T) {
	p := writeTempConfig(t, "c.yaml", "adapter:\n  ws_address: ws://file/ws\n")
	t.Setenv("ADAPTER_ADDRESS", "http://env")
	t.Setenv("ADAPTER_MAX_ATTEMPTS", "4")

	cfg, err := Load([]string{"-a", "http://flag", "-c", p})
	require.NoError(t, err)

	assert.Equal(t, "http://flag", cfg.Adapter.HTTPAddress)
	assert.Equal(t, 4, cfg.Adapter.MaxAttempts)
	assert.Equal(t, "ws://file/ws", cfg.Adapter.WSAddress)
	assert.Equal(t, 30*time.Second, cfg.Adapter.RequestTimeout)
}

func TestLoad_MissingAddressFailsValidation(t *testing.T) {
	_, err := Load(nil)
	assert.ErrorIs(t, err, ErrInvalidAdapterConfigs)
}

// ── validate ──────────────────────────────────────────────────────────────────

func TestValidate(t *testing.T) {
	valid := func() StructuredConfig {
		cfg := Defaults()
		cfg.Adapter.HTTPAddress = "http://api"
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*StructuredConfig)
		want   error
	}{
		{"valid", func(*StructuredConfig) {}, nil},
		{"no address", func(c *StructuredConfig) { c.Adapter.HTTPAddress = "" }, ErrInvalidAdapterConfigs},
		{"zero attempts", func(c *StructuredConfig) { c.Adapter.MaxAttempts = 0 }, ErrInvalidAdapterConfigs},
		{"zero timeout", func(c *StructuredConfig) { c.Adapter.RequestTimeout = 0 }, ErrInvalidAdapterConfigs},
		{"zero upload size", func(c *StructuredConfig) { c.Upload.MaxSize = 0 }, ErrInvalidUploadConfigs},
		{"empty allow-list", func(c *StructuredConfig) { c.Upload.AllowedTypes = nil }, ErrInvalidUploadConfigs},
		{"zero reconnect", func(c *StructuredConfig) { c.Channel.ReconnectInterval = 0 }, ErrInvalidChannelConfigs},
		{"exp cap below base", func(c *StructuredConfig) {
			c.Channel.Exponential = true
			c.Channel.MaxReconnectInterval = time.Second
		}, ErrInvalidChannelConfigs},
		{"zero refresh check", func(c *StructuredConfig) { c.Workers.RefreshCheckInterval = 0 }, ErrInvalidWorkerConfigs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
