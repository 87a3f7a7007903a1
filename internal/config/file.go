package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// StructuredFileConfig is the on-disk shape of the configuration file. The
// same struct is decoded from JSON or YAML depending on the file extension.
type StructuredFileConfig struct {
	App struct {
		Version string `json:"version" yaml:"version"`
		LogRole string `json:"log_role" yaml:"log_role"`
		LogFile string `json:"log_file" yaml:"log_file"`
	} `json:"app,omitempty" yaml:"app,omitempty"`

	Adapter struct {
		HTTPAddress      string   `json:"http_address" yaml:"http_address"`
		IdentityAddress  string   `json:"identity_address" yaml:"identity_address"`
		IdentityAPIKey   string   `json:"identity_api_key" yaml:"identity_api_key"`
		WSAddress        string   `json:"ws_address" yaml:"ws_address"`
		RequestTimeout   Duration `json:"request_timeout" yaml:"request_timeout"`
		MaxAttempts      int      `json:"max_attempts" yaml:"max_attempts"`
		RetryBaseDelay   Duration `json:"retry_base_delay" yaml:"retry_base_delay"`
		RefreshTimeout   Duration `json:"refresh_timeout" yaml:"refresh_timeout"`
		BatchConcurrency int      `json:"batch_concurrency" yaml:"batch_concurrency"`
	} `json:"adapter,omitempty" yaml:"adapter,omitempty"`

	Upload struct {
		MaxSize      int64    `json:"max_size" yaml:"max_size"`
		AllowedTypes []string `json:"allowed_types" yaml:"allowed_types"`
	} `json:"upload,omitempty" yaml:"upload,omitempty"`

	Channel struct {
		ReconnectInterval    Duration `json:"reconnect_interval" yaml:"reconnect_interval"`
		Exponential          bool     `json:"exponential" yaml:"exponential"`
		MaxReconnectInterval Duration `json:"max_reconnect_interval" yaml:"max_reconnect_interval"`
	} `json:"channel,omitempty" yaml:"channel,omitempty"`

	Workers struct {
		RefreshLeeway        Duration `json:"refresh_leeway" yaml:"refresh_leeway"`
		RefreshCheckInterval Duration `json:"refresh_check_interval" yaml:"refresh_check_interval"`
	} `json:"workers,omitempty" yaml:"workers,omitempty"`
}

func parseFile(path string) (*StructuredConfig, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error reading a config file: %w", err)
	}
	defer file.Close()

	var fileCfg StructuredFileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.NewDecoder(file).Decode(&fileCfg); err != nil {
			return nil, fmt.Errorf("error decoding yaml configs: %w", err)
		}
	default:
		if err := json.NewDecoder(file).Decode(&fileCfg); err != nil {
			return nil, fmt.Errorf("error decoding json configs: %w", err)
		}
	}

	cfg := &StructuredConfig{
		App: App{
			Version: fileCfg.App.Version,
			LogRole: fileCfg.App.LogRole,
			LogFile: fileCfg.App.LogFile,
		},
		Adapter: Adapter{
			HTTPAddress:      fileCfg.Adapter.HTTPAddress,
			IdentityAddress:  fileCfg.Adapter.IdentityAddress,
			IdentityAPIKey:   fileCfg.Adapter.IdentityAPIKey,
			WSAddress:        fileCfg.Adapter.WSAddress,
			RequestTimeout:   time.Duration(fileCfg.Adapter.RequestTimeout),
			MaxAttempts:      fileCfg.Adapter.MaxAttempts,
			RetryBaseDelay:   time.Duration(fileCfg.Adapter.RetryBaseDelay),
			RefreshTimeout:   time.Duration(fileCfg.Adapter.RefreshTimeout),
			BatchConcurrency: fileCfg.Adapter.BatchConcurrency,
		},
		Upload: Upload{
			MaxSize:      fileCfg.Upload.MaxSize,
			AllowedTypes: fileCfg.Upload.AllowedTypes,
		},
		Channel: Channel{
			ReconnectInterval:    time.Duration(fileCfg.Channel.ReconnectInterval),
			Exponential:          fileCfg.Channel.Exponential,
			MaxReconnectInterval: time.Duration(fileCfg.Channel.MaxReconnectInterval),
		},
		Workers: Workers{
			RefreshLeeway:        time.Duration(fileCfg.Workers.RefreshLeeway),
			RefreshCheckInterval: time.Duration(fileCfg.Workers.RefreshCheckInterval),
		},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports unmarshaling from
// strings like "1h", "30s" in both JSON and YAML, as well as from raw
// nanosecond numbers.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}

	if tmp, err := time.ParseDuration(raw); err == nil {
		*d = Duration(tmp)
		return nil
	}

	var n int64
	if err := node.Decode(&n); err != nil {
		return fmt.Errorf("invalid duration %q", raw)
	}
	*d = Duration(time.Duration(n))
	return nil
}
