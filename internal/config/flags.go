package config

import (
	"flag"
	"fmt"
	"time"
)

// ParseFlags parses configuration flags from args.
//
// Flags:
//
//	-a REST backend address
//	-identity identity backend address
//	-identity-api-key identity backend public API key
//	-ws real-time websocket address
//	-c/-config JSON or YAML config file path
//	-request-timeout per-attempt request timeout (e.g. "30s")
//	-max-attempts attempts per request, including the first
//	-retry-base-delay delay before the first retry (e.g. "500ms")
//	-reconnect-interval real-time reconnect delay (e.g. "5s")
//	-log-file client log file path
//
// Unset flags keep their zero value so that they do not override other
// sources when merged.
func ParseFlags(args []string) (*StructuredConfig, error) {
	fs := flag.NewFlagSet("farmlink", flag.ContinueOnError)

	var (
		httpAddress       string
		identityAddress   string
		identityAPIKey    string
		wsAddress         string
		configPath        string
		requestTimeout    time.Duration
		maxAttempts       int
		retryBaseDelay    time.Duration
		reconnectInterval time.Duration
		logFile           string
	)

	fs.StringVar(&httpAddress, "a", "", "REST backend address")
	fs.StringVar(&identityAddress, "identity", "", "Identity backend address")
	fs.StringVar(&identityAPIKey, "identity-api-key", "", "Identity backend API key")
	fs.StringVar(&wsAddress, "ws", "", "Real-time websocket address")
	fs.StringVar(&configPath, "c", "", "JSON/YAML config file path")
	fs.StringVar(&configPath, "config", "", "JSON/YAML config file path (alias)")
	fs.DurationVar(&requestTimeout, "request-timeout", 0, "Request attempt timeout (e.g., 30s)")
	fs.IntVar(&maxAttempts, "max-attempts", 0, "Attempts per request")
	fs.DurationVar(&retryBaseDelay, "retry-base-delay", 0, "Delay before the first retry (e.g., 500ms)")
	fs.DurationVar(&reconnectInterval, "reconnect-interval", 0, "Real-time reconnect delay (e.g., 5s)")
	fs.StringVar(&logFile, "log-file", "", "Client log file path")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("error parsing flags: %w", err)
	}

	return &StructuredConfig{
		App: App{
			LogFile: logFile,
		},
		Adapter: Adapter{
			HTTPAddress:     httpAddress,
			IdentityAddress: identityAddress,
			IdentityAPIKey:  identityAPIKey,
			WSAddress:       wsAddress,
			RequestTimeout:  requestTimeout,
			MaxAttempts:     maxAttempts,
			RetryBaseDelay:  retryBaseDelay,
		},
		Channel: Channel{
			ReconnectInterval: reconnectInterval,
		},
		ConfigFilePath: configPath,
	}, nil
}
