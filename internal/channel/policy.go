package channel

import (
	"time"

	"github.com/MKhiriev/farmlink/internal/config"
	"github.com/cenkalti/backoff/v5"
)

const (
	defaultReconnectInterval    = 5 * time.Second
	defaultMaxReconnectInterval = time.Minute
)

// reconnectPolicy returns a factory for the delay sequence of one reconnect
// streak. A streak starts when the connection is lost and ends with the next
// successful open.
func reconnectPolicy(cfg config.Channel) func() backoff.BackOff {
	interval := cfg.ReconnectInterval
	if interval <= 0 {
		interval = defaultReconnectInterval
	}

	if !cfg.Exponential {
		return func() backoff.BackOff {
			return backoff.NewConstantBackOff(interval)
		}
	}

	maxInterval := cfg.MaxReconnectInterval
	if maxInterval < interval {
		maxInterval = defaultMaxReconnectInterval
		if maxInterval < interval {
			maxInterval = interval
		}
	}

	return func() backoff.BackOff {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = interval
		b.MaxInterval = maxInterval
		b.Reset()
		return b
	}
}
