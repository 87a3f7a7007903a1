package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"
)

// HTTPClient is a wrapper around the resty.Client HTTP client.
// It embeds *resty.Client to expose all of its methods directly,
// while allowing extension with additional application-specific behavior.
//
// Retries and timeouts are deliberately left to callers: the dispatcher runs
// its own attempt loop and sets a per-attempt context deadline, so the
// embedded client is created with resty's retry count at zero and no global
// timeout.
//
// Example usage:
//
//	client, err := utils.NewHTTPClient("api.farm.local:8080")
//	resp, err := client.R().Get("/api/drones")
type HTTPClient struct {
	*resty.Client
}

// NewHTTPClient creates and returns a new HTTPClient whose base URL is the
// normalised form of baseURL. An empty baseURL leaves the base URL unset.
//
// Each call returns an independent client instance with its own
// configuration, connection pool, and state.
func NewHTTPClient(baseURL string) (*HTTPClient, error) {
	client := resty.New().SetRetryCount(0)

	if strings.TrimSpace(baseURL) != "" {
		normalized, err := NormalizeBaseURL(baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid base url: %w", err)
		}
		client.SetBaseURL(normalized)
	}

	return &HTTPClient{Client: client}, nil
}

// NormalizeBaseURL trims raw, defaults the scheme to http:// and strips the
// trailing slash. It fails when the result has no scheme or host.
func NormalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// ErrorMessage extracts a human-readable message from a failed response
// body. JSON bodies are searched for "message", "error_description", "error"
// and "msg" (in that order); other bodies are used verbatim. An empty body
// yields the status text.
func ErrorMessage(body []byte, status int) string {
	trimmed := strings.TrimSpace(string(body))

	var fields map[string]any
	if err := json.Unmarshal([]byte(trimmed), &fields); err == nil {
		for _, key := range []string{"message", "error_description", "error", "msg"} {
			if s, ok := fields[key].(string); ok && s != "" {
				return s
			}
		}
	}

	if trimmed == "" {
		return http.StatusText(status)
	}
	return trimmed
}
