package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/MKhiriev/farmlink/internal/logger"
	"github.com/MKhiriev/farmlink/models"
	"github.com/gorilla/websocket"
)

const (
	defaultHandshakeTimeout = 10 * time.Second
	defaultWriteTimeout     = 10 * time.Second
	closeGracePeriod        = time.Second
)

type websocketDialer struct {
	url    string
	dialer *websocket.Dialer

	logger *logger.Logger
}

// NewWebsocketDialer constructs the gorilla/websocket implementation of
// [ChannelDialer] for rawURL. Plain http(s) schemes are rewritten to ws(s);
// a missing scheme defaults to ws://.
//
// Returns [ErrChannelUnconfigured] when rawURL is empty.
func NewWebsocketDialer(rawURL string, log *logger.Logger) (ChannelDialer, error) {
	normalized, err := normalizeWebsocketURL(rawURL)
	if err != nil {
		return nil, err
	}

	return &websocketDialer{
		url: normalized,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: defaultHandshakeTimeout,
		},
		logger: log.WithComponent("websocket-dialer"),
	}, nil
}

func normalizeWebsocketURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrChannelUnconfigured
	}
	if !strings.Contains(raw, "://") {
		raw = "ws://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid websocket address: %w", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("invalid websocket address: unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid websocket address: missing host")
	}

	return u.String(), nil
}

// Dial implements [ChannelDialer]. The access token, when present, travels
// in the handshake's Authorization header.
func (d *websocketDialer) Dial(ctx context.Context, accessToken string) (ChannelConn, error) {
	header := http.Header{}
	if accessToken != "" {
		header.Set("Authorization", "Bearer "+accessToken)
	}

	conn, resp, err := d.dialer.DialContext(ctx, d.url, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("websocket handshake: http %d: %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("websocket dial: %w", err)
	}

	d.logger.Debug().Str("url", d.url).Msg("websocket connected")
	return &websocketConn{conn: conn}, nil
}

// websocketConn serialises writes; gorilla allows one concurrent reader and
// one concurrent writer per connection.
type websocketConn struct {
	conn *websocket.Conn

	writeMu   sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

// ReadMessage implements [ChannelConn]. A frame that is not a JSON envelope
// yields [ErrMalformedMessage]; the connection stays usable.
func (c *websocketConn) ReadMessage() (models.Message, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return models.Message{}, err
	}

	var msg models.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return models.Message{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	return msg, nil
}

// WriteMessage implements [ChannelConn]. The write deadline is the context
// deadline or defaultWriteTimeout.
func (c *websocketConn) WriteMessage(ctx context.Context, msg models.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(defaultWriteTimeout)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return c.conn.WriteJSON(msg)
}

// Close implements [ChannelConn]. It attempts a normal-closure frame before
// closing the socket. Calling Close more than once is safe.
func (c *websocketConn) Close() error {
	c.closeOnce.Do(func() {
		c.writeMu.Lock()
		_ = c.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(closeGracePeriod),
		)
		c.writeMu.Unlock()
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}
