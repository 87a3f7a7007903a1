// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package channel keeps one long-lived real-time connection to the backend
// and fans server-pushed events out to independent subscribers.
//
// The connection moves through the states of [models.ConnectionState]:
//
//	disconnected --Connect--> connecting --open--> connected
//	connected --close/error--> reconnecting --delay--> connecting
//	any --Disconnect--> disconnected
//
// Failures never surface as errors. They move the channel to reconnecting
// with LastError set, and a reconnect is retried until Disconnect is called.
// No public method blocks on network I/O; dialing and reading happen on the
// channel's own goroutines.
package channel

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MKhiriev/farmlink/internal/adapter"
	"github.com/MKhiriev/farmlink/internal/app"
	"github.com/MKhiriev/farmlink/internal/config"
	"github.com/MKhiriev/farmlink/internal/logger"
	"github.com/MKhiriev/farmlink/models"
	"github.com/cenkalti/backoff/v5"
)

// TokenSource supplies the access token presented in the handshake.
type TokenSource interface {
	AccessToken() string
}

// Channel is safe for concurrent use.
type Channel struct {
	dialer     adapter.ChannelDialer
	tokens     TokenSource
	newBackOff func() backoff.BackOff
	now        func() time.Time

	mu      sync.Mutex
	status  models.ConnectionStatus
	baseCtx context.Context
	// gen fences goroutines and timers of superseded attempts: it changes on
	// every dial, every scheduled reconnect and every Disconnect.
	gen        uint64
	conn       adapter.ChannelConn
	cancelDial context.CancelFunc
	timer      *time.Timer
	retry      backoff.BackOff
	announced  bool
	rooms      map[string]struct{}

	// pending notifications, delivered in order by whoever holds flushing.
	pending  []notification
	flushing bool

	registry *registry

	logger *logger.Logger
}

// New creates a disconnected Channel. tokens may be nil for anonymous
// connections.
func New(dialer adapter.ChannelDialer, tokens TokenSource, cfg config.Channel, log *logger.Logger) *Channel {
	return &Channel{
		dialer:     dialer,
		tokens:     tokens,
		newBackOff: reconnectPolicy(cfg),
		now:        time.Now,
		status:     models.ConnectionStatus{State: models.StateDisconnected},
		baseCtx:    context.Background(),
		rooms:      make(map[string]struct{}),
		registry:   newRegistry(),
		logger:     log.WithComponent("channel"),
	}
}

// Connect opens the connection in the background. It is a no-op while
// connecting or connected. Called while reconnecting it cancels the pending
// timer and dials immediately.
//
// ctx only contributes values (such as the logger); the connection outlives
// it and is closed by Disconnect.
func (c *Channel) Connect(ctx context.Context) {
	c.mu.Lock()
	if s := c.status.State; s == models.StateConnecting || s == models.StateConnected {
		c.mu.Unlock()
		return
	}

	c.baseCtx = context.WithoutCancel(ctx)
	c.stopTimerLocked()
	c.retry = nil
	c.dialLocked()
	c.mu.Unlock()

	c.flush()
}

// Disconnect closes the connection, cancels an in-flight dial and any
// pending reconnect, and moves to disconnected. Safe to call in any state.
// The next successful Connect announces "connected" again.
func (c *Channel) Disconnect() {
	c.mu.Lock()
	c.gen++
	c.stopTimerLocked()
	if c.cancelDial != nil {
		c.cancelDial()
		c.cancelDial = nil
	}
	conn := c.conn
	c.conn = nil
	c.retry = nil
	c.announced = false
	c.setStateLocked(models.StateDisconnected, "")
	c.mu.Unlock()

	if conn != nil {
		if err := conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("close connection")
		}
	}
	c.flush()
}

// Status returns a snapshot of the connection state.
func (c *Channel) Status() models.ConnectionStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneStatus(c.status)
}

func (c *Channel) dialLocked() {
	c.gen++
	gen := c.gen

	dialCtx, cancel := context.WithCancel(c.baseCtx)
	c.cancelDial = cancel
	c.setStateLocked(models.StateConnecting, c.status.LastError)

	token := ""
	if c.tokens != nil {
		token = c.tokens.AccessToken()
	}

	go c.dial(dialCtx, cancel, gen, token)
}

func (c *Channel) dial(ctx context.Context, cancel context.CancelFunc, gen uint64, token string) {
	conn, err := c.dialer.Dial(ctx, token)
	cancel()

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		if conn != nil {
			_ = conn.Close()
		}
		return
	}
	c.cancelDial = nil

	if err != nil {
		c.logger.Warn().Err(err).Msg("real-time connection failed")
		c.scheduleReconnectLocked()
		c.mu.Unlock()
		c.flush()
		return
	}

	c.conn = conn
	c.retry = nil
	now := c.now()
	c.status = models.ConnectionStatus{State: models.StateConnected, LastActivityAt: &now}
	c.enqueueLocked(notification{status: cloneStatus(c.status)})
	if !c.announced {
		c.announced = true
		c.enqueueLocked(notification{connected: true})
	}
	rooms := make([]string, 0, len(c.rooms))
	for room := range c.rooms {
		rooms = append(rooms, room)
	}
	c.mu.Unlock()

	c.logger.Info().Int("rooms", len(rooms)).Msg("real-time connection established")
	c.flush()

	for _, room := range rooms {
		c.write(conn, models.Message{Type: models.CommandJoinRoom, Room: room})
	}

	c.readLoop(gen, conn)
}

// readLoop is the only reader of conn, so subscribers see messages in
// arrival order.
func (c *Channel) readLoop(gen uint64, conn adapter.ChannelConn) {
	for {
		msg, err := conn.ReadMessage()
		if errors.Is(err, adapter.ErrMalformedMessage) {
			c.logger.Warn().Err(err).Msg("dropping malformed message")
			continue
		}
		if err != nil {
			c.connectionLost(gen, conn, err)
			return
		}

		c.mu.Lock()
		if gen != c.gen {
			c.mu.Unlock()
			return
		}
		now := c.now()
		c.status.LastActivityAt = &now
		c.mu.Unlock()

		c.registry.dispatch(msg, c.logger)
	}
}

func (c *Channel) connectionLost(gen uint64, conn adapter.ChannelConn, err error) {
	_ = conn.Close()

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.conn = nil
	c.logger.Warn().Err(err).Msg("real-time connection lost")
	c.scheduleReconnectLocked()
	c.mu.Unlock()

	c.flush()
}

func (c *Channel) scheduleReconnectLocked() {
	if c.retry == nil {
		c.retry = c.newBackOff()
	}
	delay := c.retry.NextBackOff()
	if delay == backoff.Stop || delay < 0 {
		delay = defaultReconnectInterval
	}

	c.gen++
	gen := c.gen
	c.setStateLocked(models.StateReconnecting, app.MsgTransportFailure)

	c.stopTimerLocked()
	c.timer = time.AfterFunc(delay, func() { c.reconnect(gen) })

	c.logger.Debug().Dur("delay", delay).Msg("reconnect scheduled")
}

func (c *Channel) reconnect(gen uint64) {
	c.mu.Lock()
	if gen != c.gen || c.status.State != models.StateReconnecting {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	c.dialLocked()
	c.mu.Unlock()

	c.flush()
}

func (c *Channel) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// setStateLocked records a transition and queues a status notification
// when something changed.
func (c *Channel) setStateLocked(state models.ConnectionState, lastError string) {
	if c.status.State == state && c.status.LastError == lastError {
		return
	}
	c.status.State = state
	c.status.LastError = lastError
	c.enqueueLocked(notification{status: cloneStatus(c.status)})
}

func cloneStatus(s models.ConnectionStatus) models.ConnectionStatus {
	if s.LastActivityAt != nil {
		t := *s.LastActivityAt
		s.LastActivityAt = &t
	}
	return s
}
