package channel

import (
	"context"
	"encoding/json"

	"github.com/MKhiriev/farmlink/internal/adapter"
	"github.com/MKhiriev/farmlink/models"
)

// Send writes one message when connected and reports whether it was written.
// While not connected the message is dropped, not queued. payload may be nil,
// a json.RawMessage or any JSON-serialisable value.
func (c *Channel) Send(ctx context.Context, eventType, room string, payload any) bool {
	raw, err := encodePayload(payload)
	if err != nil {
		c.logger.Warn().Err(err).Str("type", eventType).Msg("encode outbound payload")
		return false
	}

	c.mu.Lock()
	conn := c.conn
	connected := c.status.State == models.StateConnected
	c.mu.Unlock()

	if !connected || conn == nil {
		c.logger.Debug().Str("type", eventType).Msg("not connected, message dropped")
		return false
	}

	now := c.now()
	msg := models.Message{Type: eventType, Room: room, Payload: raw, Timestamp: &now}
	if err = conn.WriteMessage(ctx, msg); err != nil {
		c.logger.Warn().Err(err).Str("type", eventType).Msg("send failed")
		return false
	}
	return true
}

// JoinRoom subscribes the connection to a server-side room. The room is
// remembered and joined again after every reconnect, so the call is useful
// even while disconnected; the return value reports whether the join command
// went out now.
func (c *Channel) JoinRoom(ctx context.Context, room string) bool {
	c.mu.Lock()
	c.rooms[room] = struct{}{}
	c.mu.Unlock()

	return c.Send(ctx, models.CommandJoinRoom, room, nil)
}

// LeaveRoom forgets room and tells the server when connected.
func (c *Channel) LeaveRoom(ctx context.Context, room string) bool {
	c.mu.Lock()
	delete(c.rooms, room)
	c.mu.Unlock()

	return c.Send(ctx, models.CommandLeaveRoom, room, nil)
}

// Rooms returns the rooms that will be rejoined on reconnect.
func (c *Channel) Rooms() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	rooms := make([]string, 0, len(c.rooms))
	for room := range c.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}

func (c *Channel) write(conn adapter.ChannelConn, msg models.Message) {
	now := c.now()
	msg.Timestamp = &now
	if err := conn.WriteMessage(context.Background(), msg); err != nil {
		c.logger.Warn().Err(err).Str("type", msg.Type).Str("room", msg.Room).Msg("send failed")
	}
}

func encodePayload(payload any) (json.RawMessage, error) {
	switch p := payload.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return p, nil
	case []byte:
		return json.RawMessage(p), nil
	}
	return json.Marshal(payload)
}
