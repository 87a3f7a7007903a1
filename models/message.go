package models

import (
	"encoding/json"
	"time"
)

// Well-known real-time event types.
const (
	EventDroneTelemetry  = "drone_telemetry"
	EventMissionProgress = "mission_progress"
	EventAgentStatus     = "agent_status"

	CommandJoinRoom  = "join_room"
	CommandLeaveRoom = "leave_room"
)

// Message is the real-time envelope used in both directions. Type is the
// discriminator used for subscriber fan-out; Room and Target qualify
// outbound commands.
type Message struct {
	Type      string          `json:"type"`
	Room      string          `json:"room,omitempty"`
	Target    string          `json:"target,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp *time.Time      `json:"timestamp,omitempty"`
}

// Decode unmarshals the payload into v.
func (m Message) Decode(v any) error {
	if len(m.Payload) == 0 {
		return nil
	}
	return json.Unmarshal(m.Payload, v)
}
