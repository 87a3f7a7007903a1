package models

import "time"

// ConnectionState is the real-time channel state machine position.
type ConnectionState string

const (
	StateDisconnected ConnectionState = "disconnected"
	StateConnecting   ConnectionState = "connecting"
	StateConnected    ConnectionState = "connected"
	StateReconnecting ConnectionState = "reconnecting"
)

// ConnectionStatus is a snapshot of the channel state together with the last
// observed activity and error.
type ConnectionStatus struct {
	State          ConnectionState `json:"state"`
	LastActivityAt *time.Time      `json:"last_activity_at,omitempty"`
	LastError      string          `json:"last_error,omitempty"`
}
