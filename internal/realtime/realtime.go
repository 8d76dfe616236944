// Package realtime manages the persistent push connections to the TaskFlow
// server. Each channel (chat, notifications) gets its own Manager owning at
// most one connection handle; inbound server events are decoded and routed
// to a registered handler.
package realtime

import "encoding/json"

// Server event names, one per channel.
const (
	EventReceiveMessage      = "ReceiveMessage"
	EventReceiveNotification = "ReceiveNotification"
)

// State is the lifecycle state of a channel's connection handle.
type State int

const (
	StateAbsent State = iota
	StateConnecting
	StateConnected
	StateReconnecting
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// EventHandler receives the decoded payload of the channel's named event.
// Handlers run on the connection's read goroutine and must not block.
type EventHandler func(data json.RawMessage)

// TokenProvider returns the current bearer token, or "" for an anonymous
// connect. It is evaluated at every dial so reconnects after credential
// rotation use the latest value.
type TokenProvider func() string

// Envelope is the wire frame for server-pushed events.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}
