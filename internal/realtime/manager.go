package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// defaultBackoff is the reconnect delay schedule. Consecutive failures walk
// the list and stay on the last entry.
var defaultBackoff = []time.Duration{0, 2 * time.Second, 10 * time.Second, 30 * time.Second}

// Options configure a Manager.
type Options struct {
	// URL is the channel's websocket endpoint.
	URL string
	// Event is the channel's named server event; frames carrying any other
	// event name are ignored.
	Event string
	// Tokens provides the bearer credential per dial. May be nil.
	Tokens TokenProvider
	// Dialer opens the underlying connection. Nil selects the production
	// websocket dialer.
	Dialer Dialer
	// Backoff overrides the reconnect delay schedule. Nil selects the default.
	Backoff []time.Duration

	Logger zerolog.Logger
}

// Manager owns at most one push connection for a single channel. One Manager
// per channel is constructed at session scope and passed by reference to the
// views that need it; there is no process-global connection state.
type Manager struct {
	mu       sync.Mutex
	opts     Options
	state    State
	degraded bool
	handle   *handle
}

// NewManager creates a manager for one channel. No connection is opened
// until Open is called.
func NewManager(opts Options) *Manager {
	if opts.Dialer == nil {
		opts.Dialer = NewWebsocketDialer()
	}
	if opts.Backoff == nil {
		opts.Backoff = defaultBackoff
	}
	return &Manager{opts: opts, state: StateAbsent}
}

// Open begins connecting asynchronously and routes the channel's events to
// onEvent. If a handle already exists and is connecting, connected, or
// reconnecting, the call is a no-op: the hosting view layer may invoke setup
// twice for the same logical mount, and the second call must not produce a
// second connection.
func (m *Manager) Open(onEvent EventHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.handle != nil {
		switch m.state {
		case StateConnecting, StateConnected, StateReconnecting:
			return
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	h := newHandle(m, ctx, cancel, onEvent)
	m.handle = h
	m.state = StateConnecting
	m.degraded = false

	go h.run()
}

// Close requests disconnection and discards the handle immediately, so a
// subsequent Open is never blocked by a slow-closing prior connection.
// Closing a channel with no handle is a no-op.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.handle == nil {
		return
	}
	// Teardown is best-effort and asynchronous: cancelling the context
	// unblocks the handle's dial or read loop, which closes the socket and
	// swallows the resulting error.
	m.handle.cancel()
	m.handle = nil
	m.state = StateClosed
}

// State returns the channel's current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Degraded reports whether the channel gave up after a permanent failure
// (credential rejected). The UI surfaces this as "live updates unavailable";
// a fresh Open after re-authentication clears it.
func (m *Manager) Degraded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.degraded
}

// transition moves to state s if h is still the current handle. A handle
// discarded by Close must never mutate manager state it no longer owns.
func (m *Manager) transition(h *handle, s State) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.handle != h {
		return false
	}
	m.state = s
	return true
}

// giveUp detaches h after a permanent failure, leaving the channel closed
// and flagged degraded so callers can tell "never opened" from "gave up".
func (m *Manager) giveUp(h *handle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.handle != h {
		return
	}
	m.handle = nil
	m.state = StateClosed
	m.degraded = true
}
