package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fasthttp/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrUnauthorized marks a dial rejected by the server's credential check.
// The manager treats it as permanent and stops retrying.
var ErrUnauthorized = errors.New("realtime: unauthorized")

// Conn is the minimal surface the read loop needs from a connection.
type Conn interface {
	ReadMessage() (messageType int, data []byte, err error)
	Close() error
}

// Dialer opens a connection to a channel endpoint.
type Dialer interface {
	DialContext(ctx context.Context, url string, header http.Header) (Conn, error)
}

// websocketDialer is the production Dialer.
type websocketDialer struct {
	d *websocket.Dialer
}

// NewWebsocketDialer returns the production websocket dialer.
func NewWebsocketDialer() Dialer {
	return &websocketDialer{
		d: &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
	}
}

func (w *websocketDialer) DialContext(ctx context.Context, url string, header http.Header) (Conn, error) {
	conn, resp, err := w.d.DialContext(ctx, url, header)
	if err != nil {
		if resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
			return nil, fmt.Errorf("%w: handshake returned %d", ErrUnauthorized, resp.StatusCode)
		}
		return nil, err
	}
	return conn, nil
}

// handle is one outstanding connection attempt and its read loop. Its
// lifetime is bounded by the manager: cancel tears it down, and every state
// transition is ignored once the manager has discarded it.
type handle struct {
	id      string
	mgr     *Manager
	ctx     context.Context
	cancel  context.CancelFunc
	onEvent EventHandler
}

func newHandle(m *Manager, ctx context.Context, cancel context.CancelFunc, onEvent EventHandler) *handle {
	return &handle{
		id:      uuid.NewString()[:8],
		mgr:     m,
		ctx:     ctx,
		cancel:  cancel,
		onEvent: onEvent,
	}
}

func (h *handle) logger() zerolog.Logger {
	return h.mgr.opts.Logger.With().
		Str("connection", h.id).
		Str("event", h.mgr.opts.Event).
		Logger()
}

// run dials, reads until the connection drops, and redials with backoff.
// It exits when the handle's context is cancelled or a permanent failure
// occurs. Events that arrive between a drop and the redial are lost;
// backfill is the caller's responsibility via a REST re-fetch.
func (h *handle) run() {
	log := h.logger()
	attempt := 0

	for {
		conn, err := h.dial()
		if err != nil {
			if h.ctx.Err() != nil {
				// Redundant teardown aborted the dial. Expected under rapid
				// mount/unmount cycles; never surfaced.
				return
			}
			if errors.Is(err, ErrUnauthorized) {
				log.Error().Err(err).Msg("push credential rejected, live updates unavailable")
				h.mgr.giveUp(h)
				return
			}

			wait := h.backoff(attempt)
			attempt++
			log.Warn().Err(err).Dur("retry_in", wait).Msg("push connect failed")

			select {
			case <-time.After(wait):
				continue
			case <-h.ctx.Done():
				return
			}
		}

		attempt = 0
		if !h.mgr.transition(h, StateConnected) {
			_ = conn.Close()
			return
		}
		log.Info().Str("url", h.mgr.opts.URL).Msg("push connected")

		readErr := h.readLoop(conn)
		_ = conn.Close()

		if h.ctx.Err() != nil {
			return
		}
		if !h.mgr.transition(h, StateReconnecting) {
			return
		}
		log.Info().Err(readErr).Msg("push connection lost, reconnecting")
	}
}

// dial opens the socket with a bearer credential obtained fresh from the
// token provider, so a reconnect after rotation carries the new value.
func (h *handle) dial() (Conn, error) {
	header := http.Header{}
	if h.mgr.opts.Tokens != nil {
		if token := h.mgr.opts.Tokens(); token != "" {
			header.Set("Authorization", "Bearer "+token)
		}
	}
	return h.mgr.opts.Dialer.DialContext(h.ctx, h.mgr.opts.URL, header)
}

func (h *handle) backoff(attempt int) time.Duration {
	schedule := h.mgr.opts.Backoff
	if attempt >= len(schedule) {
		attempt = len(schedule) - 1
	}
	return schedule[attempt]
}

// readLoop decodes envelopes and dispatches the channel's named event until
// the connection errors. A goroutine closes the socket on context cancel so
// the blocking read unwinds promptly.
func (h *handle) readLoop(conn Conn) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-h.ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	log := h.logger()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			log.Debug().Err(err).Msg("dropping malformed push frame")
			continue
		}
		if env.Event != h.mgr.opts.Event {
			continue
		}
		h.onEvent(env.Data)
	}
}
