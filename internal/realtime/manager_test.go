package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConn is a scriptable connection: frames are fed through a channel and
// an error ends the read loop.
type fakeConn struct {
	frames chan []byte
	errs   chan error

	closeOnce sync.Once
	closed    chan struct{}
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		frames: make(chan []byte, 16),
		errs:   make(chan error, 1),
		closed: make(chan struct{}),
	}
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case data := <-c.frames:
		return 1, data, nil
	case err := <-c.errs:
		return 0, nil, err
	case <-c.closed:
		return 0, nil, errors.New("use of closed connection")
	}
}

func (c *fakeConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) push(event string, data any) {
	payload, _ := json.Marshal(data)
	frame, _ := json.Marshal(Envelope{Event: event, Data: payload})
	c.frames <- frame
}

// fakeDialer records every dial and hands out scripted conns.
type fakeDialer struct {
	mu      sync.Mutex
	dials   int
	headers []http.Header
	conns   chan *fakeConn
	errs    chan error
	block   chan struct{} // when set, dials block until released or ctx done
}

func newFakeDialer() *fakeDialer {
	return &fakeDialer{
		conns: make(chan *fakeConn, 8),
		errs:  make(chan error, 8),
	}
}

func (d *fakeDialer) DialContext(ctx context.Context, url string, header http.Header) (Conn, error) {
	d.mu.Lock()
	d.dials++
	d.headers = append(d.headers, header.Clone())
	block := d.block
	d.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	select {
	case err := <-d.errs:
		return nil, err
	case conn := <-d.conns:
		return conn, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (d *fakeDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials
}

func (d *fakeDialer) header(i int) http.Header {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.headers[i]
}

func newTestManager(d Dialer, tokens TokenProvider) *Manager {
	return NewManager(Options{
		URL:     "ws://server/hubs/notifications",
		Event:   EventReceiveNotification,
		Tokens:  tokens,
		Dialer:  d,
		Backoff: []time.Duration{0},
	})
}

func waitForState(t *testing.T, m *Manager, want State) {
	t.Helper()
	require.Eventually(t, func() bool { return m.State() == want },
		2*time.Second, 5*time.Millisecond, "want state %s, have %s", want, m.State())
}

func TestOpenIsIdempotentWhileActive(t *testing.T) {
	dialer := newFakeDialer()
	dialer.block = make(chan struct{})
	m := newTestManager(dialer, nil)
	defer m.Close()

	m.Open(func(json.RawMessage) {})
	m.Open(func(json.RawMessage) {})

	require.Eventually(t, func() bool { return dialer.dialCount() == 1 },
		time.Second, 5*time.Millisecond)
	assert.Equal(t, StateConnecting, m.State())

	// Still exactly one dial after the connection lands.
	dialer.conns <- newFakeConn()
	close(dialer.block)
	waitForState(t, m, StateConnected)

	m.Open(func(json.RawMessage) {})
	assert.Equal(t, 1, dialer.dialCount())
}

func TestCloseWithoutOpenIsNoop(t *testing.T) {
	m := newTestManager(newFakeDialer(), nil)
	m.Close()
	m.Close()
	assert.Equal(t, StateAbsent, m.State())
}

func TestOpenAfterCloseReconnects(t *testing.T) {
	dialer := newFakeDialer()
	dialer.conns <- newFakeConn()
	m := newTestManager(dialer, nil)

	m.Open(func(json.RawMessage) {})
	waitForState(t, m, StateConnected)

	m.Close()
	assert.Equal(t, StateClosed, m.State())

	dialer.conns <- newFakeConn()
	m.Open(func(json.RawMessage) {})
	waitForState(t, m, StateConnected)
	assert.Equal(t, 2, dialer.dialCount())
}

func TestReconnectUsesFreshToken(t *testing.T) {
	dialer := newFakeDialer()
	conn1 := newFakeConn()
	dialer.conns <- conn1

	var mu sync.Mutex
	token := "token-old"
	m := newTestManager(dialer, func() string {
		mu.Lock()
		defer mu.Unlock()
		return token
	})
	defer m.Close()

	m.Open(func(json.RawMessage) {})
	waitForState(t, m, StateConnected)
	assert.Equal(t, "Bearer token-old", dialer.header(0).Get("Authorization"))

	// Rotate the credential, then force a drop.
	mu.Lock()
	token = "token-new"
	mu.Unlock()
	dialer.conns <- newFakeConn()
	conn1.errs <- errors.New("connection reset")

	require.Eventually(t, func() bool { return dialer.dialCount() == 2 },
		2*time.Second, 5*time.Millisecond)
	assert.Equal(t, "Bearer token-new", dialer.header(1).Get("Authorization"))
	waitForState(t, m, StateConnected)
}

func TestEventDispatch(t *testing.T) {
	dialer := newFakeDialer()
	conn := newFakeConn()
	dialer.conns <- conn
	m := newTestManager(dialer, nil)
	defer m.Close()

	var mu sync.Mutex
	var got []string
	m.Open(func(data json.RawMessage) {
		mu.Lock()
		got = append(got, string(data))
		mu.Unlock()
	})
	waitForState(t, m, StateConnected)

	conn.push(EventReceiveNotification, map[string]string{"id": "n1"})
	conn.push("SomeOtherEvent", map[string]string{"id": "ignored"})
	conn.push(EventReceiveNotification, map[string]string{"id": "n2"})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.JSONEq(t, `{"id":"n1"}`, got[0])
	assert.JSONEq(t, `{"id":"n2"}`, got[1])
}

func TestMalformedFrameSkipped(t *testing.T) {
	dialer := newFakeDialer()
	conn := newFakeConn()
	dialer.conns <- conn
	m := newTestManager(dialer, nil)
	defer m.Close()

	var mu sync.Mutex
	var count int
	m.Open(func(json.RawMessage) {
		mu.Lock()
		count++
		mu.Unlock()
	})
	waitForState(t, m, StateConnected)

	conn.frames <- []byte("not json at all")
	conn.push(EventReceiveNotification, map[string]string{"id": "n1"})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return count == 1
	}, time.Second, 5*time.Millisecond)
}

func TestTransientFailureRetries(t *testing.T) {
	dialer := newFakeDialer()
	dialer.errs <- errors.New("connection refused")
	dialer.conns <- newFakeConn()

	m := newTestManager(dialer, nil)
	defer m.Close()

	m.Open(func(json.RawMessage) {})
	waitForState(t, m, StateConnected)
	assert.Equal(t, 2, dialer.dialCount())
	assert.False(t, m.Degraded())
}

func TestUnauthorizedGivesUp(t *testing.T) {
	dialer := newFakeDialer()
	dialer.errs <- fmt.Errorf("%w: handshake returned 401", ErrUnauthorized)

	m := newTestManager(dialer, nil)
	m.Open(func(json.RawMessage) {})

	waitForState(t, m, StateClosed)
	assert.True(t, m.Degraded())
	assert.Equal(t, 1, dialer.dialCount())

	// A fresh Open after re-auth tries again and clears the flag.
	dialer.conns <- newFakeConn()
	m.Open(func(json.RawMessage) {})
	waitForState(t, m, StateConnected)
	assert.False(t, m.Degraded())
	m.Close()
}

func TestCloseDuringSetupIsSilent(t *testing.T) {
	dialer := newFakeDialer()
	dialer.block = make(chan struct{})
	m := newTestManager(dialer, nil)

	m.Open(func(json.RawMessage) {})
	require.Eventually(t, func() bool { return dialer.dialCount() == 1 },
		time.Second, 5*time.Millisecond)

	m.Close()
	assert.Equal(t, StateClosed, m.State())
	assert.False(t, m.Degraded())

	// Releasing the blocked dial must not resurrect the discarded handle.
	close(dialer.block)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, StateClosed, m.State())
}

func TestDropWhileReconnectingLosesEventsNotState(t *testing.T) {
	dialer := newFakeDialer()
	conn := newFakeConn()
	dialer.conns <- conn
	dialer.block = nil

	m := NewManager(Options{
		URL:     "ws://server/hubs/chat",
		Event:   EventReceiveMessage,
		Dialer:  dialer,
		Backoff: []time.Duration{50 * time.Millisecond},
	})
	defer m.Close()

	m.Open(func(json.RawMessage) {})
	waitForState(t, m, StateConnected)

	conn.errs <- errors.New("broken pipe")
	waitForState(t, m, StateReconnecting)

	dialer.conns <- newFakeConn()
	waitForState(t, m, StateConnected)
}
