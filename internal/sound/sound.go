// Package sound plays the notification chime behind a readiness gate.
//
// The gate tracks two independent conditions: the player must have prepared
// its resources, and the user must have pressed a key at least once in this
// session. A trigger that arrives before both hold is dropped silently.
package sound

import (
	"context"
	"io"
	"sync"
)

// Player produces the actual chime. Prepare loads whatever the
// implementation needs up front so Play is cheap and non-blocking.
type Player interface {
	Prepare(ctx context.Context) error
	Play()
}

// Gate wraps a Player and suppresses playback until both readiness
// conditions hold.
type Gate struct {
	mu       sync.Mutex
	player   Player
	ready    bool
	unlocked bool
	enabled  bool
}

// NewGate returns a gate over player. A disabled gate never plays and never
// prepares, honoring the user's config without callers having to check it.
func NewGate(player Player, enabled bool) *Gate {
	return &Gate{player: player, enabled: enabled}
}

// Load prepares the player. Safe to call more than once; only the first
// successful call flips the ready flag.
func (g *Gate) Load(ctx context.Context) error {
	g.mu.Lock()
	if !g.enabled || g.ready {
		g.mu.Unlock()
		return nil
	}
	player := g.player
	g.mu.Unlock()

	if err := player.Prepare(ctx); err != nil {
		return err
	}

	g.mu.Lock()
	g.ready = true
	g.mu.Unlock()
	return nil
}

// Unlock records that the user has interacted with the session. Idempotent.
func (g *Gate) Unlock() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.unlocked = true
}

// Trigger plays the chime if the gate is ready, unlocked, and enabled.
// Otherwise it does nothing.
func (g *Gate) Trigger() {
	g.mu.Lock()
	ok := g.enabled && g.ready && g.unlocked
	player := g.player
	g.mu.Unlock()

	if ok {
		player.Play()
	}
}

// BellPlayer rings the terminal bell. The terminal emulator decides what a
// bell means, so this respects whatever audible or visual preference the
// user configured there.
type BellPlayer struct {
	Out io.Writer
}

// Prepare is a no-op; the bell needs no resources.
func (p *BellPlayer) Prepare(ctx context.Context) error {
	return nil
}

// Play writes BEL. Write errors are ignored; a torn-down terminal has no
// use for a chime anyway.
func (p *BellPlayer) Play() {
	_, _ = p.Out.Write([]byte{0x07})
}
