package sound

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingPlayer struct {
	prepared int
	played   int
	err      error
}

func (p *countingPlayer) Prepare(ctx context.Context) error {
	p.prepared++
	return p.err
}

func (p *countingPlayer) Play() {
	p.played++
}

func TestGate(t *testing.T) {
	t.Run("plays when ready and unlocked", func(t *testing.T) {
		player := &countingPlayer{}
		gate := NewGate(player, true)

		require.NoError(t, gate.Load(context.Background()))
		gate.Unlock()

		gate.Trigger()
		gate.Trigger()
		assert.Equal(t, 2, player.played)
	})

	t.Run("silent before load", func(t *testing.T) {
		player := &countingPlayer{}
		gate := NewGate(player, true)
		gate.Unlock()

		gate.Trigger()
		assert.Equal(t, 0, player.played)
	})

	t.Run("silent before first interaction", func(t *testing.T) {
		player := &countingPlayer{}
		gate := NewGate(player, true)
		require.NoError(t, gate.Load(context.Background()))

		gate.Trigger()
		assert.Equal(t, 0, player.played)
	})

	t.Run("disabled gate skips prepare and play", func(t *testing.T) {
		player := &countingPlayer{}
		gate := NewGate(player, false)

		require.NoError(t, gate.Load(context.Background()))
		gate.Unlock()
		gate.Trigger()

		assert.Equal(t, 0, player.prepared)
		assert.Equal(t, 0, player.played)
	})

	t.Run("load is idempotent", func(t *testing.T) {
		player := &countingPlayer{}
		gate := NewGate(player, true)

		require.NoError(t, gate.Load(context.Background()))
		require.NoError(t, gate.Load(context.Background()))
		assert.Equal(t, 1, player.prepared)
	})

	t.Run("load failure keeps gate closed", func(t *testing.T) {
		player := &countingPlayer{err: errors.New("no device")}
		gate := NewGate(player, true)

		require.Error(t, gate.Load(context.Background()))
		gate.Unlock()
		gate.Trigger()
		assert.Equal(t, 0, player.played)
	})

	t.Run("unlock is idempotent", func(t *testing.T) {
		player := &countingPlayer{}
		gate := NewGate(player, true)
		require.NoError(t, gate.Load(context.Background()))

		gate.Unlock()
		gate.Unlock()
		gate.Trigger()
		assert.Equal(t, 1, player.played)
	})
}

func TestBellPlayer(t *testing.T) {
	var buf bytes.Buffer
	p := &BellPlayer{Out: &buf}

	require.NoError(t, p.Prepare(context.Background()))
	p.Play()
	p.Play()

	assert.Equal(t, []byte{0x07, 0x07}, buf.Bytes())
}
