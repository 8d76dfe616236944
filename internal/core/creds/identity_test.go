package creds

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentity(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		s := NewStore(t.TempDir())

		id := Identity{ID: "u1", FullName: "Ada Lovelace", Email: "ada@example.com", Role: "Admin"}
		require.NoError(t, s.SaveIdentity(id))

		got, err := s.Identity()
		require.NoError(t, err)
		assert.Equal(t, id, got)
	})

	t.Run("absent returns ErrNoIdentity", func(t *testing.T) {
		s := NewStore(t.TempDir())

		_, err := s.Identity()
		require.ErrorIs(t, err, ErrNoIdentity)
	})

	t.Run("clear is idempotent", func(t *testing.T) {
		s := NewStore(t.TempDir())
		require.NoError(t, s.SaveIdentity(Identity{ID: "u1"}))

		require.NoError(t, s.ClearIdentity())
		require.NoError(t, s.ClearIdentity())

		_, err := s.Identity()
		require.ErrorIs(t, err, ErrNoIdentity)
	})
}
