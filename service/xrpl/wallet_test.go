package xrpl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Well-known test vector: the XRPL genesis account secret and its address.
const (
	testSecret  = "snoPBrXtMeMyMHUVTgbuqAfg1SUTb"
	testAddress = "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh"
)

func TestResolveSecret(t *testing.T) {
	t.Run("valid secret resolves to known address", func(t *testing.T) {
		id, err := ResolveSecret(testSecret)
		require.NoError(t, err)
		assert.Equal(t, testAddress, id.Address)
	})

	t.Run("resolution is deterministic", func(t *testing.T) {
		a, err := ResolveSecret(testSecret)
		require.NoError(t, err)
		b, err := ResolveSecret(testSecret)
		require.NoError(t, err)
		assert.Equal(t, a.Address, b.Address)
	})

	t.Run("malformed secret yields ErrInvalidSecret", func(t *testing.T) {
		_, err := ResolveSecret("not-a-seed")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidSecret)
	})

	t.Run("empty secret yields ErrInvalidSecret", func(t *testing.T) {
		_, err := ResolveSecret("")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidSecret)
	})
}

func TestTransportErrorClassification(t *testing.T) {
	err := &TransportError{Op: "submit", Err: assert.AnError}
	assert.True(t, IsTransportError(err))
	assert.ErrorIs(t, err, assert.AnError)
	assert.False(t, IsTransportError(assert.AnError))
}
