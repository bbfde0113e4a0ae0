package xrpl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountLinesRepeatedQueryIsStable(t *testing.T) {
	mock := NewMockClient()
	mock.SetLines("rHolder", []TrustLine{
		{Account: "rIssuerA", Currency: "USD", Balance: "10"},
		{Account: "rIssuerB", Currency: "534F4C4F00000000000000000000000000000000", Balance: "512.75"},
	})

	ctx := context.Background()

	first, err := mock.AccountLines(ctx, "rHolder")
	require.NoError(t, err)
	second, err := mock.AccountLines(ctx, "rHolder")
	require.NoError(t, err)

	// With no intervening mutation the two snapshots hold the same lines,
	// regardless of reporting order.
	assert.ElementsMatch(t, first, second)
}

func TestAccountLinesReturnsIndependentSnapshots(t *testing.T) {
	mock := NewMockClient()
	mock.SetLines("rHolder", []TrustLine{
		{Account: "rIssuerA", Currency: "USD", Balance: "10"},
	})

	ctx := context.Background()

	first, err := mock.AccountLines(ctx, "rHolder")
	require.NoError(t, err)
	first[0].Balance = "0"

	second, err := mock.AccountLines(ctx, "rHolder")
	require.NoError(t, err)
	assert.Equal(t, "10", second[0].Balance)
}
