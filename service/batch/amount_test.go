package batch

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestComputeSendable(t *testing.T) {
	tests := []struct {
		name    string
		balance string
		retain  string
		want    string
	}{
		{
			name:    "ledger-reported balance minus retain",
			balance: "100.000000000000000",
			retain:  "25.5",
			want:    "74.5",
		},
		{
			name:    "whole balance when nothing retained",
			balance: "42",
			retain:  "0",
			want:    "42",
		},
		{
			name:    "retain exceeds balance",
			balance: "10",
			retain:  "25.5",
			want:    "-15.5",
		},
		{
			name:    "retain equals balance",
			balance: "7.25",
			retain:  "7.25",
			want:    "0",
		},
		{
			name:    "excess precision truncates rather than rounds",
			balance: "1.0000000000000009",
			retain:  "0",
			want:    "1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeSendable(dec(t, tt.balance), dec(t, tt.retain))
			assert.True(t, dec(t, tt.want).Equal(got),
				"ComputeSendable(%s, %s) = %s, want %s", tt.balance, tt.retain, got, tt.want)
		})
	}
}

func TestComputeSendableNeverRoundsUp(t *testing.T) {
	// Truncation must never yield more than the exact difference, or a
	// sweep could attempt to send more than the account holds.
	cases := [][2]string{
		{"0.12345678901234567891", "0"},
		{"100.0000000000000001", "0.0000000000000000005"},
		{"55.599999999999999999", "0.1"},
	}

	for _, c := range cases {
		balance, retain := dec(t, c[0]), dec(t, c[1])
		got := ComputeSendable(balance, retain)
		exact := balance.Sub(retain)
		assert.True(t, got.LessThanOrEqual(exact),
			"ComputeSendable(%s, %s) = %s exceeds exact difference %s", c[0], c[1], got, exact)
	}
}

func TestComputeSendableNonPositiveMeansSkip(t *testing.T) {
	// Property: for all b <= r the participant must be skipped.
	cases := [][2]string{
		{"10", "25.5"},
		{"0", "0"},
		{"0.000000000000001", "0.000000000000001"},
		{"99.999999999999999", "100"},
	}

	for _, c := range cases {
		got := ComputeSendable(dec(t, c[0]), dec(t, c[1]))
		assert.False(t, got.IsPositive(),
			"ComputeSendable(%s, %s) = %s should not be positive", c[0], c[1], got)
	}
}
