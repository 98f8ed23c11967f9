package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"12.50", "12.5", false},
		{" 0.000001 ", "0.000001", false},
		{"0", "", true},
		{"-3", "", true},
		{"abc", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestNormalizeCurrency(t *testing.T) {
	c, err := NormalizeCurrency(" eur ")
	require.NoError(t, err)
	assert.Equal(t, "EUR", c)

	c, err = NormalizeCurrency("usdc")
	require.NoError(t, err)
	assert.Equal(t, "USDC", c)

	for _, bad := range []string{"", "e", "EU R", "€", "TOOLONGCODE1"} {
		_, err := NormalizeCurrency(bad)
		assert.ErrorIs(t, err, ErrInvalidCurrency, bad)
	}
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(1250), MinorUnits(decimal.RequireFromString("12.50")))
	assert.Equal(t, int64(1), MinorUnits(decimal.RequireFromString("0.005")))
	assert.Equal(t, int64(100000), MinorUnits(decimal.NewFromInt(1000)))
}
