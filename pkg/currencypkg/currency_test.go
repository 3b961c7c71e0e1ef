package currencypkg

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestIsSupportedCurrency(t *testing.T) {
	for _, c := range SupportedCurrencies {
		require.True(t, IsSupportedCurrency(c))
	}

	require.False(t, IsSupportedCurrency("EUR"))
	require.False(t, IsSupportedCurrency(""))
}

func TestToUSD(t *testing.T) {
	testCases := []struct {
		name     string
		amount   string
		currency string
		want     string
	}{
		{name: "USD", amount: "55.98", currency: USD, want: "55.98"},
		{name: "ETH", amount: "0.05", currency: ETH, want: "90"},
		{name: "BTC", amount: "0.001", currency: BTC, want: "42"},
		{name: "USDT", amount: "10", currency: USDT, want: "10"},
		{name: "UnknownAtParity", amount: "3", currency: "XYZ", want: "3"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := ToUSD(decimal.RequireFromString(tc.amount), tc.currency)
			require.True(t, got.Equal(decimal.RequireFromString(tc.want)),
				"got %s, want %s", got, tc.want)
		})
	}
}

func TestRound(t *testing.T) {
	got := Round(decimal.RequireFromString("0.0475123456"), ETH)
	require.Equal(t, "0.047512", got.String())

	got = Round(decimal.RequireFromString("55.98499"), USD)
	require.Equal(t, "55.98", got.String())
}
