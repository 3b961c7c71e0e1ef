// Package currencypkg provides common currency related functionality for apps.
package currencypkg

import "github.com/shopspring/decimal"

// Constants for all supported currencies.
const (
	USD  = "USD"
	ETH  = "ETH"
	BTC  = "BTC"
	USDT = "USDT"
)

// SupportedCurrencies holds all the supported currencies.
var SupportedCurrencies = []string{
	USD,
	ETH,
	BTC,
	USDT,
}

// usdRates holds the fixed exchange rates to USD.
var usdRates = map[string]decimal.Decimal{
	USD:  decimal.NewFromInt(1),
	ETH:  decimal.NewFromInt(1800),
	BTC:  decimal.NewFromInt(42000),
	USDT: decimal.NewFromInt(1),
}

// IsSupportedCurrency returns true if the currency is supported.
func IsSupportedCurrency(currency string) bool {
	for _, c := range SupportedCurrencies {
		if c == currency {
			return true
		}
	}

	return false
}

// IsFiat returns true for fiat currencies.
func IsFiat(currency string) bool {
	return currency == USD
}

// USDRate returns the fixed exchange rate of the currency to USD.
// Unknown currencies convert at parity.
func USDRate(currency string) decimal.Decimal {
	if rate, ok := usdRates[currency]; ok {
		return rate
	}

	return decimal.NewFromInt(1)
}

// ToUSD converts the amount of the given currency to USD at the fixed rate,
// rounded to 2 decimal places.
func ToUSD(amount decimal.Decimal, currency string) decimal.Decimal {
	return amount.Mul(USDRate(currency)).Round(2)
}

// Round rounds the amount according to the currency precision:
// 6 decimal places for crypto currencies and 2 for fiat.
func Round(amount decimal.Decimal, currency string) decimal.Decimal {
	if IsFiat(currency) {
		return amount.Round(2)
	}

	return amount.Round(6)
}
