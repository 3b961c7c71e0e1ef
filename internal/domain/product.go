package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrInvalidProduct indicates an unrecognized product kind or, for crypto
// products, an unknown network.
var ErrInvalidProduct = errors.New("invalid product")

// Product kinds sold by the catalog.
const (
	ProductBook   = "book"
	ProductCrypto = "crypto"
)

// SettlementRule is the closed enumeration of formulas for how a completed
// payment changes the buyer's balance.
type SettlementRule string

const (
	// SettleBasePrice credits only the pre-shipping base price.
	SettleBasePrice SettlementRule = "base_price"
	// SettleFiatEquivalent credits the USD equivalent of the paid amount
	// at the fixed exchange rate.
	SettleFiatEquivalent SettlementRule = "fiat_equivalent"
)

// Product is a static, read-only catalog entry.
type Product struct {
	Kind        string          `json:"kind"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Shipping    decimal.Decimal `json:"shipping"`
	Tax         decimal.Decimal `json:"tax"`
	Discount    decimal.Decimal `json:"discount"` // rate, e.g. 0.05 for 5%
	Currency    string          `json:"currency"`
	Physical    bool            `json:"physical"`
	Settlement  SettlementRule  `json:"-"`
}

// CryptoNetwork describes a supported payment network for crypto products.
type CryptoNetwork struct {
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
	Address string `json:"address"`
}
