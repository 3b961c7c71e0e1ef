package paymentservice

import (
	"github.com/shopspring/decimal"

	"github.com/matrix-system/matrix-pay/internal/domain"
	"github.com/matrix-system/matrix-pay/pkg/currencypkg"
)

// products is the static catalog. Read-only reference data.
var products = map[string]domain.Product{
	domain.ProductBook: {
		Kind:        domain.ProductBook,
		Name:        `Physical Book "Matrix Code"`,
		Description: "Limited edition of the Matrix Code book with exclusive content.",
		Price:       decimal.RequireFromString("49.99"),
		Shipping:    decimal.RequireFromString("5.99"),
		Tax:         decimal.Zero,
		Currency:    currencypkg.USD,
		Physical:    true,
		Settlement:  domain.SettleBasePrice,
	},
	domain.ProductCrypto: {
		Kind:        domain.ProductCrypto,
		Name:        "Crypto Balance Top-Up",
		Description: "Instant balance top-up paid in crypto currency.",
		Price:       decimal.RequireFromString("0.05"),
		Discount:    decimal.RequireFromString("0.05"),
		Currency:    currencypkg.ETH,
		Physical:    false,
		Settlement:  domain.SettleFiatEquivalent,
	},
}

// networks are the supported crypto payment networks.
var networks = map[string]domain.CryptoNetwork{
	"ethereum": {
		Name:    "Ethereum Mainnet",
		Symbol:  currencypkg.ETH,
		Address: "0x7a3Bc8f9D2C5e6a8f1B4d3E7F9A2C8B6E5D4F3A1",
	},
	"bitcoin": {
		Name:    "Bitcoin",
		Symbol:  currencypkg.BTC,
		Address: "3J98t1WpEZ73CNmQviecrnyiWrnqRhWNLy",
	},
	"usdt": {
		Name:    "Tether (ERC20)",
		Symbol:  currencypkg.USDT,
		Address: "0x7a3Bc8f9D2C5e6a8f1B4d3E7F9A2C8B6E5D4F3A1",
	},
}

const defaultNetwork = "ethereum"

// couponRate is the flat reduction applied when any coupon is supplied.
var couponRate = decimal.RequireFromString("0.9")

// ListProducts returns the catalog entries.
func ListProducts() []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for _, kind := range []string{domain.ProductBook, domain.ProductCrypto} {
		out = append(out, products[kind])
	}

	return out
}

// ListNetworks returns the supported crypto networks keyed by identifier.
func ListNetworks() map[string]domain.CryptoNetwork {
	out := make(map[string]domain.CryptoNetwork, len(networks))
	for k, v := range networks {
		out[k] = v
	}

	return out
}

// resolveProduct returns the catalog entry for the kind with its currency
// fixed to the selected network for crypto purchases. An unknown kind or an
// unknown network is an invalid product, never a silent default.
func resolveProduct(kind string, opts domain.PaymentOptions) (domain.Product, error) {
	product, ok := products[kind]
	if !ok {
		return domain.Product{}, domain.ErrInvalidProduct
	}

	if kind == domain.ProductCrypto {
		name := opts.Network
		if name == "" {
			name = defaultNetwork
		}

		network, ok := networks[name]
		if !ok {
			return domain.Product{}, domain.ErrInvalidProduct
		}

		product.Currency = network.Symbol
	}

	return product, nil
}

// CalculateTotal computes the charge for the product kind with the given
// options: base price, plus shipping and tax for physical goods, times
// (1 - discount) for discounted digital goods, times 0.9 when a coupon is
// supplied. Rounded to 6 decimals for crypto currencies and 2 for fiat.
func CalculateTotal(kind string, opts domain.PaymentOptions) (decimal.Decimal, string, error) {
	product, err := resolveProduct(kind, opts)
	if err != nil {
		return decimal.Zero, "", err
	}

	total := product.Price

	if product.Physical {
		total = total.Add(product.Shipping).Add(product.Tax)
	}

	if !product.Physical && product.Discount.IsPositive() {
		total = total.Mul(decimal.NewFromInt(1).Sub(product.Discount))
	}

	if opts.Coupon != "" {
		total = total.Mul(couponRate)
	}

	return currencypkg.Round(total, product.Currency), product.Currency, nil
}
