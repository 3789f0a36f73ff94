package pricing

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrInvalidWeight is returned for weights of zero grams or less.
var ErrInvalidWeight = errors.New("pricing: total weight must be greater than zero")

var (
	shippingSmall  = decimal.NewFromInt(5)
	shippingMedium = decimal.NewFromInt(10)
	shippingLarge  = decimal.NewFromInt(25)
)

// Shipping weight tiers in grams. Boundary weights belong to the
// cheaper tier.
const (
	smallParcelMaxGrams  = 500
	mediumParcelMaxGrams = 2000
)

// ShippingPrice returns the flat shipping price for an order's total
// weight in grams.
func ShippingPrice(totalWeightGrams int64) (decimal.Decimal, error) {
	if totalWeightGrams <= 0 {
		return decimal.Zero, ErrInvalidWeight
	}

	switch {
	case totalWeightGrams <= smallParcelMaxGrams:
		return shippingSmall, nil
	case totalWeightGrams <= mediumParcelMaxGrams:
		return shippingMedium, nil
	default:
		return shippingLarge, nil
	}
}
