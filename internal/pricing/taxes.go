package pricing

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrUnknownProvince is returned for region codes outside the rate table.
var ErrUnknownProvince = errors.New("pricing: unknown province code")

// taxRates maps canonical two-letter province codes to tax rates.
// Canonical set: QC, ON, AB, BC, NS. Earlier data used the French
// spellings CB/NE for BC/NS; those are not accepted.
var taxRates = map[string]decimal.Decimal{
	"QC": decimal.NewFromFloat(0.15),
	"ON": decimal.NewFromFloat(0.13),
	"AB": decimal.NewFromFloat(0.05),
	"BC": decimal.NewFromFloat(0.12),
	"NS": decimal.NewFromFloat(0.14),
}

// TaxRate returns the tax rate for a province code.
func TaxRate(province string) (decimal.Decimal, error) {
	rate, ok := taxRates[province]
	if !ok {
		return decimal.Zero, ErrUnknownProvince
	}
	return rate, nil
}

// Taxes returns the tax amount on subtotal for the given province,
// rounded to 2 decimal places (half away from zero).
func Taxes(subtotal decimal.Decimal, province string) (decimal.Decimal, error) {
	rate, err := TaxRate(province)
	if err != nil {
		return decimal.Zero, err
	}
	return subtotal.Mul(rate).Round(2), nil
}

// TotalWithTax returns the tax-inclusive total for subtotal in the given
// province, rounded to 2 decimal places.
func TotalWithTax(subtotal decimal.Decimal, province string) (decimal.Decimal, error) {
	tax, err := Taxes(subtotal, province)
	if err != nil {
		return decimal.Zero, err
	}
	return subtotal.Add(tax).Round(2), nil
}
