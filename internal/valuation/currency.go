package valuation

import (
	"github.com/shopspring/decimal"
)

// minorUnits maps a quote currency in minor units to its major currency
var minorUnits = map[string]string{
	"GBp": "GBP",
	"GBX": "GBP",
	"ZAc": "ZAR",
	"ILA": "ILS",
}

var hundred = decimal.NewFromInt(100)

// DefaultCurrency is assumed when the snapshot carries none
const DefaultCurrency = "USD"

// NormalizeQuote converts a price quoted in minor units (pence, cents, agorot)
// into major units. Other currencies pass through unchanged.
func NormalizeQuote(price float64, currency string) (float64, string) {
	if currency == "" {
		currency = DefaultCurrency
	}
	major, ok := minorUnits[currency]
	if !ok {
		return price, currency
	}
	v, _ := decimal.NewFromFloat(price).Div(hundred).Float64()
	return v, major
}
