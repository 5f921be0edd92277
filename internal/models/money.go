package models

import "github.com/shopspring/decimal"

// MoneyScale is the number of fractional digits stored for every amount.
const MoneyScale = 2

func init() {
	// Amounts are rendered as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// IsMoney reports whether d fits the stored precision without rounding.
func IsMoney(d decimal.Decimal) bool {
	return d.Equal(d.Round(MoneyScale))
}
