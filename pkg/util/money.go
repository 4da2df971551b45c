package util

import (
	"github.com/shopspring/decimal"
)

func FormatUsd(money decimal.Decimal) string {
	return "$" + money.StringFixed(2)
}

// ParseDecimal reads an exchange string number, empty strings are zero.
func ParseDecimal(value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(value)
}
