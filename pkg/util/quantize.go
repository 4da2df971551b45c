package util

import (
	"slingshotBot/pkg/constants/futureType"

	"github.com/shopspring/decimal"
)

// RoundDownToStep floors value to a multiple of step. A non-positive step leaves value untouched.
func RoundDownToStep(value, step decimal.Decimal) decimal.Decimal {
	if !step.IsPositive() {
		return value
	}
	return value.Div(step).Floor().Mul(step)
}

// RoundUpToStep ceils value to a multiple of step. A non-positive step leaves value untouched.
func RoundUpToStep(value, step decimal.Decimal) decimal.Decimal {
	if !step.IsPositive() {
		return value
	}
	return value.Div(step).Ceil().Mul(step)
}

// QuantizeQty floors qty to the lot step and lifts it to the exchange minimum.
func QuantizeQty(qty, lotStep, minQty decimal.Decimal) decimal.Decimal {
	quantized := RoundDownToStep(qty, lotStep)
	if quantized.LessThan(minQty) {
		return minQty
	}
	return quantized
}

// QuantizePrice rounds an order price so the exchange accepts it:
// buy-side prices are ceiled, sell-side prices are floored.
func QuantizePrice(price, priceStep decimal.Decimal, side string) decimal.Decimal {
	if side == futureType.BUY {
		return RoundUpToStep(price, priceStep)
	}
	return RoundDownToStep(price, priceStep)
}

// QuantizeAveragePrice biases the break-even against the position:
// up for LONG, down for SHORT.
func QuantizeAveragePrice(price, priceStep decimal.Decimal, futuresType futureType.FuturesType) decimal.Decimal {
	if futuresType == futureType.LONG {
		return RoundUpToStep(price, priceStep)
	}
	return RoundDownToStep(price, priceStep)
}

// QuantityForQuote converts a quote amount into a legal base quantity at price.
func QuantityForQuote(price, quoteQty, lotStep, minQty decimal.Decimal) decimal.Decimal {
	if !price.IsPositive() {
		return decimal.Zero
	}
	return QuantizeQty(quoteQty.Div(price), lotStep, minQty)
}
