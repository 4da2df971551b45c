package util

import (
	"slingshotBot/pkg/constants/futureType"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

func CalculateChangeInPercents(prev, current decimal.Decimal) decimal.Decimal {
	if prev.IsZero() {
		return decimal.Zero
	}
	return current.Sub(prev).Div(prev).Mul(hundred)
}

// CalculatePriceForStopLoss places the stop at percent (a fraction, 0.08 = 8%) away from price, against the position.
func CalculatePriceForStopLoss(price, percent decimal.Decimal, futuresType futureType.FuturesType) decimal.Decimal {
	if futuresType == futureType.LONG {
		return price.Mul(decimal.NewFromInt(1).Sub(percent))
	}
	return price.Mul(decimal.NewFromInt(1).Add(percent))
}

// CalculateProfitInPercent is the signed move from entry to current, in percents, from the position's point of view.
func CalculateProfitInPercent(entry, current decimal.Decimal, futuresType futureType.FuturesType) decimal.Decimal {
	return CalculateChangeInPercents(entry, current).Mul(futureType.GetFuturesSignDecimal(futuresType))
}

func MaxDecimal(x, y decimal.Decimal) decimal.Decimal {
	if x.LessThan(y) {
		return y
	}
	return x
}

func MinDecimal(x, y decimal.Decimal) decimal.Decimal {
	if x.GreaterThan(y) {
		return y
	}
	return x
}
