package futureType

import "github.com/shopspring/decimal"

type FuturesType int8

const (
	LONG FuturesType = iota
	SHORT
)

func GetString(futuresType FuturesType) string {
	if futuresType == LONG {
		return "LONG"
	}
	return "SHORT"
}

// GetFuturesSign is +1 for LONG and -1 for SHORT.
func GetFuturesSign(futuresType FuturesType) int64 {
	if futuresType == LONG {
		return 1
	}
	return -1
}

func GetFuturesSignDecimal(futuresType FuturesType) decimal.Decimal {
	return decimal.NewFromInt(GetFuturesSign(futuresType))
}

func GetTypeByBool(isLong bool) FuturesType {
	if isLong {
		return LONG
	}
	return SHORT
}

// OpenSide is the order side that opens or adds to a position.
func OpenSide(futuresType FuturesType) string {
	if futuresType == LONG {
		return BUY
	}
	return SELL
}

// CloseSide is the order side that reduces a position.
func CloseSide(futuresType FuturesType) string {
	if futuresType == LONG {
		return SELL
	}
	return BUY
}

func GetTypeBySide(side string) FuturesType {
	return GetTypeByBool(side == BUY)
}

const (
	BUY  = "BUY"
	SELL = "SELL"
)
