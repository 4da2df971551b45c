package orderStatus

type OrderStatus string

const (
	NEW       OrderStatus = "NEW"
	FILLED    OrderStatus = "FILLED"
	CANCELED  OrderStatus = "CANCELED"
	NOT_FOUND OrderStatus = "NOT_FOUND"
	ERROR     OrderStatus = "ERROR"
)

// IsTerminal is true when the exchange will never fill the order anymore.
func (s OrderStatus) IsTerminal() bool {
	return s == FILLED || s == CANCELED || s == NOT_FOUND
}

type OrderType string

const (
	MARKET               OrderType = "MARKET"
	LIMIT                OrderType = "LIMIT"
	STOP_MARKET          OrderType = "STOP_MARKET"
	TRAILING_STOP_MARKET OrderType = "TRAILING_STOP_MARKET"
)

func (t OrderType) IsStop() bool {
	return t == STOP_MARKET || t == TRAILING_STOP_MARKET
}
