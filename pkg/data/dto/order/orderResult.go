package order

import (
	"fmt"

	"slingshotBot/pkg/constants/orderStatus"

	"github.com/shopspring/decimal"
)

// Result is the normalized view of an exchange order. Callers never see raw payloads.
type Result struct {
	OrderId   int64
	Symbol    string
	Side      string
	Type      orderStatus.OrderType
	Status    orderStatus.OrderStatus
	FilledQty decimal.Decimal
	AvgPrice  decimal.Decimal
	StopPrice decimal.Decimal
}

func (r *Result) IsFilled() bool {
	return r.Status == orderStatus.FILLED
}

func (r *Result) String() string {
	return fmt.Sprintf("Order {id: %v, symbol: %v, side: %v, type: %v, status: %v, filled: %v, avgPrice: %v, stopPrice: %v}",
		r.OrderId, r.Symbol, r.Side, r.Type, r.Status, r.FilledQty, r.AvgPrice, r.StopPrice)
}

// Request describes an order to submit. Zero decimals are omitted from the exchange request.
type Request struct {
	Symbol        string
	Side          string
	Type          orderStatus.OrderType
	Quantity      decimal.Decimal
	Price         decimal.Decimal
	StopPrice     decimal.Decimal
	CallbackRate  decimal.Decimal
	ClosePosition bool
	ReduceOnly    bool
}

func (r *Request) String() string {
	return fmt.Sprintf("OrderRequest {symbol: %v, side: %v, type: %v, qty: %v, price: %v, stopPrice: %v, callbackRate: %v, closePosition: %v, reduceOnly: %v}",
		r.Symbol, r.Side, r.Type, r.Quantity, r.Price, r.StopPrice, r.CallbackRate, r.ClosePosition, r.ReduceOnly)
}
