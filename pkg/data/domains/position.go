package domains

import (
	"fmt"
	"time"

	"slingshotBot/pkg/constants/futureType"
	"slingshotBot/pkg/constants/orderStatus"

	"github.com/shopspring/decimal"
)

// StopLoss links a position to its protective order on the exchange.
type StopLoss struct {
	OrderId int64
	Price   decimal.Decimal
	Kind    orderStatus.OrderType
}

func (s *StopLoss) String() string {
	return fmt.Sprintf("StopLoss {orderId: %v, price: %v, kind: %v}", s.OrderId, s.Price, s.Kind)
}

// Position is the open economic state of one instrument. It is owned by a single controller.
type Position struct {
	Instrument *Instrument
	Side       futureType.FuturesType

	OpenedAt time.Time

	/* Quantity basis for partial closes, updated on every addon */
	OriginalQuantity decimal.Decimal
	CurrentQuantity  decimal.Decimal

	/* Volume weighted entry price, quantized against the position */
	AveragePrice decimal.Decimal

	/* Cumulative P&L net of fees */
	RealizedResult decimal.Decimal

	Addons        int
	Fixes         int
	LastAddonTime time.Time
	LastFixTime   *time.Time
	LastFixPrice  *decimal.Decimal

	StopLoss        *StopLoss
	StopLossPercent decimal.Decimal
}

func (p *Position) IsClosed() bool {
	return !p.CurrentQuantity.IsPositive()
}

func (p *Position) OpenSide() string {
	return futureType.OpenSide(p.Side)
}

func (p *Position) CloseSide() string {
	return futureType.CloseSide(p.Side)
}

func (p *Position) HasStopLoss() bool {
	return p.StopLoss != nil
}

func (p *Position) String() string {
	return fmt.Sprintf("Position {symbol: %v, side: %v, avg: %v, qty: %v/%v, result: %v, addons: %v, fixes: %v}",
		p.Instrument.Symbol, futureType.GetString(p.Side), p.AveragePrice, p.CurrentQuantity, p.OriginalQuantity,
		p.RealizedResult, p.Addons, p.Fixes)
}
