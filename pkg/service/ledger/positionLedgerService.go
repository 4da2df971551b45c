package ledger

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"slingshotBot/pkg/constants/futureType"
	"slingshotBot/pkg/constants/orderStatus"
	"slingshotBot/pkg/data/domains"
	"slingshotBot/pkg/service/date"
	"slingshotBot/pkg/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrInvalidQuantity = errors.New("invalid fill quantity")
	ErrNoPosition      = errors.New("position is closed")
)

var one = decimal.NewFromInt(1)

type Config struct {
	// FeeRate is charged on the notional of every fill.
	FeeRate decimal.Decimal
	// AddonGap is the favorable move from the average price required before an addon.
	AddonGap decimal.Decimal
	// FixCooldown is the pause after the last addon before a partial close is allowed.
	FixCooldown time.Duration
}

func DefaultConfig() Config {
	return Config{
		FeeRate:     decimal.RequireFromString("0.0004"),
		AddonGap:    decimal.RequireFromString("0.08"),
		FixCooldown: 3 * time.Hour,
	}
}

// FixResult reports the outcome of a reducing fill.
type FixResult struct {
	Closed    bool
	FilledQty decimal.Decimal
	// NewStopPrice is set when a STOP_MARKET should be moved to lock in the move.
	NewStopPrice *decimal.Decimal
}

func NewPositionLedgerService(clock date.Clock, config Config) *PositionLedgerService {
	return &PositionLedgerService{Clock: clock, config: config}
}

// PositionLedgerService keeps the economics of a position: weighted average, quantities,
// net result and the linked stop. It never talks to the exchange.
type PositionLedgerService struct {
	Clock  date.Clock
	config Config
}

func (s *PositionLedgerService) fee(qty, price decimal.Decimal) decimal.Decimal {
	return qty.Mul(price).Mul(s.config.FeeRate)
}

func (s *PositionLedgerService) Open(instrument *domains.Instrument, side futureType.FuturesType, qty, price decimal.Decimal,
	stop *domains.StopLoss, stopLossPercent decimal.Decimal) (*domains.Position, error) {
	if !qty.IsPositive() || !price.IsPositive() {
		return nil, fmt.Errorf("%w: open %v@%v", ErrInvalidQuantity, qty, price)
	}

	now := s.Clock.NowTime()
	position := &domains.Position{
		Instrument:       instrument,
		Side:             side,
		OpenedAt:         now,
		OriginalQuantity: qty,
		CurrentQuantity:  qty,
		AveragePrice:     price,
		RealizedResult:   s.fee(qty, price).Neg(),
		Addons:           1,
		LastAddonTime:    now,
		StopLoss:         stop,
		StopLossPercent:  stopLossPercent,
	}

	zap.S().Infof("Opened %s", position.String())
	return position, nil
}

func (s *PositionLedgerService) Addon(position *domains.Position, qty, price decimal.Decimal) error {
	if position.IsClosed() {
		return ErrNoPosition
	}
	if !qty.IsPositive() || !price.IsPositive() {
		return fmt.Errorf("%w: addon %v@%v", ErrInvalidQuantity, qty, price)
	}

	total := position.CurrentQuantity.Add(qty)
	average := position.AveragePrice.Mul(position.CurrentQuantity).Add(price.Mul(qty)).Div(total)

	position.AveragePrice = util.QuantizeAveragePrice(average, position.Instrument.PriceStep, position.Side)
	position.OriginalQuantity = total
	position.CurrentQuantity = total
	position.RealizedResult = position.RealizedResult.Sub(s.fee(qty, price))
	position.Addons++
	position.LastAddonTime = s.Clock.NowTime()

	zap.S().Infof("Addon %v@%v: %s", qty, price, position.String())
	return nil
}

// AddonAllowed holds once price moved AddonGap beyond the average in the position's favor.
func (s *PositionLedgerService) AddonAllowed(position *domains.Position, price decimal.Decimal) bool {
	if position.Side == futureType.LONG {
		return price.GreaterThanOrEqual(position.AveragePrice.Mul(one.Add(s.config.AddonGap)))
	}
	return price.LessThanOrEqual(position.AveragePrice.Mul(one.Sub(s.config.AddonGap)))
}

// Fix books a reducing fill. A quantity above the remaining one is clamped.
func (s *PositionLedgerService) Fix(position *domains.Position, qty, price decimal.Decimal) (*FixResult, error) {
	if position.IsClosed() {
		return nil, ErrNoPosition
	}
	if !qty.IsPositive() || !price.IsPositive() {
		return nil, fmt.Errorf("%w: fix %v@%v", ErrInvalidQuantity, qty, price)
	}
	if qty.GreaterThan(position.CurrentQuantity) {
		zap.S().Warnf("Fix of %v exceeds position quantity %v on %s, clamped", qty, position.CurrentQuantity, position.Instrument.Symbol)
		qty = position.CurrentQuantity
	}

	now := s.Clock.NowTime()
	pnl := price.Sub(position.AveragePrice).Mul(qty).Mul(futureType.GetFuturesSignDecimal(position.Side))

	position.CurrentQuantity = position.CurrentQuantity.Sub(qty)
	position.RealizedResult = position.RealizedResult.Add(pnl).Sub(s.fee(qty, price))
	position.Fixes++
	position.LastFixTime = &now
	position.LastFixPrice = &price

	result := &FixResult{Closed: position.IsClosed(), FilledQty: qty}
	if !result.Closed {
		result.NewStopPrice = s.ratchetStop(position, price)
	}

	zap.S().Infof("Fix %v@%v: %s", qty, price, position.String())
	return result, nil
}

// ratchetStop recommends a tighter STOP_MARKET once price moved beyond the stop distance in favor.
func (s *PositionLedgerService) ratchetStop(position *domains.Position, price decimal.Decimal) *decimal.Decimal {
	if position.StopLoss == nil || position.StopLoss.Kind != orderStatus.STOP_MARKET || !position.StopLossPercent.IsPositive() {
		return nil
	}

	slp := position.StopLossPercent
	avg := position.AveragePrice
	stopSide := position.CloseSide()

	var candidate decimal.Decimal
	if position.Side == futureType.LONG {
		if !price.GreaterThan(avg.Mul(one.Add(slp))) {
			return nil
		}
		candidate = util.MaxDecimal(avg, price.Mul(one.Sub(slp)))
	} else {
		if !price.LessThan(avg.Mul(one.Sub(slp))) {
			return nil
		}
		candidate = util.MinDecimal(avg, price.Mul(one.Add(slp)))
	}
	candidate = util.QuantizePrice(candidate, position.Instrument.PriceStep, stopSide)

	current := position.StopLoss.Price
	tightens := candidate.GreaterThan(current)
	if position.Side == futureType.SHORT {
		tightens = candidate.LessThan(current)
	}
	if !tightens {
		return nil
	}
	return &candidate
}

// ApplyFill routes a fill by side: the opening side adds, the closing side fixes.
func (s *PositionLedgerService) ApplyFill(position *domains.Position, side string, qty, price decimal.Decimal) (*FixResult, error) {
	if side == position.OpenSide() {
		if err := s.Addon(position, qty, price); err != nil {
			return nil, err
		}
		return &FixResult{Closed: false, FilledQty: qty}, nil
	}
	return s.Fix(position, qty, price)
}

// FixAllowed holds once the cooldown after the last addon has passed.
func (s *PositionLedgerService) FixAllowed(position *domains.Position) bool {
	return s.Clock.NowTime().Sub(position.LastAddonTime) > s.config.FixCooldown
}

// FixQty is the share of the original quantity to close, never leaving less than the exchange minimum behind.
func (s *PositionLedgerService) FixQty(position *domains.Position, parts int) decimal.Decimal {
	if parts <= 0 {
		parts = 1
	}
	instrument := position.Instrument

	qty := util.RoundDownToStep(position.OriginalQuantity.Div(decimal.NewFromInt(int64(parts))), instrument.LotStep)
	if qty.LessThan(instrument.MinQty) {
		qty = instrument.MinQty
	}
	if position.CurrentQuantity.Sub(qty).LessThan(instrument.MinQty) {
		qty = position.CurrentQuantity
	}
	return qty
}

func (s *PositionLedgerService) CloseQty(position *domains.Position) decimal.Decimal {
	return position.CurrentQuantity
}

// StopPriceFor is the stop trigger percent (a fraction) away from the average price, quantized on the stop's side.
func (s *PositionLedgerService) StopPriceFor(position *domains.Position, percent decimal.Decimal) decimal.Decimal {
	price := util.CalculatePriceForStopLoss(position.AveragePrice, percent, position.Side)
	return util.QuantizePrice(price, position.Instrument.PriceStep, position.CloseSide())
}

func (s *PositionLedgerService) LinkStop(position *domains.Position, stop *domains.StopLoss) {
	position.StopLoss = stop
	if stop != nil {
		zap.S().Infof("Stop linked to %s: %s", position.Instrument.Symbol, stop.String())
	}
}

func (s *PositionLedgerService) UnlinkStop(position *domains.Position) {
	position.StopLoss = nil
}

func (s *PositionLedgerService) Statistics(position *domains.Position) *domains.PositionStatistic {
	statistic := &domains.PositionStatistic{
		Symbol:          position.Instrument.Symbol,
		FuturesType:     position.Side,
		OpenedAt:        position.OpenedAt,
		MaxQuantity:     position.OriginalQuantity,
		CurrentQuantity: position.CurrentQuantity,
		TotalAddons:     position.Addons,
		TotalFixes:      position.Fixes,
		Result:          position.RealizedResult,
	}
	if position.IsClosed() && position.LastFixTime != nil {
		statistic.ClosedAt = sql.NullTime{Time: *position.LastFixTime, Valid: true}
	}
	return statistic
}
