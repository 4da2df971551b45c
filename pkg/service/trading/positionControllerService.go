package trading

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"slingshotBot/pkg/constants/decision"
	"slingshotBot/pkg/constants/futureType"
	"slingshotBot/pkg/constants/orderStatus"
	"slingshotBot/pkg/data/domains"
	"slingshotBot/pkg/data/dto/order"
	"slingshotBot/pkg/metrics"
	"slingshotBot/pkg/repository"
	"slingshotBot/pkg/service/gateway"
	"slingshotBot/pkg/service/ledger"
	"slingshotBot/pkg/service/orders"
	"slingshotBot/pkg/service/signal"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var hundred = decimal.NewFromInt(100)

type Config struct {
	// OrderPercent is the share of the wallet balance used per opening or addon order, as a fraction.
	OrderPercent decimal.Decimal
	// StopLossPercent is the stop distance from the average price, as a fraction.
	StopLossPercent decimal.Decimal
	// StopKind is STOP_MARKET or TRAILING_STOP_MARKET.
	StopKind orderStatus.OrderType
	// FixParts splits the original quantity into partial closes.
	FixParts int
}

func NewPositionControllerService(
	instrument *domains.Instrument,
	signalService Signal,
	sizingService *orders.SizingService,
	executionGateway *gateway.ExecutionGateway,
	ledgerService *ledger.PositionLedgerService,
	statisticRepo repository.PositionStatistic,
	notifier Notifier,
	openingSwitch OpeningSwitch,
	config Config,
) *PositionControllerService {
	if config.StopKind == "" {
		config.StopKind = orderStatus.STOP_MARKET
	}
	if config.FixParts <= 0 {
		config.FixParts = 1
	}
	return &PositionControllerService{
		Instrument:       instrument,
		Signal:           signalService,
		SizingService:    sizingService,
		ExecutionGateway: executionGateway,
		LedgerService:    ledgerService,
		StatisticRepo:    statisticRepo,
		Notifier:         notifier,
		OpeningSwitch:    openingSwitch,
		config:           config,
	}
}

// PositionControllerService owns the position of one instrument and drives it through
// open, addon, fix and close while keeping its stop in sync.
type PositionControllerService struct {
	Instrument       *domains.Instrument
	Signal           Signal
	SizingService    *orders.SizingService
	ExecutionGateway *gateway.ExecutionGateway
	LedgerService    *ledger.PositionLedgerService
	StatisticRepo    repository.PositionStatistic
	Notifier         Notifier
	OpeningSwitch    OpeningSwitch
	config           Config

	mu       sync.Mutex
	position *domains.Position
	pending  *pendingOrder

	snapshotMu sync.RWMutex
	snapshot   *domains.Position
}

// Position returns a copy of the position as of the last finished cycle, nil when there is none.
func (s *PositionControllerService) Position() *domains.Position {
	s.snapshotMu.RLock()
	defer s.snapshotMu.RUnlock()
	return s.snapshot
}

// pendingOrder is a market order whose fill was not seen before the wait ended.
type pendingOrder struct {
	orderId   int64
	intent    decision.Intent
	requested decimal.Decimal
}

func (s *PositionControllerService) publish() {
	var snapshot *domains.Position
	if s.position != nil {
		copied := *s.position
		if s.position.StopLoss != nil {
			stop := *s.position.StopLoss
			copied.StopLoss = &stop
		}
		snapshot = &copied
	}

	s.snapshotMu.Lock()
	defer s.snapshotMu.Unlock()
	s.snapshot = snapshot
}

func (s *PositionControllerService) BotAction(ctx context.Context) {
	if !s.mu.TryLock() {
		metrics.SkippedCycles.WithLabelValues(s.Instrument.Symbol).Inc()
		zap.S().Warnf("Previous cycle of %s is still running, skipped", s.Instrument.Symbol)
		return
	}
	defer s.mu.Unlock()
	defer s.publish()

	defer func() {
		if r := recover(); r != nil {
			zap.S().Errorf("Recovered cycle of %s: %v", s.Instrument.Symbol, r)
		}
	}()

	settled := s.pending == nil || s.reconcilePending(ctx)

	if s.position != nil {
		s.superviseStop(ctx)
	}
	if !settled {
		return
	}

	dec, err := s.Signal.Decide(ctx, s.Instrument, s.positionView())
	if err != nil {
		zap.S().Errorf("Error during Decide %s: %s", s.Instrument.Symbol, err.Error())
		return
	}
	metrics.Decisions.WithLabelValues(s.Instrument.Symbol, string(dec)).Inc()

	switch dec {
	case decision.BUY, decision.SELL:
		side := futureType.GetTypeBySide(string(dec))
		if s.position == nil {
			s.open(ctx, side)
		} else if s.position.Side == side {
			s.addon(ctx)
		} else {
			zap.S().Debugf("Ignored %v on %s: position is %v", dec, s.Instrument.Symbol, futureType.GetString(s.position.Side))
		}
	case decision.FIX:
		if s.position != nil {
			s.reduce(ctx, decision.REDUCE, s.LedgerService.FixQty(s.position, s.config.FixParts))
		}
	case decision.CLOSE:
		if s.position != nil {
			s.reduce(ctx, decision.CLOSE_ALL, s.LedgerService.CloseQty(s.position))
		}
	}
}

func (s *PositionControllerService) positionView() *signal.PositionView {
	if s.position == nil {
		return nil
	}
	return &signal.PositionView{
		Side:         s.position.Side,
		AveragePrice: s.position.AveragePrice,
		LastFixPrice: s.position.LastFixPrice,
		FixAllowed:   s.LedgerService.FixAllowed(s.position),
	}
}

// reconcilePending books the pending order once the exchange has settled it. It is false while the order still works.
func (s *PositionControllerService) reconcilePending(ctx context.Context) bool {
	pending := s.pending
	result := s.ExecutionGateway.QueryOrder(ctx, s.Instrument, pending.orderId)

	switch {
	case result.IsFilled(), result.Status == orderStatus.CANCELED && gateway.IsPartialFill(result):
		zap.S().Infof("Pending %v order of %s settled: %s", pending.intent, s.Instrument.Symbol, result.String())
		s.pending = nil
		s.book(ctx, pending.intent, result, pending.requested)
		return true
	case result.Status == orderStatus.CANCELED, result.Status == orderStatus.NOT_FOUND:
		zap.S().Warnf("Pending %v order %v of %s is %v, nothing to book", pending.intent, pending.orderId, s.Instrument.Symbol, result.Status)
		s.pending = nil
		return true
	}

	zap.S().Warnf("Pending %v order %v of %s is %v, cycle skipped", pending.intent, pending.orderId, s.Instrument.Symbol, result.Status)
	return false
}

func (s *PositionControllerService) book(ctx context.Context, intent decision.Intent, filled *order.Result, requested decimal.Decimal) {
	switch intent {
	case decision.OPEN_LONG:
		s.bookOpen(ctx, futureType.LONG, filled, requested)
	case decision.OPEN_SHORT:
		s.bookOpen(ctx, futureType.SHORT, filled, requested)
	case decision.ADD, decision.REDUCE, decision.CLOSE_ALL:
		if s.position == nil {
			zap.S().Errorf("Fill of %v order %v on %s has no position to book: %s", intent, filled.OrderId, s.Instrument.Symbol, filled.String())
			return
		}
		if intent == decision.ADD {
			s.bookAddon(ctx, filled, requested)
		} else {
			s.bookReduce(ctx, filled, requested)
		}
	}
}

// executionFailed remembers an order whose fill may still come.
func (s *PositionControllerService) executionFailed(intent decision.Intent, requested decimal.Decimal, placed *order.Result, err error) {
	if errors.Is(err, gateway.ErrFillPending) && placed != nil {
		s.pending = &pendingOrder{orderId: placed.OrderId, intent: intent, requested: requested}
		zap.S().Warnf("Fill of %v order %v on %s pending: %s", intent, placed.OrderId, s.Instrument.Symbol, err.Error())
		return
	}
	zap.S().Errorf("Error during %v %s: %s", intent, s.Instrument.Symbol, err.Error())
}

// superviseStop re-places a missing stop and books a stop the exchange has executed.
func (s *PositionControllerService) superviseStop(ctx context.Context) {
	position := s.position
	if !position.HasStopLoss() {
		s.placeStop(ctx)
		return
	}

	stop := s.ExecutionGateway.QueryOrder(ctx, s.Instrument, position.StopLoss.OrderId)
	switch stop.Status {
	case orderStatus.FILLED:
		s.applyStopFill(stop)
	case orderStatus.CANCELED, orderStatus.NOT_FOUND:
		zap.S().Warnf("Stop %v of %s is %v, it will be placed again", position.StopLoss.OrderId, s.Instrument.Symbol, stop.Status)
		s.LedgerService.UnlinkStop(position)
		s.placeStop(ctx)
	}
}

func (s *PositionControllerService) applyStopFill(stop *order.Result) {
	position := s.position

	qty := stop.FilledQty
	if !qty.IsPositive() || qty.GreaterThan(position.CurrentQuantity) {
		qty = position.CurrentQuantity
	}
	price := stop.AvgPrice
	if !price.IsPositive() {
		price = stop.StopPrice
	}
	side := stop.Side
	if side == "" {
		side = position.CloseSide()
	}

	zap.S().Infof("Stop of %s executed: %s", s.Instrument.Symbol, stop.String())
	s.LedgerService.UnlinkStop(position)

	result, err := s.LedgerService.ApplyFill(position, side, qty, price)
	if err != nil {
		zap.S().Errorf("Error during ApplyFill of stop %v: %s", stop.OrderId, err.Error())
		return
	}
	if result.Closed {
		s.finalize()
	}
}

func (s *PositionControllerService) stopRequest(position *domains.Position) gateway.StopRequest {
	if s.config.StopKind == orderStatus.TRAILING_STOP_MARKET {
		return gateway.StopRequest{
			Side:         position.CloseSide(),
			Kind:         orderStatus.TRAILING_STOP_MARKET,
			CallbackRate: s.config.StopLossPercent.Mul(hundred),
			Quantity:     position.CurrentQuantity,
		}
	}
	return s.stopMarketRequest(position, s.LedgerService.StopPriceFor(position, s.config.StopLossPercent))
}

func (s *PositionControllerService) stopMarketRequest(position *domains.Position, price decimal.Decimal) gateway.StopRequest {
	return gateway.StopRequest{
		Side:      position.CloseSide(),
		Kind:      orderStatus.STOP_MARKET,
		StopPrice: price,
	}
}

// placeStop leaves the stop unset on failure, the next cycle places it again.
func (s *PositionControllerService) placeStop(ctx context.Context) {
	request := s.stopRequest(s.position)
	placed, err := s.ExecutionGateway.SubmitStop(ctx, s.Instrument, request)
	if err != nil {
		zap.S().Errorf("Error during placing stop for %s: %s", s.Instrument.Symbol, err.Error())
		return
	}
	s.LedgerService.LinkStop(s.position, &domains.StopLoss{OrderId: placed.OrderId, Price: request.StopPrice, Kind: request.Kind})
}

// replaceStop moves the linked stop to request. An old stop found executed is booked as a fill.
func (s *PositionControllerService) replaceStop(ctx context.Context, request gateway.StopRequest) {
	position := s.position
	if !position.HasStopLoss() {
		s.placeStop(ctx)
		return
	}

	placed, err := s.ExecutionGateway.ReplaceStop(ctx, s.Instrument, position.StopLoss.OrderId, request)
	switch {
	case errors.Is(err, gateway.ErrStopAlreadyFilled):
		s.applyStopFill(placed)
	case errors.Is(err, gateway.ErrStopLost):
		zap.S().Errorf("Stop of %s lost: %s", s.Instrument.Symbol, err.Error())
		s.LedgerService.UnlinkStop(position)
		s.Notifier.StopLost(position, err.Error())
	case err != nil:
		zap.S().Warnf("Stop of %s kept: %s", s.Instrument.Symbol, err.Error())
	default:
		s.LedgerService.LinkStop(position, &domains.StopLoss{OrderId: placed.OrderId, Price: request.StopPrice, Kind: request.Kind})
	}
}

func (s *PositionControllerService) open(ctx context.Context, side futureType.FuturesType) {
	if !s.OpeningSwitch.IsOpeningEnabled() {
		zap.S().Infof("Opening is disabled, %s %s skipped", futureType.GetString(side), s.Instrument.Symbol)
		return
	}

	orderSide := futureType.OpenSide(side)
	qty, err := s.SizingService.QuantityByEquity(ctx, s.Instrument, orderSide, s.config.OrderPercent)
	if err != nil {
		zap.S().Warnf("No opening on %s: %s", s.Instrument.Symbol, err.Error())
		return
	}

	intent := decision.OPEN_LONG
	if side == futureType.SHORT {
		intent = decision.OPEN_SHORT
	}
	filled, err := s.ExecutionGateway.ExecuteMarket(ctx, intent, s.Instrument, orderSide, qty)
	if err != nil {
		s.executionFailed(intent, qty, filled, err)
		return
	}
	s.bookOpen(ctx, side, filled, qty)
}

func (s *PositionControllerService) bookOpen(ctx context.Context, side futureType.FuturesType, filled *order.Result, requested decimal.Decimal) {
	position, err := s.LedgerService.Open(s.Instrument, side, fillQty(filled, requested), filled.AvgPrice, nil, s.config.StopLossPercent)
	if err != nil {
		zap.S().Errorf("Error during Open %s: %s", s.Instrument.Symbol, err.Error())
		return
	}
	s.position = position
	metrics.OpenPositions.Inc()

	s.placeStop(ctx)
	s.Notifier.PositionOpened(position)
}

func (s *PositionControllerService) addon(ctx context.Context) {
	position := s.position
	orderSide := position.OpenSide()

	price, err := s.SizingService.BookPrice(ctx, s.Instrument, orderSide)
	if err != nil {
		zap.S().Warnf("No addon on %s: %s", s.Instrument.Symbol, err.Error())
		return
	}
	if !s.LedgerService.AddonAllowed(position, price) {
		zap.S().Debugf("Addon on %s not allowed at %v, average %v", s.Instrument.Symbol, price, position.AveragePrice)
		return
	}

	qty, err := s.SizingService.QuantityByEquity(ctx, s.Instrument, orderSide, s.config.OrderPercent)
	if err != nil {
		zap.S().Warnf("No addon on %s: %s", s.Instrument.Symbol, err.Error())
		return
	}

	filled, err := s.ExecutionGateway.ExecuteMarket(ctx, decision.ADD, s.Instrument, orderSide, qty)
	if err != nil {
		s.executionFailed(decision.ADD, qty, filled, err)
		return
	}
	s.bookAddon(ctx, filled, qty)
}

func (s *PositionControllerService) bookAddon(ctx context.Context, filled *order.Result, requested decimal.Decimal) {
	position := s.position
	if err := s.LedgerService.Addon(position, fillQty(filled, requested), filled.AvgPrice); err != nil {
		zap.S().Errorf("Error during Addon %s: %s", s.Instrument.Symbol, err.Error())
		return
	}

	request := s.stopRequest(position)
	if stop := position.StopLoss; stop != nil && stop.Kind == orderStatus.STOP_MARKET && request.Kind == orderStatus.STOP_MARKET &&
		isTighter(position.Side, stop.Price, request.StopPrice) {
		zap.S().Infof("Stop of %s kept at %v, tighter than %v from the new average", s.Instrument.Symbol, stop.Price, request.StopPrice)
		return
	}
	s.replaceStop(ctx, request)
}

// isTighter is true when stop sits closer to the market than other for a position of side.
func isTighter(side futureType.FuturesType, stop, other decimal.Decimal) bool {
	if side == futureType.LONG {
		return stop.GreaterThan(other)
	}
	return stop.LessThan(other)
}

func (s *PositionControllerService) reduce(ctx context.Context, intent decision.Intent, qty decimal.Decimal) {
	filled, err := s.ExecutionGateway.ExecuteReduce(ctx, intent, s.Instrument, s.position.CloseSide(), qty)
	if err != nil {
		s.executionFailed(intent, qty, filled, err)
		return
	}
	s.bookReduce(ctx, filled, qty)
}

func (s *PositionControllerService) bookReduce(ctx context.Context, filled *order.Result, requested decimal.Decimal) {
	position := s.position

	result, err := s.LedgerService.Fix(position, fillQty(filled, requested), filled.AvgPrice)
	if err != nil {
		zap.S().Errorf("Error during Fix %s: %s", s.Instrument.Symbol, err.Error())
		return
	}

	if result.Closed {
		if position.HasStopLoss() {
			if err := s.ExecutionGateway.CancelOrder(ctx, s.Instrument, position.StopLoss.OrderId); err != nil {
				zap.S().Warnf("Stop %v of closed %s was not canceled: %s", position.StopLoss.OrderId, s.Instrument.Symbol, err.Error())
			}
		}
		s.finalize()
		return
	}

	switch {
	case result.NewStopPrice != nil:
		s.replaceStop(ctx, s.stopMarketRequest(position, *result.NewStopPrice))
	case s.config.StopKind == orderStatus.TRAILING_STOP_MARKET:
		s.replaceStop(ctx, s.stopRequest(position))
	}
}

// finalize reports the closed position and forgets it.
func (s *PositionControllerService) finalize() {
	position := s.position
	statistic := s.LedgerService.Statistics(position)

	if err := s.StatisticRepo.SavePositionStatistic(statistic); err != nil {
		zap.S().Errorf("Error during SavePositionStatistic %s: %s", statistic.String(), err.Error())
	}

	outcome := "win"
	if !statistic.Result.IsPositive() {
		outcome = "loss"
	}
	metrics.RealizedResult.WithLabelValues(futureType.GetString(position.Side), outcome).Inc()
	metrics.OpenPositions.Dec()

	zap.S().Infof("Closed %s", statistic.String())
	s.Notifier.PositionClosed(statistic)
	s.position = nil
}

func fillQty(filled *order.Result, requested decimal.Decimal) decimal.Decimal {
	if filled.FilledQty.IsPositive() {
		return filled.FilledQty
	}
	return requested
}

func (s *PositionControllerService) String() string {
	return fmt.Sprintf("PositionController {symbol: %v}", s.Instrument.Symbol)
}
