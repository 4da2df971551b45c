package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"slingshotBot/pkg/api"
	"slingshotBot/pkg/constants/decision"
	"slingshotBot/pkg/constants/orderStatus"
	"slingshotBot/pkg/data/domains"
	"slingshotBot/pkg/data/dto/order"
	"slingshotBot/pkg/metrics"

	"github.com/cenkalti/backoff/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	// ErrUnavailable is returned when a transient failure outlived every attempt.
	ErrUnavailable = errors.New("exchange unavailable")
	// ErrRejected is returned when the exchange refused the request.
	ErrRejected = errors.New("order rejected")
	// ErrOrderNotFound terminates a fill wait: the exchange does not know the order.
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderCanceled terminates a fill wait: the order will never fill.
	ErrOrderCanceled = errors.New("order canceled")
	// ErrFillPending comes with the placed order when the fill wait was cut short; the order may still fill.
	ErrFillPending = errors.New("order fill pending")

	ErrInvalidRequest = errors.New("invalid order request")

	// ErrStopAlreadyFilled means the stop being replaced has executed; the position is closed on the exchange.
	ErrStopAlreadyFilled = errors.New("stop order already filled")
	// ErrStopNotReplaced means the old stop could not be confirmed canceled and is still linked.
	ErrStopNotReplaced = errors.New("stop order not replaced")
	// ErrStopLost means the old stop was canceled but the new one could not be placed.
	ErrStopLost = errors.New("stop order canceled without replacement")
)

type Config struct {
	// Attempts bounds every submit and cancel.
	Attempts uint
	// RetryInterval is the pause between attempts, 0 retries immediately.
	RetryInterval time.Duration

	PollInitialInterval time.Duration
	PollMaxInterval     time.Duration
	// FillTimeout bounds AwaitFill, 0 waits until the context is done.
	FillTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		Attempts:            10,
		RetryInterval:       200 * time.Millisecond,
		PollInitialInterval: 250 * time.Millisecond,
		PollMaxInterval:     5 * time.Second,
		FillTimeout:         0,
	}
}

// StopRequest describes a protective order. STOP_MARKET uses StopPrice and closes the whole position,
// TRAILING_STOP_MARKET uses CallbackRate (percents) with a reduce-only Quantity.
type StopRequest struct {
	Side         string
	Kind         orderStatus.OrderType
	StopPrice    decimal.Decimal
	CallbackRate decimal.Decimal
	Quantity     decimal.Decimal
}

func (r StopRequest) String() string {
	return fmt.Sprintf("StopRequest {side: %v, kind: %v, stopPrice: %v, callbackRate: %v, qty: %v}",
		r.Side, r.Kind, r.StopPrice, r.CallbackRate, r.Quantity)
}

func NewExecutionGateway(exchangeApi api.ExchangeApi, config Config) *ExecutionGateway {
	if config.Attempts == 0 {
		config.Attempts = 1
	}
	return &ExecutionGateway{exchangeApi: exchangeApi, config: config}
}

// ExecutionGateway turns trade intents into exchange orders with bounded retries and normalized results.
type ExecutionGateway struct {
	exchangeApi api.ExchangeApi
	config      Config
}

func (g *ExecutionGateway) SubmitMarket(ctx context.Context, intent decision.Intent, instrument *domains.Instrument,
	side string, qty decimal.Decimal) (*order.Result, error) {
	return g.submitMarket(ctx, intent, instrument, side, qty, false)
}

// SubmitReduce is a reduce-only market order, it never grows or flips the position.
func (g *ExecutionGateway) SubmitReduce(ctx context.Context, intent decision.Intent, instrument *domains.Instrument,
	side string, qty decimal.Decimal) (*order.Result, error) {
	return g.submitMarket(ctx, intent, instrument, side, qty, true)
}

func (g *ExecutionGateway) submitMarket(ctx context.Context, intent decision.Intent, instrument *domains.Instrument,
	side string, qty decimal.Decimal, reduceOnly bool) (*order.Result, error) {
	if !qty.IsPositive() {
		return nil, fmt.Errorf("%w: market quantity %v", ErrInvalidRequest, qty)
	}
	return g.submit(ctx, intent, &order.Request{
		Symbol:     instrument.Symbol,
		Side:       side,
		Type:       orderStatus.MARKET,
		Quantity:   qty,
		ReduceOnly: reduceOnly,
	})
}

// SubmitLimit places a GTC limit order. The price is expected to be quantized by the caller.
func (g *ExecutionGateway) SubmitLimit(ctx context.Context, intent decision.Intent, instrument *domains.Instrument,
	side string, price, qty decimal.Decimal) (*order.Result, error) {
	if !qty.IsPositive() || !price.IsPositive() {
		return nil, fmt.Errorf("%w: limit %v@%v", ErrInvalidRequest, qty, price)
	}
	return g.submit(ctx, intent, &order.Request{
		Symbol:   instrument.Symbol,
		Side:     side,
		Type:     orderStatus.LIMIT,
		Quantity: qty,
		Price:    price,
	})
}

func (g *ExecutionGateway) SubmitStop(ctx context.Context, instrument *domains.Instrument, stop StopRequest) (*order.Result, error) {
	return g.submitStop(ctx, decision.SET_STOP, instrument, stop)
}

func (g *ExecutionGateway) submitStop(ctx context.Context, intent decision.Intent, instrument *domains.Instrument,
	stop StopRequest) (*order.Result, error) {
	request := &order.Request{
		Symbol: instrument.Symbol,
		Side:   stop.Side,
		Type:   stop.Kind,
	}

	switch stop.Kind {
	case orderStatus.STOP_MARKET:
		if !stop.StopPrice.IsPositive() {
			return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, stop.String())
		}
		request.StopPrice = stop.StopPrice
		request.ClosePosition = true
	case orderStatus.TRAILING_STOP_MARKET:
		if !stop.CallbackRate.IsPositive() || !stop.Quantity.IsPositive() {
			return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, stop.String())
		}
		request.CallbackRate = stop.CallbackRate
		request.Quantity = stop.Quantity
		request.ReduceOnly = true
	default:
		return nil, fmt.Errorf("%w: unsupported stop kind %v", ErrInvalidRequest, stop.Kind)
	}

	return g.submit(ctx, intent, request)
}

func (g *ExecutionGateway) submit(ctx context.Context, intent decision.Intent, request *order.Request) (*order.Result, error) {
	result, err := retry(ctx, g, "CreateOrder", func() (*order.Result, error) {
		return g.exchangeApi.CreateOrder(ctx, request)
	})
	if err != nil {
		metrics.OrdersTotal.WithLabelValues(string(intent), string(request.Type), outcome(err)).Inc()
		zap.S().Errorf("Error during CreateOrder %s: %s", request.String(), err.Error())
		return nil, err
	}

	metrics.OrdersTotal.WithLabelValues(string(intent), string(request.Type), "ok").Inc()
	zap.S().Infof("Order placed [%v] %s", intent, result.String())
	return result, nil
}

// CancelOrder is best-effort: a NOT_FOUND answer is reported as ErrOrderNotFound without retrying.
func (g *ExecutionGateway) CancelOrder(ctx context.Context, instrument *domains.Instrument, orderId int64) error {
	_, err := retry(ctx, g, "CancelOrder", func() (struct{}, error) {
		return struct{}{}, g.exchangeApi.CancelOrder(ctx, instrument.Symbol, orderId)
	})
	if err != nil {
		metrics.OrdersTotal.WithLabelValues(string(decision.CANCEL), "", outcome(err)).Inc()
		zap.S().Warnf("Cancel of order %v on %s failed: %s", orderId, instrument.Symbol, err.Error())
		return err
	}
	metrics.OrdersTotal.WithLabelValues(string(decision.CANCEL), "", "ok").Inc()
	return nil
}

// AwaitFill polls the order until it is FILLED. It stops with ErrOrderNotFound or ErrOrderCanceled
// when the order cannot fill anymore, and with the context error on cancellation or timeout.
// Any other failure is logged and polled again.
func (g *ExecutionGateway) AwaitFill(ctx context.Context, instrument *domains.Instrument, orderId int64) (*order.Result, error) {
	started := time.Now()
	defer func() {
		metrics.FillWaitSeconds.Observe(time.Since(started).Seconds())
	}()

	if g.config.FillTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.config.FillTimeout)
		defer cancel()
	}

	polling := g.newPollBackOff()
	for {
		result, err := g.exchangeApi.GetOrder(ctx, instrument.Symbol, orderId)
		switch {
		case err == nil && result.IsFilled():
			return result, nil
		case err == nil && result.Status == orderStatus.CANCELED:
			return result, fmt.Errorf("%w: %v", ErrOrderCanceled, orderId)
		case api.IsNotFound(err):
			zap.S().Warnf("Order %v on %s does not exist anymore", orderId, instrument.Symbol)
			return nil, fmt.Errorf("%w: %v", ErrOrderNotFound, orderId)
		case err != nil:
			zap.S().Debugf("Error during GetOrder %v: %s", orderId, err.Error())
		}

		timer := time.NewTimer(polling.NextBackOff())
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("waiting for fill of order %v: %w", orderId, ctx.Err())
		case <-timer.C:
		}
	}
}

// QueryOrder asks for the order once. It never fails: a missing order comes back
// as NOT_FOUND and any other failure as ERROR.
func (g *ExecutionGateway) QueryOrder(ctx context.Context, instrument *domains.Instrument, orderId int64) *order.Result {
	result, err := g.exchangeApi.GetOrder(ctx, instrument.Symbol, orderId)
	if err == nil {
		return result
	}

	status := orderStatus.ERROR
	if api.IsNotFound(err) {
		status = orderStatus.NOT_FOUND
	} else {
		zap.S().Errorf("Error during GetOrder %v: %s", orderId, err.Error())
	}
	return &order.Result{
		OrderId:   orderId,
		Symbol:    instrument.Symbol,
		Status:    status,
		FilledQty: decimal.Zero,
		AvgPrice:  decimal.Zero,
		StopPrice: decimal.Zero,
	}
}

// ReplaceStop cancels oldId and places stop instead. The new stop is only placed once the old one
// is confirmed gone, so a position never carries two stops.
// When the old stop turns out to be filled, its result is returned with ErrStopAlreadyFilled.
func (g *ExecutionGateway) ReplaceStop(ctx context.Context, instrument *domains.Instrument, oldId int64,
	stop StopRequest) (*order.Result, error) {
	if cancelErr := g.CancelOrder(ctx, instrument, oldId); cancelErr != nil {
		old := g.QueryOrder(ctx, instrument, oldId)
		switch old.Status {
		case orderStatus.FILLED:
			return old, ErrStopAlreadyFilled
		case orderStatus.CANCELED, orderStatus.NOT_FOUND:
			zap.S().Infof("Stop %v on %s is already gone (%v)", oldId, instrument.Symbol, old.Status)
		default:
			return nil, fmt.Errorf("%w: %v is %v: %s", ErrStopNotReplaced, oldId, old.Status, cancelErr.Error())
		}
	}

	result, err := g.submitStop(ctx, decision.REPLACE_STOP, instrument, stop)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStopLost, err)
	}
	return result, nil
}

// ExecuteMarket submits a market order and waits for its fill. An order canceled or expired after a
// partial fill is returned as that fill. When the wait is cut short the placed order is returned
// with ErrFillPending.
func (g *ExecutionGateway) ExecuteMarket(ctx context.Context, intent decision.Intent, instrument *domains.Instrument,
	side string, qty decimal.Decimal) (*order.Result, error) {
	placed, err := g.SubmitMarket(ctx, intent, instrument, side, qty)
	if err != nil {
		return nil, err
	}
	return g.awaitMarket(ctx, instrument, placed)
}

// ExecuteReduce is ExecuteMarket with a reduce-only order.
func (g *ExecutionGateway) ExecuteReduce(ctx context.Context, intent decision.Intent, instrument *domains.Instrument,
	side string, qty decimal.Decimal) (*order.Result, error) {
	placed, err := g.SubmitReduce(ctx, intent, instrument, side, qty)
	if err != nil {
		return nil, err
	}
	return g.awaitMarket(ctx, instrument, placed)
}

func (g *ExecutionGateway) awaitMarket(ctx context.Context, instrument *domains.Instrument, placed *order.Result) (*order.Result, error) {
	if placed.IsFilled() && placed.AvgPrice.IsPositive() {
		return placed, nil
	}

	filled, err := g.AwaitFill(ctx, instrument, placed.OrderId)
	switch {
	case err == nil:
		return filled, nil
	case errors.Is(err, ErrOrderCanceled) && IsPartialFill(filled):
		zap.S().Warnf("Order %v on %s canceled after a partial fill: %s", placed.OrderId, instrument.Symbol, filled.String())
		return filled, nil
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return placed, fmt.Errorf("%w: %w", ErrFillPending, err)
	}
	return nil, err
}

// IsPartialFill is true for a result that executed some quantity at a known price.
func IsPartialFill(result *order.Result) bool {
	return result != nil && result.FilledQty.IsPositive() && result.AvgPrice.IsPositive()
}

func (g *ExecutionGateway) newPollBackOff() *backoff.ExponentialBackOff {
	polling := backoff.NewExponentialBackOff()
	polling.InitialInterval = g.config.PollInitialInterval
	polling.MaxInterval = g.config.PollMaxInterval
	polling.Multiplier = 1.5
	polling.RandomizationFactor = 0.2
	polling.Reset()
	return polling
}

func (g *ExecutionGateway) retryBackOff() backoff.BackOff {
	if g.config.RetryInterval <= 0 {
		return &backoff.ZeroBackOff{}
	}
	return backoff.NewConstantBackOff(g.config.RetryInterval)
}

// retry runs operation up to Attempts times. Only transient exchange errors are retried.
func retry[T any](ctx context.Context, g *ExecutionGateway, operation string, op func() (T, error)) (T, error) {
	result, err := backoff.Retry(ctx, func() (T, error) {
		value, err := op()
		if err != nil && !api.IsRetryable(err) {
			return value, backoff.Permanent(err)
		}
		return value, err
	},
		backoff.WithBackOff(g.retryBackOff()),
		backoff.WithMaxTries(g.config.Attempts),
		backoff.WithNotify(func(err error, next time.Duration) {
			metrics.ExchangeRetries.WithLabelValues(operation).Inc()
			zap.S().Warnf("Retry %s in %v: %s", operation, next, err.Error())
		}),
	)
	if err == nil {
		return result, nil
	}

	switch {
	case api.IsNotFound(err):
		return result, fmt.Errorf("%w: %w", ErrOrderNotFound, err)
	case api.KindOf(err) == api.REJECTED:
		return result, fmt.Errorf("%w: %w", ErrRejected, err)
	default:
		return result, fmt.Errorf("%w: %s: %w", ErrUnavailable, operation, err)
	}
}

func outcome(err error) string {
	switch {
	case errors.Is(err, ErrRejected), errors.Is(err, ErrOrderNotFound):
		return "rejected"
	default:
		return "unavailable"
	}
}
