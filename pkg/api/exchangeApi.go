package api

import (
	"context"
	"errors"
	"fmt"

	"slingshotBot/pkg/data/domains"
	"slingshotBot/pkg/data/dto/order"
)

// ExchangeApi is the futures exchange capability the bot is built on.
type ExchangeApi interface {
	GetAccountSnapshot(ctx context.Context) (*order.AccountSnapshot, error)
	GetOrderBook(ctx context.Context, symbol string, depth int) (*order.OrderBookTop, error)

	CreateOrder(ctx context.Context, request *order.Request) (*order.Result, error)
	CancelOrder(ctx context.Context, symbol string, orderId int64) error
	GetOrder(ctx context.Context, symbol string, orderId int64) (*order.Result, error)

	GetInstruments(ctx context.Context) ([]InstrumentInfo, error)
	GetKlines(ctx context.Context, symbol string, interval string, limit int, endTime int64) ([]domains.Kline, error)
	Get24hTicker(ctx context.Context, symbol string) (*order.Ticker24h, error)
}

// InstrumentInfo is an exchange symbol with the attributes used to filter the trading universe.
type InstrumentInfo struct {
	Instrument domains.Instrument
	QuoteAsset string
	Status     string
}

type ErrorKind int8

const (
	// TRANSIENT errors (rate limits, timeouts, 5xx) are worth retrying.
	TRANSIENT ErrorKind = iota
	// REJECTED errors will fail the same way on retry.
	REJECTED
	// NOT_FOUND means the exchange does not know the order.
	NOT_FOUND
)

func (k ErrorKind) String() string {
	switch k {
	case TRANSIENT:
		return "TRANSIENT"
	case REJECTED:
		return "REJECTED"
	case NOT_FOUND:
		return "NOT_FOUND"
	default:
		return "UNKNOWN"
	}
}

// ExchangeError classifies a failed exchange call.
type ExchangeError struct {
	Kind    ErrorKind
	Code    int64
	Message string
	Err     error
}

func (e *ExchangeError) Error() string {
	return fmt.Sprintf("exchange error [%v] code=%d: %s", e.Kind, e.Code, e.Message)
}

func (e *ExchangeError) Unwrap() error {
	return e.Err
}

func NewTransientError(message string, err error) *ExchangeError {
	return &ExchangeError{Kind: TRANSIENT, Message: message, Err: err}
}

func NewRejectedError(code int64, message string) *ExchangeError {
	return &ExchangeError{Kind: REJECTED, Code: code, Message: message}
}

func NewNotFoundError(code int64, message string) *ExchangeError {
	return &ExchangeError{Kind: NOT_FOUND, Code: code, Message: message}
}

// KindOf returns the kind of err. Unclassified errors are treated as transient.
func KindOf(err error) ErrorKind {
	var exchangeError *ExchangeError
	if errors.As(err, &exchangeError) {
		return exchangeError.Kind
	}
	return TRANSIENT
}

func IsNotFound(err error) bool {
	return err != nil && KindOf(err) == NOT_FOUND
}

func IsRetryable(err error) bool {
	return err != nil && KindOf(err) == TRANSIENT
}
