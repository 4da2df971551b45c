package orders

import (
	"context"
	"errors"
	"fmt"

	"slingshotBot/pkg/api"
	"slingshotBot/pkg/constants/futureType"
	"slingshotBot/pkg/data/domains"
	"slingshotBot/pkg/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	// ErrSizingUnavailable means the account state could not be read; no order should be placed this cycle.
	ErrSizingUnavailable = errors.New("order sizing unavailable")
	// ErrSizingExhausted means the margin ratio leaves no room for a new order.
	ErrSizingExhausted = errors.New("order sizing exhausted by margin ratio")
)

var (
	tierFull    = decimal.RequireFromString("0.6")
	tierHalf    = decimal.RequireFromString("0.7")
	tierQuarter = decimal.RequireFromString("0.8")

	two  = decimal.NewFromInt(2)
	four = decimal.NewFromInt(4)
)

// SizeByEquity converts a balance percent (a fraction) into a quote amount,
// reduced in tiers as the maintenance margin ratio grows.
func SizeByEquity(balance, maintMargin, totalMargin, percent decimal.Decimal) (decimal.Decimal, error) {
	if !totalMargin.IsPositive() {
		return decimal.Zero, ErrSizingUnavailable
	}

	ratio := maintMargin.Div(totalMargin)
	quote := balance.Mul(percent)

	switch {
	case ratio.LessThan(tierFull):
	case ratio.LessThan(tierHalf):
		quote = quote.Div(two)
	case ratio.LessThan(tierQuarter):
		quote = quote.Div(four)
	default:
		quote = decimal.Zero
	}

	quote = quote.Round(2)
	if quote.IsNegative() {
		quote = decimal.Zero
	}
	return quote, nil
}

func NewSizingService(exchangeApi api.ExchangeApi, bookDepth int) *SizingService {
	return &SizingService{exchangeApi: exchangeApi, bookDepth: bookDepth}
}

type SizingService struct {
	exchangeApi api.ExchangeApi
	bookDepth   int
}

// QuoteByEquity reads the account snapshot and sizes the quote amount for percent of the balance.
func (s *SizingService) QuoteByEquity(ctx context.Context, percent decimal.Decimal) (decimal.Decimal, error) {
	snapshot, err := s.exchangeApi.GetAccountSnapshot(ctx)
	if err != nil {
		zap.S().Errorf("Error during GetAccountSnapshot: %s", err.Error())
		return decimal.Zero, fmt.Errorf("%w: %s", ErrSizingUnavailable, err.Error())
	}

	quote, err := SizeByEquity(snapshot.Balance, snapshot.MaintMargin, snapshot.TotalMargin, percent)
	if err != nil {
		return decimal.Zero, err
	}
	if quote.IsZero() {
		return decimal.Zero, ErrSizingExhausted
	}
	return quote, nil
}

// QuantityByEquity sizes an opening order in base units, priced at the side of the book the order will take.
func (s *SizingService) QuantityByEquity(ctx context.Context, instrument *domains.Instrument, side string,
	percent decimal.Decimal) (decimal.Decimal, error) {
	quote, err := s.QuoteByEquity(ctx, percent)
	if err != nil {
		return decimal.Zero, err
	}

	price, err := s.BookPrice(ctx, instrument, side)
	if err != nil {
		return decimal.Zero, err
	}

	quantity := util.QuantityForQuote(price, quote, instrument.LotStep, instrument.MinQty)
	if !quantity.IsPositive() {
		return decimal.Zero, ErrSizingUnavailable
	}
	return quantity, nil
}

// BookPrice is the best price an order on side would take: the ask for BUY, the bid for SELL.
func (s *SizingService) BookPrice(ctx context.Context, instrument *domains.Instrument, side string) (decimal.Decimal, error) {
	book, err := s.exchangeApi.GetOrderBook(ctx, instrument.Symbol, s.bookDepth)
	if err != nil {
		zap.S().Errorf("Error during GetOrderBook %s: %s", instrument.Symbol, err.Error())
		return decimal.Zero, fmt.Errorf("%w: %s", ErrSizingUnavailable, err.Error())
	}

	if side == futureType.BUY {
		return book.BestAsk, nil
	}
	return book.BestBid, nil
}
