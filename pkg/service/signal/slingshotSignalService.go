package signal

import (
	"context"

	"slingshotBot/pkg/constants/decision"
	"slingshotBot/pkg/constants/futureType"
	"slingshotBot/pkg/data/domains"
	"slingshotBot/pkg/service/exchange"
	"slingshotBot/pkg/service/indicator"
	"slingshotBot/pkg/service/indicator/techanLib"

	"github.com/sdcoffey/big"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PositionView is the part of an open position the signal needs. A nil view means no position.
type PositionView struct {
	Side         futureType.FuturesType
	AveragePrice decimal.Decimal
	LastFixPrice *decimal.Decimal
	FixAllowed   bool
}

type Config struct {
	Interval    string
	CandleLimit int
	// MainTrend is +1 to trade longs only, -1 for shorts only.
	MainTrend int

	RequiredVolume     decimal.Decimal
	RequiredVolatility decimal.Decimal
	ExtraFixPercent    decimal.Decimal
}

func NewSlingshotSignalService(marketDataService *exchange.MarketDataService, stochasticRsiService *indicator.StochasticRsiService,
	slingshotTrendService *indicator.SlingshotTrendService, config Config) *SlingshotSignalService {
	if config.MainTrend >= 0 {
		config.MainTrend = 1
	} else {
		config.MainTrend = -1
	}
	return &SlingshotSignalService{
		MarketDataService:     marketDataService,
		StochasticRsiService:  stochasticRsiService,
		SlingshotTrendService: slingshotTrendService,
		config:                config,
	}
}

// SlingshotSignalService combines stochastic RSI with the slingshot trend into trading decisions.
type SlingshotSignalService struct {
	MarketDataService     *exchange.MarketDataService
	StochasticRsiService  *indicator.StochasticRsiService
	SlingshotTrendService *indicator.SlingshotTrendService
	config                Config
}

func (s *SlingshotSignalService) requiredCandles() int {
	required := s.SlingshotTrendService.MinCandles()
	if stoch := s.StochasticRsiService.MinCandles(); stoch > required {
		required = stoch
	}
	return required
}

func (s *SlingshotSignalService) Decide(ctx context.Context, instrument *domains.Instrument, view *PositionView) (decision.Decision, error) {
	limit := s.config.CandleLimit
	if limit < s.requiredCandles() {
		limit = s.requiredCandles()
	}

	candles, err := s.MarketDataService.GetCandles(ctx, instrument, s.config.Interval, limit)
	if err != nil {
		return decision.NONE, err
	}
	if len(candles) < s.requiredCandles() {
		zap.S().Debugf("Not enough candles for %s: %d", instrument.Symbol, len(candles))
		return decision.NONE, nil
	}

	series := techanLib.ConvertKlinesToSeries(candles, techanLib.ParseInterval(s.config.Interval))
	price := candles[len(candles)-1].Close
	stoch := s.StochasticRsiService.CalculateState(series)
	slingshot := s.SlingshotTrendService.Calculate(series)

	if view != nil {
		if closing := s.closeSignal(view, stoch, slingshot); closing != decision.NONE {
			return closing, nil
		}
		if s.fixSignal(view, stoch) || s.extraFixSignal(view, price) {
			return decision.FIX, nil
		}
	}

	return s.openSignal(ctx, instrument, stoch, slingshot)
}

func (s *SlingshotSignalService) openSignal(ctx context.Context, instrument *domains.Instrument, stoch indicator.StochasticState,
	slingshot indicator.SlingshotResult) (decision.Decision, error) {
	wanted, wantedStoch := decision.BUY, indicator.STOCH_BUY
	if s.config.MainTrend < 0 {
		wanted, wantedStoch = decision.SELL, indicator.STOCH_SELL
	}
	if stoch != wantedStoch || slingshot.Signal(s.config.MainTrend) != s.config.MainTrend {
		return decision.NONE, nil
	}

	volume, err := s.MarketDataService.GetVolume(ctx, instrument)
	if err != nil {
		return decision.NONE, err
	}
	if !volume.GreaterThan(s.config.RequiredVolume) {
		return decision.NONE, nil
	}

	volatility, err := s.MarketDataService.GetVolatility(ctx, instrument)
	if err != nil {
		return decision.NONE, err
	}
	if !volatility.Abs().GreaterThan(s.config.RequiredVolatility) {
		return decision.NONE, nil
	}

	return wanted, nil
}

func (s *SlingshotSignalService) closeSignal(view *PositionView, stoch indicator.StochasticState,
	slingshot indicator.SlingshotResult) decision.Decision {
	if view.Side == futureType.LONG && slingshot.Trend.LT(big.ZERO) && stoch == indicator.STOCH_CLOSE_LONG {
		return decision.CLOSE
	}
	if view.Side == futureType.SHORT && slingshot.Trend.GT(big.ZERO) && stoch == indicator.STOCH_CLOSE_SHORT {
		return decision.CLOSE
	}
	return decision.NONE
}

func (s *SlingshotSignalService) fixSignal(view *PositionView, stoch indicator.StochasticState) bool {
	if !view.FixAllowed {
		return false
	}
	if view.Side == futureType.LONG {
		return stoch == indicator.STOCH_SELL
	}
	return stoch == indicator.STOCH_BUY
}

// extraFixSignal fires on a strong move from the last fix (or the average price), ignoring the fix cooldown.
func (s *SlingshotSignalService) extraFixSignal(view *PositionView, price decimal.Decimal) bool {
	if !s.config.ExtraFixPercent.IsPositive() {
		return false
	}
	reference := view.AveragePrice
	if view.LastFixPrice != nil {
		reference = *view.LastFixPrice
	}

	one := decimal.NewFromInt(1)
	if view.Side == futureType.LONG {
		return price.GreaterThan(reference.Mul(one.Add(s.config.ExtraFixPercent)))
	}
	return price.LessThan(reference.Mul(one.Sub(s.config.ExtraFixPercent)))
}
