package indicator

import (
	"github.com/sdcoffey/big"
	"github.com/sdcoffey/techan"
)

type StochasticState string

const (
	STOCH_SELL        StochasticState = "SELL"
	STOCH_BUY         StochasticState = "BUY"
	STOCH_CLOSE_SHORT StochasticState = "CLOSE_SHORT"
	STOCH_CLOSE_LONG  StochasticState = "CLOSE_LONG"
	STOCH_NEUTRAL     StochasticState = "NEUTRAL"
)

var (
	overbought = big.NewDecimal(80)
	oversold   = big.NewDecimal(20)
	hundred    = big.NewDecimal(100)
)

func NewStochasticRsiService(rsiLength, stochLength, smoothK, smoothD int) *StochasticRsiService {
	return &StochasticRsiService{
		rsiLength:   rsiLength,
		stochLength: stochLength,
		smoothK:     smoothK,
		smoothD:     smoothD,
	}
}

// StochasticRsiService is the stochastic oscillator applied to RSI, K and D smoothed by simple averages.
type StochasticRsiService struct {
	rsiLength   int
	stochLength int
	smoothK     int
	smoothD     int
}

func (s *StochasticRsiService) MinCandles() int {
	return s.rsiLength + s.stochLength + s.smoothK + s.smoothD
}

// CalculateKD returns the last K and D values of the series.
func (s *StochasticRsiService) CalculateKD(series *techan.TimeSeries) (big.Decimal, big.Decimal) {
	rsi := techan.NewRelativeStrengthIndexIndicator(techan.NewClosePriceIndicator(series), s.rsiLength)
	stoch := &stochasticIndicator{source: rsi, window: s.stochLength}
	k := techan.NewSimpleMovingAverage(stoch, s.smoothK)
	d := techan.NewSimpleMovingAverage(k, s.smoothD)

	last := series.LastIndex()
	return k.Calculate(last), d.Calculate(last)
}

func (s *StochasticRsiService) CalculateState(series *techan.TimeSeries) StochasticState {
	k, d := s.CalculateKD(series)
	return StateOf(k, d)
}

// StateOf reads the K/D pair: crossings in the extreme zones open, any other crossing closes.
func StateOf(k, d big.Decimal) StochasticState {
	switch {
	case d.GT(k) && k.GT(overbought):
		return STOCH_SELL
	case d.LT(k) && k.LT(oversold):
		return STOCH_BUY
	case d.LT(k):
		return STOCH_CLOSE_SHORT
	case d.GT(k):
		return STOCH_CLOSE_LONG
	default:
		return STOCH_NEUTRAL
	}
}

// stochasticIndicator places the source within its lowest-highest range over window, in percents.
type stochasticIndicator struct {
	source techan.Indicator
	window int
}

func (s *stochasticIndicator) Calculate(index int) big.Decimal {
	if index < s.window-1 {
		return big.ZERO
	}

	current := s.source.Calculate(index)
	lowest, highest := current, current
	for i := index - s.window + 1; i <= index; i++ {
		value := s.source.Calculate(i)
		if value.LT(lowest) {
			lowest = value
		}
		if value.GT(highest) {
			highest = value
		}
	}

	width := highest.Sub(lowest)
	if width.EQ(big.ZERO) {
		return big.ZERO
	}
	return current.Sub(lowest).Div(width).Mul(hundred)
}
