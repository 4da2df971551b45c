package indicator

import (
	"github.com/sdcoffey/big"
	"github.com/sdcoffey/techan"
)

func NewSlingshotTrendService(fastLength, slowLength int) *SlingshotTrendService {
	return &SlingshotTrendService{fastLength: fastLength, slowLength: slowLength}
}

// SlingshotTrendService measures the trend as the distance between a fast and a slow EMA of closes.
type SlingshotTrendService struct {
	fastLength int
	slowLength int
}

func (s *SlingshotTrendService) MinCandles() int {
	return s.slowLength + 2
}

type SlingshotResult struct {
	// Trend is fast EMA minus slow EMA on the last candle.
	Trend big.Decimal
	// PrevClose and PrevSlowEma are taken on the candle before the last one.
	PrevClose   big.Decimal
	PrevSlowEma big.Decimal
}

func (s *SlingshotTrendService) Calculate(series *techan.TimeSeries) SlingshotResult {
	closes := techan.NewClosePriceIndicator(series)
	fast := techan.NewEMAIndicator(closes, s.fastLength)
	slow := techan.NewEMAIndicator(closes, s.slowLength)

	last := series.LastIndex()
	return SlingshotResult{
		Trend:       fast.Calculate(last).Sub(slow.Calculate(last)),
		PrevClose:   closes.Calculate(last - 1),
		PrevSlowEma: slow.Calculate(last - 1),
	}
}

// Signal returns +1 (BUY) when the trend is up along mainTrend and the previous close dipped below the slow EMA,
// -1 (SELL) for the mirrored case and 0 otherwise.
func (r SlingshotResult) Signal(mainTrend int) int {
	sign := big.NewDecimal(float64(mainTrend))
	if !r.Trend.Mul(sign).GT(big.ZERO) {
		return 0
	}
	if r.Trend.GT(big.ZERO) && r.PrevClose.LT(r.PrevSlowEma) {
		return 1
	}
	if r.Trend.LT(big.ZERO) && r.PrevClose.GT(r.PrevSlowEma) {
		return -1
	}
	return 0
}
