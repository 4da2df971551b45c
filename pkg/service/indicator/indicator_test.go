package indicator

import (
	"testing"
	"time"

	"slingshotBot/pkg/data/domains"
	"slingshotBot/pkg/service/indicator/techanLib"

	"github.com/sdcoffey/big"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type sliceIndicator []float64

func (s sliceIndicator) Calculate(index int) big.Decimal {
	return big.NewDecimal(s[index])
}

func risingKlines(count int) []domains.Kline {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	klines := make([]domains.Kline, 0, count)
	for i := 1; i <= count; i++ {
		price := decimal.NewFromInt(int64(i))
		klines = append(klines, domains.Kline{
			OpenTime: start.Add(time.Duration(i) * time.Hour),
			Open:     price,
			High:     price,
			Low:      price,
			Close:    price,
			Volume:   decimal.NewFromInt(10),
		})
	}
	return klines
}

func TestStateOf(t *testing.T) {
	tests := []struct {
		name string
		k    float64
		d    float64
		want StochasticState
	}{
		{"cross down above overbought", 85, 90, STOCH_SELL},
		{"cross up below oversold", 15, 10, STOCH_BUY},
		{"k above d in the middle", 55, 50, STOCH_CLOSE_SHORT},
		{"k below d in the middle", 50, 55, STOCH_CLOSE_LONG},
		{"k above d above overbought", 90, 85, STOCH_CLOSE_SHORT},
		{"k below d below oversold", 10, 15, STOCH_CLOSE_LONG},
		{"equal", 50, 50, STOCH_NEUTRAL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StateOf(big.NewDecimal(tt.k), big.NewDecimal(tt.d)))
		})
	}
}

func TestStochasticIndicator(t *testing.T) {
	stoch := &stochasticIndicator{source: sliceIndicator{1, 2, 3, 2.5, 2, 2, 2}, window: 3}

	assert.True(t, stoch.Calculate(1).EQ(big.ZERO), "not enough values")
	assert.InDelta(t, 100, stoch.Calculate(2).Float(), 1e-9)
	assert.InDelta(t, 50, stoch.Calculate(3).Float(), 1e-9)
	assert.True(t, stoch.Calculate(6).EQ(big.ZERO), "flat window")
}

func TestStochasticRsiService_MinCandles(t *testing.T) {
	assert.Equal(t, 34, NewStochasticRsiService(14, 14, 3, 3).MinCandles())
}

func TestSlingshotTrendService_Calculate(t *testing.T) {
	service := NewSlingshotTrendService(38, 62)
	series := techanLib.ConvertKlinesToSeries(risingKlines(100), time.Hour)

	result := service.Calculate(series)

	assert.Equal(t, 64, service.MinCandles())
	assert.True(t, result.Trend.GT(big.ZERO))
	assert.InDelta(t, 99, result.PrevClose.Float(), 1e-9)
	assert.True(t, result.PrevSlowEma.LT(result.PrevClose))
	assert.Equal(t, 0, result.Signal(1), "no dip below the slow ema")
}

func TestSlingshotResult_Signal(t *testing.T) {
	tests := []struct {
		name      string
		trend     float64
		prevClose float64
		mainTrend int
		want      int
	}{
		{"up trend after a dip", 5, 99, 1, 1},
		{"up trend without a dip", 5, 101, 1, 0},
		{"up trend against main trend", 5, 99, -1, 0},
		{"down trend after a spike", -5, 101, -1, -1},
		{"down trend without a spike", -5, 99, -1, 0},
		{"down trend against main trend", -5, 101, 1, 0},
		{"flat", 0, 99, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SlingshotResult{
				Trend:       big.NewDecimal(tt.trend),
				PrevClose:   big.NewDecimal(tt.prevClose),
				PrevSlowEma: big.NewDecimal(100),
			}
			assert.Equal(t, tt.want, result.Signal(tt.mainTrend))
		})
	}
}
