package techanLib

import (
	"strconv"
	"strings"
	"time"

	"slingshotBot/pkg/data/domains"

	"github.com/sdcoffey/big"
	"github.com/sdcoffey/techan"
	"github.com/shopspring/decimal"
)

// ConvertKlinesToSeries builds a techan series from candles ordered oldest first.
func ConvertKlinesToSeries(klines []domains.Kline, candleDuration time.Duration) *techan.TimeSeries {
	series := techan.NewTimeSeries()

	for _, kline := range klines {
		period := techan.NewTimePeriod(kline.OpenTime, candleDuration)

		candle := techan.NewCandle(period)
		candle.OpenPrice = ToBig(kline.Open)
		candle.ClosePrice = ToBig(kline.Close)
		candle.MaxPrice = ToBig(kline.High)
		candle.MinPrice = ToBig(kline.Low)
		candle.Volume = ToBig(kline.Volume)
		candle.TradeCount = uint(kline.Trades)

		series.AddCandle(candle)
	}

	return series
}

func ToBig(value decimal.Decimal) big.Decimal {
	return big.NewDecimal(value.InexactFloat64())
}

// ParseInterval converts an exchange kline interval ("15m", "1h", "1d", "1w") to a duration.
func ParseInterval(interval string) time.Duration {
	if interval == "" {
		return time.Hour
	}
	unit := interval[len(interval)-1:]
	count, err := strconv.Atoi(strings.TrimSuffix(interval, unit))
	if err != nil || count <= 0 {
		return time.Hour
	}

	switch unit {
	case "m":
		return time.Duration(count) * time.Minute
	case "h":
		return time.Duration(count) * time.Hour
	case "d":
		return time.Duration(count) * 24 * time.Hour
	case "w":
		return time.Duration(count) * 7 * 24 * time.Hour
	default:
		return time.Hour
	}
}
