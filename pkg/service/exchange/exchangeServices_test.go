package exchange

import (
	"context"
	"testing"
	"time"

	"slingshotBot/pkg/api"
	"slingshotBot/pkg/api/mock"
	"slingshotBot/pkg/data/domains"
	"slingshotBot/pkg/data/dto/order"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func info(symbol, quote, status string) api.InstrumentInfo {
	return api.InstrumentInfo{
		Instrument: domains.Instrument{Symbol: symbol, PriceStep: d("0.01"), LotStep: d("0.001"), MinQty: d("0.001")},
		QuoteAsset: quote,
		Status:     status,
	}
}

func TestLoadInstruments_filtersUniverse(t *testing.T) {
	exchange := mock.NewExchangeApiMock()
	exchange.Instruments = []api.InstrumentInfo{
		info("ETHUSDT", "USDT", "TRADING"),
		info("BTCUSDT", "USDT", "TRADING"),
		info("BTCBUSD", "BUSD", "TRADING"),
		info("LUNAUSDT", "USDT", "SETTLING"),
	}
	service := NewInstrumentService(exchange, "USDT", nil)

	instruments, err := service.LoadInstruments(context.Background())

	require.NoError(t, err)
	require.Len(t, instruments, 2)
	assert.Equal(t, "BTCUSDT", instruments[0].Symbol)
	assert.Equal(t, "ETHUSDT", instruments[1].Symbol)
	assert.True(t, d("0.001").Equal(instruments[0].LotStep))
}

func TestLoadInstruments_whitelist(t *testing.T) {
	exchange := mock.NewExchangeApiMock()
	exchange.Instruments = []api.InstrumentInfo{
		info("ETHUSDT", "USDT", "TRADING"),
		info("BTCUSDT", "USDT", "TRADING"),
	}
	service := NewInstrumentService(exchange, "USDT", []string{" ethusdt "})

	instruments, err := service.LoadInstruments(context.Background())

	require.NoError(t, err)
	require.Len(t, instruments, 1)
	assert.Equal(t, "ETHUSDT", instruments[0].Symbol)
}

func TestLoadInstruments_retriesUntilAnswer(t *testing.T) {
	exchange := mock.NewExchangeApiMock()
	exchange.Instruments = []api.InstrumentInfo{info("ETHUSDT", "USDT", "TRADING")}
	exchange.FailNext(mock.GET_INSTRUMENTS, api.NewTransientError("timeout", nil), api.NewRejectedError(-1000, "unknown"))
	service := NewInstrumentService(exchange, "USDT", nil)
	service.retryPeriod = time.Millisecond

	instruments, err := service.LoadInstruments(context.Background())

	require.NoError(t, err)
	assert.Len(t, instruments, 1)
	assert.Equal(t, 3, exchange.CallCount(mock.GET_INSTRUMENTS))
}

func TestLoadInstruments_stopsOnContext(t *testing.T) {
	exchange := mock.NewExchangeApiMock()
	exchange.FailNext(mock.GET_INSTRUMENTS, api.NewTransientError("timeout", nil))
	service := NewInstrumentService(exchange, "USDT", nil)
	service.retryPeriod = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := service.LoadInstruments(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}

func candles(count int) []domains.Kline {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	klines := make([]domains.Kline, 0, count)
	for i := 0; i < count; i++ {
		price := decimal.NewFromInt(int64(100 + i))
		klines = append(klines, domains.Kline{
			OpenTime:  start.Add(time.Duration(i) * time.Hour),
			CloseTime: start.Add(time.Duration(i+1)*time.Hour - time.Millisecond),
			Open:      price,
			High:      price,
			Low:       price,
			Close:     price,
		})
	}
	return klines
}

func TestGetCandles_pagesBackwards(t *testing.T) {
	exchange := mock.NewExchangeApiMock()
	exchange.Klines["ETHUSDT"] = candles(25)
	service := NewMarketDataService(exchange)
	service.pageLimit = 10

	result, err := service.GetCandles(context.Background(), &domains.Instrument{Symbol: "ETHUSDT"}, "1h", 22)

	require.NoError(t, err)
	require.Len(t, result, 22)
	assert.True(t, d("103").Equal(result[0].Close))
	assert.True(t, d("124").Equal(result[21].Close))
	assert.Equal(t, 3, exchange.CallCount(mock.GET_KLINES))
	for i := 1; i < len(result); i++ {
		assert.True(t, result[i-1].OpenTime.Before(result[i].OpenTime))
	}
}

func TestGetCandles_shortHistory(t *testing.T) {
	exchange := mock.NewExchangeApiMock()
	exchange.Klines["ETHUSDT"] = candles(15)
	service := NewMarketDataService(exchange)
	service.pageLimit = 10

	result, err := service.GetCandles(context.Background(), &domains.Instrument{Symbol: "ETHUSDT"}, "1h", 30)

	require.NoError(t, err)
	assert.Len(t, result, 15)
}

func TestVolumeAndVolatility(t *testing.T) {
	exchange := mock.NewExchangeApiMock()
	exchange.Tickers["ETHUSDT"] = &order.Ticker24h{QuoteVolume: d("95000000"), PriceChangePercent: d("-3.2")}
	service := NewMarketDataService(exchange)
	instrument := &domains.Instrument{Symbol: "ETHUSDT"}

	volume, err := service.GetVolume(context.Background(), instrument)
	require.NoError(t, err)
	assert.True(t, d("95000000").Equal(volume))

	volatility, err := service.GetVolatility(context.Background(), instrument)
	require.NoError(t, err)
	assert.True(t, d("-3.2").Equal(volatility))

	_, err = service.GetVolume(context.Background(), &domains.Instrument{Symbol: "XRPUSDT"})
	assert.Error(t, err)
}
