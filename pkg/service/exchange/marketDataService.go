package exchange

import (
	"context"

	"slingshotBot/pkg/api"
	"slingshotBot/pkg/constants"
	"slingshotBot/pkg/data/domains"
	"slingshotBot/pkg/util"

	"github.com/shopspring/decimal"
)

const minCandles = 10

func NewMarketDataService(exchangeApi api.ExchangeApi) *MarketDataService {
	return &MarketDataService{exchangeApi: exchangeApi, pageLimit: constants.BINANCE_MAX_KLINES_LIMIT}
}

type MarketDataService struct {
	exchangeApi api.ExchangeApi
	pageLimit   int
}

// GetCandles returns the latest limit candles, oldest first. Limits above one exchange page
// are fetched page by page going back in time.
func (s *MarketDataService) GetCandles(ctx context.Context, instrument *domains.Instrument, interval string, limit int) ([]domains.Kline, error) {
	if limit < minCandles {
		limit = minCandles
	}

	var candles []domains.Kline
	endTime := int64(0)
	for limit > 0 {
		page := limit
		if page > s.pageLimit {
			page = s.pageLimit
		}

		klines, err := s.exchangeApi.GetKlines(ctx, instrument.Symbol, interval, page, endTime)
		if err != nil {
			return nil, err
		}
		candles = append(klines, candles...)

		if len(klines) < page {
			break
		}
		limit -= page
		endTime = util.GetMillisByTime(klines[0].OpenTime) - 1
	}
	return candles, nil
}

// GetVolume is the 24h quote volume.
func (s *MarketDataService) GetVolume(ctx context.Context, instrument *domains.Instrument) (decimal.Decimal, error) {
	ticker, err := s.exchangeApi.Get24hTicker(ctx, instrument.Symbol)
	if err != nil {
		return decimal.Zero, err
	}
	return ticker.QuoteVolume, nil
}

// GetVolatility is the signed 24h price change in percents.
func (s *MarketDataService) GetVolatility(ctx context.Context, instrument *domains.Instrument) (decimal.Decimal, error) {
	ticker, err := s.exchangeApi.Get24hTicker(ctx, instrument.Symbol)
	if err != nil {
		return decimal.Zero, err
	}
	return ticker.PriceChangePercent, nil
}
