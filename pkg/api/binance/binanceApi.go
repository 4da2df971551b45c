package binance

import (
	"context"
	"errors"
	"strings"

	"slingshotBot/pkg/api"
	"slingshotBot/pkg/constants"
	"slingshotBot/pkg/constants/orderStatus"
	"slingshotBot/pkg/data/domains"
	"slingshotBot/pkg/data/dto/order"
	"slingshotBot/pkg/util"

	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
	"github.com/adshao/go-binance/v2/futures"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func NewBinanceFuturesApi(apiKey, secretKey string, useTestnet bool) api.ExchangeApi {
	if useTestnet {
		futures.UseTestnet = true
		zap.S().Warn("Binance futures TESTNET is used")
	}
	return &BinanceFuturesApi{client: binance.NewFuturesClient(apiKey, secretKey)}
}

// BinanceFuturesApi adapts the USDT-M futures client to api.ExchangeApi.
// https://binance-docs.github.io/apidocs/futures/en/
type BinanceFuturesApi struct {
	client *futures.Client
}

func (a *BinanceFuturesApi) GetAccountSnapshot(ctx context.Context) (*order.AccountSnapshot, error) {
	account, err := a.client.NewGetAccountService().Do(ctx)
	if err != nil {
		return nil, classify(err)
	}

	balance, err := util.ParseDecimal(account.TotalWalletBalance)
	if err != nil {
		return nil, err
	}
	maintMargin, err := util.ParseDecimal(account.TotalMaintMargin)
	if err != nil {
		return nil, err
	}
	totalMargin, err := util.ParseDecimal(account.TotalMarginBalance)
	if err != nil {
		return nil, err
	}

	return &order.AccountSnapshot{
		Balance:     balance,
		MaintMargin: maintMargin,
		TotalMargin: totalMargin,
	}, nil
}

func (a *BinanceFuturesApi) GetOrderBook(ctx context.Context, symbol string, depth int) (*order.OrderBookTop, error) {
	book, err := a.client.NewDepthService().Symbol(symbol).Limit(depth).Do(ctx)
	if err != nil {
		return nil, classify(err)
	}
	if len(book.Bids) == 0 || len(book.Asks) == 0 {
		return nil, api.NewTransientError("empty order book for "+symbol, nil)
	}

	bestBid, err := util.ParseDecimal(book.Bids[0].Price)
	if err != nil {
		return nil, err
	}
	bestAsk, err := util.ParseDecimal(book.Asks[0].Price)
	if err != nil {
		return nil, err
	}
	return &order.OrderBookTop{BestBid: bestBid, BestAsk: bestAsk}, nil
}

func (a *BinanceFuturesApi) CreateOrder(ctx context.Context, request *order.Request) (*order.Result, error) {
	service := a.client.NewCreateOrderService().
		Symbol(request.Symbol).
		Side(futures.SideType(request.Side)).
		Type(futures.OrderType(request.Type)).
		NewOrderResponseType(futures.NewOrderRespTypeRESULT)

	if request.Type == orderStatus.LIMIT {
		service = service.TimeInForce(futures.TimeInForceTypeGTC).Price(request.Price.String())
	}
	if !request.Quantity.IsZero() && !request.ClosePosition {
		service = service.Quantity(request.Quantity.String())
	}
	if !request.StopPrice.IsZero() {
		service = service.StopPrice(request.StopPrice.String())
	}
	if !request.CallbackRate.IsZero() {
		service = service.CallbackRate(request.CallbackRate.String())
	}
	if request.ClosePosition {
		service = service.ClosePosition(true)
	} else if request.ReduceOnly {
		service = service.ReduceOnly(true)
	}

	zap.S().Debugf("CreateOrder %s", request.String())

	response, err := service.Do(ctx)
	if err != nil {
		return nil, classify(err)
	}

	return &order.Result{
		OrderId:   response.OrderID,
		Symbol:    response.Symbol,
		Side:      string(response.Side),
		Type:      orderStatus.OrderType(response.Type),
		Status:    convertStatus(response.Status),
		FilledQty: parseOrZero(response.ExecutedQuantity),
		AvgPrice:  parseOrZero(response.AvgPrice),
		StopPrice: parseOrZero(response.StopPrice),
	}, nil
}

func (a *BinanceFuturesApi) CancelOrder(ctx context.Context, symbol string, orderId int64) error {
	_, err := a.client.NewCancelOrderService().Symbol(symbol).OrderID(orderId).Do(ctx)
	if err != nil {
		return classify(err)
	}
	return nil
}

func (a *BinanceFuturesApi) GetOrder(ctx context.Context, symbol string, orderId int64) (*order.Result, error) {
	o, err := a.client.NewGetOrderService().Symbol(symbol).OrderID(orderId).Do(ctx)
	if err != nil {
		return nil, classify(err)
	}

	return &order.Result{
		OrderId:   o.OrderID,
		Symbol:    o.Symbol,
		Side:      string(o.Side),
		Type:      orderStatus.OrderType(o.OrigType),
		Status:    convertStatus(o.Status),
		FilledQty: parseOrZero(o.ExecutedQuantity),
		AvgPrice:  parseOrZero(o.AvgPrice),
		StopPrice: parseOrZero(o.StopPrice),
	}, nil
}

func (a *BinanceFuturesApi) GetInstruments(ctx context.Context) ([]api.InstrumentInfo, error) {
	exchangeInfo, err := a.client.NewExchangeInfoService().Do(ctx)
	if err != nil {
		return nil, classify(err)
	}

	instruments := make([]api.InstrumentInfo, 0, len(exchangeInfo.Symbols))
	for _, symbol := range exchangeInfo.Symbols {
		priceFilter := symbol.PriceFilter()
		lotSizeFilter := symbol.LotSizeFilter()
		if priceFilter == nil || lotSizeFilter == nil {
			continue
		}

		instruments = append(instruments, api.InstrumentInfo{
			Instrument: domains.Instrument{
				Symbol:    symbol.Symbol,
				PriceStep: parseOrZero(priceFilter.TickSize),
				LotStep:   parseOrZero(lotSizeFilter.StepSize),
				MinQty:    parseOrZero(lotSizeFilter.MinQuantity),
			},
			QuoteAsset: symbol.QuoteAsset,
			Status:     symbol.Status,
		})
	}
	return instruments, nil
}

func (a *BinanceFuturesApi) GetKlines(ctx context.Context, symbol string, interval string, limit int, endTime int64) ([]domains.Kline, error) {
	service := a.client.NewKlinesService().Symbol(symbol).Interval(interval).Limit(limit)
	if endTime > 0 {
		service = service.EndTime(endTime)
	}

	klines, err := service.Do(ctx)
	if err != nil {
		return nil, classify(err)
	}

	result := make([]domains.Kline, 0, len(klines))
	for _, kline := range klines {
		result = append(result, domains.Kline{
			OpenTime:    util.GetTimeByMillis(kline.OpenTime),
			CloseTime:   util.GetTimeByMillis(kline.CloseTime),
			Open:        parseOrZero(kline.Open),
			High:        parseOrZero(kline.High),
			Low:         parseOrZero(kline.Low),
			Close:       parseOrZero(kline.Close),
			Volume:      parseOrZero(kline.Volume),
			QuoteVolume: parseOrZero(kline.QuoteAssetVolume),
			Trades:      kline.TradeNum,
		})
	}
	return result, nil
}

func (a *BinanceFuturesApi) Get24hTicker(ctx context.Context, symbol string) (*order.Ticker24h, error) {
	stats, err := a.client.NewListPriceChangeStatsService().Symbol(symbol).Do(ctx)
	if err != nil {
		return nil, classify(err)
	}
	if len(stats) == 0 {
		return nil, api.NewRejectedError(0, "no ticker for "+symbol)
	}

	return &order.Ticker24h{
		QuoteVolume:        parseOrZero(stats[0].QuoteVolume),
		PriceChangePercent: parseOrZero(stats[0].PriceChangePercent),
	}, nil
}

func convertStatus(status futures.OrderStatusType) orderStatus.OrderStatus {
	switch status {
	case futures.OrderStatusTypeFilled:
		return orderStatus.FILLED
	case futures.OrderStatusTypeCanceled, futures.OrderStatusTypeExpired, futures.OrderStatusTypeRejected:
		return orderStatus.CANCELED
	default:
		return orderStatus.NEW
	}
}

var transientCodes = map[int64]bool{
	-1000: true, // UNKNOWN
	-1001: true, // DISCONNECTED
	-1003: true, // TOO_MANY_REQUESTS
	-1006: true, // UNEXPECTED_RESP
	-1007: true, // TIMEOUT
	-1008: true, // SERVER_BUSY
	-1021: true, // INVALID_TIMESTAMP
}

func classify(err error) error {
	var apiError *common.APIError
	if !errors.As(err, &apiError) {
		return api.NewTransientError(err.Error(), err)
	}

	switch {
	case apiError.Code == constants.BINANCE_ORDER_NOT_EXIST || apiError.Code == constants.BINANCE_UNKNOWN_ORDER:
		return api.NewNotFoundError(apiError.Code, apiError.Message)
	case transientCodes[apiError.Code]:
		return &api.ExchangeError{Kind: api.TRANSIENT, Code: apiError.Code, Message: apiError.Message, Err: err}
	case strings.Contains(strings.ToLower(apiError.Message), "timeout"):
		return &api.ExchangeError{Kind: api.TRANSIENT, Code: apiError.Code, Message: apiError.Message, Err: err}
	default:
		return &api.ExchangeError{Kind: api.REJECTED, Code: apiError.Code, Message: apiError.Message, Err: err}
	}
}

func parseOrZero(value string) decimal.Decimal {
	parsed, err := util.ParseDecimal(value)
	if err != nil {
		zap.S().Errorf("Error during parsing exchange number %q: %s", value, err.Error())
		return decimal.Zero
	}
	return parsed
}
