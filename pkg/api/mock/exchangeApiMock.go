package mock

import (
	"context"
	"sync"

	"slingshotBot/pkg/api"
	"slingshotBot/pkg/constants"
	"slingshotBot/pkg/constants/futureType"
	"slingshotBot/pkg/constants/orderStatus"
	"slingshotBot/pkg/data/domains"
	"slingshotBot/pkg/data/dto/order"

	"github.com/shopspring/decimal"
)

const (
	GET_ACCOUNT_SNAPSHOT = "GetAccountSnapshot"
	GET_ORDER_BOOK       = "GetOrderBook"
	CREATE_ORDER         = "CreateOrder"
	CANCEL_ORDER         = "CancelOrder"
	GET_ORDER            = "GetOrder"
	GET_INSTRUMENTS      = "GetInstruments"
	GET_KLINES           = "GetKlines"
	GET_24H_TICKER       = "Get24hTicker"
)

func NewExchangeApiMock() *ExchangeApiMock {
	return &ExchangeApiMock{
		Books:     map[string]*order.OrderBookTop{},
		Tickers:   map[string]*order.Ticker24h{},
		Klines:    map[string][]domains.Kline{},
		Calls:     map[string]int{},
		orders:    map[int64]*order.Result{},
		scripted:  map[int64][]*order.Result{},
		failures:  map[string][]error{},
		nextId:    1,
		FillLimit: false,
	}
}

// ExchangeApiMock is an in-memory exchange. Market orders fill at the top of the book,
// limit and stop orders rest until filled or canceled by the test.
type ExchangeApiMock struct {
	mu sync.Mutex

	Account     *order.AccountSnapshot
	Books       map[string]*order.OrderBookTop
	Tickers     map[string]*order.Ticker24h
	Klines      map[string][]domains.Kline
	Instruments []api.InstrumentInfo

	// FillLimit fills limit orders immediately at their price.
	FillLimit bool
	// RestMarket leaves market orders NEW, tests script their outcome.
	RestMarket bool

	Created  []order.Request
	Canceled []int64
	Calls    map[string]int

	orders   map[int64]*order.Result
	scripted map[int64][]*order.Result
	failures map[string][]error
	nextId   int64
}

var _ api.ExchangeApi = (*ExchangeApiMock)(nil)

// FailNext makes the next len(errs) calls of method return the given errors.
func (m *ExchangeApiMock) FailNext(method string, errs ...error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[method] = append(m.failures[method], errs...)
}

// ScriptOrder queues results returned by GetOrder for id before the stored state is used.
func (m *ExchangeApiMock) ScriptOrder(id int64, results ...*order.Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripted[id] = append(m.scripted[id], results...)
}

func (m *ExchangeApiMock) SetBook(symbol string, bid, ask decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Books[symbol] = &order.OrderBookTop{BestBid: bid, BestAsk: ask}
}

// FillOrder marks a resting order as filled at price.
func (m *ExchangeApiMock) FillOrder(id int64, price decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.orders[id]; ok {
		o.Status = orderStatus.FILLED
		o.AvgPrice = price
	}
}

func (m *ExchangeApiMock) SetOrderStatus(id int64, status orderStatus.OrderStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.orders[id]; ok {
		o.Status = status
	}
}

// ForgetOrder drops the order so that the exchange answers NOT_FOUND for it.
func (m *ExchangeApiMock) ForgetOrder(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.orders, id)
}

func (m *ExchangeApiMock) Order(id int64) *order.Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.orders[id]; ok {
		copied := *o
		return &copied
	}
	return nil
}

// OpenOrders returns resting orders of the given type.
func (m *ExchangeApiMock) OpenOrders(orderType orderStatus.OrderType) []*order.Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*order.Result
	for _, o := range m.orders {
		if o.Type == orderType && o.Status == orderStatus.NEW {
			copied := *o
			result = append(result, &copied)
		}
	}
	return result
}

func (m *ExchangeApiMock) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls[method]
}

func (m *ExchangeApiMock) call(method string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls[method]++
	if queue := m.failures[method]; len(queue) > 0 {
		m.failures[method] = queue[1:]
		return queue[0]
	}
	return nil
}

func (m *ExchangeApiMock) GetAccountSnapshot(ctx context.Context) (*order.AccountSnapshot, error) {
	if err := m.call(GET_ACCOUNT_SNAPSHOT); err != nil {
		return nil, err
	}
	if m.Account == nil {
		return nil, api.NewTransientError("account is not configured", nil)
	}
	copied := *m.Account
	return &copied, nil
}

func (m *ExchangeApiMock) GetOrderBook(ctx context.Context, symbol string, depth int) (*order.OrderBookTop, error) {
	if err := m.call(GET_ORDER_BOOK); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	book, ok := m.Books[symbol]
	if !ok {
		return nil, api.NewTransientError("empty order book for "+symbol, nil)
	}
	copied := *book
	return &copied, nil
}

func (m *ExchangeApiMock) CreateOrder(ctx context.Context, request *order.Request) (*order.Result, error) {
	if err := m.call(CREATE_ORDER); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.Created = append(m.Created, *request)

	result := &order.Result{
		OrderId:   m.nextId,
		Symbol:    request.Symbol,
		Side:      request.Side,
		Type:      request.Type,
		Status:    orderStatus.NEW,
		FilledQty: decimal.Zero,
		AvgPrice:  decimal.Zero,
		StopPrice: request.StopPrice,
	}
	m.nextId++

	switch request.Type {
	case orderStatus.MARKET:
		book, ok := m.Books[request.Symbol]
		if !ok {
			return nil, api.NewRejectedError(-1100, "no market for "+request.Symbol)
		}
		if m.RestMarket {
			break
		}
		result.Status = orderStatus.FILLED
		result.FilledQty = request.Quantity
		if request.Side == futureType.BUY {
			result.AvgPrice = book.BestAsk
		} else {
			result.AvgPrice = book.BestBid
		}
	case orderStatus.LIMIT:
		if m.FillLimit {
			result.Status = orderStatus.FILLED
			result.FilledQty = request.Quantity
			result.AvgPrice = request.Price
		}
	default:
		result.FilledQty = request.Quantity
	}

	m.orders[result.OrderId] = result
	copied := *result
	return &copied, nil
}

func (m *ExchangeApiMock) CancelOrder(ctx context.Context, symbol string, orderId int64) error {
	if err := m.call(CANCEL_ORDER); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[orderId]
	if !ok {
		return api.NewNotFoundError(constants.BINANCE_UNKNOWN_ORDER, "Unknown order sent.")
	}
	if o.Status != orderStatus.NEW {
		return api.NewRejectedError(constants.BINANCE_UNKNOWN_ORDER, "Order is already "+string(o.Status))
	}
	o.Status = orderStatus.CANCELED
	m.Canceled = append(m.Canceled, orderId)
	return nil
}

func (m *ExchangeApiMock) GetOrder(ctx context.Context, symbol string, orderId int64) (*order.Result, error) {
	if err := m.call(GET_ORDER); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if queue := m.scripted[orderId]; len(queue) > 0 {
		m.scripted[orderId] = queue[1:]
		if queue[0] == nil {
			return nil, api.NewNotFoundError(constants.BINANCE_ORDER_NOT_EXIST, "Order does not exist.")
		}
		copied := *queue[0]
		return &copied, nil
	}

	o, ok := m.orders[orderId]
	if !ok {
		return nil, api.NewNotFoundError(constants.BINANCE_ORDER_NOT_EXIST, "Order does not exist.")
	}
	copied := *o
	return &copied, nil
}

func (m *ExchangeApiMock) GetInstruments(ctx context.Context) ([]api.InstrumentInfo, error) {
	if err := m.call(GET_INSTRUMENTS); err != nil {
		return nil, err
	}
	return m.Instruments, nil
}

// GetKlines returns up to limit candles of symbol closing before endTime (0 = latest).
func (m *ExchangeApiMock) GetKlines(ctx context.Context, symbol string, interval string, limit int, endTime int64) ([]domains.Kline, error) {
	if err := m.call(GET_KLINES); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	all := m.Klines[symbol]
	end := len(all)
	if endTime > 0 {
		end = 0
		for i, kline := range all {
			if kline.OpenTime.UnixMilli() <= endTime {
				end = i + 1
			}
		}
	}
	start := end - limit
	if start < 0 {
		start = 0
	}
	result := make([]domains.Kline, end-start)
	copy(result, all[start:end])
	return result, nil
}

func (m *ExchangeApiMock) Get24hTicker(ctx context.Context, symbol string) (*order.Ticker24h, error) {
	if err := m.call(GET_24H_TICKER); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	ticker, ok := m.Tickers[symbol]
	if !ok {
		return nil, api.NewRejectedError(-1121, "Invalid symbol.")
	}
	copied := *ticker
	return &copied, nil
}
