package order

import "github.com/shopspring/decimal"

type AccountSnapshot struct {
	Balance     decimal.Decimal
	MaintMargin decimal.Decimal
	TotalMargin decimal.Decimal
}

type OrderBookTop struct {
	BestBid decimal.Decimal
	BestAsk decimal.Decimal
}

type Ticker24h struct {
	QuoteVolume        decimal.Decimal
	PriceChangePercent decimal.Decimal
}
