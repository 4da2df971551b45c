package domains

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Instrument is a futures symbol with its exchange precision filters.
type Instrument struct {
	Symbol    string
	PriceStep decimal.Decimal
	LotStep   decimal.Decimal
	MinQty    decimal.Decimal
}

func (i *Instrument) String() string {
	return fmt.Sprintf("Instrument {symbol: %v, priceStep: %v, lotStep: %v, minQty: %v}", i.Symbol, i.PriceStep, i.LotStep, i.MinQty)
}
