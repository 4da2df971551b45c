package domains

import (
	"database/sql"
	"fmt"
	"time"

	"slingshotBot/pkg/constants/futureType"

	"github.com/shopspring/decimal"
)

// PositionStatistic is the reporting snapshot of a position, stored once the position is closed.
type PositionStatistic struct {
	Id int64

	Symbol string

	FuturesType futureType.FuturesType `db:"futures_type"`

	OpenedAt time.Time    `db:"opened_at"`
	ClosedAt sql.NullTime `db:"closed_at"`

	MaxQuantity     decimal.Decimal `db:"max_quantity"`
	CurrentQuantity decimal.Decimal `db:"current_quantity"`

	TotalAddons int `db:"total_addons"`
	TotalFixes  int `db:"total_fixes"`

	Result decimal.Decimal
}

func (s *PositionStatistic) String() string {
	desc := fmt.Sprintf("PositionStatistic {symbol: %v, side: %v, opened: %v, maxQty: %v, currentQty: %v, addons: %v, fixes: %v, result: %v",
		s.Symbol, futureType.GetString(s.FuturesType), s.OpenedAt.Format("2006-01-02 15:04"), s.MaxQuantity, s.CurrentQuantity,
		s.TotalAddons, s.TotalFixes, s.Result.StringFixed(4))
	if s.ClosedAt.Valid {
		desc += fmt.Sprintf(", closed: %v", s.ClosedAt.Time.Format("2006-01-02 15:04"))
	}
	return desc + "}"
}
