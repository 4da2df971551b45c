package postgres

import (
	"time"

	"slingshotBot/pkg/data/domains"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

func NewPositionStatistic(db *sqlx.DB) *PositionStatistic {
	return &PositionStatistic{db: db}
}

type PositionStatistic struct {
	db *sqlx.DB
}

func (r *PositionStatistic) SavePositionStatistic(statistic *domains.PositionStatistic) error {
	if statistic.Id == 0 {
		return r.db.QueryRowx(`INSERT INTO position_statistic (symbol, futures_type, opened_at, closed_at,
			max_quantity, current_quantity, total_addons, total_fixes, result)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`,
			statistic.Symbol, statistic.FuturesType, statistic.OpenedAt, statistic.ClosedAt,
			statistic.MaxQuantity, statistic.CurrentQuantity, statistic.TotalAddons, statistic.TotalFixes, statistic.Result,
		).Scan(&statistic.Id)
	}

	_, err := r.db.Exec(`UPDATE position_statistic SET closed_at = $2, max_quantity = $3, current_quantity = $4,
		total_addons = $5, total_fixes = $6, result = $7 WHERE id = $1`,
		statistic.Id, statistic.ClosedAt, statistic.MaxQuantity, statistic.CurrentQuantity,
		statistic.TotalAddons, statistic.TotalFixes, statistic.Result)
	return err
}

// FindClosedByDate returns positions closed during the UTC day of date.
func (r *PositionStatistic) FindClosedByDate(date time.Time) ([]domains.PositionStatistic, error) {
	from, to := dayBounds(date)

	var statistics []domains.PositionStatistic
	if err := r.db.Select(&statistics, `SELECT * FROM position_statistic
		WHERE closed_at >= $1 AND closed_at < $2 ORDER BY closed_at`, from, to); err != nil {
		return nil, err
	}
	return statistics, nil
}

func (r *PositionStatistic) SumResultByDate(date time.Time) (decimal.Decimal, error) {
	from, to := dayBounds(date)

	var sum decimal.NullDecimal
	if err := r.db.Get(&sum, `SELECT SUM(result) FROM position_statistic
		WHERE closed_at >= $1 AND closed_at < $2`, from, to); err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

func dayBounds(date time.Time) (time.Time, time.Time) {
	utc := date.UTC()
	from := time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 0, 1)
}
