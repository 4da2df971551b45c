package repository

import (
	"time"

	"slingshotBot/pkg/data/domains"
	"slingshotBot/pkg/repository/postgres"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type PositionStatistic interface {
	SavePositionStatistic(statistic *domains.PositionStatistic) error
	FindClosedByDate(date time.Time) ([]domains.PositionStatistic, error)
	SumResultByDate(date time.Time) (decimal.Decimal, error)
}

type Repository struct {
	PositionStatistic PositionStatistic
}

func NewRepositories(postgresDb *sqlx.DB) *Repository {
	return &Repository{
		PositionStatistic: postgres.NewPositionStatistic(postgresDb),
	}
}
