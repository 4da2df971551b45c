package statistic

import (
	"database/sql"
	"testing"
	"time"

	"slingshotBot/pkg/constants/futureType"
	"slingshotBot/pkg/data/domains"
	"slingshotBot/pkg/repository/mock"
	"slingshotBot/pkg/service/date"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func closedAt(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: true}
}

func TestBuildStatistics(t *testing.T) {
	repo := mock.NewPositionStatisticMock()
	for _, statistic := range []domains.PositionStatistic{
		{Symbol: "ETHUSDT", FuturesType: futureType.LONG, ClosedAt: closedAt(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)),
			TotalAddons: 2, TotalFixes: 2, Result: decimal.RequireFromString("9.8296")},
		{Symbol: "BTCUSDT", FuturesType: futureType.SHORT, ClosedAt: closedAt(time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC)),
			TotalFixes: 1, Result: decimal.RequireFromString("-3.5")},
		{Symbol: "XRPUSDT", FuturesType: futureType.LONG, ClosedAt: closedAt(time.Date(2024, 3, 2, 1, 0, 0, 0, time.UTC)),
			Result: decimal.RequireFromString("100")},
	} {
		statistic := statistic
		require.NoError(t, repo.SavePositionStatistic(&statistic))
	}
	service := NewStatisticService(repo, date.GetClockMock(time.Date(2024, 3, 2, 6, 0, 0, 0, time.UTC)))

	message := service.BuildStatistics()

	assert.Equal(t, "2024-03-01 closed 2 positions, result $6.33\n"+
		"<pre>\n"+
		"|   Symbol   | Side  | Addons | Fixes |   Result   |\n"+
		"|------------|-------|--------|-------|------------|\n"+
		"|    ETHUSDT |  LONG |      2 |     2 |       9.83 |\n"+
		"|    BTCUSDT | SHORT |      0 |     1 |      -3.50 |\n"+
		"</pre>", message)
}

func TestBuildStatistics_noPositions(t *testing.T) {
	service := NewStatisticService(mock.NewPositionStatisticMock(), date.GetClockMock(time.Date(2024, 3, 2, 0, 30, 0, 0, time.UTC)))

	assert.Equal(t, "2024-03-01 closed 0 positions, result $0.00\n", service.BuildStatistics())
}

func TestBuildStatistics_repositoryFailure(t *testing.T) {
	repo := mock.NewPositionStatisticMock()
	repo.Fail = true
	service := NewStatisticService(repo, date.GetClockMock(time.Date(2024, 3, 2, 6, 0, 0, 0, time.UTC)))

	assert.Equal(t, "fetch failed: database is down", service.BuildStatistics())
}
