package statistic

import (
	"fmt"

	"slingshotBot/pkg/constants"
	"slingshotBot/pkg/constants/futureType"
	"slingshotBot/pkg/repository"
	"slingshotBot/pkg/service/date"
	"slingshotBot/pkg/util"
)

type IStatisticService interface {
	BuildStatistics() string
}

func NewStatisticService(statisticRepo repository.PositionStatistic, clock date.Clock) *StatisticService {
	return &StatisticService{statisticRepo: statisticRepo, clock: clock}
}

// StatisticService reports positions closed during the previous UTC day.
type StatisticService struct {
	statisticRepo repository.PositionStatistic
	clock         date.Clock
}

func (s *StatisticService) BuildStatistics() string {
	day := s.clock.NowTime().UTC().AddDate(0, 0, -1)

	statistics, err := s.statisticRepo.FindClosedByDate(day)
	if err != nil {
		return "fetch failed: " + err.Error()
	}
	total, err := s.statisticRepo.SumResultByDate(day)
	if err != nil {
		return "fetch failed: " + err.Error()
	}

	response := fmt.Sprintf("%v closed %d positions, result %s\n", day.Format(constants.DATE_FORMAT), len(statistics), util.FormatUsd(total))
	if len(statistics) == 0 {
		return response
	}

	response += "<pre>\n" +
		"|   Symbol   | Side  | Addons | Fixes |   Result   |\n" +
		"|------------|-------|--------|-------|------------|"

	for _, statistic := range statistics {
		response += fmt.Sprintf("\n| %10v | %5v | %6d | %5d | %10v |",
			statistic.Symbol, futureType.GetString(statistic.FuturesType), statistic.TotalAddons, statistic.TotalFixes,
			statistic.Result.StringFixed(2))
	}

	return response + "\n</pre>"
}
