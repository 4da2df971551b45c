package mock

import (
	"errors"
	"sync"
	"time"

	"slingshotBot/pkg/data/domains"
	"slingshotBot/pkg/repository"

	"github.com/shopspring/decimal"
)

// PositionStatisticMock keeps statistics in memory.
type PositionStatisticMock struct {
	mu     sync.Mutex
	Saved  []domains.PositionStatistic
	Fail   bool
	nextId int64
}

var _ repository.PositionStatistic = (*PositionStatisticMock)(nil)

func NewPositionStatisticMock() *PositionStatisticMock {
	return &PositionStatisticMock{nextId: 1}
}

func (m *PositionStatisticMock) SavePositionStatistic(statistic *domains.PositionStatistic) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return errors.New("database is down")
	}

	if statistic.Id == 0 {
		statistic.Id = m.nextId
		m.nextId++
		m.Saved = append(m.Saved, *statistic)
		return nil
	}
	for i := range m.Saved {
		if m.Saved[i].Id == statistic.Id {
			m.Saved[i] = *statistic
		}
	}
	return nil
}

func (m *PositionStatisticMock) FindClosedByDate(date time.Time) ([]domains.PositionStatistic, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return nil, errors.New("database is down")
	}

	var result []domains.PositionStatistic
	for _, statistic := range m.Saved {
		if statistic.ClosedAt.Valid && sameDay(statistic.ClosedAt.Time, date) {
			result = append(result, statistic)
		}
	}
	return result, nil
}

func (m *PositionStatisticMock) SumResultByDate(date time.Time) (decimal.Decimal, error) {
	statistics, err := m.FindClosedByDate(date)
	if err != nil {
		return decimal.Zero, err
	}
	sum := decimal.Zero
	for _, statistic := range statistics {
		sum = sum.Add(statistic.Result)
	}
	return sum, nil
}

func sameDay(a, b time.Time) bool {
	a, b = a.UTC(), b.UTC()
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
