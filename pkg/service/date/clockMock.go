package date

import (
	"sync"
	"time"
)

type ClockMock struct {
	mu       sync.Mutex
	mockTime time.Time
}

func GetClockMock(nowMock time.Time) *ClockMock {
	return &ClockMock{
		mockTime: nowMock,
	}
}

func (c *ClockMock) NowTime() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mockTime
}

func (c *ClockMock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mockTime = now
}

func (c *ClockMock) Add(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mockTime = c.mockTime.Add(d)
}
