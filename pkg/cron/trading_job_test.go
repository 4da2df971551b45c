package cron

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"slingshotBot/pkg/service/trading"

	"github.com/stretchr/testify/assert"
)

type countingService struct {
	calls atomic.Int32
	delay time.Duration
}

func (s *countingService) BotAction(ctx context.Context) {
	time.Sleep(s.delay)
	s.calls.Add(1)
}

func TestTradingJob_runsEveryInstrument(t *testing.T) {
	first := &countingService{delay: 50 * time.Millisecond}
	second := &countingService{delay: 50 * time.Millisecond}
	job := newTradingJob(context.Background(), []trading.TradingService{first, second})

	started := time.Now()
	job.execute()

	assert.Equal(t, int32(1), first.calls.Load())
	assert.Equal(t, int32(1), second.calls.Load())
	assert.Less(t, time.Since(started), 90*time.Millisecond, "cycles run in parallel")
}

func TestTradingJob_skipsAfterShutdown(t *testing.T) {
	service := &countingService{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	newTradingJob(ctx, []trading.TradingService{service}).execute()

	assert.Equal(t, int32(0), service.calls.Load())
}
