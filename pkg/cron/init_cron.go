package cron

import (
	"context"

	"slingshotBot/pkg/service/trading"

	"github.com/jasonlvhit/gocron"
)

// InitCronJobs starts the trading tick. Cycles receive ctx, so cancelling it aborts fill waits on shutdown.
func InitCronJobs(ctx context.Context, tradingServices []trading.TradingService, intervalMinutes uint64) {
	if intervalMinutes == 0 {
		intervalMinutes = 1
	}

	go func() {
		ch := gocron.Start()

		tradingJob := newTradingJob(ctx, tradingServices)
		tradingJob.initTradingJob(intervalMinutes)

		select {
		case <-ch:
		case <-ctx.Done():
			gocron.Clear()
		}
	}()
}
