package cron

import (
	"context"
	"sync"

	"slingshotBot/pkg/service/trading"

	"github.com/jasonlvhit/gocron"
	"go.uber.org/zap"
)

type tradingJob struct {
	ctx             context.Context
	tradingServices []trading.TradingService
}

func newTradingJob(ctx context.Context, tradingServices []trading.TradingService) *tradingJob {
	return &tradingJob{ctx: ctx, tradingServices: tradingServices}
}

func (j *tradingJob) initTradingJob(intervalMinutes uint64) {
	err := gocron.Every(intervalMinutes).Minutes().Do(j.execute)
	if err != nil {
		zap.S().Errorf("Error during trading job %s", err.Error())
	}
}

// execute runs one cycle per instrument in parallel and waits for all of them.
func (j *tradingJob) execute() {
	if j.ctx.Err() != nil {
		return
	}
	zap.S().Info("Cron job is started")

	var wg sync.WaitGroup
	for _, service := range j.tradingServices {
		wg.Add(1)
		go func(service trading.TradingService) {
			defer wg.Done()
			service.BotAction(j.ctx)
		}(service)
	}
	wg.Wait()

	zap.S().Info("Cron job is finished")
}
