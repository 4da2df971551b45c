package cron

import (
	"time"

	"slingshotBot/pkg/api/telegram"
	"slingshotBot/pkg/service/statistic"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

type statisticJob struct {
	service   statistic.IStatisticService
	scheduler *gocron.Scheduler
}

func NewStatisticJob(service statistic.IStatisticService, cronExpression string) *statisticJob {
	job := statisticJob{service: service}
	job.initStatisticJob(cronExpression)
	return &job
}

func (j *statisticJob) initStatisticJob(cronExpression string) {
	j.scheduler = gocron.NewScheduler(time.UTC)

	_, err := j.scheduler.Cron(cronExpression).Do(j.execute)
	if err != nil {
		zap.S().Errorf("Error during statistic job %s", err.Error())
	}

	j.scheduler.StartAsync()
}

func (j *statisticJob) execute() {
	statistics := j.service.BuildStatistics()

	telegram.SendTextToTelegramChat(statistics)
}

func (j *statisticJob) Stop() {
	j.scheduler.Stop()
}
