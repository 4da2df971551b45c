package trading

import (
	"context"

	"slingshotBot/pkg/constants/decision"
	"slingshotBot/pkg/data/domains"
	"slingshotBot/pkg/service/signal"
)

// TradingService runs one decision cycle. Implementations serialize their own cycles.
type TradingService interface {
	BotAction(ctx context.Context)
}

type Signal interface {
	Decide(ctx context.Context, instrument *domains.Instrument, view *signal.PositionView) (decision.Decision, error)
}

type OpeningSwitch interface {
	IsOpeningEnabled() bool
}

type Notifier interface {
	PositionOpened(position *domains.Position)
	PositionClosed(statistic *domains.PositionStatistic)
	StopLost(position *domains.Position, reason string)
}
