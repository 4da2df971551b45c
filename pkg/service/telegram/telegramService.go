package telegram

import (
	"fmt"

	telegramApi "slingshotBot/pkg/api/telegram"
	"slingshotBot/pkg/constants/futureType"
	"slingshotBot/pkg/data/domains"
	"slingshotBot/pkg/util"
)

func NewTelegramService() *TelegramService {
	return &TelegramService{Send: telegramApi.SendTextToTelegramChat}
}

// TelegramService formats position events for the chat.
type TelegramService struct {
	Send func(text string)
}

func (s *TelegramService) PositionOpened(position *domains.Position) {
	s.Send(fmt.Sprintf("<b>%s</b> opened %s %v @ %v",
		position.Instrument.Symbol, futureType.GetString(position.Side), position.CurrentQuantity, position.AveragePrice))
}

func (s *TelegramService) PositionClosed(statistic *domains.PositionStatistic) {
	s.Send(fmt.Sprintf("<b>%s</b> closed %s\nmax qty %v, addons %d, fixes %d\nresult %s",
		statistic.Symbol, futureType.GetString(statistic.FuturesType), statistic.MaxQuantity,
		statistic.TotalAddons, statistic.TotalFixes, util.FormatUsd(statistic.Result)))
}

func (s *TelegramService) StopLost(position *domains.Position, reason string) {
	s.Send(fmt.Sprintf("<b>%s</b> %s position has no stop: %s",
		position.Instrument.Symbol, futureType.GetString(position.Side), reason))
}
