package telegram

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

// client is the subset of *tgbotapi.BotAPI the bot uses.
type client interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

var _ client = (*tgbotapi.BotAPI)(nil)
