package notify

import (
	"context"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// TelegramProvider delivers messages through the Telegram Bot API.
type TelegramProvider struct {
	bot *tgbotapi.BotAPI
	log *zap.Logger
}

func NewTelegramProvider(bot *tgbotapi.BotAPI, log *zap.Logger) *TelegramProvider {
	return &TelegramProvider{bot: bot, log: log}
}

func (t *TelegramProvider) Name() string { return "telegram" }

// Send delivers the payload as an HTML message. Transport failures are
// reported as false, not as errors; the sweep retries them next pass.
func (t *TelegramProvider) Send(_ context.Context, p Payload) (bool, error) {
	chatID, err := strconv.ParseInt(p.ChatID, 10, 64)
	if err != nil {
		t.log.Error("invalid chat id", zap.String("chatID", p.ChatID), zap.Error(err))
		return false, nil
	}

	msg := tgbotapi.NewMessage(chatID, p.Body)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := t.bot.Send(msg); err != nil {
		t.log.Error("telegram send failed",
			zap.String("chatID", p.ChatID),
			zap.Error(err),
		)
		return false, nil
	}
	return true, nil
}
