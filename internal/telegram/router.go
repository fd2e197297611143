package telegram

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/AdamLukas17/something-sweet/internal/catalog"
	"github.com/AdamLukas17/something-sweet/internal/directory"
	"github.com/AdamLukas17/something-sweet/internal/domain"
)

// Router wires Telegram updates to command handlers.
type Router struct {
	bot *tgbotapi.BotAPI
	log *zap.Logger
	dir *directory.Service
	cat *catalog.Catalog
	rnd domain.Rand
}

func NewRouter(bot *tgbotapi.BotAPI, log *zap.Logger, dir *directory.Service, cat *catalog.Catalog, rnd domain.Rand) *Router {
	return &Router{bot: bot, log: log, dir: dir, cat: cat, rnd: rnd}
}

// HandleUpdate routes a single update to the appropriate handler.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.Message != nil {
		msg := upd.Message
		from := fromID(msg.From)
		chatID := msg.Chat.ID
		text := strings.TrimSpace(msg.Text)

		switch {
		case strings.HasPrefix(text, "/start"):
			r.handleStart(ctx, from, chatID)
		case strings.HasPrefix(text, "/frequency"):
			r.handleFrequency(chatID)
		case strings.HasPrefix(text, "/pause"):
			r.handlePause(ctx, from, chatID)
		case strings.HasPrefix(text, "/resume"):
			r.handleResume(ctx, from, chatID)
		case strings.HasPrefix(text, "/status"):
			r.handleStatus(ctx, from, chatID)
		case strings.HasPrefix(text, "/test"):
			r.handleTest(ctx, from, chatID)
		case strings.HasPrefix(text, "/help"):
			r.handleHelp(chatID)
		case strings.HasPrefix(text, "/"):
			r.sendText(chatID, unknownText)
		default:
			// Plain text outside any flow: ignore.
		}
		return
	}

	if upd.CallbackQuery != nil {
		cb := upd.CallbackQuery
		if strings.HasPrefix(cb.Data, "freq_") {
			r.handleFrequencyCallback(ctx, cb)
			return
		}
		// Unknown callback: ignore silently.
	}
}

func fromID(u *tgbotapi.User) string {
	if u == nil {
		return ""
	}
	return strconv64(u.ID)
}
