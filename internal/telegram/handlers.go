package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/AdamLukas17/something-sweet/internal/catalog"
	"github.com/AdamLukas17/something-sweet/internal/domain"
	"github.com/AdamLukas17/something-sweet/internal/store"
)

func strconv64(id int64) string { return strconv.FormatInt(id, 10) }

func (r *Router) sendText(chatID int64, text string) {
	_, err := r.bot.Send(tgbotapi.NewMessage(chatID, text))
	if err != nil {
		r.log.Error("send failed", zap.Int64("chatID", chatID), zap.Error(err))
	}
}

func (r *Router) sendHTML(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := r.bot.Send(msg); err != nil {
		r.log.Error("send failed", zap.Int64("chatID", chatID), zap.Error(err))
	}
}

func (r *Router) answerCallback(id, text string) {
	if _, err := r.bot.Request(tgbotapi.NewCallback(id, text)); err != nil {
		r.log.Error("answer callback failed", zap.Error(err))
	}
}

// handleStart registers a new user or greets a returning one.
func (r *Router) handleStart(ctx context.Context, telegramID string, chatID int64) {
	u, err := r.dir.FindByTelegramID(ctx, telegramID)
	switch {
	case err == nil:
		status := "Active"
		if u.IsPaused {
			status = "Paused"
		}
		r.sendText(chatID, fmt.Sprintf(welcomeBackFmt, u.Frequency.Label(), status))

	case errors.Is(err, store.ErrNotFound):
		u, err = r.dir.Register(ctx, telegramID, strconv64(chatID))
		if err != nil {
			r.log.Error("register failed", zap.String("telegramID", telegramID), zap.Error(err))
			r.sendText(chatID, apologyText)
			return
		}
		r.sendText(chatID, fmt.Sprintf(welcomeFmt, u.Frequency.Label()))

	default:
		r.log.Error("start lookup failed", zap.String("telegramID", telegramID), zap.Error(err))
		r.sendText(chatID, apologyText)
	}
}

// handleFrequency shows the cadence picker.
func (r *Router) handleFrequency(chatID int64) {
	msg := tgbotapi.NewMessage(chatID, frequencyPrompt)
	msg.ReplyMarkup = frequencyKeyboard()
	if _, err := r.bot.Send(msg); err != nil {
		r.log.Error("send failed", zap.Int64("chatID", chatID), zap.Error(err))
	}
}

// handleFrequencyCallback applies a cadence picked from the inline keyboard.
func (r *Router) handleFrequencyCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	telegramID := fromID(cb.From)
	raw := strings.TrimPrefix(cb.Data, "freq_")

	f, err := domain.ParseFrequency(raw)
	if err != nil {
		r.answerCallback(cb.ID, "Unknown option.")
		return
	}

	u, err := r.dir.UpdateFrequency(ctx, telegramID, f)
	switch {
	case err == nil:
		r.answerCallback(cb.ID, "")
		next := "soon"
		if u.NextRunAt != nil {
			next = u.NextRunAt.Format("Jan 2, 2006")
		}
		edit := tgbotapi.NewEditMessageText(
			cb.Message.Chat.ID, cb.Message.MessageID,
			fmt.Sprintf(frequencyUpdatedFmt, f.Label(), next),
		)
		if _, err := r.bot.Send(edit); err != nil {
			r.log.Error("edit message failed", zap.Error(err))
		}

	case errors.Is(err, store.ErrNotFound):
		r.answerCallback(cb.ID, registerFirstText)

	default:
		r.log.Error("update frequency failed", zap.String("telegramID", telegramID), zap.Error(err))
		r.answerCallback(cb.ID, apologyText)
	}
}

func (r *Router) handlePause(ctx context.Context, telegramID string, chatID int64) {
	_, err := r.dir.Pause(ctx, telegramID)
	switch {
	case err == nil:
		r.sendText(chatID, pausedText)
	case errors.Is(err, store.ErrNotFound):
		r.sendText(chatID, registerFirstText)
	default:
		r.log.Error("pause failed", zap.String("telegramID", telegramID), zap.Error(err))
		r.sendText(chatID, apologyText)
	}
}

func (r *Router) handleResume(ctx context.Context, telegramID string, chatID int64) {
	u, err := r.dir.Resume(ctx, telegramID)
	switch {
	case err == nil:
		r.sendText(chatID, fmt.Sprintf(resumedFmt, u.Frequency.Label()))
	case errors.Is(err, store.ErrNotFound):
		r.sendText(chatID, registerFirstText)
	default:
		r.log.Error("resume failed", zap.String("telegramID", telegramID), zap.Error(err))
		r.sendText(chatID, apologyText)
	}
}

func (r *Router) handleStatus(ctx context.Context, telegramID string, chatID int64) {
	u, err := r.dir.FindByTelegramID(ctx, telegramID)
	switch {
	case err == nil:
		status := "Active"
		next := "Not scheduled"
		if u.IsPaused {
			status = "Paused"
			next = "Paused"
		} else if u.NextRunAt != nil {
			next = fmt.Sprintf("%s (%s)",
				u.NextRunAt.Format("Jan 2, 2006 15:04"),
				domain.DescribeGap(time.Now().UTC(), *u.NextRunAt),
			)
		}
		r.sendText(chatID, fmt.Sprintf(statusFmt,
			u.Frequency.Label(), status, next, u.CreatedAt.Format("Jan 2, 2006")))

	case errors.Is(err, store.ErrNotFound):
		r.sendText(chatID, notRegisteredText)

	default:
		r.log.Error("status lookup failed", zap.String("telegramID", telegramID), zap.Error(err))
		r.sendText(chatID, apologyText)
	}
}

// handleTest sends one random idea immediately, bypassing the schedule.
func (r *Router) handleTest(ctx context.Context, telegramID string, chatID int64) {
	_, err := r.dir.FindByTelegramID(ctx, telegramID)
	switch {
	case err == nil:
		r.sendHTML(chatID, catalog.Render(r.cat.Pick(r.rnd)))
	case errors.Is(err, store.ErrNotFound):
		r.sendText(chatID, registerFirstText)
	default:
		r.log.Error("test lookup failed", zap.String("telegramID", telegramID), zap.Error(err))
		r.sendText(chatID, apologyText)
	}
}

func (r *Router) handleHelp(chatID int64) {
	r.sendText(chatID, helpText)
}
