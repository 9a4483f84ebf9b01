// Package notify рассылает короткие уведомления администраторам в Telegram.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Spok95/academic-eval/internal/metrics"
	"github.com/Spok95/academic-eval/internal/models"
	"github.com/Spok95/academic-eval/internal/observability"
)

type Notifier interface {
	EvaluationSubmitted(ctx context.Context, ev *models.FilledEvaluation, edited bool, skippedRequired int) error
	EventCancelled(ctx context.Context, e *models.Event) error
}

// Nop — уведомления выключены (нет BOT_TOKEN).
type Nop struct{}

func (Nop) EvaluationSubmitted(context.Context, *models.FilledEvaluation, bool, int) error {
	return nil
}
func (Nop) EventCancelled(context.Context, *models.Event) error { return nil }

// Sender — часть *tgbotapi.BotAPI, которой хватает для отправки.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Telegram struct {
	bot   Sender
	chats []int64
	loc   *time.Location
	log   *zap.Logger
}

func NewTelegram(bot Sender, chats []int64, loc *time.Location, log *zap.Logger) *Telegram {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Telegram{bot: bot, chats: chats, loc: loc, log: log}
}

// New выбирает реализацию по конфигурации: без токена или без чатов — Nop.
func New(token string, chats []int64, loc *time.Location, log *zap.Logger) (Notifier, error) {
	if token == "" || len(chats) == 0 {
		return Nop{}, nil
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return NewTelegram(bot, chats, loc, log), nil
}

func (t *Telegram) EvaluationSubmitted(ctx context.Context, ev *models.FilledEvaluation, edited bool, skippedRequired int) error {
	verb := "создана"
	if edited {
		verb = "изменена"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Оценка #%d %s (версия %d)\n", ev.ID, verb, ev.Version)
	fmt.Fprintf(&b, "Опросник: %d, студент: %d\n", ev.QuestionnaireID, ev.SubjectUserID)
	fmt.Fprintf(&b, "Начало: %s\n", ev.StartsAt.In(t.loc).Format("02.01.2006 15:04"))
	fmt.Fprintf(&b, "Ответов: %d", len(ev.Answers))
	if skippedRequired > 0 {
		fmt.Fprintf(&b, "\n⚠️ Без ответа обязательных пунктов: %d", skippedRequired)
	}
	return t.broadcast(ctx, b.String())
}

func (t *Telegram) EventCancelled(ctx context.Context, e *models.Event) error {
	text := fmt.Sprintf("Событие #%d «%s» на %s отменено",
		e.ID, e.Title, e.StartAt.In(t.loc).Format("02.01.2006 15:04"))
	return t.broadcast(ctx, text)
}

func (t *Telegram) broadcast(ctx context.Context, text string) error {
	var errs []error
	for _, chatID := range t.chats {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := t.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
			metrics.NotifyErrors.Inc()
			if isSystemErr(err) {
				observability.CaptureErr(err)
			}
			t.log.Warn("telegram send failed", zap.Int64("chat_id", chatID), zap.Error(err))
			errs = append(errs, fmt.Errorf("chat %d: %w", chatID, err))
		}
	}
	return errors.Join(errs...)
}

// Системные: 5xx, 429, timeout. 400-ки и типичные телеграм-валидации в Sentry не шлём.
func isSystemErr(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	for _, sub := range []string{"429", "500", "502", "503", "504", "timeout"} {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
