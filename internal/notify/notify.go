package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/lutefd/navi-api/internal/domain/matches"
)

type Notifier interface {
	Notify(ctx context.Context, text string) error
}

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram posts to a single group chat.
type Telegram struct {
	bot    sender
	chatID int64
}

func NewTelegram(token string, chatID int64) (*Telegram, error) {
	if chatID == 0 {
		return nil, errors.New("telegram chat id not set")
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram login: %w", err)
	}
	slog.Info("Authorized on account", "username", bot.Self.UserName)
	return &Telegram{bot: bot, chatID: chatID}, nil
}

func (t *Telegram) Notify(_ context.Context, text string) error {
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

// Log writes notifications to the application log when no chat is
// configured.
type Log struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger}
}

func (l *Log) Notify(_ context.Context, text string) error {
	l.logger.Info("notification", "text", text)
	return nil
}

// DueOn keeps the fixtures played on day.
func DueOn(next []matches.NextMatch, day matches.Date) []matches.NextMatch {
	out := make([]matches.NextMatch, 0)
	for _, m := range next {
		if m.MatchDate.Equal(day.Time) {
			out = append(out, m)
		}
	}
	return out
}

// FormatReminder renders one message for the given fixtures, or "" when
// there are none.
func FormatReminder(due []matches.NextMatch) string {
	if len(due) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("내일 경기 알림")
	for _, m := range due {
		b.WriteString("\n- ")
		b.WriteString(m.MatchDate.String())
		if m.MatchTime != nil {
			b.WriteString(" ")
			b.WriteString(*m.MatchTime)
		}
		b.WriteString(" vs ")
		b.WriteString(m.Opponent)
		if m.Venue != nil {
			b.WriteString(" @ ")
			b.WriteString(*m.Venue)
		}
		if m.Memo != nil {
			b.WriteString(" (")
			b.WriteString(*m.Memo)
			b.WriteString(")")
		}
	}
	return b.String()
}
