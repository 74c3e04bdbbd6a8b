package notify

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/lutefd/navi-api/internal/domain/matches"
)

type senderFake struct {
	sent []tgbotapi.Chattable
	err  error
}

func (f *senderFake) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, f.err
}

func ptr(s string) *string { return &s }

func TestTelegramNotify(t *testing.T) {
	fake := &senderFake{}
	tg := &Telegram{bot: fake, chatID: 42}
	if err := tg.Notify(context.Background(), "hello"); err != nil {
		t.Fatalf("notify: %v", err)
	}
	msg, ok := fake.sent[0].(tgbotapi.MessageConfig)
	if !ok || msg.ChatID != 42 || msg.Text != "hello" {
		t.Fatalf("unexpected message: %+v", fake.sent[0])
	}

	fake.err = errors.New("flood control")
	if err := tg.Notify(context.Background(), "again"); err == nil {
		t.Fatalf("expected send error")
	}
}

func TestLogNotify(t *testing.T) {
	var buf bytes.Buffer
	n := NewLog(slog.New(slog.NewTextHandler(&buf, nil)))
	if err := n.Notify(context.Background(), "내일 경기"); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if !strings.Contains(buf.String(), "내일 경기") {
		t.Fatalf("expected text in log, got %q", buf.String())
	}
}

func TestDueOnAndFormatReminder(t *testing.T) {
	next := []matches.NextMatch{
		{ID: 1, MatchDate: matches.NewDate(2026, 5, 2), MatchTime: ptr("14:00"), Opponent: "FC 한강", Venue: ptr("홈 경기장")},
		{ID: 2, MatchDate: matches.NewDate(2026, 5, 9), Opponent: "Rovers"},
	}
	due := DueOn(next, matches.NewDate(2026, 5, 2))
	if len(due) != 1 || due[0].ID != 1 {
		t.Fatalf("unexpected due fixtures: %+v", due)
	}
	got := FormatReminder(due)
	want := "내일 경기 알림\n- 2026-05-02 14:00 vs FC 한강 @ 홈 경기장"
	if got != want {
		t.Fatalf("unexpected reminder:\n%s\nwant:\n%s", got, want)
	}
	if FormatReminder(nil) != "" {
		t.Fatalf("expected empty reminder for no fixtures")
	}
}
