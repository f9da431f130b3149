package telegram

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type fakeBot struct {
	sent     []tgbotapi.Chattable
	sendErr  error
	getMeErr error
	user     tgbotapi.User
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.sendErr != nil {
		return tgbotapi.Message{}, f.sendErr
	}
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeBot) GetMe() (tgbotapi.User, error) {
	if f.getMeErr != nil {
		return tgbotapi.User{}, f.getMeErr
	}
	return f.user, nil
}

func newTestChannel(bot *fakeBot, initErr error) *Channel {
	c := NewChannel(slog.New(slog.NewTextHandler(io.Discard, nil)))
	c.newBot = func(token string) (botClient, error) {
		if initErr != nil {
			return nil, initErr
		}
		return bot, nil
	}
	return c
}

func TestSend_NumericChatID(t *testing.T) {
	bot := &fakeBot{}
	c := newTestChannel(bot, nil)

	if !c.Send("123:abc", Message{ChatID: "-1001234", Text: "hello"}) {
		t.Fatal("Send returned false")
	}
	if len(bot.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(bot.sent))
	}
	msg, ok := bot.sent[0].(tgbotapi.MessageConfig)
	if !ok {
		t.Fatalf("sent %T, want MessageConfig", bot.sent[0])
	}
	if msg.ChatID != -1001234 {
		t.Errorf("chat id = %d, want -1001234", msg.ChatID)
	}
	if msg.Text != "hello" {
		t.Errorf("text = %q", msg.Text)
	}
}

func TestSend_ChannelUsername(t *testing.T) {
	bot := &fakeBot{}
	c := newTestChannel(bot, nil)

	if !c.Send("123:abc", Message{ChatID: "@pkasla_events", Text: "hello"}) {
		t.Fatal("Send returned false")
	}
	msg := bot.sent[0].(tgbotapi.MessageConfig)
	if msg.ChannelUsername != "@pkasla_events" {
		t.Errorf("channel = %q, want @pkasla_events", msg.ChannelUsername)
	}
}

func TestSend_Failures(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		chatID  string
		bot     *fakeBot
		initErr error
	}{
		{"empty token", "", "-100", &fakeBot{}, nil},
		{"empty chat id", "123:abc", "", &fakeBot{}, nil},
		{"non-numeric chat id", "123:abc", "dining-hall", &fakeBot{}, nil},
		{"bot init fails", "bad", "-100", &fakeBot{}, errors.New("unauthorized")},
		{"api send fails", "123:abc", "-100", &fakeBot{sendErr: errors.New("timeout")}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestChannel(tt.bot, tt.initErr)
			if c.Send(tt.token, Message{ChatID: tt.chatID, Text: "x"}) {
				t.Error("Send returned true, want false")
			}
		})
	}
}

func TestTestConnection_InvalidToken(t *testing.T) {
	c := newTestChannel(nil, &tgbotapi.Error{Code: 401, Message: "Unauthorized"})
	res := c.TestConnection("bad-token", "-100")
	if res.Success {
		t.Fatal("expected failure")
	}
	if !strings.Contains(res.Message, "invalid bot token") {
		t.Errorf("message = %q", res.Message)
	}
}

func TestTestConnection_InvalidChat(t *testing.T) {
	bot := &fakeBot{
		user:    tgbotapi.User{UserName: "pkasla_bot"},
		sendErr: &tgbotapi.Error{Code: 400, Message: "chat not found"},
	}
	c := newTestChannel(bot, nil)
	res := c.TestConnection("123:abc", "-100")
	if res.Success {
		t.Fatal("expected failure")
	}
	if !strings.Contains(res.Message, "invalid chat id") {
		t.Errorf("message = %q", res.Message)
	}
}

func TestTestConnection_GenericFailure(t *testing.T) {
	bot := &fakeBot{
		user:    tgbotapi.User{UserName: "pkasla_bot"},
		sendErr: errors.New("connection reset"),
	}
	c := newTestChannel(bot, nil)
	res := c.TestConnection("123:abc", "-100")
	if res.Success {
		t.Fatal("expected failure")
	}
	if strings.Contains(res.Message, "invalid") {
		t.Errorf("generic failure misclassified: %q", res.Message)
	}
}

func TestTestConnection_Success(t *testing.T) {
	bot := &fakeBot{user: tgbotapi.User{UserName: "pkasla_bot"}}
	c := newTestChannel(bot, nil)
	res := c.TestConnection("123:abc", "-100")
	if !res.Success {
		t.Fatalf("expected success, got %q", res.Message)
	}
	if !strings.Contains(res.Message, "@pkasla_bot") {
		t.Errorf("message = %q", res.Message)
	}
}

func TestNotifyGuestCheckIn(t *testing.T) {
	bot := &fakeBot{}
	c := newTestChannel(bot, nil)
	at := time.Date(2026, 2, 14, 18, 30, 0, 0, time.UTC)

	if !c.NotifyGuestCheckIn("123:abc", "-100", "Sokha", "Dara & Bopha", at) {
		t.Fatal("NotifyGuestCheckIn returned false")
	}
	msg := bot.sent[0].(tgbotapi.MessageConfig)
	if !strings.Contains(msg.Text, "Sokha") || !strings.Contains(msg.Text, "18:30") {
		t.Errorf("text = %q", msg.Text)
	}
	if msg.ParseMode != tgbotapi.ModeHTML {
		t.Errorf("parse mode = %q", msg.ParseMode)
	}
}
