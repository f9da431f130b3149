// Package telegram delivers notification messages through the Telegram Bot
// API. The channel is fire-and-forget: delivery failures are logged and
// reported as a boolean, never as an error or panic.
package telegram

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Message is a single outbound Telegram message. ChatID accepts a numeric id
// ("-1001234"), or a public channel username ("@pkasla_events").
type Message struct {
	ChatID    string
	Text      string
	ParseMode string
}

// TestResult is the outcome of a credential check.
type TestResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// botClient is the slice of *tgbotapi.BotAPI the channel uses. Tests swap in
// a fake through the channel's factory.
type botClient interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetMe() (tgbotapi.User, error)
}

// Channel sends messages with a per-call bot token. Tokens come from user
// links or the settings document, so no bot instance is held long-term.
type Channel struct {
	logger *slog.Logger
	newBot func(token string) (botClient, error)
}

func NewChannel(logger *slog.Logger) *Channel {
	return &Channel{
		logger: logger,
		newBot: func(token string) (botClient, error) {
			return tgbotapi.NewBotAPI(token)
		},
	}
}

// Send delivers msg using the given bot token. It returns false on any
// failure and never propagates an error to the caller.
func (c *Channel) Send(token string, msg Message) bool {
	if token == "" || msg.ChatID == "" {
		c.logger.Warn("telegram send skipped", "reason", "missing token or chat id")
		return false
	}

	bot, err := c.newBot(token)
	if err != nil {
		c.logger.Warn("telegram bot init failed", "error", err)
		return false
	}

	out, err := buildMessage(msg)
	if err != nil {
		c.logger.Warn("telegram send failed", "error", err)
		return false
	}

	if _, err := bot.Send(out); err != nil {
		c.logger.Warn("telegram send failed", "chat_id", msg.ChatID, "error", err)
		return false
	}
	return true
}

// TestConnection verifies a token and chat id by calling getMe and sending a
// probe message. The result message tells an invalid token apart from an
// invalid chat id.
func (c *Channel) TestConnection(token, chatID string) TestResult {
	bot, err := c.newBot(token)
	if err != nil {
		return classifyTokenError(err)
	}

	self, err := bot.GetMe()
	if err != nil {
		return classifyTokenError(err)
	}

	probe := Message{ChatID: chatID, Text: fmt.Sprintf("Pkasla connection test at %s", time.Now().Format(time.RFC3339))}
	out, err := buildMessage(probe)
	if err != nil {
		return TestResult{Message: err.Error()}
	}
	if _, err := bot.Send(out); err != nil {
		var apiErr *tgbotapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == 400 {
			return TestResult{Message: "invalid chat id: " + apiErr.Message}
		}
		if errors.As(err, &apiErr) && apiErr.Code == 403 {
			return TestResult{Message: "bot is not a member of the chat: " + apiErr.Message}
		}
		return TestResult{Message: "send failed: " + err.Error()}
	}

	return TestResult{Success: true, Message: "connected as @" + self.UserName}
}

// NotifyGuestCheckIn announces a guest arrival.
func (c *Channel) NotifyGuestCheckIn(token, chatID, guestName, eventName string, at time.Time) bool {
	return c.Send(token, Message{ChatID: chatID, Text: GuestCheckInMessage(guestName, eventName, at), ParseMode: tgbotapi.ModeHTML})
}

// NotifyNewGuest announces a new guest registration.
func (c *Channel) NotifyNewGuest(token, chatID, guestName, side, eventName string) bool {
	return c.Send(token, Message{ChatID: chatID, Text: NewGuestMessage(guestName, side, eventName), ParseMode: tgbotapi.ModeHTML})
}

// NotifyEventCreated announces a newly created event.
func (c *Channel) NotifyEventCreated(token, chatID, eventName, venue string, date time.Time) bool {
	return c.Send(token, Message{ChatID: chatID, Text: EventCreatedMessage(eventName, venue, date), ParseMode: tgbotapi.ModeHTML})
}

// NotifyGiftAdded announces a recorded gift.
func (c *Channel) NotifyGiftAdded(token, chatID, guestName, eventName string, amount float64, currency string) bool {
	return c.Send(token, Message{ChatID: chatID, Text: GiftAddedMessage(guestName, eventName, amount, currency), ParseMode: tgbotapi.ModeHTML})
}

// NotifyMessage sends free-form text, used for direct owner notices.
func (c *Channel) NotifyMessage(token, chatID, text string) bool {
	return c.Send(token, Message{ChatID: chatID, Text: text, ParseMode: tgbotapi.ModeHTML})
}

func buildMessage(msg Message) (tgbotapi.Chattable, error) {
	if strings.HasPrefix(msg.ChatID, "@") {
		out := tgbotapi.NewMessageToChannel(msg.ChatID, msg.Text)
		out.ParseMode = msg.ParseMode
		return out, nil
	}
	id, err := strconv.ParseInt(msg.ChatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat id %q", msg.ChatID)
	}
	out := tgbotapi.NewMessage(id, msg.Text)
	out.ParseMode = msg.ParseMode
	return out, nil
}

func classifyTokenError(err error) TestResult {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) && (apiErr.Code == 401 || apiErr.Code == 404) {
		return TestResult{Message: "invalid bot token: " + apiErr.Message}
	}
	return TestResult{Message: "telegram api unreachable: " + err.Error()}
}
