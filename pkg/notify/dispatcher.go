// Package notify decides whether a domain event becomes an outbound
// notification. The dispatcher consults the settings document on every call,
// so toggles take effect without a restart, and it never returns an error:
// business flows must not fail because a notification could not be sent.
package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vannyakh/pkasla-pro-sub001/pkg/settings"
)

// Status classifies a dispatch outcome.
type Status string

const (
	StatusSent    Status = "sent"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Result reports what happened to one notification attempt.
type Result struct {
	Status Status
	Reason string
}

// SettingsSource yields the current settings document, secrets included.
type SettingsSource interface {
	GetWithSensitive(ctx context.Context) (*settings.Settings, error)
}

// Channel is the outbound transport. pkg/telegram implements it.
type Channel interface {
	NotifyGuestCheckIn(token, chatID, guestName, eventName string, at time.Time) bool
	NotifyNewGuest(token, chatID, guestName, side, eventName string) bool
	NotifyEventCreated(token, chatID, eventName, venue string, date time.Time) bool
	NotifyGiftAdded(token, chatID, guestName, eventName string, amount float64, currency string) bool
	NotifyMessage(token, chatID, text string) bool
}

// LinkResolver finds a user's personal telegram link: their chat id and,
// optionally, their own bot token.
type LinkResolver func(ctx context.Context, userID uuid.UUID) (chatID, botToken string, err error)

// Dispatcher routes domain events to the admin chat and to linked users.
type Dispatcher struct {
	settings SettingsSource
	channel  Channel
	links    LinkResolver
	envToken string // last-resort token from the environment
	logger   *slog.Logger
	counter  *prometheus.CounterVec
}

func NewDispatcher(src SettingsSource, ch Channel, links LinkResolver, envToken string, logger *slog.Logger, counter *prometheus.CounterVec) *Dispatcher {
	return &Dispatcher{
		settings: src,
		channel:  ch,
		links:    links,
		envToken: envToken,
		logger:   logger,
		counter:  counter,
	}
}

// GuestCheckedIn notifies the admin chat that a guest has arrived.
func (d *Dispatcher) GuestCheckedIn(ctx context.Context, guestName, eventName string, at time.Time) Result {
	return d.dispatch(ctx, "guest_checked_in",
		func(doc *settings.Settings) bool { return doc.NotifyOnGuestCheckIn },
		func(token, chatID string) bool {
			return d.channel.NotifyGuestCheckIn(token, chatID, guestName, eventName, at)
		})
}

// NewGuest notifies the admin chat that a guest was added.
func (d *Dispatcher) NewGuest(ctx context.Context, guestName, side, eventName string) Result {
	return d.dispatch(ctx, "new_guest",
		func(doc *settings.Settings) bool { return doc.NotifyOnNewGuest },
		func(token, chatID string) bool {
			return d.channel.NotifyNewGuest(token, chatID, guestName, side, eventName)
		})
}

// EventCreated notifies the admin chat about a new event.
func (d *Dispatcher) EventCreated(ctx context.Context, eventName, venue string, date time.Time) Result {
	return d.dispatch(ctx, "event_created",
		func(doc *settings.Settings) bool { return doc.NotifyOnEventCreated },
		func(token, chatID string) bool {
			return d.channel.NotifyEventCreated(token, chatID, eventName, venue, date)
		})
}

// GiftAdded notifies the admin chat about a recorded gift.
func (d *Dispatcher) GiftAdded(ctx context.Context, guestName, eventName string, amount float64, currency string) Result {
	return d.dispatch(ctx, "gift_added",
		func(doc *settings.Settings) bool { return doc.NotifyOnGiftAdded },
		func(token, chatID string) bool {
			return d.channel.NotifyGiftAdded(token, chatID, guestName, eventName, amount, currency)
		})
}

// Message sends free-form text to the admin chat, gated only on the bot
// being enabled.
func (d *Dispatcher) Message(ctx context.Context, text string) Result {
	return d.dispatch(ctx, "message",
		func(*settings.Settings) bool { return true },
		func(token, chatID string) bool {
			return d.channel.NotifyMessage(token, chatID, text)
		})
}

// SendToUser delivers text to a user's linked chat. The user's own bot token
// wins; the settings token and then the environment token are fallbacks.
func (d *Dispatcher) SendToUser(ctx context.Context, userID uuid.UUID, text string) Result {
	const trigger = "direct_message"

	if d.links == nil {
		return d.record(trigger, Result{Status: StatusSkipped, Reason: "no link resolver configured"})
	}
	chatID, userToken, err := d.links(ctx, userID)
	if err != nil {
		d.logger.Warn("telegram link lookup failed", "user_id", userID, "error", err)
		return d.record(trigger, Result{Status: StatusFailed, Reason: "link lookup failed"})
	}
	if chatID == "" {
		return d.record(trigger, Result{Status: StatusSkipped, Reason: "user has no linked chat"})
	}

	token := userToken
	if token == "" {
		if doc, err := d.settings.GetWithSensitive(ctx); err == nil {
			token = doc.TelegramBotToken
		}
	}
	if token == "" {
		token = d.envToken
	}
	if token == "" {
		d.logger.Warn("no bot token available for direct message", "user_id", userID)
		return d.record(trigger, Result{Status: StatusSkipped, Reason: "no bot token available"})
	}

	if !d.channel.NotifyMessage(token, chatID, text) {
		return d.record(trigger, Result{Status: StatusFailed, Reason: "channel send failed"})
	}
	return d.record(trigger, Result{Status: StatusSent})
}

func (d *Dispatcher) dispatch(ctx context.Context, trigger string, enabled func(*settings.Settings) bool, send func(token, chatID string) bool) Result {
	doc, err := d.settings.GetWithSensitive(ctx)
	if err != nil {
		d.logger.Warn("notification skipped", "trigger", trigger, "error", err)
		return d.record(trigger, Result{Status: StatusFailed, Reason: "settings unavailable"})
	}

	if !doc.TelegramBotEnabled {
		return d.record(trigger, Result{Status: StatusSkipped, Reason: "telegram bot disabled"})
	}
	if !enabled(doc) {
		return d.record(trigger, Result{Status: StatusSkipped, Reason: "notifications for " + trigger + " disabled"})
	}

	token := doc.TelegramBotToken
	if token == "" {
		token = d.envToken
	}
	if token == "" || doc.TelegramChatID == "" {
		d.logger.Warn("telegram enabled but credentials missing", "trigger", trigger)
		return d.record(trigger, Result{Status: StatusSkipped, Reason: "missing bot token or chat id"})
	}

	if !send(token, doc.TelegramChatID) {
		return d.record(trigger, Result{Status: StatusFailed, Reason: "channel send failed"})
	}
	return d.record(trigger, Result{Status: StatusSent})
}

func (d *Dispatcher) record(trigger string, res Result) Result {
	if d.counter != nil {
		d.counter.WithLabelValues(trigger, string(res.Status)).Inc()
	}
	return res
}
