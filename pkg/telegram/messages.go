package telegram

import (
	"fmt"
	"html"
	"time"
)

// Message builders are pure functions so formatting can be tested without a
// bot. All output is HTML parse mode; user-supplied names are escaped.

func GuestCheckInMessage(guestName, eventName string, at time.Time) string {
	return fmt.Sprintf("✅ <b>%s</b> checked in to <b>%s</b> at %s",
		html.EscapeString(guestName), html.EscapeString(eventName), at.Format("15:04"))
}

func NewGuestMessage(guestName, side, eventName string) string {
	return fmt.Sprintf("👤 New guest <b>%s</b> (%s) added to <b>%s</b>",
		html.EscapeString(guestName), html.EscapeString(side), html.EscapeString(eventName))
}

func EventCreatedMessage(eventName, venue string, date time.Time) string {
	if venue == "" {
		return fmt.Sprintf("🎉 New event <b>%s</b> on %s",
			html.EscapeString(eventName), date.Format("2 Jan 2006"))
	}
	return fmt.Sprintf("🎉 New event <b>%s</b> on %s at %s",
		html.EscapeString(eventName), date.Format("2 Jan 2006"), html.EscapeString(venue))
}

func GiftAddedMessage(guestName, eventName string, amount float64, currency string) string {
	return fmt.Sprintf("🎁 Gift from <b>%s</b> for <b>%s</b>: %.2f %s",
		html.EscapeString(guestName), html.EscapeString(eventName), amount, currency)
}
