package telegram

import (
	"strings"
	"testing"
	"time"
)

func TestGuestCheckInMessage_EscapesHTML(t *testing.T) {
	got := GuestCheckInMessage("<b>Sokha</b>", "Dara & Bopha", time.Date(2026, 2, 14, 9, 5, 0, 0, time.UTC))
	if strings.Contains(got, "<b>Sokha</b>") {
		t.Errorf("guest name not escaped: %q", got)
	}
	if !strings.Contains(got, "&amp;") {
		t.Errorf("event name not escaped: %q", got)
	}
	if !strings.Contains(got, "09:05") {
		t.Errorf("missing time: %q", got)
	}
}

func TestEventCreatedMessage(t *testing.T) {
	date := time.Date(2026, 11, 21, 0, 0, 0, 0, time.UTC)

	withVenue := EventCreatedMessage("Dara & Bopha", "Moonlight Hall", date)
	if !strings.Contains(withVenue, "Moonlight Hall") || !strings.Contains(withVenue, "21 Nov 2026") {
		t.Errorf("got %q", withVenue)
	}

	noVenue := EventCreatedMessage("Dara & Bopha", "", date)
	if strings.Contains(noVenue, " at ") {
		t.Errorf("venue clause present without a venue: %q", noVenue)
	}
}

func TestGiftAddedMessage(t *testing.T) {
	got := GiftAddedMessage("Sokha", "Dara & Bopha", 50, "USD")
	if !strings.Contains(got, "50.00 USD") {
		t.Errorf("got %q", got)
	}
}
