// Package guest manages the guest list of an event: invitations, arrival
// check-ins and recorded gifts.
package guest

import (
	"time"

	"github.com/google/uuid"
)

// Guest statuses.
const (
	StatusInvited   = "invited"
	StatusConfirmed = "confirmed"
	StatusCheckedIn = "checked_in"
)

// Response is the API shape of a guest.
type Response struct {
	ID          uuid.UUID  `json:"id"`
	EventID     uuid.UUID  `json:"eventId"`
	Name        string     `json:"name"`
	Phone       string     `json:"phone,omitempty"`
	Side        string     `json:"side"`
	Status      string     `json:"status"`
	CheckedInAt *time.Time `json:"checkedInAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// CreateRequest is the payload for adding a guest to an event.
type CreateRequest struct {
	Name  string `json:"name" validate:"required,min=2,max=200"`
	Phone string `json:"phone" validate:"omitempty,max=32"`
	Side  string `json:"side" validate:"required,oneof=bride groom both"`
}

// UpdateRequest is the payload for editing a guest.
type UpdateRequest struct {
	Name   string `json:"name" validate:"required,min=2,max=200"`
	Phone  string `json:"phone" validate:"omitempty,max=32"`
	Side   string `json:"side" validate:"required,oneof=bride groom both"`
	Status string `json:"status" validate:"required,oneof=invited confirmed checked_in"`
}

// GiftResponse is the API shape of a recorded gift.
type GiftResponse struct {
	ID        uuid.UUID `json:"id"`
	GuestID   uuid.UUID `json:"guestId"`
	Amount    float64   `json:"amount"`
	Currency  string    `json:"currency"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// GiftRequest is the payload for recording a gift.
type GiftRequest struct {
	Amount   float64 `json:"amount" validate:"required,gt=0"`
	Currency string  `json:"currency" validate:"required,oneof=USD KHR"`
	Note     string  `json:"note" validate:"max=500"`
}
