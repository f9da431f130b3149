// Package event manages wedding events: the ceremonies a host plans and
// invites guests to.
package event

import (
	"time"

	"github.com/google/uuid"
)

// Response is the API shape of an event.
type Response struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"ownerId"`
	Name        string    `json:"name"`
	Date        time.Time `json:"date"`
	Venue       string    `json:"venue,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreateRequest is the payload for creating an event.
type CreateRequest struct {
	Name        string    `json:"name" validate:"required,min=2,max=200"`
	Date        time.Time `json:"date" validate:"required"`
	Venue       string    `json:"venue" validate:"max=300"`
	Description string    `json:"description" validate:"max=2000"`
}

// UpdateRequest is the payload for updating an event. All fields are
// required; partial updates go through the same full-replace semantics.
type UpdateRequest struct {
	Name        string    `json:"name" validate:"required,min=2,max=200"`
	Date        time.Time `json:"date" validate:"required"`
	Venue       string    `json:"venue" validate:"max=300"`
	Description string    `json:"description" validate:"max=2000"`
}
