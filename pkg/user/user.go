package user

import (
	"time"

	"github.com/google/uuid"
)

// Response is the API shape of a user. The password hash and any personal
// bot token stay server-side.
type Response struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	Role           string    `json:"role"`
	TelegramChatID string    `json:"telegramChatId,omitempty"`
	TelegramLinked bool      `json:"telegramLinked"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// ToResponse converts a database row to the API shape.
func (r Row) ToResponse() Response {
	resp := Response{
		ID:        r.ID,
		Email:     r.Email,
		Name:      r.Name,
		Role:      r.Role,
		IsActive:  r.IsActive,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.TelegramChatID != nil {
		resp.TelegramChatID = *r.TelegramChatID
		resp.TelegramLinked = true
	}
	return resp
}

// CreateRequest is the admin request to add a user.
type CreateRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,min=2,max=200"`
	Role     string `json:"role" validate:"required,oneof=admin host readonly"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// TelegramLinkRequest links the caller's account to a Telegram chat so gift
// notices can be sent directly. BotToken is optional; without it the shared
// bot from settings (or the environment) is used.
type TelegramLinkRequest struct {
	ChatID   string `json:"chatId" validate:"required,max=64"`
	BotToken string `json:"botToken" validate:"omitempty,max=128"`
}
