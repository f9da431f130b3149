// Package user provides database access to platform accounts and their
// telegram links.
package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/vannyakh/pkasla-pro-sub001/internal/auth"
	"github.com/vannyakh/pkasla-pro-sub001/internal/db"
)

// Store provides database operations for users.
type Store struct {
	dbtx db.DBTX
}

// NewStore creates a user Store backed by the given database connection.
func NewStore(dbtx db.DBTX) *Store {
	return &Store{dbtx: dbtx}
}

const userColumns = `id, email, name, role, password_hash, telegram_chat_id, telegram_bot_token, is_active, created_at, updated_at`

// Row represents a row from the users table.
type Row struct {
	ID               uuid.UUID
	Email            string
	Name             string
	Role             string
	PasswordHash     string
	TelegramChatID   *string
	TelegramBotToken *string
	IsActive         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func scanRow(row pgx.Row) (Row, error) {
	var u Row
	err := row.Scan(
		&u.ID, &u.Email, &u.Name, &u.Role, &u.PasswordHash,
		&u.TelegramChatID, &u.TelegramBotToken, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	return u, err
}

// GetByID returns a single active user by id.
func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (Row, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND is_active = true`
	return scanRow(s.dbtx.QueryRow(ctx, query, id))
}

// GetByEmail returns a single active user by email.
func (s *Store) GetByEmail(ctx context.Context, email string) (Row, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND is_active = true`
	return scanRow(s.dbtx.QueryRow(ctx, query, email))
}

// AccountByEmail adapts GetByEmail to the login handler's account lookup.
func (s *Store) AccountByEmail(ctx context.Context, email string) (*auth.Account, error) {
	u, err := s.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrNoAccount
		}
		return nil, fmt.Errorf("looking up account: %w", err)
	}
	return &auth.Account{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Role:         u.Role,
		PasswordHash: u.PasswordHash,
	}, nil
}

// TelegramLink returns the user's linked chat id and personal bot token.
// Both are empty strings when the user has no link.
func (s *Store) TelegramLink(ctx context.Context, id uuid.UUID) (chatID, botToken string, err error) {
	var chat, token *string
	row := s.dbtx.QueryRow(ctx,
		`SELECT telegram_chat_id, telegram_bot_token FROM users WHERE id = $1 AND is_active = true`, id)
	if err := row.Scan(&chat, &token); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", "", nil
		}
		return "", "", fmt.Errorf("looking up telegram link: %w", err)
	}
	if chat != nil {
		chatID = *chat
	}
	if token != nil {
		botToken = *token
	}
	return chatID, botToken, nil
}

// CreateParams holds parameters for creating a user.
type CreateParams struct {
	Email        string
	Name         string
	Role         string
	PasswordHash string
}

// Create inserts a new user.
func (s *Store) Create(ctx context.Context, p CreateParams) (Row, error) {
	query := `INSERT INTO users (email, name, role, password_hash)
	VALUES ($1, $2, $3, $4)
	RETURNING ` + userColumns
	return scanRow(s.dbtx.QueryRow(ctx, query, p.Email, p.Name, p.Role, p.PasswordHash))
}

// UpsertByEmail creates the user or refreshes an existing row's name, role
// and password. Used by the seeder so re-running it is safe.
func (s *Store) UpsertByEmail(ctx context.Context, p CreateParams) (Row, error) {
	query := `INSERT INTO users (email, name, role, password_hash)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (email) DO UPDATE
	SET name = EXCLUDED.name, role = EXCLUDED.role, password_hash = EXCLUDED.password_hash, updated_at = now()
	RETURNING ` + userColumns
	return scanRow(s.dbtx.QueryRow(ctx, query, p.Email, p.Name, p.Role, p.PasswordHash))
}

// SetTelegramLink stores or clears the user's telegram link. Empty strings
// clear the corresponding column.
func (s *Store) SetTelegramLink(ctx context.Context, id uuid.UUID, chatID, botToken string) error {
	var chat, token *string
	if chatID != "" {
		chat = &chatID
	}
	if botToken != "" {
		token = &botToken
	}
	tag, err := s.dbtx.Exec(ctx,
		`UPDATE users SET telegram_chat_id = $2, telegram_bot_token = $3, updated_at = now() WHERE id = $1`,
		id, chat, token)
	if err != nil {
		return fmt.Errorf("updating telegram link: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
