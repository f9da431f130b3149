// Package seed provisions the bootstrap admin account.
package seed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/vannyakh/pkasla-pro-sub001/internal/auth"
	"github.com/vannyakh/pkasla-pro-sub001/pkg/user"
)

// Run creates or refreshes the admin account named by PKASLA_ADMIN_EMAIL.
// It is idempotent: re-running updates the password instead of duplicating
// the account.
func Run(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger, adminEmail, adminPassword string) error {
	if adminEmail == "" || adminPassword == "" {
		return fmt.Errorf("PKASLA_ADMIN_EMAIL and PKASLA_ADMIN_PASSWORD must be set for seeding")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing admin password: %w", err)
	}

	store := user.NewStore(pool)
	row, err := store.UpsertByEmail(ctx, user.CreateParams{
		Email:        adminEmail,
		Name:         "Administrator",
		Role:         auth.RoleAdmin,
		PasswordHash: string(hash),
	})
	if err != nil {
		return fmt.Errorf("seeding admin account: %w", err)
	}

	logger.Info("seed: admin account ready", "user_id", row.ID, "email", row.Email)
	return nil
}
