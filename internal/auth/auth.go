// Package auth provides request authentication and role-based access control.
package auth

import (
	"context"

	"github.com/google/uuid"
)

// Roles, ordered by privilege.
const (
	RoleAdmin    = "admin"
	RoleHost     = "host"
	RoleReadonly = "readonly"
)

// Authentication methods.
const (
	MethodJWT = "jwt"
	MethodDev = "dev"
)

// Identity describes the authenticated caller of a request.
type Identity struct {
	UserID *uuid.UUID
	Email  string
	Name   string
	Role   string
	Method string
}

type contextKey string

const identityKey contextKey = "identity"

// WithIdentity returns a context carrying the given identity.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// FromContext extracts the authenticated identity from the context.
// Returns nil if the request is unauthenticated.
func FromContext(ctx context.Context) *Identity {
	if id, ok := ctx.Value(identityKey).(*Identity); ok {
		return id
	}
	return nil
}
