package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// Middleware returns an HTTP middleware that authenticates the caller via a
// Bearer JWT and stores the resulting Identity in the request context.
//
// Authentication precedence:
//  1. Authorization: Bearer <jwt>  →  local HS256 validation
//  2. X-Dev-Role: <role>          →  development-only fallback (DevMode)
//
// Requests without credentials pass through unauthenticated; RequireAuth
// rejects them downstream.
func Middleware(verifier *TokenVerifier, logger *slog.Logger, devMode bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var identity *Identity

			if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
				raw := strings.TrimSpace(authHeader[len("Bearer "):])

				claims, err := verifier.Verify(raw)
				if err != nil {
					logger.Warn("token verification failed", "error", err)
					respondErr(w, http.StatusUnauthorized, "unauthorized", "invalid token")
					return
				}

				identity = &Identity{
					Email:  claims.Email,
					Name:   claims.Name,
					Role:   claims.Role,
					Method: MethodJWT,
				}
				if id, err := uuid.Parse(claims.Subject); err == nil {
					identity.UserID = &id
				}
			}

			// Dev fallback: lets local frontends hit the API without a login flow.
			if identity == nil && devMode {
				if role := r.Header.Get("X-Dev-Role"); role != "" {
					identity = &Identity{Role: role, Method: MethodDev}
				}
			}

			if identity != nil {
				r = r.WithContext(WithIdentity(r.Context(), identity))
			}

			next.ServeHTTP(w, r)
		})
	}
}

func respondErr(w http.ResponseWriter, status int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   errCode,
		"message": message,
	})
}
