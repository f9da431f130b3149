package auth

import (
	"encoding/json"
	"net/http"
)

// roleLevel orders roles for hierarchical checks. Unknown roles rank below
// readonly.
var roleLevel = map[string]int{
	RoleAdmin:    30,
	RoleHost:     20,
	RoleReadonly: 10,
}

// RequireAuth rejects requests with no authenticated identity. Mounted once
// on the API router; role middlewares below assume it already ran and answer
// 403 rather than 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if FromContext(r.Context()) == nil {
			respondErr(w, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole permits only the listed roles, by exact match.
func RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[role] = struct{}{}
	}
	return requireIdentity(func(id *Identity) bool {
		_, ok := set[id.Role]
		return ok
	})
}

// RequireMinRole permits roles at or above the given level, so
// RequireMinRole(RoleHost) admits both host and admin.
func RequireMinRole(minRole string) func(http.Handler) http.Handler {
	minLevel := roleLevel[minRole]
	return requireIdentity(func(id *Identity) bool {
		return roleLevel[id.Role] >= minLevel
	})
}

func requireIdentity(allow func(*Identity) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := FromContext(r.Context())
			if id == nil {
				respondForbidden(w, "authentication required")
				return
			}
			if !allow(id) {
				respondForbidden(w, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func respondForbidden(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   "forbidden",
		"message": message,
	})
}
