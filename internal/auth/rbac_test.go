package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func requestWithRole(role string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if role == "" {
		return r
	}
	return r.WithContext(WithIdentity(r.Context(), &Identity{Role: role, Method: MethodDev}))
}

func TestRequireAuth(t *testing.T) {
	tests := []struct {
		name       string
		role       string
		wantStatus int
	}{
		{"authenticated", RoleReadonly, http.StatusOK},
		{"unauthenticated", "", http.StatusUnauthorized},
	}

	h := RequireAuth(okHandler())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, requestWithRole(tt.role))
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name       string
		role       string
		allowed    []string
		wantStatus int
	}{
		{"admin allowed", RoleAdmin, []string{RoleAdmin}, http.StatusOK},
		{"host rejected on admin route", RoleHost, []string{RoleAdmin}, http.StatusForbidden},
		{"host allowed when listed", RoleHost, []string{RoleAdmin, RoleHost}, http.StatusOK},
		{"unauthenticated rejected", "", []string{RoleAdmin}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := RequireRole(tt.allowed...)(okHandler())
			w := httptest.NewRecorder()
			h.ServeHTTP(w, requestWithRole(tt.role))
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestRequireMinRole(t *testing.T) {
	tests := []struct {
		name       string
		role       string
		minRole    string
		wantStatus int
	}{
		{"admin passes host minimum", RoleAdmin, RoleHost, http.StatusOK},
		{"host passes host minimum", RoleHost, RoleHost, http.StatusOK},
		{"readonly fails host minimum", RoleReadonly, RoleHost, http.StatusForbidden},
		{"unknown role fails", "visitor", RoleReadonly, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := RequireMinRole(tt.minRole)(okHandler())
			w := httptest.NewRecorder()
			h.ServeHTTP(w, requestWithRole(tt.role))
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}
