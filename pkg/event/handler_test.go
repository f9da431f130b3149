package event

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/vannyakh/pkasla-pro-sub001/internal/auth"
)

func doRequest(h *Handler, identity *auth.Identity, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if identity != nil {
		req = req.WithContext(auth.WithIdentity(context.Background(), identity))
	}
	w := httptest.NewRecorder()
	h.Routes(nil).ServeHTTP(w, req)
	return w
}

func hostIdentity() *auth.Identity {
	id := uuid.New()
	return &auth.Identity{UserID: &id, Role: auth.RoleHost, Method: auth.MethodDev}
}

func TestHandleCreate_Validation(t *testing.T) {
	h := NewHandler(testLogger(), nil, nil)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"empty body", ``, http.StatusBadRequest},
		{"missing name", `{"date": "2026-11-21T00:00:00Z"}`, http.StatusUnprocessableEntity},
		{"name too short", `{"name": "x", "date": "2026-11-21T00:00:00Z"}`, http.StatusUnprocessableEntity},
		{"missing date", `{"name": "Dara & Bopha"}`, http.StatusUnprocessableEntity},
		{"unknown field", `{"name": "Dara & Bopha", "date": "2026-11-21T00:00:00Z", "color": "gold"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(h, hostIdentity(), http.MethodPost, "/", tt.body)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestHandleCreate_ReadonlyForbidden(t *testing.T) {
	h := NewHandler(testLogger(), nil, nil)
	id := uuid.New()
	identity := &auth.Identity{UserID: &id, Role: auth.RoleReadonly}

	w := doRequest(h, identity, http.MethodPost, "/", `{"name": "Dara & Bopha", "date": "2026-11-21T00:00:00Z"}`)
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestHandleGet_InvalidID(t *testing.T) {
	h := NewHandler(testLogger(), nil, nil)
	w := doRequest(h, hostIdentity(), http.MethodGet, "/not-a-uuid", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestHandleList_Unauthenticated(t *testing.T) {
	h := NewHandler(testLogger(), nil, nil)
	w := doRequest(h, nil, http.MethodGet, "/", "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestHandleGet_NotFound(t *testing.T) {
	svc := NewService(NewStore(&fakeDB{}), nil, testLogger())
	h := NewHandler(testLogger(), nil, svc)
	w := doRequest(h, hostIdentity(), http.MethodGet, "/"+uuid.NewString(), "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestHandleUpdate_NonOwnerForbidden(t *testing.T) {
	ownerID := uuid.New()
	f := &fakeDB{row: &Row{ID: uuid.New(), OwnerID: ownerID, Name: "Dara & Bopha"}}
	svc := NewService(NewStore(f), nil, testLogger())
	h := NewHandler(testLogger(), nil, svc)

	w := doRequest(h, hostIdentity(), http.MethodPut, "/"+uuid.NewString(),
		`{"name": "Dara & Bopha", "date": "2026-11-21T00:00:00Z"}`)
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403: %s", w.Code, w.Body.String())
	}
}
