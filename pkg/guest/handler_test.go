package guest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vannyakh/pkasla-pro-sub001/internal/auth"
)

func doRequest(router http.Handler, identity *auth.Identity, method, target, body string) *httptest.ResponseRecorder {
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
	router.ServeHTTP(w, req)
	return w
}

func TestHandleAddGift_Validation(t *testing.T) {
	h := NewHandler(testLogger(), nil, nil)
	identity := ownerIdentity(uuid.New())
	target := "/" + uuid.NewString() + "/gifts"

	tests := []struct {
		name string
		body string
		want int
	}{
		{"empty body", ``, http.StatusBadRequest},
		{"zero amount", `{"amount": 0, "currency": "USD"}`, http.StatusUnprocessableEntity},
		{"negative amount", `{"amount": -5, "currency": "USD"}`, http.StatusUnprocessableEntity},
		{"unsupported currency", `{"amount": 20, "currency": "EUR"}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(h.Routes(), identity, http.MethodPost, target, tt.body)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestHandleCreate_Validation(t *testing.T) {
	h := NewHandler(testLogger(), nil, nil)
	identity := ownerIdentity(uuid.New())

	parent := chi.NewRouter()
	parent.Mount("/events/{eventID}/guests", h.EventRoutes())
	target := "/events/" + uuid.NewString() + "/guests/"

	tests := []struct {
		name string
		body string
		want int
	}{
		{"missing side", `{"name": "Sokha"}`, http.StatusUnprocessableEntity},
		{"bad side", `{"name": "Sokha", "side": "cousin"}`, http.StatusUnprocessableEntity},
		{"name too short", `{"name": "S", "side": "bride"}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(parent, identity, http.MethodPost, target, tt.body)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestHandleCheckIn_InvalidID(t *testing.T) {
	h := NewHandler(testLogger(), nil, nil)
	w := doRequest(h.Routes(), ownerIdentity(uuid.New()), http.MethodPost, "/not-a-uuid/check-in", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestHandleCheckIn_ReadonlyForbidden(t *testing.T) {
	h := NewHandler(testLogger(), nil, nil)
	id := uuid.New()
	identity := &auth.Identity{UserID: &id, Role: auth.RoleReadonly}
	w := doRequest(h.Routes(), identity, http.MethodPost, "/"+uuid.NewString()+"/check-in", "")
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestHandleCheckIn_EndToEnd(t *testing.T) {
	ownerID := uuid.New()
	f := &fakeDB{detail: sampleDetail(ownerID)}
	disp := &fakeDispatcher{}
	h := NewHandler(testLogger(), nil, newTestService(f, disp))

	w := doRequest(h.Routes(), ownerIdentity(ownerID), http.MethodPost, "/"+f.detail.ID.String()+"/check-in", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), StatusCheckedIn) {
		t.Errorf("body = %s", w.Body.String())
	}
	if len(disp.calls) != 1 || disp.calls[0].kind != "check_in" {
		t.Errorf("dispatcher calls = %+v", disp.calls)
	}
}

func TestHandleCreate_EventValidation(t *testing.T) {
	// Invalid event id in the URL is rejected before the body is read.
	h := NewHandler(testLogger(), nil, nil)
	router := h.EventRoutes()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(auth.WithIdentity(context.Background(), ownerIdentity(uuid.New())))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}
