package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type guestPayload struct {
	Name  string `json:"name" validate:"required,min=3"`
	Side  string `json:"side" validate:"required,oneof=bride groom both"`
	Email string `json:"email" validate:"omitempty,email"`
}

func decodeBody(t *testing.T, body string) error {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	var p guestPayload
	return Decode(r, &p)
}

func TestDecode_AcceptsWellFormedBody(t *testing.T) {
	if err := decodeBody(t, `{"name":"Sokha","side":"bride"}`); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
}

func TestDecode_RejectsBadBodies(t *testing.T) {
	cases := map[string]struct {
		body string
		want string
	}{
		"empty body":    {"", "request body is empty"},
		"broken json":   {`{invalid}`, "invalid JSON"},
		"unknown field": {`{"name":"Sokha","plusOne":true}`, "invalid JSON"},
		"trailing data": {`{"name":"Sokha"}{"side":"groom"}`, "single JSON object"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			err := decodeBody(t, tc.body)
			if err == nil {
				t.Fatalf("Decode(%q) expected error", tc.body)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error = %q, want it to mention %q", err, tc.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	valid := guestPayload{Name: "Sokha Chan", Side: "bride", Email: "sokha@example.com"}
	if errs := Validate(valid); len(errs) != 0 {
		t.Fatalf("Validate(valid) = %+v, want none", errs)
	}

	cases := map[string]struct {
		payload   guestPayload
		wantCount int
	}{
		"everything missing": {guestPayload{}, 2},
		"name too short":     {guestPayload{Name: "ab", Side: "groom"}, 1},
		"side not in enum":   {guestPayload{Name: "Sokha", Side: "neither"}, 1},
		"bad email":          {guestPayload{Name: "Sokha", Side: "both", Email: "nope"}, 1},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if errs := Validate(tc.payload); len(errs) != tc.wantCount {
				t.Errorf("Validate() = %d errors, want %d: %+v", len(errs), tc.wantCount, errs)
			}
		})
	}
}

func TestValidate_FieldNamesComeFromJSONTags(t *testing.T) {
	type req struct {
		SiteURL   string `json:"siteUrl" validate:"required,url"`
		EmailFrom string `json:"emailFrom" validate:"required,email"`
	}

	errs := Validate(req{})
	if len(errs) != 2 {
		t.Fatalf("Validate() = %d errors, want 2: %+v", len(errs), errs)
	}

	seen := map[string]bool{}
	for _, e := range errs {
		seen[e.Field] = true
	}
	if !seen["siteUrl"] || !seen["emailFrom"] {
		t.Errorf("field names = %+v, want siteUrl and emailFrom", errs)
	}
}

func TestDecodeAndValidate_StatusCodes(t *testing.T) {
	run := func(body string) (bool, *httptest.ResponseRecorder) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		w := httptest.NewRecorder()
		var p guestPayload
		return DecodeAndValidate(w, r, &p), w
	}

	if ok, _ := run(`{"name":"Sokha Chan","side":"bride"}`); !ok {
		t.Error("well-formed body should pass")
	}

	if ok, w := run(`{bad}`); ok || w.Code != http.StatusBadRequest {
		t.Errorf("malformed JSON: ok=%v status=%d, want false/400", ok, w.Code)
	}

	ok, w := run(`{"name":"ab"}`)
	if ok || w.Code != http.StatusUnprocessableEntity {
		t.Errorf("tag failures: ok=%v status=%d, want false/422", ok, w.Code)
	}

	var resp ValidationErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Error != "validation_error" || len(resp.Details) != 2 {
		t.Errorf("response = %+v, want validation_error with 2 details", resp)
	}
}
