package audit

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"

	"github.com/google/uuid"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		xff        string
		xRealIP    string
		remoteAddr string
		want       string
	}{
		{name: "forwarded-for wins", xff: "203.0.113.50, 70.41.3.18", xRealIP: "198.51.100.23", remoteAddr: "192.0.2.1:12345", want: "203.0.113.50"},
		{name: "real-ip beats socket peer", xRealIP: "198.51.100.23", remoteAddr: "192.0.2.1:12345", want: "198.51.100.23"},
		{name: "socket peer fallback", remoteAddr: "192.0.2.1:12345", want: "192.0.2.1"},
		{name: "garbage forwarded-for ignored", xff: "not-an-ip", remoteAddr: "192.0.2.1:12345", want: "192.0.2.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xRealIP != "" {
				r.Header.Set("X-Real-IP", tt.xRealIP)
			}
			r.RemoteAddr = tt.remoteAddr

			if got := clientIP(r); got != netip.MustParseAddr(tt.want) {
				t.Errorf("clientIP() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLog_DropsWhenFull(t *testing.T) {
	w := NewWriter(nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	// Not started, so nothing drains the channel.

	for i := 0; i < bufferSize+1; i++ {
		w.Log(Entry{Action: "update", Resource: "settings"})
	}

	if len(w.entries) != bufferSize {
		t.Errorf("buffered %d entries, want %d (overflow dropped)", len(w.entries), bufferSize)
	}
}

func TestLogFromRequest(t *testing.T) {
	w := NewWriter(nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

	r := httptest.NewRequest(http.MethodPost, "/api/v1/events", nil)
	r.Header.Set("User-Agent", "pkasla-admin/1.0")
	r.Header.Set("X-Real-IP", "198.51.100.23")

	eventID := uuid.New()
	w.LogFromRequest(r, "create", "event", eventID, nil)

	entry := <-w.entries
	if entry.Action != "create" || entry.Resource != "event" {
		t.Errorf("entry = %q %q, want create event", entry.Action, entry.Resource)
	}
	if entry.ResourceID != eventID {
		t.Errorf("ResourceID = %v, want %v", entry.ResourceID, eventID)
	}
	if entry.IPAddress == nil || *entry.IPAddress != netip.MustParseAddr("198.51.100.23") {
		t.Errorf("IPAddress = %v, want 198.51.100.23", entry.IPAddress)
	}
	if entry.UserAgent == nil || *entry.UserAgent != "pkasla-admin/1.0" {
		t.Errorf("UserAgent = %v, want pkasla-admin/1.0", entry.UserAgent)
	}
}
