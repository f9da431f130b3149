package mailer

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"gopkg.in/gomail.v2"

	"github.com/vannyakh/pkasla-pro-sub001/pkg/settings"
)

func configuredDoc() *settings.Settings {
	doc := settings.Defaults()
	doc.EmailEnabled = true
	doc.EmailFrom = "noreply@pkasla.local"
	doc.EmailHost = "smtp.example.com"
	doc.EmailUsername = "pkasla"
	doc.EmailPassword = "hunter2"
	return doc
}

func newTestMailer(send func(*settings.Settings, *gomail.Message) error) *Mailer {
	m := New(slog.New(slog.NewTextHandler(io.Discard, nil)))
	m.send = send
	return m
}

func TestSendTest_BuildsMessage(t *testing.T) {
	var got *gomail.Message
	m := newTestMailer(func(_ *settings.Settings, msg *gomail.Message) error {
		got = msg
		return nil
	})

	if err := m.SendTest(configuredDoc(), "host@example.com"); err != nil {
		t.Fatalf("SendTest: %v", err)
	}
	if got == nil {
		t.Fatal("send was not called")
	}
	if from := got.GetHeader("From"); len(from) != 1 || from[0] != "noreply@pkasla.local" {
		t.Errorf("From = %v", from)
	}
	if to := got.GetHeader("To"); len(to) != 1 || to[0] != "host@example.com" {
		t.Errorf("To = %v", to)
	}
}

func TestSendTest_Unconfigured(t *testing.T) {
	m := newTestMailer(func(*settings.Settings, *gomail.Message) error {
		t.Fatal("send should not be called")
		return nil
	})
	if err := m.SendTest(settings.Defaults(), "host@example.com"); err == nil {
		t.Fatal("expected an error for unconfigured email")
	}
}

func TestSendTest_DialFailure(t *testing.T) {
	m := newTestMailer(func(*settings.Settings, *gomail.Message) error {
		return errors.New("dial tcp: connection refused")
	})
	err := m.SendTest(configuredDoc(), "host@example.com")
	if err == nil {
		t.Fatal("expected an error")
	}
}
