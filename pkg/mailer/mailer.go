// Package mailer sends SMTP email using the email group of the settings
// document. It is only invoked from the admin test endpoint, so failures are
// returned to the caller instead of being absorbed.
package mailer

import (
	"fmt"
	"log/slog"

	"gopkg.in/gomail.v2"

	"github.com/vannyakh/pkasla-pro-sub001/pkg/settings"
)

// Mailer builds and delivers messages over SMTP.
type Mailer struct {
	logger *slog.Logger
	send   func(doc *settings.Settings, msg *gomail.Message) error
}

func New(logger *slog.Logger) *Mailer {
	return &Mailer{
		logger: logger,
		send: func(doc *settings.Settings, msg *gomail.Message) error {
			d := gomail.NewDialer(doc.EmailHost, doc.EmailPort, doc.EmailUsername, doc.EmailPassword)
			return d.DialAndSend(msg)
		},
	}
}

// SendTest delivers a short probe message to the given address using the
// SMTP credentials from the settings document.
func (m *Mailer) SendTest(doc *settings.Settings, to string) error {
	if doc.EmailHost == "" || doc.EmailFrom == "" {
		return fmt.Errorf("email is not configured")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", doc.EmailFrom)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", fmt.Sprintf("%s test email", doc.SiteName))
	msg.SetBody("text/plain", "This is a test email confirming your SMTP configuration works.")

	if err := m.send(doc, msg); err != nil {
		return fmt.Errorf("sending test email: %w", err)
	}
	m.logger.Info("test email sent", "to", to, "host", doc.EmailHost)
	return nil
}
