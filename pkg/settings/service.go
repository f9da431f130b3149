package settings

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// FieldError names one rejected field and why it was rejected.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is returned by Update when the merged document violates
// a bound, a cross-field rule, or a gateway enable requirement.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	fields := make([]string, len(v))
	for i, fe := range v {
		fields[i] = fe.Field
	}
	return "invalid settings: " + strings.Join(fields, ", ")
}

// Service applies partial updates to the settings document and enforces its
// invariants.
type Service struct {
	store   *Store
	logger  *slog.Logger
	updates prometheus.Counter
}

func NewService(store *Store, logger *slog.Logger, updates prometheus.Counter) *Service {
	return &Service{store: store, logger: logger, updates: updates}
}

// GetSafe returns the document without its sensitive fields.
func (s *Service) GetSafe(ctx context.Context) (*SafeView, error) {
	doc, err := s.store.Get(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Safe(), nil
}

// GetWithSensitive returns the full document, secrets included. Callers are
// internal consumers such as the notification dispatcher and the mailer.
func (s *Service) GetWithSensitive(ctx context.Context) (*Settings, error) {
	return s.store.Get(ctx)
}

// Update merges the request into the current document, validates the result
// and persists it. The returned value is the safe view of the new document.
func (s *Service) Update(ctx context.Context, req *UpdateRequest) (*SafeView, error) {
	current, err := s.store.Get(ctx)
	if err != nil {
		return nil, err
	}

	merged := *current
	applyUpdate(&merged, req)

	if errs := validate(current, &merged); len(errs) > 0 {
		return nil, errs
	}

	if err := s.store.Put(ctx, &merged); err != nil {
		return nil, err
	}
	if s.updates != nil {
		s.updates.Inc()
	}
	s.logger.Info("settings updated")
	return merged.Safe(), nil
}

func applyUpdate(doc *Settings, req *UpdateRequest) {
	setStr := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	// Secrets keep their stored value when the client sends "", which is
	// what a form whose password inputs render blank submits.
	setSecret := func(dst *string, src *string) {
		if src != nil && *src != "" {
			*dst = *src
		}
	}
	setBool := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	setInt := func(dst *int, src *int) {
		if src != nil {
			*dst = *src
		}
	}

	setStr(&doc.SiteName, req.SiteName)
	setStr(&doc.SiteURL, req.SiteURL)
	setStr(&doc.SiteDescription, req.SiteDescription)
	setBool(&doc.MaintenanceMode, req.MaintenanceMode)
	setBool(&doc.RegistrationEnabled, req.RegistrationEnabled)

	setInt(&doc.SessionTimeout, req.SessionTimeout)
	setInt(&doc.MaxLoginAttempts, req.MaxLoginAttempts)
	setBool(&doc.EmailVerificationRequired, req.EmailVerificationRequired)
	setBool(&doc.TwoFactorEnabled, req.TwoFactorEnabled)
	setInt(&doc.PasswordMinLength, req.PasswordMinLength)

	setStr(&doc.StorageProvider, req.StorageProvider)
	setStr(&doc.R2AccountID, req.R2AccountID)
	setSecret(&doc.R2AccessKeyID, req.R2AccessKeyID)
	setSecret(&doc.R2SecretAccessKey, req.R2SecretAccessKey)
	setStr(&doc.R2BucketName, req.R2BucketName)

	setBool(&doc.EmailEnabled, req.EmailEnabled)
	setStr(&doc.EmailFrom, req.EmailFrom)
	setStr(&doc.EmailHost, req.EmailHost)
	setInt(&doc.EmailPort, req.EmailPort)
	setStr(&doc.EmailUsername, req.EmailUsername)
	setSecret(&doc.EmailPassword, req.EmailPassword)

	setBool(&doc.StripeEnabled, req.StripeEnabled)
	setStr(&doc.StripePublishableKey, req.StripePublishableKey)
	setSecret(&doc.StripeSecretKey, req.StripeSecretKey)
	setSecret(&doc.StripeWebhookSecret, req.StripeWebhookSecret)
	setBool(&doc.BakongEnabled, req.BakongEnabled)
	setStr(&doc.BakongMerchantID, req.BakongMerchantID)
	setSecret(&doc.BakongAPIToken, req.BakongAPIToken)

	setBool(&doc.TelegramBotEnabled, req.TelegramBotEnabled)
	setSecret(&doc.TelegramBotToken, req.TelegramBotToken)
	setStr(&doc.TelegramChatID, req.TelegramChatID)
	setBool(&doc.NotifyOnGuestCheckIn, req.NotifyOnGuestCheckIn)
	setBool(&doc.NotifyOnNewGuest, req.NotifyOnNewGuest)
	setBool(&doc.NotifyOnEventCreated, req.NotifyOnEventCreated)
	setBool(&doc.NotifyOnGiftAdded, req.NotifyOnGiftAdded)
}

// validate checks the merged document. The previous document is needed to
// tell an enable transition apart from an already-enabled gateway: enabling
// requires the gateway's credentials to be present after the merge.
func validate(prev, next *Settings) ValidationErrors {
	var errs ValidationErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if next.SessionTimeout < 300 || next.SessionTimeout > 86400 {
		add("sessionTimeout", "must be between 300 and 86400 seconds")
	}
	if next.MaxLoginAttempts < 3 || next.MaxLoginAttempts > 10 {
		add("maxLoginAttempts", "must be between 3 and 10")
	}
	if next.PasswordMinLength < 6 || next.PasswordMinLength > 32 {
		add("passwordMinLength", "must be between 6 and 32")
	}
	if next.EmailPort < 1 || next.EmailPort > 65535 {
		add("emailPort", "must be between 1 and 65535")
	}

	if next.StorageProvider == "r2" {
		if next.R2AccountID == "" {
			add("r2AccountId", "required when storageProvider is r2")
		}
		if next.R2BucketName == "" {
			add("r2BucketName", "required when storageProvider is r2")
		}
	}

	if next.EmailEnabled && !prev.EmailEnabled {
		if next.EmailFrom == "" {
			add("emailFrom", "required to enable email")
		}
		if next.EmailHost == "" {
			add("emailHost", "required to enable email")
		}
	}

	// Enabling a payment gateway or the telegram bot requires its
	// credentials to be present in the merged document. Already-enabled
	// gateways are left alone so unrelated updates keep working.
	if next.StripeEnabled && !prev.StripeEnabled {
		if next.StripePublishableKey == "" {
			add("stripePublishableKey", "required to enable stripe")
		}
		if next.StripeSecretKey == "" {
			add("stripeSecretKey", "required to enable stripe")
		}
	}
	if next.BakongEnabled && !prev.BakongEnabled {
		if next.BakongMerchantID == "" {
			add("bakongMerchantId", "required to enable bakong")
		}
		if next.BakongAPIToken == "" {
			add("bakongApiToken", "required to enable bakong")
		}
	}
	if next.TelegramBotEnabled && !prev.TelegramBotEnabled {
		if next.TelegramBotToken == "" {
			add("telegramBotToken", "required to enable the telegram bot")
		}
		if next.TelegramChatID == "" {
			add("telegramChatId", "required to enable the telegram bot")
		}
	}

	return errs
}
