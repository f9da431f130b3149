// Package settings owns the single site-wide configuration document and its
// sensitive-field lifecycle.
package settings

import "time"

// Settings is the full configuration document, including secrets. It is
// persisted as a single JSONB row; only this package reads or writes it.
type Settings struct {
	// General
	SiteName            string `json:"siteName"`
	SiteURL             string `json:"siteUrl"`
	SiteDescription     string `json:"siteDescription"`
	MaintenanceMode     bool   `json:"maintenanceMode"`
	RegistrationEnabled bool   `json:"registrationEnabled"`

	// Security
	SessionTimeout            int  `json:"sessionTimeout"` // seconds
	MaxLoginAttempts          int  `json:"maxLoginAttempts"`
	EmailVerificationRequired bool `json:"emailVerificationRequired"`
	TwoFactorEnabled          bool `json:"twoFactorEnabled"`
	PasswordMinLength         int  `json:"passwordMinLength"`

	// Storage
	StorageProvider   string `json:"storageProvider"` // "local" or "r2"
	R2AccountID       string `json:"r2AccountId"`
	R2AccessKeyID     string `json:"r2AccessKeyId"`     // sensitive
	R2SecretAccessKey string `json:"r2SecretAccessKey"` // sensitive
	R2BucketName      string `json:"r2BucketName"`

	// Email
	EmailEnabled  bool   `json:"emailEnabled"`
	EmailFrom     string `json:"emailFrom"`
	EmailHost     string `json:"emailHost"`
	EmailPort     int    `json:"emailPort"`
	EmailUsername string `json:"emailUsername"`
	EmailPassword string `json:"emailPassword"` // sensitive

	// Payments
	StripeEnabled        bool   `json:"stripeEnabled"`
	StripePublishableKey string `json:"stripePublishableKey"`
	StripeSecretKey      string `json:"stripeSecretKey"`     // sensitive
	StripeWebhookSecret  string `json:"stripeWebhookSecret"` // sensitive
	BakongEnabled        bool   `json:"bakongEnabled"`
	BakongMerchantID     string `json:"bakongMerchantId"`
	BakongAPIToken       string `json:"bakongApiToken"` // sensitive

	// Telegram integration
	TelegramBotEnabled   bool   `json:"telegramBotEnabled"`
	TelegramBotToken     string `json:"telegramBotToken"` // sensitive
	TelegramChatID       string `json:"telegramChatId"`
	NotifyOnGuestCheckIn bool   `json:"notifyOnGuestCheckIn"`
	NotifyOnNewGuest     bool   `json:"notifyOnNewGuest"`
	NotifyOnEventCreated bool   `json:"notifyOnEventCreated"`
	NotifyOnGiftAdded    bool   `json:"notifyOnGiftAdded"`

	UpdatedAt time.Time `json:"-"`
}

// Defaults returns the settings document created on first access.
func Defaults() *Settings {
	return &Settings{
		SiteName:            "Pkasla",
		SiteURL:             "http://localhost:3000",
		RegistrationEnabled: true,

		SessionTimeout:    3600,
		MaxLoginAttempts:  5,
		PasswordMinLength: 8,

		StorageProvider: "local",

		EmailPort: 587,

		NotifyOnGuestCheckIn: true,
		NotifyOnNewGuest:     true,
		NotifyOnEventCreated: true,
		NotifyOnGiftAdded:    true,
	}
}

// SafeView is the settings shape exposed to API clients. Sensitive fields are
// absent from the type entirely, never just blanked.
type SafeView struct {
	SiteName            string `json:"siteName"`
	SiteURL             string `json:"siteUrl"`
	SiteDescription     string `json:"siteDescription"`
	MaintenanceMode     bool   `json:"maintenanceMode"`
	RegistrationEnabled bool   `json:"registrationEnabled"`

	SessionTimeout            int  `json:"sessionTimeout"`
	MaxLoginAttempts          int  `json:"maxLoginAttempts"`
	EmailVerificationRequired bool `json:"emailVerificationRequired"`
	TwoFactorEnabled          bool `json:"twoFactorEnabled"`
	PasswordMinLength         int  `json:"passwordMinLength"`

	StorageProvider string `json:"storageProvider"`
	R2AccountID     string `json:"r2AccountId"`
	R2BucketName    string `json:"r2BucketName"`

	EmailEnabled  bool   `json:"emailEnabled"`
	EmailFrom     string `json:"emailFrom"`
	EmailHost     string `json:"emailHost"`
	EmailPort     int    `json:"emailPort"`
	EmailUsername string `json:"emailUsername"`

	StripeEnabled        bool   `json:"stripeEnabled"`
	StripePublishableKey string `json:"stripePublishableKey"`
	BakongEnabled        bool   `json:"bakongEnabled"`
	BakongMerchantID     string `json:"bakongMerchantId"`

	TelegramBotEnabled   bool   `json:"telegramBotEnabled"`
	TelegramChatID       string `json:"telegramChatId"`
	NotifyOnGuestCheckIn bool   `json:"notifyOnGuestCheckIn"`
	NotifyOnNewGuest     bool   `json:"notifyOnNewGuest"`
	NotifyOnEventCreated bool   `json:"notifyOnEventCreated"`
	NotifyOnGiftAdded    bool   `json:"notifyOnGiftAdded"`

	UpdatedAt time.Time `json:"updatedAt"`
}

// Safe projects the document onto its non-sensitive view.
func (s *Settings) Safe() *SafeView {
	return &SafeView{
		SiteName:            s.SiteName,
		SiteURL:             s.SiteURL,
		SiteDescription:     s.SiteDescription,
		MaintenanceMode:     s.MaintenanceMode,
		RegistrationEnabled: s.RegistrationEnabled,

		SessionTimeout:            s.SessionTimeout,
		MaxLoginAttempts:          s.MaxLoginAttempts,
		EmailVerificationRequired: s.EmailVerificationRequired,
		TwoFactorEnabled:          s.TwoFactorEnabled,
		PasswordMinLength:         s.PasswordMinLength,

		StorageProvider: s.StorageProvider,
		R2AccountID:     s.R2AccountID,
		R2BucketName:    s.R2BucketName,

		EmailEnabled:  s.EmailEnabled,
		EmailFrom:     s.EmailFrom,
		EmailHost:     s.EmailHost,
		EmailPort:     s.EmailPort,
		EmailUsername: s.EmailUsername,

		StripeEnabled:        s.StripeEnabled,
		StripePublishableKey: s.StripePublishableKey,
		BakongEnabled:        s.BakongEnabled,
		BakongMerchantID:     s.BakongMerchantID,

		TelegramBotEnabled:   s.TelegramBotEnabled,
		TelegramChatID:       s.TelegramChatID,
		NotifyOnGuestCheckIn: s.NotifyOnGuestCheckIn,
		NotifyOnNewGuest:     s.NotifyOnNewGuest,
		NotifyOnEventCreated: s.NotifyOnEventCreated,
		NotifyOnGiftAdded:    s.NotifyOnGiftAdded,

		UpdatedAt: s.UpdatedAt,
	}
}

// UpdateRequest is the partial update payload for PUT/PATCH /settings.
// Nil fields are left unchanged. Sensitive fields set to the empty string
// are also left unchanged, so clients can re-save a form whose secret
// inputs render blank.
type UpdateRequest struct {
	SiteName            *string `json:"siteName"`
	SiteURL             *string `json:"siteUrl" validate:"omitempty,url"`
	SiteDescription     *string `json:"siteDescription"`
	MaintenanceMode     *bool   `json:"maintenanceMode"`
	RegistrationEnabled *bool   `json:"registrationEnabled"`

	SessionTimeout            *int  `json:"sessionTimeout"`
	MaxLoginAttempts          *int  `json:"maxLoginAttempts"`
	EmailVerificationRequired *bool `json:"emailVerificationRequired"`
	TwoFactorEnabled          *bool `json:"twoFactorEnabled"`
	PasswordMinLength         *int  `json:"passwordMinLength"`

	StorageProvider   *string `json:"storageProvider" validate:"omitempty,oneof=local r2"`
	R2AccountID       *string `json:"r2AccountId"`
	R2AccessKeyID     *string `json:"r2AccessKeyId"`
	R2SecretAccessKey *string `json:"r2SecretAccessKey"`
	R2BucketName      *string `json:"r2BucketName"`

	EmailEnabled  *bool   `json:"emailEnabled"`
	EmailFrom     *string `json:"emailFrom" validate:"omitempty,email"`
	EmailHost     *string `json:"emailHost"`
	EmailPort     *int    `json:"emailPort"`
	EmailUsername *string `json:"emailUsername"`
	EmailPassword *string `json:"emailPassword"`

	StripeEnabled        *bool   `json:"stripeEnabled"`
	StripePublishableKey *string `json:"stripePublishableKey"`
	StripeSecretKey      *string `json:"stripeSecretKey"`
	StripeWebhookSecret  *string `json:"stripeWebhookSecret"`
	BakongEnabled        *bool   `json:"bakongEnabled"`
	BakongMerchantID     *string `json:"bakongMerchantId"`
	BakongAPIToken       *string `json:"bakongApiToken"`

	TelegramBotEnabled   *bool   `json:"telegramBotEnabled"`
	TelegramBotToken     *string `json:"telegramBotToken"`
	TelegramChatID       *string `json:"telegramChatId"`
	NotifyOnGuestCheckIn *bool   `json:"notifyOnGuestCheckIn"`
	NotifyOnNewGuest     *bool   `json:"notifyOnNewGuest"`
	NotifyOnEventCreated *bool   `json:"notifyOnEventCreated"`
	NotifyOnGiftAdded    *bool   `json:"notifyOnGiftAdded"`
}
