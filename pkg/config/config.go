package config

import (
	"time"

	dbutils "github.com/tendant/db-utils/db"
	"github.com/tendant/simple-verify/pkg/notification"
)

// DbConfig holds the Postgres connection settings
type DbConfig struct {
	Host     string `env:"VERIFY_PG_HOST" env-default:"localhost"`
	Port     uint16 `env:"VERIFY_PG_PORT" env-default:"5432"`
	Database string `env:"VERIFY_PG_DATABASE" env-default:"verify_db"`
	User     string `env:"VERIFY_PG_USER" env-default:"verify"`
	Password string `env:"VERIFY_PG_PASSWORD" env-default:"pwd"`
}

// ToDbConfig converts to the db-utils pool configuration
func (d DbConfig) ToDbConfig() dbutils.DbConfig {
	return dbutils.DbConfig{
		Host:     d.Host,
		Port:     d.Port,
		Database: d.Database,
		User:     d.User,
		Password: d.Password,
	}
}

// EmailConfig holds the SMTP settings for the verification emails
type EmailConfig struct {
	Host     string `env:"EMAIL_HOST"`
	Port     int    `env:"EMAIL_PORT" env-default:"587"`
	Username string `env:"EMAIL_USERNAME"`
	Password string `env:"EMAIL_PASSWORD"`
	From     string `env:"EMAIL_FROM" env-default:"noreply@example.com"`
	TLS      bool   `env:"EMAIL_TLS" env-default:"true"`
}

// IsConfigured reports whether an SMTP host is set at all. Without one
// the service starts with mail unavailable rather than failing.
func (e EmailConfig) IsConfigured() bool {
	return e.Host != ""
}

// ToSMTPConfig converts to the notification layer's SMTP configuration
func (e EmailConfig) ToSMTPConfig() notification.SMTPConfig {
	return notification.SMTPConfig{
		Host:     e.Host,
		Port:     e.Port,
		Username: e.Username,
		Password: e.Password,
		From:     e.From,
		TLS:      e.TLS,
	}
}

// VerificationConfig holds the token and throttle settings
type VerificationConfig struct {
	TTLHours              int    `env:"VERIFICATION_TTL_HOURS" env-default:"48"`
	ResendIntervalMinutes int    `env:"RESEND_INTERVAL_MINUTES" env-default:"2"`
	BaseURL               string `env:"BASE_URL" env-default:"http://localhost:4000"`
}

// TokenExpiry returns the configured TTL as a duration, clamped to a
// floor of one hour.
func (v VerificationConfig) TokenExpiry() time.Duration {
	hours := v.TTLHours
	if hours < 1 {
		hours = 1
	}
	return time.Duration(hours) * time.Hour
}

// ResendInterval returns the configured throttle interval as a duration,
// clamped to a floor of one minute.
func (v VerificationConfig) ResendInterval() time.Duration {
	minutes := v.ResendIntervalMinutes
	if minutes < 1 {
		minutes = 1
	}
	return time.Duration(minutes) * time.Minute
}

// JwtConfig holds the session token settings
type JwtConfig struct {
	Secret            string `env:"JWT_SECRET" env-default:"very-secure-jwt-secret"`
	Issuer            string `env:"JWT_ISSUER" env-default:"simple-verify"`
	Audience          string `env:"JWT_AUDIENCE" env-default:"simple-verify"`
	AccessTokenExpiry string `env:"ACCESS_TOKEN_EXPIRY" env-default:"1h"`
}

// TokenExpiry parses the configured access token expiry, falling back to
// one hour when the value does not parse.
func (j JwtConfig) TokenExpiry() time.Duration {
	d, err := time.ParseDuration(j.AccessTokenExpiry)
	if err != nil || d <= 0 {
		return time.Hour
	}
	return d
}
