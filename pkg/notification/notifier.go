package notification

import "errors"

// NotificationSystem represents a delivery channel (e.g. email, sms).
type NotificationSystem string

// NoticeType represents a kind of notice (e.g. "email_verification").
type NoticeType string

const (
	EmailSystem NotificationSystem = "email"

	// EmailVerificationNotice carries the verification link mail
	EmailVerificationNotice NoticeType = "email_verification"
)

// ErrNotConfigured is returned when a send is attempted on a system that has
// no notifier registered. Callers use it to distinguish "mail not configured"
// from a transport rejection.
var ErrNotConfigured = errors.New("no notifier configured for system")

// NotificationData holds the per-message fields handed to a notifier.
type NotificationData struct {
	To      string            // Recipient identifier (e.g. email address)
	Subject string            // Optional override of the template subject
	Data    map[string]string // Template variables
}

// NoticeTemplate holds the subject plus text and/or HTML bodies of a notice.
// Both bodies are html/template sources rendered with NotificationData.Data.
type NoticeTemplate struct {
	Subject string
	Text    string
	Html    string
}

// Notifier delivers a rendered notice over one channel.
type Notifier interface {
	Send(noticeType NoticeType, data NotificationData, template NoticeTemplate) error
}
