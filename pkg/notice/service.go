package notice

import (
	"embed"
	"log/slog"

	"github.com/tendant/simple-verify/pkg/notification"
)

//go:embed templates/*
var templateFiles embed.FS

func loadTemplate(filename string) string {
	content, err := templateFiles.ReadFile(filename)
	if err != nil {
		slog.Error("Error reading template file!", "err", err, "filename", filename)
		return ""
	}
	return string(content)
}

// NewNotificationManager builds the notification manager used by the
// verification flow. When smtpConfig is nil no email notifier is registered
// and the manager reports mail as not configured; templates are still
// registered so a notifier can be attached later (tests do this with
// MockNotifier).
func NewNotificationManager(smtpConfig *notification.SMTPConfig) (*notification.NotificationManager, error) {
	notificationManager := notification.NewNotificationManager()

	if smtpConfig != nil {
		emailNotifier := notification.NewEmailNotifier(*smtpConfig)
		notificationManager.RegisterNotifier(notification.EmailSystem, emailNotifier)
	}

	err := notificationManager.RegisterNotification(notification.EmailVerificationNotice, notification.EmailSystem, notification.NoticeTemplate{
		Subject: "Verify Your Email Address",
		Text:    loadTemplate("templates/email/email_verification.txt"),
		Html:    loadTemplate("templates/email/email_verification.html"),
	})
	if err != nil {
		slog.Error("failed to register email verification notification", "error", err)
		return nil, err
	}

	return notificationManager, nil
}
