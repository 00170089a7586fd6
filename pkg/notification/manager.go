package notification

import (
	"fmt"
	"io"
)

// NotificationManager holds the registered notifiers and the notice
// templates, and routes a send to the right channel. It is the single owned
// mail-dispatch resource injected into services; Shutdown releases any
// transports the notifiers opened.
type NotificationManager struct {
	notifiers            map[NotificationSystem]Notifier
	notificationRegistry map[NoticeType]map[NotificationSystem]NoticeTemplate
}

// NewNotificationManager creates and returns a new NotificationManager.
func NewNotificationManager() *NotificationManager {
	return &NotificationManager{
		notifiers:            make(map[NotificationSystem]Notifier),
		notificationRegistry: make(map[NoticeType]map[NotificationSystem]NoticeTemplate),
	}
}

// RegisterNotifier registers a notifier for a delivery system.
func (nm *NotificationManager) RegisterNotifier(system NotificationSystem, notifier Notifier) {
	nm.notifiers[system] = notifier
}

// RegisterNotification adds a notice template to the registry.
func (nm *NotificationManager) RegisterNotification(notifType NoticeType, system NotificationSystem, template NoticeTemplate) error {
	if notifType == "" || system == "" {
		return fmt.Errorf("invalid input: notification type and system cannot be empty")
	}
	if template.Subject == "" || (template.Text == "" && template.Html == "") {
		return fmt.Errorf("invalid template: subject and at least one of text or html are required")
	}

	if _, exists := nm.notificationRegistry[notifType]; !exists {
		nm.notificationRegistry[notifType] = make(map[NotificationSystem]NoticeTemplate)
	}

	nm.notificationRegistry[notifType][system] = template
	return nil
}

// IsEmailConfigured reports whether an email notifier is registered. The
// verification flow consults this before deciding whether a resend can be
// attempted at all.
func (nm *NotificationManager) IsEmailConfigured() bool {
	_, exists := nm.notifiers[EmailSystem]
	return exists
}

// Send sends a notice of the given type over the given system.
// Returns ErrNotConfigured when no notifier is registered for the system.
func (nm *NotificationManager) Send(notifType NoticeType, system NotificationSystem, notification NotificationData) error {
	systemTemplates, exists := nm.notificationRegistry[notifType]
	if !exists {
		return fmt.Errorf("no templates registered for notification type: %s", notifType)
	}

	template, exists := systemTemplates[system]
	if !exists {
		return fmt.Errorf("no template registered for system: %s under notification type: %s", system, notifType)
	}

	notifier, exists := nm.notifiers[system]
	if !exists {
		return fmt.Errorf("%w: %s", ErrNotConfigured, system)
	}

	return notifier.Send(notifType, notification, template)
}

// Shutdown closes every notifier that holds a transport handle.
func (nm *NotificationManager) Shutdown() error {
	var firstErr error
	for system, notifier := range nm.notifiers {
		closer, ok := notifier.(io.Closer)
		if !ok {
			continue
		}
		if err := closer.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing %s notifier: %w", system, err)
		}
	}
	return firstErr
}
