package notification

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"log/slog"
	"sync"
	"time"

	"github.com/wneessen/go-mail"
)

type SMTPConfig struct {
	Host     string
	Port     int
	TLS      bool
	Username string
	Password string
	From     string
}

// EmailNotifier sends notices over SMTP. The underlying mail client is a
// process-lifetime handle created lazily on the first send and torn down by
// Close, so a service that never dispatches mail never opens a transport.
type EmailNotifier struct {
	SMTPConfig SMTPConfig

	mu     sync.Mutex
	client *mail.Client
}

// NewEmailNotifier creates an email notifier. The SMTP client itself is not
// built until the first Send.
func NewEmailNotifier(config SMTPConfig) *EmailNotifier {
	return &EmailNotifier{SMTPConfig: config}
}

// getClient returns the shared mail client, building it on first use.
func (e *EmailNotifier) getClient() (*mail.Client, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.client != nil {
		return e.client, nil
	}

	opts := []mail.Option{
		mail.WithPort(e.SMTPConfig.Port),
		mail.WithTimeout(30 * time.Second),
	}

	if e.SMTPConfig.Username != "" && e.SMTPConfig.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthLogin),
			mail.WithUsername(e.SMTPConfig.Username),
			mail.WithPassword(e.SMTPConfig.Password),
		)
	}

	if !e.SMTPConfig.TLS {
		opts = append(opts,
			mail.WithTLSConfig(&tls.Config{
				InsecureSkipVerify: true, // Skip hostname verification
			}),
			mail.WithTLSPolicy(mail.NoTLS),
		)
	} else {
		opts = append(opts,
			mail.WithTLSConfig(&tls.Config{
				InsecureSkipVerify: true,
			}),
			mail.WithTLSPolicy(mail.TLSMandatory),
		)
	}

	slog.Info("Creating mail client", "Host", e.SMTPConfig.Host, "Port", e.SMTPConfig.Port)
	client, err := mail.NewClient(e.SMTPConfig.Host, opts...)
	if err != nil {
		slog.Error("Failed to create mail client", "err", err)
		return nil, err
	}

	e.client = client
	return client, nil
}

// Close tears down the mail transport if it was ever built.
func (e *EmailNotifier) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.client == nil {
		return nil
	}
	err := e.client.Close()
	e.client = nil
	return err
}

func renderTemplate(name, source string, data map[string]string) (string, error) {
	tmpl, err := template.New(name).Parse(source)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (e *EmailNotifier) Send(noticeType NoticeType, notification NotificationData, noticeTemplate NoticeTemplate) error {
	if notification.To == "" {
		return fmt.Errorf("email notification requires 'To' address")
	}

	var textBody string
	if noticeTemplate.Text != "" {
		body, err := renderTemplate("text", noticeTemplate.Text, notification.Data)
		if err != nil {
			slog.Error("Failed to render text template", "type", noticeType, "err", err)
			return err
		}
		textBody = body
	}

	var htmlBody string
	if noticeTemplate.Html != "" {
		body, err := renderTemplate("html", noticeTemplate.Html, notification.Data)
		if err != nil {
			slog.Error("Failed to render HTML template", "type", noticeType, "err", err)
			return err
		}
		htmlBody = body
	}

	subject := noticeTemplate.Subject
	if notification.Subject != "" {
		subject = notification.Subject
	}

	msg := mail.NewMsg()
	if err := msg.From(e.SMTPConfig.From); err != nil {
		slog.Error("Failed to set from address", "err", err)
		return err
	}
	if err := msg.To(notification.To); err != nil {
		slog.Error("Failed to set to address", "err", err)
		return err
	}
	msg.Subject(subject)

	if textBody != "" {
		msg.SetBodyString(mail.TypeTextPlain, textBody)
	}
	if htmlBody != "" {
		if textBody != "" {
			msg.AddAlternativeString(mail.TypeTextHTML, htmlBody)
		} else {
			msg.SetBodyString(mail.TypeTextHTML, htmlBody)
		}
	}

	client, err := e.getClient()
	if err != nil {
		return err
	}

	if err := client.DialAndSend(msg); err != nil {
		slog.Error("Failed to send email", "err", err)
		return err
	}

	slog.Info("Email sent", "to", notification.To, "type", noticeType)
	return nil
}
