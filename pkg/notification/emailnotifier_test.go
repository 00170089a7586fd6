package notification

import (
	"bufio"
	"bytes"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"
)

// serveSMTPSession speaks just enough SMTP for one delivery: greeting,
// EHLO, MAIL/RCPT, DATA and QUIT. The message body is collected into
// received for inspection after done closes.
func serveSMTPSession(ln net.Listener, received *bytes.Buffer, done chan struct{}) {
	defer close(done)

	conn, err := ln.Accept()
	if err != nil {
		return
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(10 * time.Second))

	reply := func(s string) { fmt.Fprintf(conn, "%s\r\n", s) }
	reply("220 localhost ESMTP ready")

	reader := bufio.NewReader(conn)
	inData := false
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimRight(line, "\r\n")

		if inData {
			if line == "." {
				inData = false
				reply("250 2.0.0 OK")
				continue
			}
			received.WriteString(line + "\n")
			continue
		}

		switch {
		case strings.HasPrefix(line, "EHLO"), strings.HasPrefix(line, "HELO"):
			reply("250-localhost")
			reply("250 OK")
		case strings.HasPrefix(line, "DATA"):
			reply("354 End data with <CR><LF>.<CR><LF>")
			inData = true
		case strings.HasPrefix(line, "QUIT"):
			reply("221 Bye")
			return
		default:
			reply("250 OK")
		}
	}
}

// A reachable local server must accept the delivery: a client whose dial
// timeout is effectively zero fails here instantly instead.
func TestEmailNotifierSendOverLocalSMTP(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to start listener: %v", err)
	}
	defer ln.Close()

	var received bytes.Buffer
	done := make(chan struct{})
	go serveSMTPSession(ln, &received, done)

	notifier := NewEmailNotifier(SMTPConfig{
		Host: "127.0.0.1",
		Port: ln.Addr().(*net.TCPAddr).Port,
		TLS:  false,
		From: "noreply@example.com",
	})
	defer notifier.Close()

	err = notifier.Send(EmailVerificationNotice, NotificationData{
		To: "guest@example.com",
		Data: map[string]string{
			"VerificationLink": "http://localhost:4000/verify/guest?token=abc",
		},
	}, NoticeTemplate{
		Subject: "Verify your email",
		Text:    "Visit {{.VerificationLink}} to verify.",
	})
	if err != nil {
		t.Fatalf("Send over local SMTP failed: %v", err)
	}

	<-done
	body := received.String()
	if !strings.Contains(body, "guest@example.com") {
		t.Errorf("Delivered message should carry the recipient, got:\n%s", body)
	}
	if !strings.Contains(body, "Verify your email") {
		t.Errorf("Delivered message should carry the subject, got:\n%s", body)
	}
}
