// Package main runs the guest verification service without a database,
// backed by the in-memory repository. Useful for:
// - Quick development and testing
// - Demo/prototype environments
// - Learning the API without database or SMTP setup
//
// Note: all data is lost when the server stops. For production, use
// cmd/simple-verify with PostgreSQL.
package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/go-chi/jwtauth/v5"
	"github.com/tendant/chi-demo/app"
	"github.com/tendant/simple-verify/pkg/guest"
	"github.com/tendant/simple-verify/pkg/login"
	loginapi "github.com/tendant/simple-verify/pkg/login/api"
	"github.com/tendant/simple-verify/pkg/notice"
	"github.com/tendant/simple-verify/pkg/notification"
	"github.com/tendant/simple-verify/pkg/router"
	"github.com/tendant/simple-verify/pkg/tokengenerator"
	"github.com/tendant/simple-verify/pkg/verification"
	verificationapi "github.com/tendant/simple-verify/pkg/verification/api"
)

const (
	baseURL   = "http://localhost:4000"
	jwtSecret = "inmem-demo-secret"
)

// consoleNotifier prints the verification link to stdout instead of
// sending an email, so the demo works without an SMTP server.
type consoleNotifier struct{}

func (consoleNotifier) Send(noticeType notification.NoticeType, data notification.NotificationData, template notification.NoticeTemplate) error {
	slog.Info("Verification email (console delivery)",
		"to", data.To,
		"link", data.Data["VerificationLink"])
	return nil
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: false,
		Level:     slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("Starting In-Memory Guest Verification Service (no database required)")
	slog.Info(strings.Repeat("=", 60))

	repo := guest.NewInMemoryGuestRepository()

	notificationManager, err := notice.NewNotificationManager(nil)
	if err != nil {
		slog.Error("Failed creating notification manager", "err", err)
		os.Exit(-1)
	}
	notificationManager.RegisterNotifier(notification.EmailSystem, consoleNotifier{})

	verificationService := verification.NewVerificationService(repo,
		verification.WithNotificationManager(notificationManager),
		verification.WithBaseURL(baseURL),
	)

	tokenGenerator := tokengenerator.NewJwtTokenGenerator(jwtSecret, "simple-verify", "simple-verify")
	loginService := login.NewLoginService(repo, tokenGenerator,
		login.WithVerificationGate(verificationService),
	)

	server := app.NewApp(app.WithPort(4000))

	router.SetupRoutes(server.R, router.Config{
		VerificationHandler: verificationapi.NewHandler(verificationService),
		LoginHandler:        loginapi.NewHandler(loginService),
		JwtAuth:             jwtauth.New("HS256", []byte(jwtSecret), nil),
	})

	slog.Info(strings.Repeat("=", 60))
	slog.Info("In-Memory Guest Verification Service Ready")
	slog.Info("Base URL: " + baseURL)
	slog.Info("")
	slog.Info("API Endpoints:")
	slog.Info("  POST /register/guest       - Register a guest account")
	slog.Info("  POST /login                - Login (requires verified email)")
	slog.Info("  GET  /verify/guest?token=  - Redeem a verification token")
	slog.Info("  POST /verify/guest/resend  - Resend the verification email")
	slog.Info("  GET  /verify/guest/status  - Verification status (auth required)")
	slog.Info("")
	slog.Info("Verification links are printed to this console instead of emailed.")
	slog.Info(strings.Repeat("=", 60))

	server.Run()
}
