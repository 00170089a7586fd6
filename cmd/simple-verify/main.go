package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-chi/jwtauth/v5"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/tendant/chi-demo/app"
	dbutils "github.com/tendant/db-utils/db"
	"github.com/tendant/simple-verify/pkg/config"
	"github.com/tendant/simple-verify/pkg/guest"
	"github.com/tendant/simple-verify/pkg/login"
	loginapi "github.com/tendant/simple-verify/pkg/login/api"
	"github.com/tendant/simple-verify/pkg/notice"
	"github.com/tendant/simple-verify/pkg/notification"
	"github.com/tendant/simple-verify/pkg/ratelimit"
	"github.com/tendant/simple-verify/pkg/router"
	"github.com/tendant/simple-verify/pkg/tokengenerator"
	"github.com/tendant/simple-verify/pkg/verification"
	verificationapi "github.com/tendant/simple-verify/pkg/verification/api"
)

type Config struct {
	DbConfig           config.DbConfig
	EmailConfig        config.EmailConfig
	VerificationConfig config.VerificationConfig
	JwtConfig          config.JwtConfig
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: true,
	}))
	slog.SetDefault(logger)

	cfg := Config{}
	cleanenv.ReadEnv(&cfg)

	server := app.DefaultApp()
	app.RegisterHealthzRoutes(server.R)

	rateLimitMiddleware := ratelimit.NewMiddleware(ratelimit.DefaultConfig())
	server.R.Use(rateLimitMiddleware.Handler)

	pool, err := dbutils.NewDbPool(context.Background(), cfg.DbConfig.ToDbConfig())
	if err != nil {
		slog.Error("Failed creating dbpool", "db", cfg.DbConfig.Database,
			"host", cfg.DbConfig.Host, "port", cfg.DbConfig.Port, "user", cfg.DbConfig.User)
		os.Exit(-1)
	}

	repo, err := guest.NewGuestRepository("postgres", guest.RepositoryConfig{Pool: pool})
	if err != nil {
		slog.Error("Failed creating guest repository", "err", err)
		os.Exit(-1)
	}

	var smtpConfig *notification.SMTPConfig
	if cfg.EmailConfig.IsConfigured() {
		sc := cfg.EmailConfig.ToSMTPConfig()
		smtpConfig = &sc
	} else {
		slog.Warn("SMTP not configured, verification emails cannot be sent")
	}

	notificationManager, err := notice.NewNotificationManager(smtpConfig)
	if err != nil {
		slog.Error("Failed creating notification manager", "err", err)
		os.Exit(-1)
	}
	defer func() {
		if err := notificationManager.Shutdown(); err != nil {
			slog.Error("Failed shutting down notification manager", "err", err)
		}
	}()

	verificationService := verification.NewVerificationService(repo,
		verification.WithNotificationManager(notificationManager),
		verification.WithBaseURL(cfg.VerificationConfig.BaseURL),
		verification.WithTokenExpiry(cfg.VerificationConfig.TokenExpiry()),
		verification.WithResendInterval(cfg.VerificationConfig.ResendInterval()),
	)

	tokenGenerator := tokengenerator.NewJwtTokenGenerator(
		cfg.JwtConfig.Secret, cfg.JwtConfig.Issuer, cfg.JwtConfig.Audience)
	loginService := login.NewLoginService(repo, tokenGenerator,
		login.WithVerificationGate(verificationService),
		login.WithTokenExpiry(cfg.JwtConfig.TokenExpiry()),
	)

	router.SetupRoutes(server.R, router.Config{
		VerificationHandler: verificationapi.NewHandler(verificationService),
		LoginHandler:        loginapi.NewHandler(loginService),
		JwtAuth:             jwtauth.New("HS256", []byte(cfg.JwtConfig.Secret), nil),
	})

	slog.Info("Guest verification service ready",
		"baseURL", cfg.VerificationConfig.BaseURL,
		"tokenExpiry", cfg.VerificationConfig.TokenExpiry(),
		"resendInterval", cfg.VerificationConfig.ResendInterval(),
		"emailConfigured", cfg.EmailConfig.IsConfigured())

	server.Run()
}
