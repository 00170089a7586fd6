package router

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	loginapi "github.com/tendant/simple-verify/pkg/login/api"
	"github.com/tendant/simple-verify/pkg/ratelimit"
	verificationapi "github.com/tendant/simple-verify/pkg/verification/api"
)

// Config carries the handlers and middleware the routes are built from
type Config struct {
	VerificationHandler *verificationapi.Handler
	LoginHandler        *loginapi.Handler
	JwtAuth             *jwtauth.JWTAuth
	RateLimit           *ratelimit.Middleware
}

// SetupRoutes mounts the verification and login endpoints on the router.
// The status endpoint requires a valid session token; everything else is
// public, guarded only by the rate limiting middleware when configured.
func SetupRoutes(r chi.Router, cfg Config) {
	r.Group(func(r chi.Router) {
		if cfg.RateLimit != nil {
			r.Use(cfg.RateLimit.Handler)
		}

		r.Post("/register/guest", cfg.VerificationHandler.RegisterGuest)
		r.Post("/login", cfg.LoginHandler.Login)
		r.Get("/verify/guest", cfg.VerificationHandler.VerifyGuest)
		r.Post("/verify/guest/resend", cfg.VerificationHandler.ResendVerification)

		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(cfg.JwtAuth))
			r.Use(jwtauth.Authenticator(cfg.JwtAuth))
			r.Get("/verify/guest/status", cfg.VerificationHandler.GetVerificationStatus)
		})
	})
}
