// Package verification manages the email verification flow for guest
// accounts in simple-verify.
//
// This package issues verification tokens at registration, rotates them
// on resend, redeems them when the user follows the emailed link, and
// coordinates with the notification layer to dispatch the emails.
//
// # Overview
//
// The verification package provides:
//   - Guest registration with a mandatory verification email
//   - Token-based email verification with an inclusive expiry boundary
//   - Throttled explicit resend and best-effort resend on login
//   - Verification status checking
//
// # Basic Usage
//
//	import "github.com/tendant/simple-verify/pkg/verification"
//
//	// Create service
//	repo, _ := guest.NewGuestRepository("postgres", guest.RepositoryConfig{Pool: pool})
//	service := verification.NewVerificationService(
//		repo,
//		verification.WithNotificationManager(notificationManager),
//		verification.WithTokenExpiry(48*time.Hour),
//		verification.WithBaseURL("https://app.example.com"),
//	)
//
//	// Register a guest; the verification email is sent as part of it
//	result, err := service.RegisterGuest(ctx, verification.RegisterGuestRequest{
//		Email:    "guest@example.com",
//		Password: "secret",
//	})
//
//	// User clicks the emailed link, the handler redeems the token
//	outcome, err := service.Redeem(ctx, token)
//
// # Resend Flow
//
//	// Explicit resend rotates the token and sends a fresh email,
//	// subject to the resend throttle
//	outcome, err := service.Resend(ctx, "guest@example.com")
//	if verr.IsCode(err, verr.ErrCodeRateLimitExceeded) {
//		// retry_after_minutes is in the error details
//	}
//
// The login flow consults ResendOnLogin instead, which never returns an
// error: for an unverified account with valid credentials it attempts a
// throttled resend and just reports whether an email went out.
package verification
