// Package login authenticates accounts and enforces the email
// verification gate for simple-verify.
//
// A login succeeds only when the credentials are correct and the
// account's email is verified. Unknown emails and wrong passwords are
// indistinguishable to the caller. For an unverified account with valid
// credentials the service consults a VerificationGate for a best-effort
// resend of the verification email, then rejects the login with
// EMAIL_NOT_VERIFIED carrying a resent detail.
//
// # Basic Usage
//
//	tg := tokengenerator.NewJwtTokenGenerator(secret, issuer, audience)
//	service := login.NewLoginService(repo, tg,
//		login.WithVerificationGate(verificationService),
//	)
//
//	result, err := service.Login(ctx, login.LoginRequest{
//		Email:    "guest@example.com",
//		Password: "secret",
//	})
package login
