package login

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/tendant/simple-verify/pkg/guest"
	"github.com/tendant/simple-verify/pkg/tokengenerator"
	"github.com/tendant/simple-verify/pkg/verr"
)

// DefaultTokenExpiry is the access token lifetime when no override is configured.
const DefaultTokenExpiry = 1 * time.Hour

// VerificationGate is the slice of the verification layer the login flow
// needs: a best-effort resend when an unverified account authenticates.
type VerificationGate interface {
	ResendOnLogin(ctx context.Context, acct *guest.GuestAccount) bool
}

// LoginService authenticates accounts and enforces the verification gate:
// valid credentials alone are not enough, the email has to be verified
// before a session token is issued.
type LoginService struct {
	repo           guest.GuestRepository
	gate           VerificationGate
	tokenGenerator tokengenerator.TokenGenerator
	tokenExpiry    time.Duration
}

// LoginServiceOption configures a LoginService during construction.
type LoginServiceOption func(*LoginService)

// WithVerificationGate attaches the verification layer consulted on
// unverified logins. Without one, unverified logins are rejected but no
// email goes out.
func WithVerificationGate(gate VerificationGate) LoginServiceOption {
	return func(s *LoginService) {
		s.gate = gate
	}
}

// WithTokenExpiry overrides the access token lifetime.
func WithTokenExpiry(d time.Duration) LoginServiceOption {
	return func(s *LoginService) {
		if d > 0 {
			s.tokenExpiry = d
		}
	}
}

// NewLoginService creates a LoginService with the given repository and token generator.
func NewLoginService(repo guest.GuestRepository, tokenGenerator tokengenerator.TokenGenerator, opts ...LoginServiceOption) *LoginService {
	s := &LoginService{
		repo:           repo,
		tokenGenerator: tokenGenerator,
		tokenExpiry:    DefaultTokenExpiry,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoginRequest carries the credentials presented at login.
type LoginRequest struct {
	Email    string
	Password string
}

// LoginResult describes a successful login.
type LoginResult struct {
	AccountID   string
	Email       string
	AccessToken string
	ExpiresAt   time.Time
}

// Login authenticates the credentials and issues an access token.
// Unknown emails and wrong passwords both come back as invalid
// credentials so the response does not reveal which one it was. An
// unverified account with correct credentials is rejected with
// EMAIL_NOT_VERIFIED, after a best-effort resend of the verification
// email; whether an email actually went out is reported in the error
// details, never as a login failure of its own.
func (s *LoginService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	email := guest.NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, verr.New(verr.ErrCodeInvalidCredentials, "invalid email or password")
	}

	acct, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, guest.ErrAccountNotFound) {
			return nil, verr.New(verr.ErrCodeInvalidCredentials, "invalid email or password")
		}
		return nil, verr.Wrap(err, verr.ErrCodeInternal, "failed to look up account")
	}

	match, err := CheckPasswordHash(req.Password, acct.PasswordHash)
	if err != nil {
		return nil, verr.Wrap(err, verr.ErrCodeInternal, "failed to check password")
	}
	if !match {
		return nil, verr.New(verr.ErrCodeInvalidCredentials, "invalid email or password")
	}

	if !acct.Verified {
		resent := false
		if s.gate != nil {
			resent = s.gate.ResendOnLogin(ctx, acct)
		}
		slog.Info("Login rejected, email not verified", "accountID", acct.ID, "resent", resent)
		return nil, verr.New(verr.ErrCodeEmailNotVerified, "email address is not verified").
			WithDetail("resent", resent)
	}

	token, expiresAt, err := s.tokenGenerator.GenerateToken(acct.ID.String(), s.tokenExpiry, map[string]interface{}{
		"email":          acct.Email,
		"email_verified": acct.Verified,
		"account_type":   string(acct.AccountType),
	})
	if err != nil {
		return nil, verr.Wrap(err, verr.ErrCodeInternal, "failed to generate access token")
	}

	slog.Info("Login succeeded", "accountID", acct.ID)
	return &LoginResult{
		AccountID:   acct.ID.String(),
		Email:       acct.Email,
		AccessToken: token,
		ExpiresAt:   expiresAt,
	}, nil
}
