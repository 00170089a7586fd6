package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/simple-verify/pkg/guest"
	"github.com/tendant/simple-verify/pkg/login"
	"github.com/tendant/simple-verify/pkg/notification"
	"github.com/tendant/simple-verify/pkg/verr"
)

const (
	// DefaultTokenExpiry is how long a verification token stays
	// redeemable when no override is configured.
	DefaultTokenExpiry = 48 * time.Hour

	// DefaultResendInterval is the minimum gap between verification
	// emails for the same account.
	DefaultResendInterval = 2 * time.Minute

	// MinTokenExpiry and MinResendInterval are hard floors; configured
	// values below them are clamped, not rejected.
	MinTokenExpiry    = time.Hour
	MinResendInterval = time.Minute
)

// Outcome codes returned by Redeem and Resend.
const (
	CodeVerified        = "VERIFIED"
	CodeAlreadyVerified = "ALREADY_VERIFIED"
	CodeResent          = "RESENT"
	CodeUnknownEmail    = "UNKNOWN_EMAIL"
)

// VerificationService issues, rotates and redeems email verification
// tokens for guest accounts.
type VerificationService struct {
	repo                guest.GuestRepository
	notificationManager *notification.NotificationManager
	baseURL             string
	tokenExpiry         time.Duration
	resendInterval      time.Duration
	now                 func() time.Time
}

// VerificationServiceOption configures a VerificationService during construction.
type VerificationServiceOption func(*VerificationService)

// WithTokenExpiry overrides the token validity window. Values below
// MinTokenExpiry are clamped to MinTokenExpiry.
func WithTokenExpiry(d time.Duration) VerificationServiceOption {
	return func(s *VerificationService) {
		if d < MinTokenExpiry {
			d = MinTokenExpiry
		}
		s.tokenExpiry = d
	}
}

// WithResendInterval overrides the resend throttle interval. Values
// below MinResendInterval are clamped to MinResendInterval.
func WithResendInterval(d time.Duration) VerificationServiceOption {
	return func(s *VerificationService) {
		if d < MinResendInterval {
			d = MinResendInterval
		}
		s.resendInterval = d
	}
}

// WithNotificationManager attaches the mail dispatch layer. Without one
// the service treats mail as unavailable.
func WithNotificationManager(nm *notification.NotificationManager) VerificationServiceOption {
	return func(s *VerificationService) {
		s.notificationManager = nm
	}
}

// WithBaseURL sets the public base URL embedded in verification links.
func WithBaseURL(baseURL string) VerificationServiceOption {
	return func(s *VerificationService) {
		s.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithNowFunc overrides the clock, for tests.
func WithNowFunc(now func() time.Time) VerificationServiceOption {
	return func(s *VerificationService) {
		s.now = now
	}
}

// NewVerificationService creates a VerificationService with the given repository.
func NewVerificationService(repo guest.GuestRepository, opts ...VerificationServiceOption) *VerificationService {
	s := &VerificationService{
		repo:           repo,
		baseURL:        "http://localhost:4000",
		tokenExpiry:    DefaultTokenExpiry,
		resendInterval: DefaultResendInterval,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TokenExpiry returns the effective token validity window.
func (s *VerificationService) TokenExpiry() time.Duration {
	return s.tokenExpiry
}

// ResendInterval returns the effective resend throttle interval.
func (s *VerificationService) ResendInterval() time.Duration {
	return s.resendInterval
}

// RegisterGuestRequest carries the fields collected at guest signup.
type RegisterGuestRequest struct {
	Email    string
	Password string
	Name     string
	Surname  string
}

// RegisterGuestResult describes a successfully created unverified account.
type RegisterGuestResult struct {
	ID                   string
	Email                string
	VerificationRequired bool
}

// RedeemResult describes the outcome of redeeming a verification token.
type RedeemResult struct {
	Code       string
	Email      string
	VerifiedAt *time.Time
}

// ResendResult describes the outcome of an explicit resend request.
type ResendResult struct {
	Code string
}

// RegisterGuest creates an unverified guest account and sends the
// verification email. Dispatch is mandatory here: if the email cannot be
// sent the account is deleted again and the registration fails, so the
// caller never ends up with an account it can neither use nor verify.
func (s *VerificationService) RegisterGuest(ctx context.Context, req RegisterGuestRequest) (*RegisterGuestResult, error) {
	email := guest.NormalizeEmail(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, verr.InvalidInput("email", "a valid email address is required")
	}
	if req.Password == "" {
		return nil, verr.InvalidInput("password", "password is required")
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, verr.New(verr.ErrCodeEmailExists, "email is already in use")
	} else if !errors.Is(err, guest.ErrAccountNotFound) {
		return nil, verr.Wrap(err, verr.ErrCodeInternal, "failed to check email availability")
	}

	hash, err := login.HashPassword(req.Password)
	if err != nil {
		return nil, verr.Wrap(err, verr.ErrCodeInternal, "failed to hash password")
	}

	now := s.now().UTC()
	expiresAt := now.Add(s.tokenExpiry)

	var acct *guest.GuestAccount
	for attempt := 0; ; attempt++ {
		token, err := GenerateToken()
		if err != nil {
			return nil, verr.Wrap(err, verr.ErrCodeInternal, "failed to generate verification token")
		}
		acct, err = s.repo.Create(ctx, guest.CreateGuestParams{
			Email:                 email,
			PasswordHash:          hash,
			Name:                  req.Name,
			Surname:               req.Surname,
			VerificationToken:     token,
			VerificationExpiresAt: expiresAt,
			VerificationSentAt:    now,
		})
		if err == nil {
			break
		}
		if errors.Is(err, guest.ErrEmailExists) {
			return nil, verr.New(verr.ErrCodeEmailExists, "email is already in use")
		}
		// Token collisions are astronomically unlikely; retry once
		// rather than failing the registration outright.
		if errors.Is(err, guest.ErrTokenExists) && attempt == 0 {
			continue
		}
		return nil, verr.Wrap(err, verr.ErrCodeInternal, "failed to create guest account")
	}

	if err := s.sendVerificationEmail(acct); err != nil {
		if delErr := s.repo.Delete(ctx, acct.ID); delErr != nil {
			slog.Error("Failed to delete guest account after mail dispatch failure",
				"accountID", acct.ID, "err", delErr)
		}
		slog.Error("Verification email dispatch failed during registration",
			"email", email, "err", err)
		return nil, verr.Wrap(err, verr.ErrCodeMailUnavailable, "verification email could not be sent")
	}

	slog.Info("Guest account registered", "accountID", acct.ID, "email", email)
	return &RegisterGuestResult{
		ID:                   acct.ID.String(),
		Email:                acct.Email,
		VerificationRequired: true,
	}, nil
}

// Redeem marks the account holding the given token as verified and
// clears the token. An expired token is reported but left in place; the
// user recovers through the resend flow.
func (s *VerificationService) Redeem(ctx context.Context, token string) (*RedeemResult, error) {
	if token == "" {
		return nil, verr.InvalidInput("token", "token is required")
	}

	acct, err := s.repo.FindByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, guest.ErrAccountNotFound) {
			return nil, verr.New(verr.ErrCodeTokenInvalid, "verification token is invalid")
		}
		return nil, verr.Wrap(err, verr.ErrCodeInternal, "failed to look up verification token")
	}

	// Unreachable while redemption keeps clearing tokens: a verified
	// account holds no token, so its link lands on the invalid branch
	// above. Kept for the case of tokens retained after verification.
	if acct.Verified {
		return &RedeemResult{Code: CodeAlreadyVerified, Email: acct.Email, VerifiedAt: acct.VerifiedAt}, nil
	}

	now := s.now().UTC()
	if acct.VerificationExpiresAt == nil || now.After(*acct.VerificationExpiresAt) {
		return nil, verr.New(verr.ErrCodeTokenExpired, "verification token has expired")
	}

	verified, err := s.repo.RedeemVerificationToken(ctx, token, now)
	if err != nil {
		// The token was rotated or redeemed between lookup and
		// redemption; to this caller it is simply no longer valid.
		if errors.Is(err, guest.ErrAccountNotFound) {
			return nil, verr.New(verr.ErrCodeTokenInvalid, "verification token is invalid")
		}
		return nil, verr.Wrap(err, verr.ErrCodeInternal, "failed to redeem verification token")
	}

	slog.Info("Guest account verified", "accountID", verified.ID, "email", verified.Email)
	return &RedeemResult{Code: CodeVerified, Email: verified.Email, VerifiedAt: verified.VerifiedAt}, nil
}

// Resend issues a fresh token and sends a new verification email for an
// unverified account. Unknown emails yield CodeUnknownEmail rather than
// an error so the endpoint does not confirm which addresses exist.
func (s *VerificationService) Resend(ctx context.Context, email string) (*ResendResult, error) {
	email = guest.NormalizeEmail(email)
	if email == "" {
		return nil, verr.InvalidInput("email", "email is required")
	}

	acct, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, guest.ErrAccountNotFound) {
			return &ResendResult{Code: CodeUnknownEmail}, nil
		}
		return nil, verr.Wrap(err, verr.ErrCodeInternal, "failed to look up account")
	}
	if acct.Verified || acct.AccountType != guest.AccountTypeGuest {
		return &ResendResult{Code: CodeAlreadyVerified}, nil
	}

	now := s.now().UTC()
	if !AllowResend(acct.VerificationSentAt, now, s.resendInterval) {
		remaining := RemainingWait(acct.VerificationSentAt, now, s.resendInterval)
		return nil, verr.RateLimited(retryAfterMinutes(remaining))
	}

	if !s.mailConfigured() {
		return nil, verr.New(verr.ErrCodeMailUnavailable, "email delivery is not configured")
	}

	rotated, err := s.rotateToken(ctx, acct.ID, now)
	if err != nil {
		// Losing the conditional write means a concurrent request just
		// rotated and sent; report the throttle to this caller.
		if errors.Is(err, guest.ErrRotationDenied) {
			return nil, verr.RateLimited(retryAfterMinutes(s.resendInterval))
		}
		return nil, verr.Wrap(err, verr.ErrCodeInternal, "failed to rotate verification token")
	}

	if err := s.sendVerificationEmail(rotated); err != nil {
		slog.Error("Verification email dispatch failed during resend", "email", email, "err", err)
		return nil, verr.Wrap(err, verr.ErrCodeMailUnavailable, "verification email could not be sent")
	}

	slog.Info("Verification email resent", "accountID", rotated.ID, "email", email)
	return &ResendResult{Code: CodeResent}, nil
}

// ResendOnLogin makes a best-effort attempt to resend the verification
// email when an unverified account presents valid credentials. It never
// fails the login response: throttling, missing mail configuration and
// dispatch errors all just mean no email went out. A rotated token is
// kept even when dispatch fails, so the persisted state stays ahead of
// any copy the user may still hold.
func (s *VerificationService) ResendOnLogin(ctx context.Context, acct *guest.GuestAccount) bool {
	if acct.Verified {
		return false
	}

	now := s.now().UTC()
	if !AllowResend(acct.VerificationSentAt, now, s.resendInterval) {
		return false
	}
	if !s.mailConfigured() {
		slog.Warn("Skipping login-gate verification resend, email delivery not configured",
			"accountID", acct.ID)
		return false
	}

	rotated, err := s.rotateToken(ctx, acct.ID, now)
	if err != nil {
		if !errors.Is(err, guest.ErrRotationDenied) {
			slog.Error("Failed to rotate verification token during login", "accountID", acct.ID, "err", err)
		}
		return false
	}

	if err := s.sendVerificationEmail(rotated); err != nil {
		slog.Error("Verification email dispatch failed during login", "accountID", acct.ID, "err", err)
		return false
	}

	slog.Info("Verification email resent on login", "accountID", acct.ID)
	return true
}

// GetVerificationStatus reports whether the account behind an email is
// verified, and when it became so.
func (s *VerificationService) GetVerificationStatus(ctx context.Context, email string) (bool, *time.Time, error) {
	email = guest.NormalizeEmail(email)
	acct, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, guest.ErrAccountNotFound) {
			return false, nil, verr.New(verr.ErrCodeNotFound, "account not found")
		}
		return false, nil, verr.Wrap(err, verr.ErrCodeInternal, "failed to look up account")
	}
	return acct.Verified, acct.VerifiedAt, nil
}

// rotateToken performs the conditional single-write rotation: a fresh
// token, expiry and sent-at land only if the previous send is older than
// the throttle interval. Exactly one concurrent caller wins.
func (s *VerificationService) rotateToken(ctx context.Context, id uuid.UUID, now time.Time) (*guest.GuestAccount, error) {
	expiresAt := now.Add(s.tokenExpiry)
	notBefore := now.Add(-s.resendInterval)
	for attempt := 0; ; attempt++ {
		token, err := GenerateToken()
		if err != nil {
			return nil, fmt.Errorf("failed to generate verification token: %w", err)
		}
		rotated, err := s.repo.RotateVerificationToken(ctx, id, token, expiresAt, now, notBefore)
		if errors.Is(err, guest.ErrTokenExists) && attempt == 0 {
			continue
		}
		return rotated, err
	}
}

func (s *VerificationService) mailConfigured() bool {
	return s.notificationManager != nil && s.notificationManager.IsEmailConfigured()
}

func (s *VerificationService) sendVerificationEmail(acct *guest.GuestAccount) error {
	if !s.mailConfigured() {
		return fmt.Errorf("cannot send verification email: %w", notification.ErrNotConfigured)
	}
	token := ""
	if acct.VerificationToken != nil {
		token = *acct.VerificationToken
	}
	link := fmt.Sprintf("%s/verify/guest?token=%s&email=%s",
		s.baseURL, url.QueryEscape(token), url.QueryEscape(acct.Email))

	data := notification.NotificationData{
		To: acct.Email,
		Data: map[string]string{
			"Name":             acct.Name,
			"Email":            acct.Email,
			"VerificationLink": link,
			"ExpiryHours":      fmt.Sprintf("%d", int(s.tokenExpiry.Hours())),
		},
	}
	return s.notificationManager.Send(notification.EmailVerificationNotice, notification.EmailSystem, data)
}
