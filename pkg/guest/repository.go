package guest

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AccountType distinguishes guest accounts from member accounts in the shared
// identity space. Members are created and managed elsewhere; this package only
// ever writes guests, but email uniqueness spans both.
type AccountType string

const (
	AccountTypeGuest  AccountType = "guest"
	AccountTypeMember AccountType = "member"
)

// GuestAccount represents a guest account with its verification state.
//
// Invariants maintained by the repository implementations:
//   - a non-nil VerificationToken implies a non-nil VerificationExpiresAt and Verified == false
//   - Verified == true implies VerificationToken == nil and a non-nil VerifiedAt
//   - at most one account holds any given token value at a time
//   - VerificationSentCount never decreases
type GuestAccount struct {
	ID                    uuid.UUID
	AccountType           AccountType
	Email                 string
	PasswordHash          string
	Name                  string
	Surname               string
	Verified              bool
	VerifiedAt            *time.Time
	VerificationToken     *string
	VerificationExpiresAt *time.Time
	VerificationSentAt    *time.Time
	VerificationSentCount int
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// CreateGuestParams holds the fields needed to persist a new guest account.
// The email must already be normalized; the token fields describe the initial
// verification attempt issued at registration.
type CreateGuestParams struct {
	Email                 string
	PasswordHash          string
	Name                  string
	Surname               string
	VerificationToken     string
	VerificationExpiresAt time.Time
	VerificationSentAt    time.Time
}

// GuestRepository defines the persistence operations the verification flow needs.
//
// RotateVerificationToken and RedeemVerificationToken are deliberately
// conditional single writes: the throttle and redemption decisions race with
// concurrent requests for the same account, so the precondition is evaluated
// by the store as part of the mutation, never as a separate read.
type GuestRepository interface {
	// FindByEmail looks up an account by normalized email across the full
	// identity space, guests and members alike.
	FindByEmail(ctx context.Context, email string) (*GuestAccount, error)

	// FindByVerificationToken looks up the account currently holding the token.
	FindByVerificationToken(ctx context.Context, token string) (*GuestAccount, error)

	// Create persists a new unverified guest account with its initial token and
	// a sent count of 1. Returns ErrEmailExists or ErrTokenExists when the
	// corresponding uniqueness constraint rejects the write.
	Create(ctx context.Context, params CreateGuestParams) (*GuestAccount, error)

	// RotateVerificationToken replaces the account's token, expiry and sent
	// timestamp and increments the sent count, but only while the account is
	// unverified and its verification_sent_at is still absent or <= notBefore.
	// Returns ErrRotationDenied when the precondition fails and ErrTokenExists
	// when the new token collides.
	RotateVerificationToken(ctx context.Context, id uuid.UUID, token string, expiresAt, sentAt, notBefore time.Time) (*GuestAccount, error)

	// RedeemVerificationToken marks the account holding the token as verified
	// and clears the token fields, in one atomic write keyed by the token value
	// and guarded by the expiry. Returns ErrAccountNotFound when no unverified,
	// unexpired account holds the token.
	RedeemVerificationToken(ctx context.Context, token string, now time.Time) (*GuestAccount, error)

	// Delete removes the account. Used only as the compensating delete when the
	// initial verification mail cannot be dispatched.
	Delete(ctx context.Context, id uuid.UUID) error
}

// NormalizeEmail trims surrounding whitespace and lower-cases the address.
// Every email entering the repository goes through this first.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
