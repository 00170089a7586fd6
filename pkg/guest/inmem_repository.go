package guest

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryGuestRepository implements GuestRepository using in-memory storage.
// Useful for tests, demos and development without a database.
type InMemoryGuestRepository struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]GuestAccount
}

// NewInMemoryGuestRepository creates a new in-memory guest repository
func NewInMemoryGuestRepository() *InMemoryGuestRepository {
	return &InMemoryGuestRepository{
		accounts: make(map[uuid.UUID]GuestAccount),
	}
}

// SeedMemberAccount inserts a member account so the email uniqueness check can
// be exercised against the full identity space. Members are otherwise managed
// by the external account service, never by this subsystem.
func (r *InMemoryGuestRepository) SeedMemberAccount(email string) uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	acct := GuestAccount{
		ID:          uuid.New(),
		AccountType: AccountTypeMember,
		Email:       NormalizeEmail(email),
		Verified:    true,
		VerifiedAt:  &now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.accounts[acct.ID] = acct
	return acct.ID
}

// FindByEmail looks up an account by normalized email
func (r *InMemoryGuestRepository) FindByEmail(ctx context.Context, email string) (*GuestAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, acct := range r.accounts {
		if acct.Email == email {
			acctCopy := acct
			return &acctCopy, nil
		}
	}
	return nil, ErrAccountNotFound
}

// FindByVerificationToken looks up the account currently holding the token
func (r *InMemoryGuestRepository) FindByVerificationToken(ctx context.Context, token string) (*GuestAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, acct := range r.accounts {
		if acct.VerificationToken != nil && *acct.VerificationToken == token {
			acctCopy := acct
			return &acctCopy, nil
		}
	}
	return nil, ErrAccountNotFound
}

// Create persists a new unverified guest account
func (r *InMemoryGuestRepository) Create(ctx context.Context, params CreateGuestParams) (*GuestAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, acct := range r.accounts {
		if acct.Email == params.Email {
			return nil, ErrEmailExists
		}
		if acct.VerificationToken != nil && *acct.VerificationToken == params.VerificationToken {
			return nil, ErrTokenExists
		}
	}

	now := time.Now().UTC()
	token := params.VerificationToken
	expiresAt := params.VerificationExpiresAt
	sentAt := params.VerificationSentAt
	acct := GuestAccount{
		ID:                    uuid.New(),
		AccountType:           AccountTypeGuest,
		Email:                 params.Email,
		PasswordHash:          params.PasswordHash,
		Name:                  params.Name,
		Surname:               params.Surname,
		Verified:              false,
		VerificationToken:     &token,
		VerificationExpiresAt: &expiresAt,
		VerificationSentAt:    &sentAt,
		VerificationSentCount: 1,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	r.accounts[acct.ID] = acct

	acctCopy := acct
	return &acctCopy, nil
}

// RotateVerificationToken performs the conditional token rotation. The
// precondition check and the mutation happen under a single lock acquisition,
// which is what makes two racing resends resolve to exactly one rotation.
func (r *InMemoryGuestRepository) RotateVerificationToken(ctx context.Context, id uuid.UUID, token string, expiresAt, sentAt, notBefore time.Time) (*GuestAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	acct, ok := r.accounts[id]
	if !ok {
		return nil, ErrRotationDenied
	}
	if acct.Verified {
		return nil, ErrRotationDenied
	}
	if acct.VerificationSentAt != nil && acct.VerificationSentAt.After(notBefore) {
		return nil, ErrRotationDenied
	}

	for otherID, other := range r.accounts {
		if otherID != id && other.VerificationToken != nil && *other.VerificationToken == token {
			return nil, ErrTokenExists
		}
	}

	acct.VerificationToken = &token
	acct.VerificationExpiresAt = &expiresAt
	acct.VerificationSentAt = &sentAt
	acct.VerificationSentCount++
	acct.UpdatedAt = sentAt
	r.accounts[id] = acct

	acctCopy := acct
	return &acctCopy, nil
}

// RedeemVerificationToken atomically marks the holder of the token as verified
// and clears the token fields. Expired tokens are left in place.
func (r *InMemoryGuestRepository) RedeemVerificationToken(ctx context.Context, token string, now time.Time) (*GuestAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, acct := range r.accounts {
		if acct.VerificationToken == nil || *acct.VerificationToken != token {
			continue
		}
		if acct.Verified {
			return nil, ErrAccountNotFound
		}
		if acct.VerificationExpiresAt == nil || acct.VerificationExpiresAt.Before(now) {
			return nil, ErrAccountNotFound
		}

		verifiedAt := now
		acct.Verified = true
		acct.VerifiedAt = &verifiedAt
		acct.VerificationToken = nil
		acct.VerificationExpiresAt = nil
		acct.UpdatedAt = now
		r.accounts[id] = acct

		acctCopy := acct
		return &acctCopy, nil
	}
	return nil, ErrAccountNotFound
}

// Delete removes the account
func (r *InMemoryGuestRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[id]; !ok {
		return ErrAccountNotFound
	}
	delete(r.accounts, id)
	return nil
}
