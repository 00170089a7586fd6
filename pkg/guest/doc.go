// Package guest provides the persistent store for guest accounts and their
// email verification state.
//
// # Overview
//
// The guest package provides:
//   - The GuestAccount model and its verification invariants
//   - The GuestRepository interface consumed by the verification flow
//   - A PostgreSQL implementation (pgx) and an in-memory implementation
//   - Email normalization shared by every caller
//
// # Basic Usage
//
//	import "github.com/tendant/simple-verify/pkg/guest"
//
//	// Create repository
//	repo := guest.NewPostgresGuestRepository(pool)
//
//	// Or via the factory
//	repo, err := guest.NewGuestRepository("postgres", guest.RepositoryConfig{Pool: pool})
//
//	// Look up an account
//	acct, err := repo.FindByEmail(ctx, guest.NormalizeEmail("Jane@X.com"))
//
// # Conditional Writes
//
// Token rotation and redemption are single conditional writes: the store
// evaluates the precondition (throttle window, token match, expiry) as part
// of the mutation itself. Callers never check-then-write, so two concurrent
// requests against the same account resolve to exactly one winner.
//
//	acct, err := repo.RotateVerificationToken(ctx, id, token, expiresAt, now, now.Add(-interval))
//	if errors.Is(err, guest.ErrRotationDenied) {
//		// another request rotated first, or the account is already verified
//	}
//
// Emails are unique across the whole identity space: member accounts created
// by the external account service live in the same table, and Create fails
// with ErrEmailExists when any of them already uses the address.
package guest
