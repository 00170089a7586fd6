package guest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestGuest(t *testing.T, repo *InMemoryGuestRepository, email, token string) *GuestAccount {
	t.Helper()
	now := time.Now().UTC()
	acct, err := repo.Create(context.Background(), CreateGuestParams{
		Email:                 NormalizeEmail(email),
		PasswordHash:          "hash",
		Name:                  "Jane",
		Surname:               "Doe",
		VerificationToken:     token,
		VerificationExpiresAt: now.Add(48 * time.Hour),
		VerificationSentAt:    now,
	})
	require.NoError(t, err)
	return acct
}

func TestInMemoryGuestRepository_Create(t *testing.T) {
	repo := NewInMemoryGuestRepository()
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		acct := createTestGuest(t, repo, "jane@x.com", "token_1")
		assert.NotEqual(t, uuid.Nil, acct.ID)
		assert.Equal(t, AccountTypeGuest, acct.AccountType)
		assert.False(t, acct.Verified)
		assert.Nil(t, acct.VerifiedAt)
		require.NotNil(t, acct.VerificationToken)
		assert.Equal(t, "token_1", *acct.VerificationToken)
		assert.NotNil(t, acct.VerificationExpiresAt)
		assert.Equal(t, 1, acct.VerificationSentCount)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		_, err := repo.Create(ctx, CreateGuestParams{
			Email:                 "jane@x.com",
			VerificationToken:     "token_2",
			VerificationExpiresAt: time.Now().UTC().Add(time.Hour),
			VerificationSentAt:    time.Now().UTC(),
		})
		assert.ErrorIs(t, err, ErrEmailExists)
	})

	t.Run("DuplicateEmailAgainstMember", func(t *testing.T) {
		repo.SeedMemberAccount("member@x.com")
		_, err := repo.Create(ctx, CreateGuestParams{
			Email:                 "member@x.com",
			VerificationToken:     "token_3",
			VerificationExpiresAt: time.Now().UTC().Add(time.Hour),
			VerificationSentAt:    time.Now().UTC(),
		})
		assert.ErrorIs(t, err, ErrEmailExists)
	})

	t.Run("DuplicateToken", func(t *testing.T) {
		_, err := repo.Create(ctx, CreateGuestParams{
			Email:                 "other@x.com",
			VerificationToken:     "token_1",
			VerificationExpiresAt: time.Now().UTC().Add(time.Hour),
			VerificationSentAt:    time.Now().UTC(),
		})
		assert.ErrorIs(t, err, ErrTokenExists)
	})
}

func TestInMemoryGuestRepository_FindByVerificationToken(t *testing.T) {
	repo := NewInMemoryGuestRepository()
	ctx := context.Background()

	created := createTestGuest(t, repo, "jane@x.com", "token_find")

	t.Run("Success", func(t *testing.T) {
		found, err := repo.FindByVerificationToken(ctx, "token_find")
		require.NoError(t, err)
		assert.Equal(t, created.ID, found.ID)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := repo.FindByVerificationToken(ctx, "nope")
		assert.ErrorIs(t, err, ErrAccountNotFound)
	})
}

func TestInMemoryGuestRepository_RotateVerificationToken(t *testing.T) {
	ctx := context.Background()

	t.Run("RotatesWhenOutsideWindow", func(t *testing.T) {
		repo := NewInMemoryGuestRepository()
		acct := createTestGuest(t, repo, "jane@x.com", "old_token")

		now := time.Now().UTC().Add(5 * time.Minute)
		rotated, err := repo.RotateVerificationToken(ctx, acct.ID, "new_token", now.Add(48*time.Hour), now, now.Add(-2*time.Minute))
		require.NoError(t, err)
		assert.Equal(t, "new_token", *rotated.VerificationToken)
		assert.Equal(t, 2, rotated.VerificationSentCount)

		// previous token no longer matches anything
		_, err = repo.FindByVerificationToken(ctx, "old_token")
		assert.ErrorIs(t, err, ErrAccountNotFound)
	})

	t.Run("DeniedInsideWindow", func(t *testing.T) {
		repo := NewInMemoryGuestRepository()
		acct := createTestGuest(t, repo, "jane@x.com", "old_token")

		now := time.Now().UTC().Add(30 * time.Second)
		_, err := repo.RotateVerificationToken(ctx, acct.ID, "new_token", now.Add(48*time.Hour), now, now.Add(-2*time.Minute))
		assert.ErrorIs(t, err, ErrRotationDenied)

		// old token untouched
		found, err := repo.FindByVerificationToken(ctx, "old_token")
		require.NoError(t, err)
		assert.Equal(t, 1, found.VerificationSentCount)
	})

	t.Run("DeniedWhenVerified", func(t *testing.T) {
		repo := NewInMemoryGuestRepository()
		acct := createTestGuest(t, repo, "jane@x.com", "tok")
		_, err := repo.RedeemVerificationToken(ctx, "tok", time.Now().UTC())
		require.NoError(t, err)

		now := time.Now().UTC().Add(time.Hour)
		_, err = repo.RotateVerificationToken(ctx, acct.ID, "new", now.Add(time.Hour), now, now)
		assert.ErrorIs(t, err, ErrRotationDenied)
	})

	t.Run("ExactlyOneWinnerUnderRace", func(t *testing.T) {
		repo := NewInMemoryGuestRepository()
		acct := createTestGuest(t, repo, "jane@x.com", "tok")

		now := time.Now().UTC().Add(5 * time.Minute)
		notBefore := now.Add(-2 * time.Minute)

		results := make(chan error, 2)
		for _, token := range []string{"winner_a", "winner_b"} {
			go func(token string) {
				_, err := repo.RotateVerificationToken(ctx, acct.ID, token, now.Add(48*time.Hour), now, notBefore)
				results <- err
			}(token)
		}

		var denied, rotated int
		for i := 0; i < 2; i++ {
			if err := <-results; err != nil {
				assert.ErrorIs(t, err, ErrRotationDenied)
				denied++
			} else {
				rotated++
			}
		}
		assert.Equal(t, 1, rotated, "exactly one rotation must win")
		assert.Equal(t, 1, denied)
	})
}

func TestInMemoryGuestRepository_RedeemVerificationToken(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo := NewInMemoryGuestRepository()
		createTestGuest(t, repo, "jane@x.com", "tok")

		now := time.Now().UTC()
		acct, err := repo.RedeemVerificationToken(ctx, "tok", now)
		require.NoError(t, err)
		assert.True(t, acct.Verified)
		require.NotNil(t, acct.VerifiedAt)
		assert.Nil(t, acct.VerificationToken)
		assert.Nil(t, acct.VerificationExpiresAt)
		// sent_at is retained for throttling history
		assert.NotNil(t, acct.VerificationSentAt)

		// second redemption of the same token fails, the token is gone
		_, err = repo.RedeemVerificationToken(ctx, "tok", now)
		assert.ErrorIs(t, err, ErrAccountNotFound)
	})

	t.Run("ExpiredTokenNotCleared", func(t *testing.T) {
		repo := NewInMemoryGuestRepository()
		createTestGuest(t, repo, "jane@x.com", "tok")

		late := time.Now().UTC().Add(72 * time.Hour)
		_, err := repo.RedeemVerificationToken(ctx, "tok", late)
		assert.ErrorIs(t, err, ErrAccountNotFound)

		// expired token still present on the account
		found, err := repo.FindByVerificationToken(ctx, "tok")
		require.NoError(t, err)
		assert.False(t, found.Verified)
	})

	t.Run("BoundaryIsInclusive", func(t *testing.T) {
		repo := NewInMemoryGuestRepository()
		now := time.Now().UTC()
		expiresAt := now.Add(48 * time.Hour)
		_, err := repo.Create(ctx, CreateGuestParams{
			Email:                 "jane@x.com",
			VerificationToken:     "tok",
			VerificationExpiresAt: expiresAt,
			VerificationSentAt:    now,
		})
		require.NoError(t, err)

		// redeeming at exactly expires_at still succeeds
		acct, err := repo.RedeemVerificationToken(ctx, "tok", expiresAt)
		require.NoError(t, err)
		assert.True(t, acct.Verified)
	})
}

func TestInMemoryGuestRepository_Delete(t *testing.T) {
	repo := NewInMemoryGuestRepository()
	ctx := context.Background()

	acct := createTestGuest(t, repo, "jane@x.com", "tok")

	err := repo.Delete(ctx, acct.ID)
	require.NoError(t, err)

	_, err = repo.FindByEmail(ctx, "jane@x.com")
	assert.ErrorIs(t, err, ErrAccountNotFound)

	err = repo.Delete(ctx, acct.ID)
	assert.ErrorIs(t, err, ErrAccountNotFound)
}
