package guest

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// PostgresGuestRepository implements GuestRepository backed by PostgreSQL.
//
// Expected schema (see migrations/accounts.sql):
//
//	CREATE TABLE accounts (
//	    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
//	    account_type TEXT NOT NULL DEFAULT 'guest',
//	    email TEXT NOT NULL,
//	    password_hash TEXT NOT NULL DEFAULT '',
//	    name TEXT NOT NULL DEFAULT '',
//	    surname TEXT NOT NULL DEFAULT '',
//	    verified BOOLEAN NOT NULL DEFAULT FALSE,
//	    verified_at TIMESTAMPTZ,
//	    verification_token TEXT,
//	    verification_expires_at TIMESTAMPTZ,
//	    verification_sent_at TIMESTAMPTZ,
//	    verification_sent_count INTEGER NOT NULL DEFAULT 0,
//	    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
//	    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
//	CREATE UNIQUE INDEX accounts_email_key ON accounts (email);
//	CREATE UNIQUE INDEX accounts_verification_token_key
//	    ON accounts (verification_token) WHERE verification_token IS NOT NULL;
type PostgresGuestRepository struct {
	db *pgxpool.Pool
}

// NewPostgresGuestRepository creates a new PostgreSQL guest repository
func NewPostgresGuestRepository(db *pgxpool.Pool) *PostgresGuestRepository {
	return &PostgresGuestRepository{db: db}
}

const accountColumns = `
	id, account_type, email, password_hash, name, surname,
	verified, verified_at, verification_token, verification_expires_at,
	verification_sent_at, verification_sent_count, created_at, updated_at
`

func scanAccount(row pgx.Row) (*GuestAccount, error) {
	var acct GuestAccount
	err := row.Scan(
		&acct.ID,
		&acct.AccountType,
		&acct.Email,
		&acct.PasswordHash,
		&acct.Name,
		&acct.Surname,
		&acct.Verified,
		&acct.VerifiedAt,
		&acct.VerificationToken,
		&acct.VerificationExpiresAt,
		&acct.VerificationSentAt,
		&acct.VerificationSentCount,
		&acct.CreatedAt,
		&acct.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &acct, nil
}

// mapUniqueViolation translates a unique-constraint rejection into the
// repository sentinel for the constraint that fired.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch pgErr.ConstraintName {
		case "accounts_email_key":
			return ErrEmailExists
		case "accounts_verification_token_key":
			return ErrTokenExists
		}
	}
	return err
}

// FindByEmail looks up an account by normalized email across the full identity space
func (r *PostgresGuestRepository) FindByEmail(ctx context.Context, email string) (*GuestAccount, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE email = $1
	`

	acct, err := scanAccount(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return acct, nil
}

// FindByVerificationToken looks up the account currently holding the token
func (r *PostgresGuestRepository) FindByVerificationToken(ctx context.Context, token string) (*GuestAccount, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE verification_token = $1
	`

	acct, err := scanAccount(r.db.QueryRow(ctx, query, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return acct, nil
}

// Create persists a new unverified guest account with its initial token
func (r *PostgresGuestRepository) Create(ctx context.Context, params CreateGuestParams) (*GuestAccount, error) {
	query := `
		INSERT INTO accounts (
			account_type, email, password_hash, name, surname,
			verification_token, verification_expires_at, verification_sent_at,
			verification_sent_count
		)
		VALUES ('guest', $1, $2, $3, $4, $5, $6, $7, 1)
		RETURNING ` + accountColumns

	acct, err := scanAccount(r.db.QueryRow(ctx, query,
		params.Email,
		params.PasswordHash,
		params.Name,
		params.Surname,
		params.VerificationToken,
		params.VerificationExpiresAt,
		params.VerificationSentAt,
	))
	if err != nil {
		return nil, mapUniqueViolation(err)
	}
	return acct, nil
}

// RotateVerificationToken replaces the token fields in a single conditional
// write. The throttle precondition is part of the WHERE clause, so two racing
// resends can never both rotate.
func (r *PostgresGuestRepository) RotateVerificationToken(ctx context.Context, id uuid.UUID, token string, expiresAt, sentAt, notBefore time.Time) (*GuestAccount, error) {
	query := `
		UPDATE accounts
		SET verification_token = $2,
		    verification_expires_at = $3,
		    verification_sent_at = $4,
		    verification_sent_count = verification_sent_count + 1,
		    updated_at = $4
		WHERE id = $1
		AND verified = FALSE
		AND (verification_sent_at IS NULL OR verification_sent_at <= $5)
		RETURNING ` + accountColumns

	acct, err := scanAccount(r.db.QueryRow(ctx, query, id, token, expiresAt, sentAt, notBefore))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRotationDenied
		}
		return nil, mapUniqueViolation(err)
	}
	return acct, nil
}

// RedeemVerificationToken marks the token holder verified and clears the token
// in one atomic update keyed by the token value. An expired token is left in
// place; only rotation or successful redemption clears it.
func (r *PostgresGuestRepository) RedeemVerificationToken(ctx context.Context, token string, now time.Time) (*GuestAccount, error) {
	query := `
		UPDATE accounts
		SET verified = TRUE,
		    verified_at = $2,
		    verification_token = NULL,
		    verification_expires_at = NULL,
		    updated_at = $2
		WHERE verification_token = $1
		AND verified = FALSE
		AND verification_expires_at >= $2
		RETURNING ` + accountColumns

	acct, err := scanAccount(r.db.QueryRow(ctx, query, token, now))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return acct, nil
}

// Delete removes the account
func (r *PostgresGuestRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}
