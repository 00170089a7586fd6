package guest

import "errors"

var (
	// ErrAccountNotFound is returned when no account matches the lookup key
	ErrAccountNotFound = errors.New("guest account not found")

	// ErrEmailExists is returned when the email uniqueness constraint rejects a write
	ErrEmailExists = errors.New("email already in use")

	// ErrTokenExists is returned when the verification token uniqueness constraint rejects a write
	ErrTokenExists = errors.New("verification token already in use")

	// ErrRotationDenied is returned when the conditional token rotation finds the
	// account already verified or the throttle precondition no longer holding
	ErrRotationDenied = errors.New("verification token rotation denied")
)
