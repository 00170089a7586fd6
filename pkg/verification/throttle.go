package verification

import "time"

// AllowResend reports whether a new verification email may be sent given
// the timestamp of the last dispatch. A nil lastSentAt means no prior
// dispatch is on record, which always allows a send. Both the login-gate
// resend and the explicit resend endpoint go through this predicate.
func AllowResend(lastSentAt *time.Time, now time.Time, interval time.Duration) bool {
	if lastSentAt == nil {
		return true
	}
	return now.Sub(*lastSentAt) >= interval
}

// RemainingWait returns how long until AllowResend would permit a send
// again. Returns zero when a send is already allowed.
func RemainingWait(lastSentAt *time.Time, now time.Time, interval time.Duration) time.Duration {
	if lastSentAt == nil {
		return 0
	}
	remaining := interval - now.Sub(*lastSentAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// retryAfterMinutes converts a remaining wait into the whole minutes
// reported to callers, rounded up and never less than one.
func retryAfterMinutes(remaining time.Duration) int {
	if remaining <= 0 {
		return 1
	}
	minutes := int((remaining + time.Minute - 1) / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
