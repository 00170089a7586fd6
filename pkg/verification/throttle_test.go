package verification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowResend(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	interval := 2 * time.Minute

	tests := []struct {
		name       string
		lastSentAt *time.Time
		want       bool
	}{
		{
			name:       "NoPriorSend",
			lastSentAt: nil,
			want:       true,
		},
		{
			name:       "JustSent",
			lastSentAt: timePtr(now),
			want:       false,
		},
		{
			name:       "WithinInterval",
			lastSentAt: timePtr(now.Add(-time.Minute)),
			want:       false,
		},
		{
			name:       "ExactlyAtInterval",
			lastSentAt: timePtr(now.Add(-2 * time.Minute)),
			want:       true,
		},
		{
			name:       "PastInterval",
			lastSentAt: timePtr(now.Add(-time.Hour)),
			want:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AllowResend(tt.lastSentAt, now, interval))
		})
	}
}

func TestRemainingWait(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	interval := 2 * time.Minute

	t.Run("NoPriorSend", func(t *testing.T) {
		assert.Equal(t, time.Duration(0), RemainingWait(nil, now, interval))
	})

	t.Run("WithinInterval", func(t *testing.T) {
		last := now.Add(-30 * time.Second)
		assert.Equal(t, 90*time.Second, RemainingWait(&last, now, interval))
	})

	t.Run("PastInterval", func(t *testing.T) {
		last := now.Add(-10 * time.Minute)
		assert.Equal(t, time.Duration(0), RemainingWait(&last, now, interval))
	})
}

func TestRetryAfterMinutes(t *testing.T) {
	assert.Equal(t, 1, retryAfterMinutes(0))
	assert.Equal(t, 1, retryAfterMinutes(10*time.Second))
	assert.Equal(t, 1, retryAfterMinutes(time.Minute))
	assert.Equal(t, 2, retryAfterMinutes(61*time.Second))
	assert.Equal(t, 2, retryAfterMinutes(2*time.Minute))
}

func timePtr(t time.Time) *time.Time {
	return &t
}
