package verr

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorWrapping(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, ErrCodeMailUnavailable, "verification email could not be sent")

	assert.True(t, IsCode(err, ErrCodeMailUnavailable))
	assert.False(t, IsCode(err, ErrCodeTokenInvalid))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "MAIL_UNAVAILABLE")
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, ErrCodeTokenExpired, GetCode(New(ErrCodeTokenExpired, "expired")))
	assert.Equal(t, ErrCodeInternal, GetCode(errors.New("plain error")))
}

func TestDetails(t *testing.T) {
	err := RateLimited(2)
	details := GetDetails(err)
	assert.Equal(t, 2, details["retry_after_minutes"])

	assert.Nil(t, GetDetails(errors.New("plain error")))
}

func TestMapErrorCodeToHTTPStatus(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeInvalidInput, http.StatusBadRequest},
		{ErrCodeEmailExists, http.StatusBadRequest},
		{ErrCodeInvalidCredentials, http.StatusUnauthorized},
		{ErrCodeEmailNotVerified, http.StatusForbidden},
		{ErrCodeTokenInvalid, http.StatusNotFound},
		{ErrCodeTokenExpired, http.StatusGone},
		{ErrCodeRateLimitExceeded, http.StatusTooManyRequests},
		{ErrCodeMailUnavailable, http.StatusServiceUnavailable},
		{ErrCodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, MapErrorCodeToHTTPStatus(tt.code))
		})
	}
}
