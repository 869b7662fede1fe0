package google

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"

	"github.com/matburt/meeting-notes-handler/internal/core/domain"
)

func apiError(code int) error {
	return &googleapi.Error{Code: code, Message: "boom"}
}

func TestWrapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"unauthorized", apiError(http.StatusUnauthorized), ErrUnauthorized},
		{"forbidden", apiError(http.StatusForbidden), ErrForbidden},
		{"not found", apiError(http.StatusNotFound), ErrNotFound},
		{"rate limited", apiError(http.StatusTooManyRequests), ErrRateLimited},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, WrapError(tt.err), tt.want)
		})
	}

	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, WrapError(nil))
	})

	t.Run("other codes pass through", func(t *testing.T) {
		err := apiError(http.StatusInternalServerError)
		assert.Equal(t, err, WrapError(err))
	})

	t.Run("non-api errors pass through", func(t *testing.T) {
		err := errors.New("plain failure")
		assert.Equal(t, err, WrapError(err))
	})
}

func TestSentinelsWrapDomainErrors(t *testing.T) {
	assert.ErrorIs(t, ErrUnauthorized, domain.ErrAuthRequired)
	assert.ErrorIs(t, ErrRateLimited, domain.ErrRateLimited)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(apiError(http.StatusTooManyRequests)))
	assert.True(t, IsRetryable(apiError(http.StatusInternalServerError)))
	assert.True(t, IsRetryable(apiError(http.StatusServiceUnavailable)))
	assert.True(t, IsRetryable(ErrRateLimited))

	assert.False(t, IsRetryable(apiError(http.StatusUnauthorized)))
	assert.False(t, IsRetryable(apiError(http.StatusNotFound)))
	assert.False(t, IsRetryable(errors.New("plain failure")))
}

func TestClassifiers(t *testing.T) {
	assert.True(t, IsUnauthorized(apiError(http.StatusUnauthorized)))
	assert.True(t, IsForbidden(apiError(http.StatusForbidden)))
	assert.True(t, IsNotFound(apiError(http.StatusNotFound)))
	assert.True(t, IsRateLimited(apiError(http.StatusTooManyRequests)))
	assert.False(t, IsNotFound(apiError(http.StatusForbidden)))
}
