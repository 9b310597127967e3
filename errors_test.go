package security_test

import (
	"errors"
	"fmt"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	security "github.com/goliatone/go-security-jwt"
	"github.com/goliatone/go-security-jwt/transport"
)

func TestErrorCategories(t *testing.T) {
	assert.Equal(t, goerrors.CategoryValidation, security.ErrValidation.Category)
	assert.Equal(t, goerrors.CategoryBadInput, security.ErrUnknownKind.Category)
	assert.Equal(t, goerrors.CategoryBadInput, security.ErrInvalidSeed.Category)
	assert.Equal(t, goerrors.CategoryInternal, security.ErrSigning.Category)
	assert.Equal(t, goerrors.CategoryAuth, security.ErrAuthentication.Category)
	assert.Equal(t, goerrors.CategoryAuth, security.ErrTokenExpired.Category)
	assert.Equal(t, goerrors.CategoryAuth, security.ErrMismatchedHashAndPassword.Category)
}

func TestValidationError(t *testing.T) {
	err := security.ValidationError("userAccessToken", "cannot be blank")
	assert.True(t, security.IsValidationError(err))

	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr))
	assert.Equal(t, "userAccessToken", richErr.Metadata["field"])

	assert.Nil(t, security.WrapValidation(nil))
	assert.True(t, security.IsValidationError(security.WrapValidation(errors.New("id: cannot be blank."))))
}

func TestWrapAuthentication(t *testing.T) {
	assert.Nil(t, security.WrapAuthentication("google", nil))

	perr := &security.ProviderError{
		Provider:    "google",
		Operation:   "exchange code",
		Status:      400,
		Code:        "invalid_grant",
		Description: "Bad Request",
		Err:         &transport.Error{Method: "POST", URL: "https://accounts.google.com/o/oauth2/token", Status: 400},
	}

	err := security.WrapAuthentication("google", perr)
	assert.True(t, security.IsAuthenticationError(err))
	assert.True(t, security.IsTransportError(err))

	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr))
	assert.Equal(t, "google", richErr.Metadata["provider"])
	assert.Equal(t, "invalid_grant", richErr.Metadata["code"])
	assert.Equal(t, 400, richErr.Metadata["status"])
}

func TestProviderErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      *security.ProviderError
		expected string
	}{
		{
			name:     "description wins",
			err:      &security.ProviderError{Provider: "facebook", Operation: "debug token", Code: "190", Description: "Invalid OAuth access token."},
			expected: "facebook debug token failed: Invalid OAuth access token.",
		},
		{
			name:     "code fallback",
			err:      &security.ProviderError{Provider: "twitter", Code: "99"},
			expected: "twitter failed: 99",
		},
		{
			name:     "wrapped error fallback",
			err:      &security.ProviderError{Err: errors.New("boom")},
			expected: "provider failed: boom",
		},
		{
			name:     "bare",
			err:      &security.ProviderError{Provider: "azuread", Operation: "acquire token"},
			expected: "azuread acquire token failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestProviderErrorUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("exchange: %w", &security.ProviderError{Provider: "google", Err: cause})

	assert.ErrorIs(t, err, cause)

	var perr *security.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "google", perr.Provider)

	var nilErr *security.ProviderError
	assert.Nil(t, nilErr.Unwrap())
	assert.Nil(t, nilErr.Metadata())
}

func TestIsTransportError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil", err: nil, expected: false},
		{name: "plain", err: errors.New("boom"), expected: false},
		{name: "transport", err: &transport.Error{Method: "GET", URL: "https://graph.facebook.com"}, expected: true},
		{name: "provider", err: &security.ProviderError{Provider: "twitter"}, expected: true},
		{name: "wrapped in authentication", err: security.WrapAuthentication("twitter", &transport.Error{Status: 503}), expected: true},
		{name: "authentication without remote cause", err: security.WrapAuthentication("default", errors.New("db down")), expected: false},
		{name: "validation", err: security.ValidationError("code", "cannot be blank"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, security.IsTransportError(tt.err))
		})
	}
}

func TestErrorPredicates(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		predicate func(error) bool
		expected  bool
	}{
		{name: "expired", err: security.ErrTokenExpired.Clone(), predicate: security.IsTokenExpiredError, expected: true},
		{name: "expired is not malformed", err: security.ErrTokenExpired.Clone(), predicate: security.IsMalformedError, expected: false},
		{name: "malformed", err: security.ErrTokenMalformed.Clone(), predicate: security.IsMalformedError, expected: true},
		{name: "signing", err: security.ErrSigning.Clone(), predicate: security.IsSigningError, expected: true},
		{name: "mismatch", err: security.ErrMismatchedHashAndPassword.Clone(), predicate: security.IsMismatchedPassword, expected: true},
		{name: "plain error", err: errors.New("token is expired"), predicate: security.IsTokenExpiredError, expected: false},
		{name: "nil", err: nil, predicate: security.IsAuthenticationError, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.predicate(tt.err))
		})
	}
}
