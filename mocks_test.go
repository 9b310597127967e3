package security_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	security "github.com/goliatone/go-security-jwt"
)

const testSecret = "a secret that needs to be at least 16 characters long"

// MockLogger implements security.Logger for testing
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Info(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Warn(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Error(format string, args ...any) {
	m.Called(format, args)
}

// MockCredentialVerifier implements security.CredentialVerifier
type MockCredentialVerifier struct {
	mock.Mock
}

func (m *MockCredentialVerifier) VerifyCredentials(ctx context.Context, id, password string) (bool, error) {
	args := m.Called(ctx, id, password)
	return args.Bool(0), args.Error(1)
}

// MockSubjectVerifier implements security.SubjectVerifier
type MockSubjectVerifier[T any] struct {
	mock.Mock
}

func (m *MockSubjectVerifier[T]) VerifySubject(ctx context.Context, subject T) (bool, error) {
	args := m.Called(ctx, subject)
	return args.Bool(0), args.Error(1)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

func newTestTokenService(t *testing.T, mutate func(*security.Settings)) *security.TokenService {
	t.Helper()
	settings := &security.Settings{
		Secret:   testSecret,
		Issuer:   "your app",
		Audience: "the client of your app",
	}
	if mutate != nil {
		mutate(settings)
	}
	return security.NewTokenService(settings, nopLogger{})
}

// decodePayload returns the raw claims segment and its decoded map.
func decodePayload(t *testing.T, token string) ([]byte, map[string]any) {
	t.Helper()
	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	raw, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)

	claims := map[string]any{}
	require.NoError(t, json.Unmarshal(raw, &claims))
	return raw, claims
}

// payloadKeys returns the top level keys of the claims segment in order.
func payloadKeys(t *testing.T, raw []byte) []string {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(string(raw)))

	tok, err := dec.Token()
	require.NoError(t, err)
	require.Equal(t, json.Delim('{'), tok)

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		require.NoError(t, err)
		keys = append(keys, tok.(string))

		var skip json.RawMessage
		require.NoError(t, dec.Decode(&skip))
	}
	return keys
}
