package security

import (
	"context"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// AuthResult is the uniform outcome of an authentication attempt.
// A false IsAuthenticated is a decision, not a failure.
type AuthResult struct {
	IsAuthenticated bool   `json:"isAuthenticated"`
	AccessToken     string `json:"accessToken,omitempty"`
	Payload         any    `json:"payload,omitempty"`
}

// Unauthenticated is the negative AuthResult.
func Unauthenticated() *AuthResult {
	return &AuthResult{IsAuthenticated: false}
}

// Authenticator verifies a request of type R.
type Authenticator[R any] interface {
	Authenticate(ctx context.Context, req R) (*AuthResult, error)
}

// AuthenticatorFunc adapts a function into an Authenticator.
type AuthenticatorFunc[R any] func(ctx context.Context, req R) (*AuthResult, error)

// Authenticate satisfies the Authenticator interface.
func (f AuthenticatorFunc[R]) Authenticate(ctx context.Context, req R) (*AuthResult, error) {
	return f(ctx, req)
}

// Credentials is the request payload of the default flow.
type Credentials struct {
	ID       string `json:"id"`
	Password string `json:"password"`
}

// Validate checks that both fields are present.
func (c Credentials) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.ID, validation.Required),
		validation.Field(&c.Password, validation.Required),
	)
}

// CredentialVerifier checks an id/password pair for the default flow.
type CredentialVerifier interface {
	VerifyCredentials(ctx context.Context, id, password string) (bool, error)
}

// CredentialVerifierFunc adapts a function into a CredentialVerifier.
type CredentialVerifierFunc func(ctx context.Context, id, password string) (bool, error)

// VerifyCredentials satisfies the CredentialVerifier interface.
func (f CredentialVerifierFunc) VerifyCredentials(ctx context.Context, id, password string) (bool, error) {
	return f(ctx, id, password)
}

// SubjectVerifier checks an application defined subject record.
type SubjectVerifier[T any] interface {
	VerifySubject(ctx context.Context, subject T) (bool, error)
}

// SubjectVerifierFunc adapts a function into a SubjectVerifier.
type SubjectVerifierFunc[T any] func(ctx context.Context, subject T) (bool, error)

// VerifySubject satisfies the SubjectVerifier interface.
func (f SubjectVerifierFunc[T]) VerifySubject(ctx context.Context, subject T) (bool, error) {
	return f(ctx, subject)
}

// APIKeyMatches compares a caller supplied key against the configured one.
// Both sides are trimmed, comparison is case sensitive, and an empty key on
// either side never matches.
func APIKeyMatches(configured, supplied string) bool {
	configured = strings.TrimSpace(configured)
	supplied = strings.TrimSpace(supplied)
	if configured == "" || supplied == "" {
		return false
	}
	return configured == supplied
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] SECURITY "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] SECURITY "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] SECURITY "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] SECURITY "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}

// DefaultLogger returns the stdout logger used when none is configured.
func DefaultLogger() Logger {
	return defLogger{}
}

// NormalizeLogger returns logger, or the default logger when nil.
func NormalizeLogger(logger Logger) Logger {
	if logger == nil {
		return defLogger{}
	}
	return logger
}
