package security

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation"
)

// DefaultAuthenticator implements the id/password flow: credentials are
// checked by a CredentialVerifier and the id becomes the token seed.
type DefaultAuthenticator struct {
	verifier CredentialVerifier
	tokens   *TokenService
	logger   Logger
}

var _ Authenticator[Credentials] = (*DefaultAuthenticator)(nil)

// NewDefaultAuthenticator creates the default flow authenticator. A nil
// verifier rejects every request. It panics when tokens is nil.
func NewDefaultAuthenticator(verifier CredentialVerifier, tokens *TokenService, logger Logger) *DefaultAuthenticator {
	if tokens == nil {
		panic("SECURITY: default authenticator configuration: TokenService is required.")
	}
	return &DefaultAuthenticator{
		verifier: verifier,
		tokens:   tokens,
		logger:   NormalizeLogger(logger),
	}
}

// Authenticate validates req, verifies the credentials and issues a token
// whose identity claim is req.ID.
func (a *DefaultAuthenticator) Authenticate(ctx context.Context, req Credentials) (*AuthResult, error) {
	if err := req.Validate(); err != nil {
		return nil, WrapValidation(err)
	}

	if a.verifier == nil {
		a.logger.Warn("default authenticator has no credential verifier configured")
		return Unauthenticated(), nil
	}

	ok, err := a.verifier.VerifyCredentials(ctx, req.ID, req.Password)
	if err != nil {
		a.logger.Error("default authenticator failed to verify credentials: %v", err)
		return nil, WrapAuthentication("default", err)
	}
	if !ok {
		return Unauthenticated(), nil
	}

	token, err := a.tokens.Generate(req.ID)
	if err != nil {
		return nil, err
	}

	return &AuthResult{IsAuthenticated: true, AccessToken: token}, nil
}

// CustomAuthenticator implements the application defined subject flow:
// subjects are checked by a SubjectVerifier and their claims are built by
// a ClaimsFunc.
type CustomAuthenticator[T any] struct {
	verifier SubjectVerifier[T]
	tokens   *TokenService
	claims   ClaimsFunc[T]
	logger   Logger
}

// NewCustomAuthenticator creates a custom flow authenticator. A nil
// verifier rejects every request. It panics when tokens is nil.
func NewCustomAuthenticator[T any](verifier SubjectVerifier[T], tokens *TokenService, claims ClaimsFunc[T], logger Logger) *CustomAuthenticator[T] {
	if tokens == nil {
		panic("SECURITY: custom authenticator configuration: TokenService is required.")
	}
	return &CustomAuthenticator[T]{
		verifier: verifier,
		tokens:   tokens,
		claims:   claims,
		logger:   NormalizeLogger(logger),
	}
}

// Authenticate verifies subject and issues a token carrying the claims the
// ClaimsFunc builds for it. Subjects implementing validation.Validatable
// are validated first.
func (a *CustomAuthenticator[T]) Authenticate(ctx context.Context, subject T) (*AuthResult, error) {
	if isNil(subject) {
		return nil, ErrInvalidSubject.Clone()
	}

	if v, ok := any(subject).(validation.Validatable); ok {
		if err := v.Validate(); err != nil {
			return nil, WrapValidation(err)
		}
	}

	if a.verifier == nil {
		a.logger.Warn("custom authenticator has no subject verifier configured")
		return Unauthenticated(), nil
	}

	ok, err := a.verifier.VerifySubject(ctx, subject)
	if err != nil {
		a.logger.Error("custom authenticator failed to verify subject: %v", err)
		return nil, WrapAuthentication("custom", err)
	}
	if !ok {
		return Unauthenticated(), nil
	}

	token, err := IssueFor(a.tokens, subject, a.claims)
	if err != nil {
		return nil, err
	}

	return &AuthResult{IsAuthenticated: true, AccessToken: token}, nil
}
