package security

import (
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeValidation     = "SECURITY_VALIDATION_FAILED"
	TextCodeUnknownKind    = "SECURITY_UNKNOWN_IDENTIFIER_KIND"
	TextCodeInvalidSeed    = "SECURITY_INVALID_SEED"
	TextCodeInvalidSubject = "SECURITY_INVALID_SUBJECT"
	TextCodeSigning        = "SECURITY_SIGNING_FAILED"
	TextCodeAuthentication = "SECURITY_AUTHENTICATION_ERROR"
	TextCodeTokenExpired   = "SECURITY_TOKEN_EXPIRED"
	TextCodeTokenMalformed = "SECURITY_TOKEN_MALFORMED"
	TextCodeSettings       = "SECURITY_INVALID_SETTINGS"
	TextCodeEmptyPassword  = "SECURITY_EMPTY_PASSWORD"
	TextCodeInvalidCreds   = "SECURITY_INVALID_CREDENTIALS"
)

// ErrValidation is returned when a request is missing required input.
// It never reaches the network.
var ErrValidation = goerrors.New("invalid authentication request", goerrors.CategoryValidation).
	WithTextCode(TextCodeValidation).
	WithCode(goerrors.CodeBadRequest)

// ErrUnknownKind is returned when an identifier kind has no claim type mapping.
var ErrUnknownKind = goerrors.New("unknown identifier kind", goerrors.CategoryBadInput).
	WithTextCode(TextCodeUnknownKind).
	WithCode(goerrors.CodeBadRequest)

// ErrInvalidSeed is returned when the default flow is asked to sign an empty seed.
var ErrInvalidSeed = goerrors.New("token seed must not be empty", goerrors.CategoryBadInput).
	WithTextCode(TextCodeInvalidSeed).
	WithCode(goerrors.CodeBadRequest)

// ErrInvalidSubject is returned when the custom flow receives a nil subject.
var ErrInvalidSubject = goerrors.New("token subject must not be nil", goerrors.CategoryBadInput).
	WithTextCode(TextCodeInvalidSubject).
	WithCode(goerrors.CodeBadRequest)

// ErrSigning is returned when a token cannot be serialized or signed.
var ErrSigning = goerrors.New("failed to sign token", goerrors.CategoryInternal).
	WithTextCode(TextCodeSigning).
	WithCode(goerrors.CodeInternal)

// ErrAuthentication wraps provider and transport failures raised while
// authenticating. It is distinct from a negative AuthResult.
var ErrAuthentication = goerrors.New("authentication provider failure", goerrors.CategoryAuth).
	WithTextCode(TextCodeAuthentication).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenExpired is returned when validating an expired token.
var ErrTokenExpired = goerrors.New("token is expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed is returned when a token cannot be parsed or verified.
var ErrTokenMalformed = goerrors.New("token is malformed", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(goerrors.CodeUnauthorized)

// ErrInvalidSettings is returned by Settings.Validate.
var ErrInvalidSettings = goerrors.New("invalid security settings", goerrors.CategoryValidation).
	WithTextCode(TextCodeSettings).
	WithCode(goerrors.CodeBadRequest)

// ErrEmptyPassword is returned when hashing an empty password.
var ErrEmptyPassword = goerrors.New("password must not be empty", goerrors.CategoryBadInput).
	WithTextCode(TextCodeEmptyPassword).
	WithCode(goerrors.CodeBadRequest)

// ErrMismatchedHashAndPassword is returned when a password does not match
// its stored hash.
var ErrMismatchedHashAndPassword = goerrors.New("password does not match", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(goerrors.CodeUnauthorized)

// ValidationError builds an ErrValidation for the given field.
func ValidationError(field, message string) error {
	return ErrValidation.Clone().WithMetadata(map[string]any{
		"field":   field,
		"message": message,
	})
}

// WrapValidation converts an ozzo-validation error into ErrValidation.
func WrapValidation(err error) error {
	if err == nil {
		return nil
	}
	clone := ErrValidation.Clone()
	clone.Source = err
	return clone.WithMetadata(map[string]any{
		"errors": err.Error(),
	})
}

// WrapAuthentication wraps a remote failure for provider.
func WrapAuthentication(provider string, err error) error {
	if err == nil {
		return nil
	}

	meta := map[string]any{"provider": provider, "error": err.Error()}

	var perr *ProviderError
	if errors.As(err, &perr) && perr != nil {
		for k, v := range perr.Metadata() {
			meta[k] = v
		}
	}

	clone := ErrAuthentication.Clone()
	clone.Source = err
	return clone.WithMetadata(meta)
}

// ProviderError captures a failed call to an external identity provider.
type ProviderError struct {
	Provider    string
	Operation   string
	Status      int
	Code        string
	Description string
	Err         error
	Raw         map[string]any
}

func (e *ProviderError) Error() string {
	if e == nil {
		return "provider error"
	}

	scope := "provider"
	if e.Provider != "" && e.Operation != "" {
		scope = fmt.Sprintf("%s %s", e.Provider, e.Operation)
	} else if e.Provider != "" {
		scope = e.Provider
	}

	switch {
	case e.Description != "":
		return fmt.Sprintf("%s failed: %s", scope, e.Description)
	case e.Code != "":
		return fmt.Sprintf("%s failed: %s", scope, e.Code)
	case e.Err != nil:
		return fmt.Sprintf("%s failed: %v", scope, e.Err)
	}
	return fmt.Sprintf("%s failed", scope)
}

func (e *ProviderError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Metadata returns the populated fields for structured logging.
func (e *ProviderError) Metadata() map[string]any {
	if e == nil {
		return nil
	}

	meta := map[string]any{}
	if e.Provider != "" {
		meta["provider"] = e.Provider
	}
	if e.Operation != "" {
		meta["operation"] = e.Operation
	}
	if e.Status != 0 {
		meta["status"] = e.Status
	}
	if e.Code != "" {
		meta["code"] = e.Code
	}
	if e.Description != "" {
		meta["description"] = e.Description
	}
	if len(e.Raw) > 0 {
		meta["raw"] = e.Raw
	}
	return meta
}

// IsValidationError reports whether err is a client input error.
func IsValidationError(err error) bool {
	return hasTextCode(err, TextCodeValidation)
}

// IsSigningError reports whether err was raised while signing a token.
func IsSigningError(err error) bool {
	return hasTextCode(err, TextCodeSigning)
}

// IsAuthenticationError reports whether err wraps a provider failure.
func IsAuthenticationError(err error) bool {
	return hasTextCode(err, TextCodeAuthentication)
}

// IsTransportError reports whether err originates from a remote call.
func IsTransportError(err error) bool {
	for err != nil {
		var perr *ProviderError
		if errors.As(err, &perr) {
			return true
		}
		var terr interface{ TransportFailure() bool }
		if errors.As(err, &terr) && terr.TransportFailure() {
			return true
		}
		var richErr *goerrors.Error
		if !errors.As(err, &richErr) || richErr.Source == nil || richErr.Source == error(richErr) {
			return false
		}
		err = richErr.Source
	}
	return false
}

// IsMismatchedPassword reports whether err is ErrMismatchedHashAndPassword.
func IsMismatchedPassword(err error) bool {
	return hasTextCode(err, TextCodeInvalidCreds)
}

// IsTokenExpiredError reports whether err is ErrTokenExpired.
func IsTokenExpiredError(err error) bool {
	return hasTextCode(err, TextCodeTokenExpired)
}

// IsMalformedError reports whether err is ErrTokenMalformed.
func IsMalformedError(err error) bool {
	return hasTextCode(err, TextCodeTokenMalformed)
}

func hasTextCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode == code
	}
	return false
}
