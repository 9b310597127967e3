package google

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation"
	security "github.com/goliatone/go-security-jwt"
)

// Request is the inbound payload of the Google flow.
type Request struct {
	APIKey            string `json:"apiKey"`
	AuthorizationCode string `json:"authorizationCode"`
}

// Validate checks that an authorization code was supplied. The API key is
// checked by the authenticator itself.
func (r Request) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.AuthorizationCode, validation.Required),
	)
}

// Authenticator guards the Google code exchange with a shared API key.
type Authenticator struct {
	apiKey string
	client Client
	logger security.Logger
}

var _ security.Authenticator[Request] = (*Authenticator)(nil)

// NewAuthenticator creates the Google authenticator.
func NewAuthenticator(apiKey string, client Client, logger security.Logger) *Authenticator {
	return &Authenticator{
		apiKey: apiKey,
		client: client,
		logger: security.NormalizeLogger(logger),
	}
}

// Authenticate exchanges the authorization code once the API key matches and
// carries the Google access token through.
func (a *Authenticator) Authenticate(ctx context.Context, req Request) (*security.AuthResult, error) {
	if err := req.Validate(); err != nil {
		return nil, security.WrapValidation(err)
	}

	if !security.APIKeyMatches(a.apiKey, req.APIKey) {
		a.logger.Debug("google authenticator rejected api key")
		return security.Unauthenticated(), nil
	}

	resp, err := a.client.ExchangeCode(ctx, req.AuthorizationCode)
	if err != nil {
		a.logger.Error("google authenticator failed to exchange code: %v", err)
		return nil, security.WrapAuthentication(providerName, err)
	}
	if resp == nil {
		return security.Unauthenticated(), nil
	}

	return &security.AuthResult{
		IsAuthenticated: resp.IsAuthenticated,
		AccessToken:     resp.AccessToken,
		Payload:         resp,
	}, nil
}
