package azuread

import (
	"context"

	security "github.com/goliatone/go-security-jwt"
)

// Request is the inbound payload of the Azure AD flow.
type Request struct {
	APIKey string `json:"apiKey"`
}

// Authenticator guards the Azure AD token request with a shared API key.
type Authenticator struct {
	apiKey string
	client Client
	logger security.Logger
}

var _ security.Authenticator[Request] = (*Authenticator)(nil)

// NewAuthenticator creates the Azure AD authenticator.
func NewAuthenticator(apiKey string, client Client, logger security.Logger) *Authenticator {
	return &Authenticator{
		apiKey: apiKey,
		client: client,
		logger: security.NormalizeLogger(logger),
	}
}

// Authenticate acquires an Azure AD token once the API key matches and
// returns it as the access token.
func (a *Authenticator) Authenticate(ctx context.Context, req Request) (*security.AuthResult, error) {
	if !security.APIKeyMatches(a.apiKey, req.APIKey) {
		a.logger.Debug("azuread authenticator rejected api key")
		return security.Unauthenticated(), nil
	}

	resp, err := a.client.AcquireToken(ctx)
	if err != nil {
		a.logger.Error("azuread authenticator failed to acquire token: %v", err)
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
